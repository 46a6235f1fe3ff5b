// Package images inspects uploaded photo bytes: content type sniffing,
// dimension probing, and BlurHash placeholders.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Info is what could be derived from the raw upload bytes. Probing is
// best-effort: an image we can store but not decode yields zero
// dimensions, not an error.
type Info struct {
	ContentType string
	Width       int
	Height      int
}

// allowedTypes are the sniffed content types accepted for upload.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// extensions maps accepted content types to storage file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Sniff detects the content type from the leading bytes. The client's
// declared type is ignored; only the bytes decide.
func Sniff(data []byte) string {
	return http.DetectContentType(data)
}

// Allowed reports whether the sniffed content type is an accepted image
// format.
func Allowed(contentType string) bool {
	return allowedTypes[contentType]
}

// Extension returns the storage file extension for a content type,
// empty when unknown.
func Extension(contentType string) string {
	return extensions[contentType]
}

// Probe sniffs the content type and decodes image dimensions.
// Returns an error only for disallowed content types; decode failures
// on an allowed type degrade to zero dimensions.
func Probe(data []byte) (*Info, error) {
	contentType := Sniff(data)
	if !Allowed(contentType) {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	info := &Info{ContentType: contentType}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		info.Width = cfg.Width
		info.Height = cfg.Height
	}
	return info, nil
}
