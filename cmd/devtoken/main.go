// Package main provides a tool to mint development identity assertions.
//
// It loads (or generates) the local development keypair the server falls
// back to when no identity provider public key is configured, then signs
// an assertion the server will accept.
//
// Usage:
//
//	go run ./cmd/devtoken --subject idp|alice
//	go run ./cmd/devtoken --subject idp|alice --email alice@example.edu --ttl 8h
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/campuslens/campuslens-server/internal/auth"
)

var (
	subject  = flag.String("subject", "", "Identity provider subject (required)")
	email    = flag.String("email", "", "Email claim")
	name     = flag.String("name", "", "Display name claim")
	ttl      = flag.Duration("ttl", 24*time.Hour, "Assertion lifetime")
	issuer   = flag.String("issuer", "campuslens-identity", "Assertion issuer")
	audience = flag.String("audience", "campuslens-server", "Assertion audience")
	dataPath = flag.String("data-path", "", "Server data path holding identity.key (default: ~/CampusLens/data)")
)

func main() {
	flag.Parse()

	if *subject == "" {
		flag.Usage()
		log.Fatal("--subject is required")
	}

	base := *dataPath
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		base = filepath.Join(home, "CampusLens", "data")
	}

	secret, err := auth.LoadOrGenerateKeypair(base)
	if err != nil {
		log.Fatalf("Failed to load identity keypair: %v", err)
	}

	signer := auth.NewSigner(secret, *issuer, *audience)
	token := signer.Sign(auth.Identity{
		Subject:     *subject,
		Email:       *email,
		DisplayName: *name,
	}, *ttl)

	fmt.Println(token)
}
