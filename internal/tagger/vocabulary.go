package tagger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadVocabulary reads static candidate labels from a file, one per
// line. Blank lines and lines starting with # are skipped. An empty
// path returns a nil vocabulary.
func LoadVocabulary(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return labels, nil
}
