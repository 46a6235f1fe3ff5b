// Package main provides a tool to promote a user to the admin role.
//
// The user must already exist, which happens on their first
// authenticated request.
//
// Usage:
//
//	go run ./cmd/grantadmin --subject idp|alice
//	go run ./cmd/grantadmin --subject idp|alice --revoke
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/campuslens/campuslens-server/internal/domain"
	"github.com/campuslens/campuslens-server/internal/store/sqlite"
)

var (
	subject  = flag.String("subject", "", "Identity provider subject of the user (required)")
	revoke   = flag.Bool("revoke", false, "Demote back to the standard user role")
	dataPath = flag.String("data-path", "", "Server data path holding campuslens.db (default: ~/CampusLens/data)")
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

	st, err := sqlite.Open(filepath.Join(base, "campuslens.db"), slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	user, err := st.GetUserBySubject(ctx, *subject)
	if err != nil {
		log.Fatalf("Failed to look up user %q: %v", *subject, err)
	}

	role := domain.RoleAdmin
	if *revoke {
		role = domain.RoleUser
	}

	if err := st.UpdateUserRole(ctx, user.ID, role); err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}

	fmt.Printf("User %s (%s) is now %s\n", user.Subject, user.ID, role)
}
