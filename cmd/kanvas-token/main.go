// Command kanvas-token mints a session token for self-hosted deployments,
// which run without an external identity provider.
//
//	KANVAS_JWT_SECRET=... kanvas-token -user <uuid> [-ttl 24h]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kanvaslabs/kanvas/internal/auth"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	user := flag.String("user", "", "user ID (UUID) the token authenticates; a random one is generated when empty")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("KANVAS_JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("KANVAS_JWT_SECRET is required")
	}

	userID := uuid.New()
	if *user != "" {
		parsed, err := uuid.Parse(*user)
		if err != nil {
			return fmt.Errorf("parsing -user: %w", err)
		}
		userID = parsed
	}

	tok, err := auth.IssueToken(secret, userID, *ttl)
	if err != nil {
		return err
	}

	fmt.Println("user:", userID)
	fmt.Println("token:", tok)
	return nil
}
