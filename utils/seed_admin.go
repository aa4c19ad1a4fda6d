package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/auth"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/models"
)

// SeedAdminUser creates the configured admin account if it does not exist
// yet. Seeding never overwrites an existing account.
func SeedAdminUser(ctx context.Context, store auth.UserStore, hasher *auth.Hasher, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	_, err := store.FindByEmail(ctx, email)
	if err == nil {
		log.Println("admin user already exists:", email)
		return nil
	}
	if !errors.Is(err, auth.ErrUserNotFound) {
		return fmt.Errorf("seed admin lookup: %w", err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = store.Create(ctx, &models.User{
		Email:        email,
		Name:         "Admin",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil && !errors.Is(err, auth.ErrEmailTaken) {
		return fmt.Errorf("seed admin create: %w", err)
	}

	log.Println("admin user seeded:", email)
	return nil
}
