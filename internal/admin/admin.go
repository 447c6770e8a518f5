// Package admin manages the operator accounts allowed to edit dashboard data.
package admin

import (
	"context"
	"errors"
	"fmt"

	"qadashboard/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var ErrMissingCredentials = errors.New("admin username and password are required")

type Store interface {
	GetAdmin(ctx context.Context, username string) (domain.AdminAccount, error)
	SaveAdmin(ctx context.Context, account domain.AdminAccount) (bool, error)
}

type Credentials struct {
	Username string
	Email    string
	Password string
}

type Manager struct {
	store Store
	cost  int
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, cost: bcrypt.DefaultCost}
}

// Ensure creates the account or, if it already exists, resets its password
// and email. It reports whether the account was created.
func (m *Manager) Ensure(ctx context.Context, creds Credentials) (bool, error) {
	if creds.Username == "" || creds.Password == "" {
		return false, ErrMissingCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), m.cost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	created, err := m.store.SaveAdmin(ctx, domain.AdminAccount{
		Username:     creds.Username,
		Email:        creds.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return false, fmt.Errorf("save admin %s: %w", creds.Username, err)
	}
	return created, nil
}

// Verify checks a username/password pair. Unknown users and wrong passwords
// both yield false without an error.
func (m *Manager) Verify(ctx context.Context, username, password string) (bool, error) {
	account, err := m.store.GetAdmin(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}
