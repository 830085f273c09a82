// Package identity holds the acting-user credential that scopes every ledger
// call and the company reference entity.
package identity

import (
	"context"
	"fmt"
)

// Credential is the acting user of one request. It is an immutable value:
// pass it explicitly to every accessor and orchestrator, never store it.
type Credential struct {
	username string
	db       string
	uid      int64
	password string
}

// NewCredential validates and builds a credential
func NewCredential(username, db string, uid int64, password string) (Credential, error) {
	if db == "" {
		return Credential{}, fmt.Errorf("credential: database is required")
	}
	if uid <= 0 {
		return Credential{}, fmt.Errorf("credential: uid must be positive")
	}
	if password == "" {
		return Credential{}, fmt.Errorf("credential: password is required")
	}
	return Credential{username: username, db: db, uid: uid, password: password}, nil
}

// Username returns the ledger login name
func (c Credential) Username() string { return c.username }

// DB returns the ledger database name
func (c Credential) DB() string { return c.db }

// UID returns the ledger user id
func (c Credential) UID() int64 { return c.uid }

// Password returns the secret sent with every execute_kw call
func (c Credential) Password() string { return c.password }

// IsZero reports whether the credential is unset
func (c Credential) IsZero() bool { return c.uid == 0 }

// String never includes the password
func (c Credential) String() string {
	return fmt.Sprintf("%s@%s(uid=%d)", c.username, c.db, c.uid)
}

// Authenticator verifies ledger logins.
type Authenticator interface {
	// Login resolves a ledger uid for the given user; rejected credentials
	// produce an UNAUTHORIZED domain error.
	Login(ctx context.Context, db, username, password string) (int64, error)
}
