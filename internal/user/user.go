// Package user resolves admin bearer tokens to the curators behind them.
package user

import (
	"context"
	"crypto/subtle"
	"errors"
)

var ErrUnknownToken = errors.New("unknown token")

// User data model
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	token string
}

type ctxKey struct{}

// Directory holds the configured admins.
type Directory struct {
	users []*User
}

// NewDirectory registers one admin per non-empty token, keyed by name.
func NewDirectory(tokens map[string]string) *Directory {
	d := &Directory{}
	var id int64 = 100
	for name, token := range tokens {
		if token == "" {
			continue
		}
		d.users = append(d.users, &User{ID: id, Name: name, token: token})
		id += 100
	}

	return d
}

// Authenticate returns the admin owning token.
func (d *Directory) Authenticate(token string) (*User, error) {
	if token == "" {
		return nil, ErrUnknownToken
	}
	for _, u := range d.users {
		if subtle.ConstantTimeCompare([]byte(u.token), []byte(token)) == 1 {
			return u, nil
		}
	}

	return nil, ErrUnknownToken
}

func (d *Directory) Empty() bool { return len(d.users) == 0 }

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the authenticated admin, if any.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*User)

	return u, ok
}

// Name returns the admin name on ctx, or "system" for unauthenticated
// callers such as CLI commands.
func Name(ctx context.Context) string {
	if u, ok := FromContext(ctx); ok {
		return u.Name
	}

	return "system"
}
