// Package auth checks admin credentials and drives the admin flags of the
// reader state.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dailypost/dailypost/client"
	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/state"
)

// Demo credentials accepted by NewFixedCredential when none are configured.
const (
	DemoUsername = "admin"
	DemoPassword = "admin123"
)

// ErrInvalidCredentials is returned for a username/password mismatch.
var ErrInvalidCredentials = errors.New("Invalid username or password. Please try again.")

// Authenticator verifies an admin login.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (models.Admin, error)
}

// Logouter is implemented by authenticators holding a server-side session.
type Logouter interface {
	Logout(ctx context.Context) error
}

// FixedCredential accepts a single username/password pair. Demo use only.
type FixedCredential struct {
	Username string
	Password string
	now      func() time.Time
}

// NewFixedCredential returns a FixedCredential; empty values fall back to the
// demo pair.
func NewFixedCredential(username, password string) *FixedCredential {
	if username == "" {
		username = DemoUsername
	}
	if password == "" {
		password = DemoPassword
	}
	return &FixedCredential{Username: username, Password: password, now: time.Now}
}

// Authenticate implements Authenticator.
func (f *FixedCredential) Authenticate(_ context.Context, username, password string) (models.Admin, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(f.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(f.Password)) == 1
	if !userOK || !passOK {
		return models.Admin{}, ErrInvalidCredentials
	}
	return models.Admin{Username: username, LoggedInAt: f.now().UTC()}, nil
}

// BcryptCredential checks the password against a bcrypt hash.
type BcryptCredential struct {
	Username string
	Hash     []byte
}

// NewBcryptCredential returns a BcryptCredential for a stored hash.
func NewBcryptCredential(username, hash string) *BcryptCredential {
	return &BcryptCredential{Username: username, Hash: []byte(hash)}
}

// HashPassword returns the bcrypt hash to configure a BcryptCredential with.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Authenticate implements Authenticator.
func (b *BcryptCredential) Authenticate(_ context.Context, username, password string) (models.Admin, error) {
	if subtle.ConstantTimeCompare([]byte(username), []byte(b.Username)) != 1 {
		return models.Admin{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(b.Hash, []byte(password)); err != nil {
		return models.Admin{}, ErrInvalidCredentials
	}
	return models.Admin{Username: username, LoggedInAt: time.Now().UTC()}, nil
}

// Remote logs in through the REST API.
type Remote struct {
	API *client.Client
}

// Authenticate implements Authenticator. A 401 from the server is reported as
// ErrInvalidCredentials.
func (r Remote) Authenticate(ctx context.Context, username, password string) (models.Admin, error) {
	res, err := r.API.Login(ctx, username, password)
	if err != nil {
		var re *client.RemoteError
		if errors.As(err, &re) && re.Status == 401 {
			return models.Admin{}, ErrInvalidCredentials
		}
		return models.Admin{}, err
	}
	return res.Admin, nil
}

// Logout implements Logouter.
func (r Remote) Logout(ctx context.Context) error {
	return r.API.Logout(ctx)
}

// Gate applies login results to a state container.
type Gate struct {
	auth  Authenticator
	state *state.Container
	log   *zap.Logger
}

// NewGate creates a Gate. A nil logger discards output.
func NewGate(a Authenticator, c *state.Container, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{auth: a, state: c, log: log}
}

// Login authenticates and, on success, turns on the admin flags. A failed
// login leaves the state untouched.
func (g *Gate) Login(ctx context.Context, username, password string) (models.Admin, error) {
	admin, err := g.auth.Authenticate(ctx, username, password)
	if err != nil {
		g.log.Info("admin login failed", zap.String("username", username), zap.Error(err))
		return models.Admin{}, err
	}
	g.state.Dispatch(state.SetAdminAuthenticated{Authenticated: true})
	g.state.Dispatch(state.SetAdminMode{Enabled: true})
	g.log.Info("admin logged in", zap.String("username", admin.Username))
	return admin, nil
}

// Logout clears the admin flags. A failing remote logout is only logged.
func (g *Gate) Logout(ctx context.Context) {
	if lo, ok := g.auth.(Logouter); ok {
		if err := lo.Logout(ctx); err != nil {
			g.log.Warn("remote logout failed", zap.Error(err))
		}
	}
	g.state.Dispatch(state.AdminLogout{})
}
