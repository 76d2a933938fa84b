// Package backend defines the capabilities the application needs from its
// hosted services (auth, balances, blob storage, billing) as interfaces, with
// local implementations. Vendor SDK wrappers satisfy the same interfaces.
package backend

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("backend: not found")
	ErrUnauthorized      = errors.New("backend: invalid credentials")
	ErrInsufficientFunds = errors.New("backend: insufficient points")
	ErrInvalidAmount     = errors.New("backend: amount must be positive")
	ErrInvalidPath       = errors.New("backend: invalid blob path")
	ErrNotInitialized    = errors.New("backend: billing not initialized")
	ErrUnknownPackage    = errors.New("backend: unknown package")
)

// Session is an authenticated user session
type Session struct {
	UserID  string    `json:"user_id"`
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Account is the balance document stored per user
type Account struct {
	UserID       string    `json:"user_id"`
	Points       int       `json:"points"`
	Entitlements []string  `json:"entitlements,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasEntitlement reports whether the account owns the named entitlement
func (a Account) HasEntitlement(name string) bool {
	for _, e := range a.Entitlements {
		if e == name {
			return true
		}
	}
	return false
}

// Fields is a partial update of an Account. Nil/empty fields are left alone.
type Fields struct {
	Points          *int
	AddEntitlements []string
}

// Apply merges f into a
func (f Fields) Apply(a *Account) {
	if f.Points != nil {
		a.Points = *f.Points
	}
	for _, e := range f.AddEntitlements {
		if !a.HasEntitlement(e) {
			a.Entitlements = append(a.Entitlements, e)
		}
	}
}

// Blob describes a stored object
type Blob struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// PurchaseResult is what the billing provider reports for a purchase
type PurchaseResult struct {
	Success      bool
	Entitlements []string
}

// Authenticator verifies user credentials
type Authenticator interface {
	Authenticate(ctx context.Context, userID, secret string) (Session, error)
}

// BalanceStore is the per-user balance document store. Get returns a zero
// Account (not an error) for users that were never written.
type BalanceStore interface {
	Get(ctx context.Context, userID string) (Account, error)
	Update(ctx context.Context, userID string, f Fields) error
}

// BlobStore stores uploaded media
type BlobStore interface {
	Upload(ctx context.Context, r io.Reader, path string) (string, error)
	List(ctx context.Context, prefix string) ([]Blob, error)
	Delete(ctx context.Context, path string) error
}

// Billing is the in-app purchase provider
type Billing interface {
	Initialize(ctx context.Context) error
	PurchasePackage(ctx context.Context, id string) (PurchaseResult, error)
	RestorePurchases(ctx context.Context) ([]string, error)
}

// Services bundles the capability handles handed to the composition root
type Services struct {
	Auth     Authenticator
	Balances BalanceStore
	Blobs    BlobStore
	Billing  Billing
}
