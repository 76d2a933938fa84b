package backend

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL is how long MemoryAuth sessions stay valid
const DefaultSessionTTL = 24 * time.Hour

// MemoryAuth keeps bcrypt hashes of user secrets in memory
type MemoryAuth struct {
	mu     sync.RWMutex
	hashes map[string][]byte
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryAuth creates an empty authenticator
func NewMemoryAuth() *MemoryAuth {
	return &MemoryAuth{
		hashes: make(map[string][]byte),
		ttl:    DefaultSessionTTL,
		now:    time.Now,
	}
}

// Register stores (or replaces) the secret for userID
func (a *MemoryAuth) Register(userID, secret string) error {
	if userID == "" || secret == "" {
		return errors.Wrap(ErrUnauthorized, "empty user or secret")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		return errors.Wrap(err, "hash secret")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hashes[userID] = hash
	return nil
}

// Authenticate implements Authenticator
func (a *MemoryAuth) Authenticate(ctx context.Context, userID, secret string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	a.mu.RLock()
	hash, ok := a.hashes[userID]
	a.mu.RUnlock()
	if !ok {
		return Session{}, errors.Wrapf(ErrUnauthorized, "user %q", userID)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return Session{}, errors.Wrapf(ErrUnauthorized, "user %q", userID)
	}
	return Session{
		UserID:  userID,
		Token:   uuid.NewString(),
		Expires: a.now().Add(a.ttl),
	}, nil
}
