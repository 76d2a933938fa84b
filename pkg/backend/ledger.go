package backend

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Ledger moves points in and out of accounts on top of a BalanceStore.
// Read-modify-write cycles are serialized within the process.
type Ledger struct {
	mu     sync.Mutex
	store  BalanceStore
	logger hclog.Logger
}

// NewLedger wraps store. A nil logger discards output.
func NewLedger(store BalanceStore, logger hclog.Logger) *Ledger {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Ledger{store: store, logger: logger}
}

// ReadBalance returns the user's current points
func (l *Ledger) ReadBalance(ctx context.Context, userID string) (int, error) {
	acct, err := l.store.Get(ctx, userID)
	if err != nil {
		return 0, errors.Wrapf(err, "read balance of %s", userID)
	}
	return acct.Points, nil
}

// Credit adds points, e.g. for a correctly answered quiz
func (l *Ledger) Credit(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := l.store.Get(ctx, userID)
	if err != nil {
		return 0, errors.Wrapf(err, "credit %s", userID)
	}
	total := acct.Points + amount
	if err := l.store.Update(ctx, userID, Fields{Points: &total}); err != nil {
		return 0, errors.Wrapf(err, "credit %s", userID)
	}
	l.logger.Debug("credited points", "user", userID, "amount", amount, "balance", total)
	return total, nil
}

// Spend removes points and optionally grants entitlements in the same update.
// It fails with ErrInsufficientFunds without touching the account.
func (l *Ledger) Spend(ctx context.Context, userID string, amount int, grants ...string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, err := l.store.Get(ctx, userID)
	if err != nil {
		return 0, errors.Wrapf(err, "spend %s", userID)
	}
	if acct.Points < amount {
		return acct.Points, errors.Wrapf(ErrInsufficientFunds, "%s has %d, needs %d", userID, acct.Points, amount)
	}
	total := acct.Points - amount
	if err := l.store.Update(ctx, userID, Fields{Points: &total, AddEntitlements: grants}); err != nil {
		return acct.Points, errors.Wrapf(err, "spend %s", userID)
	}
	l.logger.Debug("spent points", "user", userID, "amount", amount, "balance", total)
	return total, nil
}

// Grant adds entitlements without moving points (used after paid purchases)
func (l *Ledger) Grant(ctx context.Context, userID string, entitlements ...string) error {
	if len(entitlements) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Wrapf(l.store.Update(ctx, userID, Fields{AddEntitlements: entitlements}), "grant %s", userID)
}

// Account returns the full balance document for userID
func (l *Ledger) Account(ctx context.Context, userID string) (Account, error) {
	acct, err := l.store.Get(ctx, userID)
	return acct, errors.Wrapf(err, "read account of %s", userID)
}
