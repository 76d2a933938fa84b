package backend

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemoryBilling is a local purchase provider. Packages map to the
// entitlements they unlock. Packages listed in Decline report an
// unsuccessful purchase, as a store would when the user backs out.
type MemoryBilling struct {
	mu          sync.Mutex
	packages    map[string][]string
	decline     map[string]bool
	initialized bool
	owned       map[string]bool
}

// NewMemoryBilling creates a provider selling the given packages
func NewMemoryBilling(packages map[string][]string) *MemoryBilling {
	p := make(map[string][]string, len(packages))
	for id, ents := range packages {
		p[id] = append([]string(nil), ents...)
	}
	return &MemoryBilling{
		packages: p,
		decline:  make(map[string]bool),
		owned:    make(map[string]bool),
	}
}

// Decline makes future purchases of id fail without an error
func (b *MemoryBilling) Decline(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.decline[id] = true
}

// Initialize implements Billing
func (b *MemoryBilling) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized = true
	return nil
}

// PurchasePackage implements Billing
func (b *MemoryBilling) PurchasePackage(ctx context.Context, id string) (PurchaseResult, error) {
	if err := ctx.Err(); err != nil {
		return PurchaseResult{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return PurchaseResult{}, ErrNotInitialized
	}
	ents, ok := b.packages[id]
	if !ok {
		return PurchaseResult{}, errors.Wrapf(ErrUnknownPackage, "%q", id)
	}
	if b.decline[id] {
		return PurchaseResult{Success: false}, nil
	}
	b.owned[id] = true
	return PurchaseResult{Success: true, Entitlements: append([]string(nil), ents...)}, nil
}

// RestorePurchases implements Billing. It returns the entitlements of every
// package bought so far, sorted and without duplicates.
func (b *MemoryBilling) RestorePurchases(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, ErrNotInitialized
	}
	seen := make(map[string]bool)
	var out []string
	for id := range b.owned {
		for _, e := range b.packages[id] {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// NewMemoryServices wires in-memory implementations of every capability.
// Billing is returned uninitialized.
func NewMemoryServices(packages map[string][]string) Services {
	return Services{
		Auth:     NewMemoryAuth(),
		Balances: NewMemoryBalances(),
		Blobs:    NewMemoryBlobs("mem://blobs"),
		Billing:  NewMemoryBilling(packages),
	}
}
