package backend

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemoryBalances is a BalanceStore held in a map
type MemoryBalances struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewMemoryBalances creates an empty store
func NewMemoryBalances() *MemoryBalances {
	return &MemoryBalances{accounts: make(map[string]*Account)}
}

// Get implements BalanceStore
func (m *MemoryBalances) Get(ctx context.Context, userID string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acct, ok := m.accounts[userID]; ok {
		return cloneAccount(*acct), nil
	}
	return Account{UserID: userID}, nil
}

// Update implements BalanceStore
func (m *MemoryBalances) Update(ctx context.Context, userID string, f Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[userID]
	if !ok {
		acct = &Account{UserID: userID}
		m.accounts[userID] = acct
	}
	f.Apply(acct)
	acct.UpdatedAt = time.Now()
	return nil
}

func cloneAccount(a Account) Account {
	if a.Entitlements != nil {
		ents := make([]string, len(a.Entitlements))
		copy(ents, a.Entitlements)
		a.Entitlements = ents
	}
	return a
}

// FileBalances persists accounts as one JSON document on disk. Writes go
// through a temp file and rename so a crash never leaves a torn file.
type FileBalances struct {
	mu   sync.Mutex
	path string
}

// NewFileBalances uses the JSON file at path, creating its directory
func NewFileBalances(path string) (*FileBalances, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create balance dir")
	}
	return &FileBalances{path: path}, nil
}

// Path returns the backing file
func (f *FileBalances) Path() string {
	return f.path
}

func (f *FileBalances) load() (map[string]Account, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]Account), nil
		}
		return nil, errors.Wrap(err, "read balances")
	}
	accounts := make(map[string]Account)
	if len(data) == 0 {
		return accounts, nil
	}
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, errors.Wrapf(err, "decode %s", f.path)
	}
	return accounts, nil
}

func (f *FileBalances) save(accounts map[string]Account) error {
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode balances")
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write balances")
	}
	return errors.Wrap(os.Rename(tmp, f.path), "replace balances")
}

// Get implements BalanceStore
func (f *FileBalances) Get(ctx context.Context, userID string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts, err := f.load()
	if err != nil {
		return Account{}, err
	}
	if acct, ok := accounts[userID]; ok {
		return acct, nil
	}
	return Account{UserID: userID}, nil
}

// Update implements BalanceStore
func (f *FileBalances) Update(ctx context.Context, userID string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts, err := f.load()
	if err != nil {
		return err
	}
	acct, ok := accounts[userID]
	if !ok {
		acct = Account{UserID: userID}
	}
	fields.Apply(&acct)
	acct.UpdatedAt = time.Now()
	accounts[userID] = acct
	return f.save(accounts)
}
