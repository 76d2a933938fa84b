package backend

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestMemoryAuth(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAuth()
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	if err := a.Register("ada", "s3cret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := a.Register("", "x"); err == nil {
		t.Fatalf("expected error for empty user")
	}

	s, err := a.Authenticate(ctx, "ada", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if s.UserID != "ada" || s.Token == "" || !s.Expires.Equal(fixed.Add(DefaultSessionTTL)) {
		t.Fatalf("unexpected session %+v", s)
	}
	s2, _ := a.Authenticate(ctx, "ada", "s3cret")
	if s2.Token == s.Token {
		t.Fatalf("tokens should differ per session")
	}

	for _, tc := range []struct{ user, secret string }{
		{"ada", "wrong"},
		{"bob", "s3cret"},
	} {
		if _, err := a.Authenticate(ctx, tc.user, tc.secret); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Authenticate(%q, %q) err = %v, want ErrUnauthorized", tc.user, tc.secret, err)
		}
	}
}

func balanceStores(t *testing.T) map[string]BalanceStore {
	t.Helper()
	fb, err := NewFileBalances(filepath.Join(t.TempDir(), "nested", "balances.json"))
	if err != nil {
		t.Fatalf("NewFileBalances failed: %v", err)
	}
	return map[string]BalanceStore{
		"memory": NewMemoryBalances(),
		"file":   fb,
	}
}

func TestBalanceStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range balanceStores(t) {
		t.Run(name, func(t *testing.T) {
			acct, err := store.Get(ctx, "ada")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if acct.Points != 0 || acct.UserID != "ada" {
				t.Fatalf("fresh account = %+v", acct)
			}

			pts := 40
			if err := store.Update(ctx, "ada", Fields{Points: &pts, AddEntitlements: []string{"atlas"}}); err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if err := store.Update(ctx, "ada", Fields{AddEntitlements: []string{"atlas", "pro"}}); err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			acct, _ = store.Get(ctx, "ada")
			if acct.Points != 40 || len(acct.Entitlements) != 2 || !acct.HasEntitlement("pro") {
				t.Fatalf("account = %+v", acct)
			}

			acct.Entitlements[0] = "mutated"
			again, _ := store.Get(ctx, "ada")
			if !again.HasEntitlement("atlas") {
				t.Fatalf("store shares slices with callers")
			}
		})
	}
}

func TestFileBalancesPersist(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "b.json")
	first, _ := NewFileBalances(path)
	pts := 7
	if err := first.Update(ctx, "ada", Fields{Points: &pts}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	second, _ := NewFileBalances(path)
	acct, err := second.Get(ctx, "ada")
	if err != nil || acct.Points != 7 {
		t.Fatalf("reopened account = %+v, %v", acct, err)
	}
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(NewMemoryBalances(), nil)

	if _, err := l.Credit(ctx, "ada", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("Credit(0) err = %v", err)
	}
	if _, err := l.Spend(ctx, "ada", -1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("Spend(-1) err = %v", err)
	}

	if bal, err := l.Credit(ctx, "ada", 30); err != nil || bal != 30 {
		t.Fatalf("Credit = %d, %v", bal, err)
	}
	if bal, err := l.Spend(ctx, "ada", 50); !errors.Is(err, ErrInsufficientFunds) || bal != 30 {
		t.Fatalf("overspend = %d, %v", bal, err)
	}
	if bal, err := l.Spend(ctx, "ada", 20, "atlas"); err != nil || bal != 10 {
		t.Fatalf("Spend = %d, %v", bal, err)
	}
	if bal, _ := l.ReadBalance(ctx, "ada"); bal != 10 {
		t.Fatalf("ReadBalance = %d", bal)
	}
	if err := l.Grant(ctx, "ada", "pro"); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	acct, _ := l.store.Get(ctx, "ada")
	if !acct.HasEntitlement("atlas") || !acct.HasEntitlement("pro") {
		t.Fatalf("entitlements = %v", acct.Entitlements)
	}
}

func TestLedgerConcurrentCredits(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(NewMemoryBalances(), nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Credit(ctx, "ada", 2)
		}()
	}
	wg.Wait()
	if bal, _ := l.ReadBalance(ctx, "ada"); bal != 100 {
		t.Fatalf("balance = %d, want 100", bal)
	}
}

func TestCleanBlobPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"a.png", "a.png", true},
		{"/users/ada/a.png", "users/ada/a.png", true},
		{"users//ada/./a.png", "users/ada/a.png", true},
		{"../etc/passwd", "etc/passwd", true},
		{"", "", false},
		{"/", "", false},
	}
	for _, tt := range tests {
		got, err := cleanBlobPath(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("cleanBlobPath(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func blobStores(t *testing.T) map[string]BlobStore {
	t.Helper()
	dir, err := NewDirBlobs(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirBlobs failed: %v", err)
	}
	return map[string]BlobStore{
		"memory": NewMemoryBlobs("mem://test/"),
		"dir":    dir,
	}
}

func TestBlobStores(t *testing.T) {
	ctx := context.Background()
	for name, store := range blobStores(t) {
		t.Run(name, func(t *testing.T) {
			url, err := store.Upload(ctx, strings.NewReader("png!"), "ada/strip.png")
			if err != nil {
				t.Fatalf("Upload failed: %v", err)
			}
			if !strings.HasSuffix(url, "ada/strip.png") {
				t.Fatalf("url = %q", url)
			}
			if _, err := store.Upload(ctx, strings.NewReader("x"), "bob/other.png"); err != nil {
				t.Fatalf("Upload failed: %v", err)
			}

			blobs, err := store.List(ctx, "ada/")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(blobs) != 1 || blobs[0].Name != "ada/strip.png" || blobs[0].Size != 4 {
				t.Fatalf("blobs = %+v", blobs)
			}

			if err := store.Delete(ctx, "ada/strip.png"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := store.Delete(ctx, "ada/strip.png"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("second Delete err = %v", err)
			}
			if _, err := store.Upload(ctx, strings.NewReader("x"), ""); !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("empty path err = %v", err)
			}
		})
	}
}

func TestMemoryBilling(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBilling(map[string][]string{
		"atlas":  {"atlas"},
		"bundle": {"atlas", "pro"},
		"gift":   {"gift"},
	})
	if _, err := b.PurchasePackage(ctx, "atlas"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("purchase before init err = %v", err)
	}
	if err := b.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, err := b.PurchasePackage(ctx, "nope"); !errors.Is(err, ErrUnknownPackage) {
		t.Fatalf("unknown package err = %v", err)
	}

	b.Decline("gift")
	res, err := b.PurchasePackage(ctx, "gift")
	if err != nil || res.Success {
		t.Fatalf("declined purchase = %+v, %v", res, err)
	}

	for _, id := range []string{"atlas", "bundle"} {
		res, err := b.PurchasePackage(ctx, id)
		if err != nil || !res.Success {
			t.Fatalf("PurchasePackage(%s) = %+v, %v", id, res, err)
		}
	}
	restored, err := b.RestorePurchases(ctx)
	if err != nil {
		t.Fatalf("RestorePurchases failed: %v", err)
	}
	if strings.Join(restored, ",") != "atlas,pro" {
		t.Fatalf("restored = %v", restored)
	}
}

func TestNewMemoryServices(t *testing.T) {
	s := NewMemoryServices(nil)
	if s.Auth == nil || s.Balances == nil || s.Blobs == nil || s.Billing == nil {
		t.Fatalf("incomplete services: %+v", s)
	}
}
