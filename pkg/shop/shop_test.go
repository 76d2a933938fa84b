package shop

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/OpenTraceLab/ecglearn/pkg/backend"
)

func newTestShop(t *testing.T, points int) (*Shop, *backend.Ledger, *backend.MemoryBilling) {
	t.Helper()
	cat := DefaultCatalog()
	ledger := backend.NewLedger(backend.NewMemoryBalances(), nil)
	if points > 0 {
		if _, err := ledger.Credit(context.Background(), "ada", points); err != nil {
			t.Fatalf("Credit failed: %v", err)
		}
	}
	billing := backend.NewMemoryBilling(cat.Packages())
	if err := billing.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return New(cat, ledger, billing, nil), ledger, billing
}

func digitalForm(item string) OrderForm {
	return OrderForm{ItemID: item, Name: "Ada", Email: "ada@example.com", Quantity: 1}
}

func fieldNames(err error) []string {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	var names []string
	for _, f := range ve.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestValidateForm(t *testing.T) {
	s, _, _ := newTestShop(t, 0)
	tests := []struct {
		name   string
		form   OrderForm
		fields string
	}{
		{"valid digital", digitalForm("rhythm-atlas"), ""},
		{"blank name", OrderForm{ItemID: "rhythm-atlas", Name: "  ", Email: "a@b.co", Quantity: 1}, "name"},
		{"bad email", OrderForm{ItemID: "rhythm-atlas", Name: "Ada", Email: "nope", Quantity: 1}, "email"},
		{"zero quantity", OrderForm{ItemID: "rhythm-atlas", Name: "Ada", Email: "a@b.co"}, "quantity"},
		{"too many", OrderForm{ItemID: "calipers", Name: "Ada", Email: "a@b.co", Quantity: 11, Address: "1 Main St", Country: "GB"}, "quantity"},
		{"physical without shipping", OrderForm{ItemID: "calipers", Name: "Ada", Email: "a@b.co", Quantity: 1}, "address,country"},
		{"physical bad country", OrderForm{ItemID: "calipers", Name: "Ada", Email: "a@b.co", Quantity: 1, Address: "1 Main St", Country: "XX"}, "country"},
		{"physical ok", OrderForm{ItemID: "calipers", Name: "Ada", Email: "a@b.co", Quantity: 2, Address: "1 Main St", Country: "GB"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateForm(tt.form)
			if tt.fields == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if got := strings.Join(fieldNames(err), ","); got != tt.fields {
				t.Fatalf("invalid fields = %q, want %q (err %v)", got, tt.fields, err)
			}
		})
	}
}

func TestValidationErrorMessages(t *testing.T) {
	s, _, _ := newTestShop(t, 0)
	err := s.ValidateForm(OrderForm{ItemID: "calipers", Name: "Ada", Email: "a@b.co", Quantity: 1})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v", err)
	}
	if ve.Fields[0].Error != "address is required for physical items" {
		t.Fatalf("message = %q", ve.Fields[0].Error)
	}
	if !strings.HasPrefix(err.Error(), "invalid order: address:") {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestCheckoutWithPoints(t *testing.T) {
	ctx := context.Background()
	s, ledger, _ := newTestShop(t, 100)

	order, err := s.Checkout(ctx, "ada", digitalForm("rhythm-atlas"))
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if order.ID == "" || order.Points != 50 || order.Billed {
		t.Fatalf("order = %+v", order)
	}
	if bal, _ := ledger.ReadBalance(ctx, "ada"); bal != 50 {
		t.Fatalf("balance = %d, want 50", bal)
	}
	acct, _ := ledger.Account(ctx, "ada")
	if !acct.HasEntitlement("atlas") {
		t.Fatalf("entitlement not granted: %+v", acct)
	}

	if _, err := s.Checkout(ctx, "ada", digitalForm("rhythm-atlas")); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("second purchase err = %v", err)
	}
	if _, err := s.Checkout(ctx, "ada", digitalForm("stemi-pack")); !errors.Is(err, backend.ErrInsufficientFunds) {
		t.Fatalf("overspend err = %v", err)
	}
	if got := len(s.Orders("ada")); got != 1 {
		t.Fatalf("orders = %d, want 1", got)
	}
}

func TestCheckoutPhysicalQuantity(t *testing.T) {
	ctx := context.Background()
	s, ledger, _ := newTestShop(t, 100)
	form := OrderForm{ItemID: "pocket-card", Name: "Ada", Email: "a@b.co", Quantity: 3, Address: "1 Main St", Country: "KE"}
	order, err := s.Checkout(ctx, "ada", form)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if order.Points != 90 || len(order.Granted) != 0 {
		t.Fatalf("order = %+v", order)
	}
	if bal, _ := ledger.ReadBalance(ctx, "ada"); bal != 10 {
		t.Fatalf("balance = %d, want 10", bal)
	}
}

func TestCheckoutBilled(t *testing.T) {
	ctx := context.Background()
	s, ledger, billing := newTestShop(t, 0)

	order, err := s.Checkout(ctx, "ada", digitalForm("pro-bundle"))
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if !order.Billed || order.Points != 0 {
		t.Fatalf("order = %+v", order)
	}
	acct, _ := ledger.Account(ctx, "ada")
	if !acct.HasEntitlement("pro") {
		t.Fatalf("pro not granted: %+v", acct)
	}

	restored, err := s.Restore(ctx, "bob")
	if err != nil || len(restored) != 1 || restored[0] != "pro" {
		t.Fatalf("Restore = %v, %v", restored, err)
	}

	billing.Decline("pro_bundle")
	if _, err := s.Checkout(ctx, "carol", digitalForm("pro-bundle")); !errors.Is(err, ErrPurchaseDeclined) {
		t.Fatalf("declined err = %v", err)
	}
}

func TestCheckoutUnknownItem(t *testing.T) {
	s, _, _ := newTestShop(t, 10)
	if _, err := s.Checkout(context.Background(), "ada", digitalForm("nope")); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("err = %v", err)
	}
}

func TestReadCatalog(t *testing.T) {
	src := `
items:
  - id: atlas
    title: Atlas
    price: 10
    entitlement: atlas
  - id: mug
    title: Mug
    kind: physical
    price: 40
  - id: pro
    title: Pro
    package: pro_pkg
    entitlement: pro
`
	c, err := ReadCatalog(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadCatalog failed: %v", err)
	}
	if got := len(c.Items()); got != 3 {
		t.Fatalf("items = %d", got)
	}
	if it, _ := c.Find("atlas"); it.Kind != Digital {
		t.Fatalf("default kind = %q", it.Kind)
	}
	if pk := c.Packages(); len(pk) != 1 || pk["pro_pkg"][0] != "pro" {
		t.Fatalf("packages = %v", pk)
	}

	for _, bad := range []string{
		"items:\n  - id: a\n    price: 0\n",
		"items:\n  - id: a\n    price: 1\n  - id: a\n    price: 2\n",
		"items:\n  - id: a\n    kind: boxed\n    price: 1\n",
		"items:\n  - id: a\n    cost: 1\n",
	} {
		if _, err := ReadCatalog(strings.NewReader(bad)); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
