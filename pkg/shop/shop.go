package shop

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/OpenTraceLab/ecglearn/pkg/backend"
)

// MaxQuantity is the largest quantity accepted per order
const MaxQuantity = 10

// OrderForm is what the user submits at checkout
type OrderForm struct {
	ItemID   string `json:"item_id" validate:"required"`
	Name     string `json:"name" validate:"notblank,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Quantity int    `json:"quantity" validate:"min=1,max=10"`
	Address  string `json:"address,omitempty" validate:"omitempty,max=200"`
	Country  string `json:"country,omitempty" validate:"omitempty,iso3166_1_alpha2"`

	physical bool
}

// Order is a completed checkout
type Order struct {
	ID        string
	UserID    string
	ItemID    string
	Quantity  int
	Points    int  // points spent, zero for paid packages
	Billed    bool // paid through the billing provider
	Granted   []string
	CreatedAt time.Time
}

// Shop runs checkouts against a ledger and a billing provider
type Shop struct {
	catalog *Catalog
	ledger  *backend.Ledger
	billing backend.Billing
	logger  hclog.Logger
	now     func() time.Time

	mu     sync.Mutex
	orders []Order
}

// New creates a shop. billing may be nil when no item is paid.
func New(catalog *Catalog, ledger *backend.Ledger, billing backend.Billing, logger hclog.Logger) *Shop {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Shop{
		catalog: catalog,
		ledger:  ledger,
		billing: billing,
		logger:  logger,
		now:     time.Now,
	}
}

// Catalog returns the items for sale
func (s *Shop) Catalog() *Catalog {
	return s.catalog
}

// ValidateForm checks form against the item it orders. It returns a
// *ValidationError listing every bad field.
func (s *Shop) ValidateForm(form OrderForm) error {
	if it, ok := s.catalog.Find(form.ItemID); ok {
		form.physical = it.Kind == Physical
	}
	err := Validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return newValidationError(verrs)
	}
	return errors.Wrap(err, "validate order")
}

// Checkout validates the form and pays for the item, with points or through
// billing, granting its entitlement on success.
func (s *Shop) Checkout(ctx context.Context, userID string, form OrderForm) (Order, error) {
	item, ok := s.catalog.Find(form.ItemID)
	if !ok {
		return Order{}, errors.Wrapf(ErrUnknownItem, "%q", form.ItemID)
	}
	if err := s.ValidateForm(form); err != nil {
		return Order{}, err
	}
	if item.Kind == Digital && item.Entitlement != "" {
		acct, err := s.ledger.Account(ctx, userID)
		if err != nil {
			return Order{}, err
		}
		if acct.HasEntitlement(item.Entitlement) {
			return Order{}, errors.Wrapf(ErrAlreadyOwned, "%s", item.ID)
		}
	}

	order := Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		ItemID:    item.ID,
		Quantity:  form.Quantity,
		CreatedAt: s.now(),
	}
	var grants []string
	if item.Entitlement != "" {
		grants = []string{item.Entitlement}
	}

	if item.Paid() {
		if s.billing == nil {
			return Order{}, errors.Wrapf(backend.ErrNotInitialized, "no billing for %s", item.ID)
		}
		res, err := s.billing.PurchasePackage(ctx, item.Package)
		if err != nil {
			return Order{}, errors.Wrapf(err, "purchase %s", item.Package)
		}
		if !res.Success {
			s.logger.Info("purchase declined", "user", userID, "item", item.ID)
			return Order{}, errors.Wrapf(ErrPurchaseDeclined, "%s", item.ID)
		}
		grants = mergeGrants(grants, res.Entitlements)
		if err := s.ledger.Grant(ctx, userID, grants...); err != nil {
			return Order{}, err
		}
		order.Billed = true
	} else {
		order.Points = item.Price * form.Quantity
		if _, err := s.ledger.Spend(ctx, userID, order.Points, grants...); err != nil {
			return Order{}, err
		}
	}
	order.Granted = grants

	s.mu.Lock()
	s.orders = append(s.orders, order)
	s.mu.Unlock()

	s.logger.Info("order placed", "order", order.ID, "user", userID, "item", item.ID,
		"quantity", order.Quantity, "points", order.Points, "billed", order.Billed)
	return order, nil
}

// Restore re-grants entitlements from previous paid purchases
func (s *Shop) Restore(ctx context.Context, userID string) ([]string, error) {
	if s.billing == nil {
		return nil, backend.ErrNotInitialized
	}
	ents, err := s.billing.RestorePurchases(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "restore purchases")
	}
	if err := s.ledger.Grant(ctx, userID, ents...); err != nil {
		return nil, err
	}
	return ents, nil
}

// Orders returns the orders placed by userID, oldest first
func (s *Shop) Orders(userID string) []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

func mergeGrants(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, e := range append(append([]string(nil), a...), b...) {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
