// Package store is the single source of truth for the storefront session:
// who is logged in, what is in the cart, and what the user last searched
// for. A subset of the state survives restarts through a persist.Saver.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/velora-shop/storefront/internal/api"
	"github.com/velora-shop/storefront/internal/store/persist"
	"github.com/velora-shop/storefront/pkg/logger"
	"github.com/velora-shop/storefront/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Backend is the slice of the API client the store drives.
type Backend interface {
	Login(ctx context.Context, creds api.Credentials) (*api.LoginResponse, error)
	Profile(ctx context.Context, token string) (*api.Profile, error)
	Categories(ctx context.Context) ([]api.Category, error)
	Subcategories(ctx context.Context) ([]api.Subcategory, error)
	Subsubcategories(ctx context.Context) ([]api.Subsubcategory, error)
	Brands(ctx context.Context) ([]api.Brand, error)
	Products(ctx context.Context, query api.ProductQuery) ([]api.Product, error)
	SearchProducts(ctx context.Context, filters api.Filters) ([]api.Product, error)
}

// CartItem is one cart line. A line is identified by (ProductID, VariantID);
// an empty VariantID is the bare product and is a distinct line from any
// specific variant of the same product.
type CartItem struct {
	ProductID    string
	Title        string
	UnitPrice    decimal.Decimal
	Quantity     int
	VariantID    string
	VariantTitle string
	Images       []string
}

// Session is the authenticated identity. User and Token move together:
// both set by a successful login, both cleared by logout.
type Session struct {
	User    *api.User
	Token   string
	Profile *api.Profile
}

// Slice names accepted by Stale.
const (
	SliceProfile          = "profile"
	SliceCategories       = "categories"
	SliceSubcategories    = "subcategories"
	SliceSubsubcategories = "subsubcategories"
	SliceBrands           = "brands"
	SliceProducts         = "products"
)

// Params carries the store's collaborators.
type Params struct {
	Backend Backend
	Saver   persist.Saver
	Logger  *logger.Logger
	Metrics *metrics.ClientMetrics
}

// Store is safe for concurrent use. Every action mutates state under one
// lock, so readers always observe a complete snapshot, never a torn write.
type Store struct {
	backend Backend
	saver   persist.Saver
	logg    *logger.Logger
	metrics *metrics.ClientMetrics

	mu             sync.Mutex
	session        Session
	profileLoading bool
	profileFlight  singleflight.Group

	items    []CartItem
	filters  api.Filters
	cartOpen bool

	categories       []api.Category
	subcategories    []api.Subcategory
	subsubcategories []api.Subsubcategory
	brands           []api.Brand

	// stale marks slices whose last refresh failed; the previous data is
	// retained and the UI decides whether to surface it.
	stale map[string]bool

	products      []api.Product
	issuedEpoch   uint64
	appliedEpoch  uint64
	productsCache map[string][]api.Product
}

// New builds a store and hydrates the persisted subset if a snapshot
// exists. A corrupt or unreadable snapshot is logged and discarded; the
// store starts fresh rather than failing construction.
func New(params Params) (*Store, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if params.Saver == nil {
		return nil, fmt.Errorf("snapshot saver required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &Store{
		backend:       params.Backend,
		saver:         params.Saver,
		logg:          params.Logger,
		metrics:       params.Metrics,
		stale:         map[string]bool{},
		productsCache: map[string][]api.Product{},
	}
	s.hydrate(context.Background())
	return s, nil
}

// Logout resets the whole store to its initial state in one step: session,
// cart, filters, reference caches, the products cache, and UI flags. No
// network call is involved; the persisted snapshot is overwritten with the
// empty state.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.session = Session{}
	s.items = nil
	s.filters = api.Filters{}
	s.cartOpen = false
	s.categories = nil
	s.subcategories = nil
	s.subsubcategories = nil
	s.brands = nil
	s.stale = map[string]bool{}
	s.products = nil
	s.productsCache = map[string][]api.Product{}
	s.mu.Unlock()

	s.save(ctx)
	s.logg.Info(ctx, "session cleared")
}

// Stale reports whether the named slice failed its last refresh. The data
// returned by the matching accessor is then last-known-good.
func (s *Store) Stale(slice string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale[slice]
}

// Session returns a copy of the current session.
func (s *Store) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.session)
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

// OpenCart shows the cart sidebar. The flag is UI-transient and never
// persisted.
func (s *Store) OpenCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartOpen = true
}

func (s *Store) CloseCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartOpen = false
}

func (s *Store) ToggleCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartOpen = !s.cartOpen
}

func (s *Store) CartOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartOpen
}

func (s *Store) markStale(slice string) {
	s.mu.Lock()
	s.stale[slice] = true
	s.mu.Unlock()
}

func copySession(session Session) Session {
	out := Session{Token: session.Token}
	if session.User != nil {
		user := *session.User
		out.User = &user
	}
	if session.Profile != nil {
		profile := *session.Profile
		out.Profile = &profile
	}
	return out
}

func cloneProducts(products []api.Product) []api.Product {
	if products == nil {
		return nil
	}
	return append([]api.Product(nil), products...)
}
