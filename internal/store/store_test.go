package store

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/velora-shop/storefront/internal/api"
	"github.com/velora-shop/storefront/internal/store/persist"
	"github.com/velora-shop/storefront/pkg/logger"
)

// mockBackend implements Backend with per-resource counters and stubbed
// responses, in the spirit of the hand-rolled mocks used elsewhere in the
// tree.
type mockBackend struct {
	mu sync.Mutex

	loginResp *api.LoginResponse
	loginErr  error

	profile      *api.Profile
	profileErr   error
	profileCalls int
	// profileGate, when set, blocks the profile call until closed, and
	// profileStarted signals that the call is in flight.
	profileGate    chan struct{}
	profileStarted chan struct{}

	products      []api.Product
	productsErr   error
	productsCalls int
	productsGate  chan struct{}

	searchResults []api.Product
	searchErr     error
	searchCalls   int
	lastFilters   api.Filters

	categories       []api.Category
	categoriesErr    error
	subcategories    []api.Subcategory
	subcategoriesErr error
	subsubcategories []api.Subsubcategory
	brands           []api.Brand
	brandsErr        error
}

func (m *mockBackend) Login(ctx context.Context, creds api.Credentials) (*api.LoginResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginResp, nil
}

func (m *mockBackend) Profile(ctx context.Context, token string) (*api.Profile, error) {
	m.mu.Lock()
	m.profileCalls++
	started := m.profileStarted
	gate := m.profileGate
	m.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		<-gate
	}
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	profile := *m.profile
	return &profile, nil
}

func (m *mockBackend) Categories(ctx context.Context) ([]api.Category, error) {
	if m.categoriesErr != nil {
		return nil, m.categoriesErr
	}
	return m.categories, nil
}

func (m *mockBackend) Subcategories(ctx context.Context) ([]api.Subcategory, error) {
	if m.subcategoriesErr != nil {
		return nil, m.subcategoriesErr
	}
	return m.subcategories, nil
}

func (m *mockBackend) Subsubcategories(ctx context.Context) ([]api.Subsubcategory, error) {
	return m.subsubcategories, nil
}

func (m *mockBackend) Brands(ctx context.Context) ([]api.Brand, error) {
	if m.brandsErr != nil {
		return nil, m.brandsErr
	}
	return m.brands, nil
}

func (m *mockBackend) Products(ctx context.Context, query api.ProductQuery) ([]api.Product, error) {
	m.mu.Lock()
	m.productsCalls++
	gate := m.productsGate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if m.productsErr != nil {
		return nil, m.productsErr
	}
	list := m.products
	if query.Limit > 0 && query.Limit < len(list) {
		list = list[:query.Limit]
	}
	return append([]api.Product(nil), list...), nil
}

func (m *mockBackend) SearchProducts(ctx context.Context, filters api.Filters) ([]api.Product, error) {
	m.mu.Lock()
	m.searchCalls++
	m.lastFilters = filters
	m.mu.Unlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResults, nil
}

func discardLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestStore(t *testing.T, backend *mockBackend) (*Store, *persist.Memory) {
	t.Helper()

	saver := persist.NewMemory()
	s, err := New(Params{
		Backend: backend,
		Saver:   saver,
		Logger:  discardLogger(),
	})
	require.NoError(t, err)
	return s, saver
}

func price(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestNewValidatesParams(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	_, err := New(Params{Saver: persist.NewMemory(), Logger: logg})
	require.Error(t, err)

	_, err = New(Params{Backend: &mockBackend{}, Logger: logg})
	require.Error(t, err)

	_, err = New(Params{Backend: &mockBackend{}, Saver: persist.NewMemory()})
	require.Error(t, err)
}
