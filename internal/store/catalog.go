package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/velora-shop/storefront/internal/api"
	pkgerrors "github.com/velora-shop/storefront/pkg/errors"
	"go.uber.org/multierr"
)

const productsCacheName = "products"

// LoadProducts returns the product list for the query and makes it the live
// list. Responses are memoized by the resolved (token, sort, order, limit)
// tuple: a second call with the same tuple is served from the cache without
// a network call, and different tuples never share entries.
func (s *Store) LoadProducts(ctx context.Context, query api.ProductQuery) ([]api.Product, error) {
	return s.fetchProducts(ctx, query, true)
}

// FetchProducts is LoadProducts without the live-list replacement: it goes
// through the same keyed cache but leaves the current product view alone.
func (s *Store) FetchProducts(ctx context.Context, query api.ProductQuery) ([]api.Product, error) {
	return s.fetchProducts(ctx, query, false)
}

func (s *Store) fetchProducts(ctx context.Context, query api.ProductQuery, replaceLive bool) ([]api.Product, error) {
	query = query.Normalized()
	key := cacheKey(query)

	s.mu.Lock()
	if cached, ok := s.productsCache[key]; ok {
		list := cloneProducts(cached)
		if replaceLive {
			epoch := s.nextEpochLocked()
			s.applyProductsLocked(list, epoch)
		}
		s.mu.Unlock()
		s.metrics.IncCacheHit(productsCacheName)
		return list, nil
	}
	var epoch uint64
	if replaceLive {
		epoch = s.nextEpochLocked()
	}
	s.mu.Unlock()
	s.metrics.IncCacheMiss(productsCacheName)

	list, err := s.backend.Products(ctx, query)
	if err != nil {
		s.markStale(SliceProducts)
		s.logg.Warn(ctx, "product fetch failed, keeping previous list")
		return nil, err
	}

	s.mu.Lock()
	s.productsCache[key] = cloneProducts(list)
	delete(s.stale, SliceProducts)
	if replaceLive {
		s.applyProductsLocked(cloneProducts(list), epoch)
	}
	s.mu.Unlock()
	return list, nil
}

// ClearProductsCache drops every memoized product response. Product-mutating
// flows call this so the next fetch observes fresh data.
func (s *Store) ClearProductsCache() {
	s.mu.Lock()
	s.productsCache = map[string][]api.Product{}
	s.mu.Unlock()
}

// InvalidateProductsCache drops the single entry for the given query.
func (s *Store) InvalidateProductsCache(query api.ProductQuery) {
	key := cacheKey(query.Normalized())
	s.mu.Lock()
	delete(s.productsCache, key)
	s.mu.Unlock()
}

// ApplySearchFilters merges the patch over the current filters, persists
// the merged state, and runs the search. The filters stick even when the
// search itself fails, so a reload repeats the user's last search context.
func (s *Store) ApplySearchFilters(ctx context.Context, patch FilterPatch) error {
	s.mu.Lock()
	s.filters = patch.apply(s.filters)
	filters := s.filters
	epoch := s.nextEpochLocked()
	s.mu.Unlock()
	s.save(ctx)

	list, err := s.backend.SearchProducts(ctx, filters)
	if err != nil {
		s.markStale(SliceProducts)
		s.logg.Warn(ctx, "filtered search failed, filters retained")
		return err
	}

	s.mu.Lock()
	s.applyProductsLocked(list, epoch)
	delete(s.stale, SliceProducts)
	s.mu.Unlock()
	return nil
}

// Filters returns the current search filter state.
func (s *Store) Filters() api.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Products returns the live product list.
func (s *Store) Products() []api.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProducts(s.products)
}

// RefreshCategories refetches the category list. On failure the previous
// list is retained and the slice is marked stale.
func (s *Store) RefreshCategories(ctx context.Context) error {
	list, err := s.backend.Categories(ctx)
	if err != nil {
		s.markStale(SliceCategories)
		s.logg.Warn(ctx, "category refresh failed, keeping previous list")
		return err
	}
	s.mu.Lock()
	s.categories = list
	delete(s.stale, SliceCategories)
	s.mu.Unlock()
	return nil
}

func (s *Store) RefreshSubcategories(ctx context.Context) error {
	list, err := s.backend.Subcategories(ctx)
	if err != nil {
		s.markStale(SliceSubcategories)
		s.logg.Warn(ctx, "subcategory refresh failed, keeping previous list")
		return err
	}
	s.mu.Lock()
	s.subcategories = list
	delete(s.stale, SliceSubcategories)
	s.mu.Unlock()
	return nil
}

func (s *Store) RefreshSubsubcategories(ctx context.Context) error {
	list, err := s.backend.Subsubcategories(ctx)
	if err != nil {
		s.markStale(SliceSubsubcategories)
		s.logg.Warn(ctx, "subsubcategory refresh failed, keeping previous list")
		return err
	}
	s.mu.Lock()
	s.subsubcategories = list
	delete(s.stale, SliceSubsubcategories)
	s.mu.Unlock()
	return nil
}

func (s *Store) RefreshBrands(ctx context.Context) error {
	list, err := s.backend.Brands(ctx)
	if err != nil {
		s.markStale(SliceBrands)
		s.logg.Warn(ctx, "brand refresh failed, keeping previous list")
		return err
	}
	s.mu.Lock()
	s.brands = list
	delete(s.stale, SliceBrands)
	s.mu.Unlock()
	return nil
}

// RefreshReferenceData refreshes all four reference slices and reports
// every failure; successful slices are committed regardless of the others.
func (s *Store) RefreshReferenceData(ctx context.Context) error {
	var err error
	err = multierr.Append(err, s.RefreshCategories(ctx))
	err = multierr.Append(err, s.RefreshSubcategories(ctx))
	err = multierr.Append(err, s.RefreshSubsubcategories(ctx))
	err = multierr.Append(err, s.RefreshBrands(ctx))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh reference data")
	}
	return nil
}

func (s *Store) Categories() []api.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Category(nil), s.categories...)
}

func (s *Store) Subcategories() []api.Subcategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Subcategory(nil), s.subcategories...)
}

func (s *Store) Subsubcategories() []api.Subsubcategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Subsubcategory(nil), s.subsubcategories...)
}

func (s *Store) Brands() []api.Brand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Brand(nil), s.brands...)
}

// FilterPatch overrides filter fields selectively; nil fields keep the
// current value.
type FilterPatch struct {
	Query             *string
	CategoryIDs       *[]string
	SubcategoryIDs    *[]string
	SubsubcategoryIDs *[]string
	PriceMin          *decimal.Decimal
	PriceMax          *decimal.Decimal
	BrandID           *string
}

func (p FilterPatch) apply(current api.Filters) api.Filters {
	if p.Query != nil {
		current.Query = *p.Query
	}
	if p.CategoryIDs != nil {
		current.CategoryIDs = append([]string(nil), (*p.CategoryIDs)...)
	}
	if p.SubcategoryIDs != nil {
		current.SubcategoryIDs = append([]string(nil), (*p.SubcategoryIDs)...)
	}
	if p.SubsubcategoryIDs != nil {
		current.SubsubcategoryIDs = append([]string(nil), (*p.SubsubcategoryIDs)...)
	}
	if p.PriceMin != nil {
		current.PriceMin = *p.PriceMin
	}
	if p.PriceMax != nil {
		current.PriceMax = *p.PriceMax
	}
	if p.BrandID != nil {
		current.BrandID = *p.BrandID
	}
	return current
}

// nextEpochLocked issues the ordering ticket for a product-list write.
// Callers hold s.mu.
func (s *Store) nextEpochLocked() uint64 {
	s.issuedEpoch++
	return s.issuedEpoch
}

// applyProductsLocked installs a product list only if it carries a newer
// epoch than the last applied write, so a slow response issued earlier can
// never overwrite a fresher list. Callers hold s.mu.
func (s *Store) applyProductsLocked(list []api.Product, epoch uint64) {
	if epoch <= s.appliedEpoch {
		return
	}
	s.appliedEpoch = epoch
	s.products = list
}

func cacheKey(query api.ProductQuery) string {
	return fmt.Sprintf("%s|%s|%s|%d", query.Token, query.Sort, query.Order, query.Limit)
}
