package store

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/velora-shop/storefront/internal/api"
)

// AddToCart puts quantity units of the product (or its preselected variant)
// in the cart. Adding the same (product, variant) pair again merges into
// the existing line by summing quantities; it never creates a duplicate
// line. Quantities below 1 are treated as 1.
func (s *Store) AddToCart(ctx context.Context, product api.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	price := product.Price
	images := product.Images
	variantTitle := ""
	if product.VariantID != "" {
		if variant, ok := product.FindVariant(product.VariantID); ok {
			price = variant.Price
			variantTitle = variant.Title
			// A variant without imagery falls back to the parent's images.
			if len(variant.Images) > 0 {
				images = variant.Images
			}
		}
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ProductID == product.ID && s.items[i].VariantID == product.VariantID {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, CartItem{
			ProductID:    product.ID,
			Title:        product.Title,
			UnitPrice:    price,
			Quantity:     quantity,
			VariantID:    product.VariantID,
			VariantTitle: variantTitle,
			Images:       append([]string(nil), images...),
		})
	}
	s.mu.Unlock()

	s.save(ctx)
}

// UpdateQuantity sets the matching line's quantity, clamped to a floor of
// 1; dropping a line is RemoveProduct's job, never a side effect of a
// decrement. An empty variantID targets the first line for the product
// regardless of variant, so callers must pass the variant when the product
// has several lines.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int, variantID string) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ProductID != productID {
			continue
		}
		if variantID != "" && s.items[i].VariantID != variantID {
			continue
		}
		s.items[i].Quantity = quantity
		break
	}
	s.mu.Unlock()

	s.save(ctx)
}

// RemoveProduct deletes cart lines. An empty variantID removes every line
// for the product, variants included; a specific variantID removes only
// the exact (product, variant) line.
func (s *Store) RemoveProduct(ctx context.Context, productID, variantID string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ProductID == productID && (variantID == "" || item.VariantID == variantID) {
			continue
		}
		kept = append(kept, item)
	}
	if len(kept) == 0 {
		kept = nil
	}
	s.items = kept
	s.mu.Unlock()

	s.save(ctx)
}

// ClearCart empties the cart. Called after a successful checkout.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.save(ctx)
}

// TotalPrice derives the cart total on demand; it is never cached.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of cart lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// OrderItems converts the cart into the trimmed line shape the order and
// cart-sync endpoints accept.
func (s *Store) OrderItems() []api.OrderItem {
	items := s.Items()
	out := make([]api.OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, api.OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return out
}
