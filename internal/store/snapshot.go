package store

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/velora-shop/storefront/internal/api"
)

// snapshot is the persisted subset of the store. Reference caches, the
// products cache, stale flags, and UI flags are deliberately absent: they
// rebuild fresh each session.
type snapshot struct {
	User    *api.User       `json:"user,omitempty"`
	Token   string          `json:"token,omitempty"`
	Profile *api.Profile    `json:"profile,omitempty"`
	Carts   []persistedLine `json:"carts,omitempty"`
	Filters api.Filters     `json:"filters"`
}

// persistedLine is a cart line trimmed to the fields worth keeping across
// reloads.
type persistedLine struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	Count        int             `json:"count"`
	VariantID    string          `json:"variant_id,omitempty"`
	VariantTitle string          `json:"variant_title,omitempty"`
	Images       []string        `json:"images,omitempty"`
}

// save writes the persisted subset through the saver. Persistence failures
// never break the action that triggered them; they are logged and the
// in-memory state stays authoritative.
func (s *Store) save(ctx context.Context) {
	s.mu.Lock()
	snap := snapshot{
		User:    s.session.User,
		Token:   s.session.Token,
		Profile: s.session.Profile,
		Filters: s.filters,
	}
	for _, item := range s.items {
		snap.Carts = append(snap.Carts, persistedLine{
			ID:           item.ProductID,
			Title:        item.Title,
			Price:        item.UnitPrice,
			Count:        item.Quantity,
			VariantID:    item.VariantID,
			VariantTitle: item.VariantTitle,
			Images:       item.Images,
		})
	}
	s.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		s.logg.Error(ctx, "encode snapshot", err)
		return
	}
	if err := s.saver.Save(ctx, data); err != nil {
		s.logg.Error(ctx, "persist snapshot", err)
	}
}

// hydrate restores the persisted subset. Missing snapshots are normal;
// unreadable ones are discarded with a warning.
func (s *Store) hydrate(ctx context.Context) {
	data, ok, err := s.saver.Load(ctx)
	if err != nil {
		s.logg.Error(ctx, "load snapshot", err)
		return
	}
	if !ok {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logg.Warn(ctx, "discarding corrupt snapshot")
		return
	}

	s.mu.Lock()
	s.session = Session{User: snap.User, Token: snap.Token, Profile: snap.Profile}
	s.filters = snap.Filters
	s.items = nil
	for _, line := range snap.Carts {
		quantity := line.Count
		if quantity < 1 {
			quantity = 1
		}
		s.items = append(s.items, CartItem{
			ProductID:    line.ID,
			Title:        line.Title,
			UnitPrice:    line.Price,
			Quantity:     quantity,
			VariantID:    line.VariantID,
			VariantTitle: line.VariantTitle,
			Images:       line.Images,
		})
	}
	s.mu.Unlock()
}
