// Package stub is an in-memory fake of the storefront backend. It serves the
// REST surface the SDK consumes, with seedable fixtures, so the client can be
// exercised locally and in tests without a real deployment.
package stub

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/velora-shop/storefront/internal/api"
)

// Server holds the fixture state behind the stub routes.
type Server struct {
	mu sync.Mutex

	token    string
	user     api.User
	profile  api.Profile
	password string

	categories       []api.Category
	subcategories    []api.Subcategory
	subsubcategories []api.Subsubcategory
	brands           []api.Brand
	products         []api.Product
	reviews          []api.Review
	orders           []api.Order

	// hits counts requests per route so tests can assert call volumes.
	hits map[string]int
}

// NewServer builds a stub with the default fixture catalog.
func NewServer() *Server {
	s := &Server{
		token:    "stub-token-" + uuid.NewString(),
		password: "secret123",
		hits:     map[string]int{},
	}
	s.seed()
	return s
}

// Token returns the bearer token the stub accepts on authenticated routes.
func (s *Server) Token() string {
	return s.token
}

// Hits reports how many requests reached the named route.
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Router builds the chi handler serving the stub API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/login", s.handleLogin)
	r.Get("/category", s.handleCategories)
	r.Get("/subcategory", s.handleSubcategories)
	r.Get("/subsubcategory", s.handleSubsubcategories)
	r.Get("/brand", s.handleBrands)
	r.Get("/products", s.handleProducts)
	r.Post("/products/search", s.handleSearch)
	r.Get("/productby/{id}", s.handleProductByID)
	r.Get("/review/{productID}", s.handleListReviews)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/admin/profile", s.handleProfile)
		r.Put("/user/cart", s.handleSaveCart)
		r.Put("/user/address", s.handleSaveAddress)
		r.Post("/user/order", s.handlePlaceOrder)
		r.Post("/review", s.handleCreateReview)
		r.Post("/payment-intent", s.handlePaymentIntent)
		r.Post("/image", s.handleImageUpload)
		r.Delete("/image/{publicID}", s.handleImageRemove)
	})

	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header != "Bearer "+s.token {
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) count(route string) {
	s.mu.Lock()
	s.hits[route]++
	s.mu.Unlock()
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.count("login")
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if !strings.EqualFold(creds.Email, s.user.Email) || creds.Password != s.password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	profile := s.profile
	writeJSON(w, http.StatusOK, api.LoginResponse{
		User:    s.user,
		Token:   s.token,
		Profile: &profile,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.count("profile")
	writeJSON(w, http.StatusOK, s.profile)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.count("categories")
	// Bare array, unlike the wrapped product list. The real backend mixes
	// both shapes and the client tolerates either.
	writeJSON(w, http.StatusOK, s.categories)
}

func (s *Server) handleSubcategories(w http.ResponseWriter, r *http.Request) {
	s.count("subcategories")
	writeJSON(w, http.StatusOK, s.subcategories)
}

func (s *Server) handleSubsubcategories(w http.ResponseWriter, r *http.Request) {
	s.count("subsubcategories")
	writeJSON(w, http.StatusOK, s.subsubcategories)
}

func (s *Server) handleBrands(w http.ResponseWriter, r *http.Request) {
	s.count("brands")
	writeJSON(w, http.StatusOK, map[string]any{"brands": s.brands})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	s.count("products")

	list := append([]api.Product(nil), s.products...)

	sortField := r.URL.Query().Get("sort")
	order := r.URL.Query().Get("order")
	if sortField == "title" {
		sort.Slice(list, func(i, j int) bool {
			if order == "desc" {
				return list[i].Title > list[j].Title
			}
			return list[i].Title < list[j].Title
		})
	} else if sortField == "price" {
		sort.Slice(list, func(i, j int) bool {
			if order == "desc" {
				return list[i].Price.GreaterThan(list[j].Price)
			}
			return list[i].Price.LessThan(list[j].Price)
		})
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit < len(list) {
			list = list[:limit]
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"products": list})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.count("search")
	var filters api.Filters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	var matched []api.Product
	for _, p := range s.products {
		if matchesFilters(p, filters) {
			matched = append(matched, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": matched})
}

func matchesFilters(p api.Product, f api.Filters) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Query)) {
		return false
	}
	if len(f.CategoryIDs) > 0 && !containsString(f.CategoryIDs, p.CategoryID) {
		return false
	}
	if len(f.SubcategoryIDs) > 0 && !containsString(f.SubcategoryIDs, p.SubcategoryID) {
		return false
	}
	if len(f.SubsubcategoryIDs) > 0 && !containsString(f.SubsubcategoryIDs, p.SubsubcategoryID) {
		return false
	}
	if f.BrandID != "" && f.BrandID != p.BrandID {
		return false
	}
	if f.PriceMin.IsPositive() && p.Price.LessThan(f.PriceMin) {
		return false
	}
	if f.PriceMax.IsPositive() && p.Price.GreaterThan(f.PriceMax) {
		return false
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, candidate := range haystack {
		if candidate == needle {
			return true
		}
	}
	return false
}

func (s *Server) handleProductByID(w http.ResponseWriter, r *http.Request) {
	s.count("product_by_id")
	id := chi.URLParam(r, "id")
	for _, p := range s.products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "product not found")
}

func (s *Server) handleSaveCart(w http.ResponseWriter, r *http.Request) {
	s.count("save_cart")
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleSaveAddress(w http.ResponseWriter, r *http.Request) {
	s.count("save_address")
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	s.count("place_order")
	var input api.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(input.Items) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "order must contain items")
		return
	}

	order := api.Order{
		ID:     uuid.NewString(),
		Status: "confirmed",
		Total:  input.Total,
	}
	s.mu.Lock()
	s.orders = append(s.orders, order)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	s.count("list_reviews")
	productID := chi.URLParam(r, "productID")
	var matched []api.Review
	for _, review := range s.reviews {
		if review.ProductID == productID {
			matched = append(matched, review)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": matched})
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	s.count("create_review")
	var input api.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		writeError(w, http.StatusUnprocessableEntity, "rating out of range")
		return
	}
	review := api.Review{
		ID:        uuid.NewString(),
		ProductID: input.ProductID,
		UserName:  s.user.Name,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	s.mu.Lock()
	s.reviews = append(s.reviews, review)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) handlePaymentIntent(w http.ResponseWriter, r *http.Request) {
	s.count("payment_intent")
	var payload struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if payload.AmountCents <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "amount must be positive")
		return
	}
	writeJSON(w, http.StatusOK, api.PaymentIntent{
		ID:           "pi_" + uuid.NewString(),
		ClientSecret: "secret_" + uuid.NewString(),
		AmountCents:  payload.AmountCents,
	})
}

func (s *Server) handleImageUpload(w http.ResponseWriter, r *http.Request) {
	s.count("image_upload")
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	file.Close()
	publicID := "img_" + uuid.NewString()
	writeJSON(w, http.StatusCreated, api.ImageRef{
		URL:      "https://cdn.example.test/" + publicID + "/" + header.Filename,
		PublicID: publicID,
	})
}

func (s *Server) handleImageRemove(w http.ResponseWriter, r *http.Request) {
	s.count("image_remove")
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
