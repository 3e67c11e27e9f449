package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Variant is a purchasable configuration of a product with its own price,
// stock, and imagery.
type Variant struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	Images []string        `json:"images"`
}

// Product is a catalog entry. VariantID, when set, preselects an entry of
// Variants for cart operations.
type Product struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Images           []string        `json:"images"`
	CategoryID       string          `json:"category_id,omitempty"`
	SubcategoryID    string          `json:"subcategory_id,omitempty"`
	SubsubcategoryID string          `json:"subsubcategory_id,omitempty"`
	BrandID          string          `json:"brand_id,omitempty"`
	Variants         []Variant       `json:"variants,omitempty"`
	VariantID        string          `json:"variant_id,omitempty"`
}

// FindVariant returns the variant with the given ID, if present.
func (p Product) FindVariant(variantID string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return Variant{}, false
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Subcategory struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

type Subsubcategory struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SubcategoryID string `json:"subcategory_id"`
}

type Brand struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginResponse carries the authenticated identity issued by the backend.
type LoginResponse struct {
	User    User     `json:"user"`
	Token   string   `json:"token"`
	Profile *Profile `json:"profile,omitempty"`
}

// Filters is a product search request. Zero values mean "no constraint".
type Filters struct {
	Query             string          `json:"q,omitempty"`
	CategoryIDs       []string        `json:"category_ids,omitempty"`
	SubcategoryIDs    []string        `json:"subcategory_ids,omitempty"`
	SubsubcategoryIDs []string        `json:"subsubcategory_ids,omitempty"`
	PriceMin          decimal.Decimal `json:"price_min"`
	PriceMax          decimal.Decimal `json:"price_max"`
	BrandID           string          `json:"brand_id,omitempty"`
}

// ProductQuery names the knobs of the product list endpoint. The zero value
// is usable; Normalized fills the defaults.
type ProductQuery struct {
	Token string
	Sort  string
	Order string
	Limit int
}

const (
	DefaultSort  = "created_at"
	DefaultOrder = "desc"
)

// Normalized returns the query with defaults applied and the order
// lowercased, so equivalent queries compare equal.
func (q ProductQuery) Normalized() ProductQuery {
	if strings.TrimSpace(q.Sort) == "" {
		q.Sort = DefaultSort
	}
	q.Order = strings.ToLower(strings.TrimSpace(q.Order))
	if q.Order != "asc" && q.Order != "desc" {
		q.Order = DefaultOrder
	}
	if q.Limit < 0 {
		q.Limit = 0
	}
	return q
}

type Address struct {
	Line1   string `json:"line1" validate:"required"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// OrderItem is the trimmed line shape submitted with an order.
type OrderItem struct {
	ProductID string          `json:"product_id" validate:"required"`
	VariantID string          `json:"variant_id,omitempty"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity" validate:"min=1"`
}

type OrderInput struct {
	Items           []OrderItem     `json:"items" validate:"required,min=1,dive"`
	Address         Address         `json:"address"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	Total           decimal.Decimal `json:"total"`
}

type Order struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

type ReviewInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Rating    int    `json:"rating" validate:"min=1,max=5"`
	Comment   string `json:"comment,omitempty"`
}

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
}

type ImageRef struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}
