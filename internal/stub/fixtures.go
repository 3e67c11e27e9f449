package stub

import (
	"github.com/shopspring/decimal"
	"github.com/velora-shop/storefront/internal/api"
)

func (s *Server) seed() {
	s.user = api.User{
		ID:    "u-1",
		Name:  "Dana Merchant",
		Email: "dana@example.test",
		Role:  "admin",
	}
	s.profile = api.Profile{
		ID:    "u-1",
		Name:  "Dana Merchant",
		Email: "dana@example.test",
		Phone: "+1-555-0100",
		Role:  "admin",
	}

	s.categories = []api.Category{
		{ID: "c-1", Name: "Apparel"},
		{ID: "c-2", Name: "Footwear"},
	}
	s.subcategories = []api.Subcategory{
		{ID: "sc-1", Name: "Shirts", CategoryID: "c-1"},
		{ID: "sc-2", Name: "Sneakers", CategoryID: "c-2"},
	}
	s.subsubcategories = []api.Subsubcategory{
		{ID: "ssc-1", Name: "T-Shirts", SubcategoryID: "sc-1"},
	}
	s.brands = []api.Brand{
		{ID: "b-1", Name: "Northwind"},
		{ID: "b-2", Name: "Contoso"},
	}

	s.products = []api.Product{
		{
			ID:            "p-1",
			Title:         "Classic Tee",
			Price:         decimal.NewFromInt(25),
			Images:        []string{"https://cdn.example.test/p-1/main.jpg"},
			CategoryID:    "c-1",
			SubcategoryID: "sc-1",
			BrandID:       "b-1",
			Variants: []api.Variant{
				{ID: "v-red", Title: "Red / M", Price: decimal.NewFromInt(27), Stock: 12, Images: []string{"https://cdn.example.test/p-1/red.jpg"}},
				{ID: "v-blue", Title: "Blue / M", Price: decimal.NewFromInt(27), Stock: 3},
			},
		},
		{
			ID:         "p-2",
			Title:      "Trail Sneaker",
			Price:      decimal.NewFromInt(89),
			Images:     []string{"https://cdn.example.test/p-2/main.jpg"},
			CategoryID: "c-2",
			BrandID:    "b-2",
		},
		{
			ID:         "p-3",
			Title:      "Linen Shirt",
			Price:      decimal.NewFromInt(49),
			Images:     []string{"https://cdn.example.test/p-3/main.jpg"},
			CategoryID: "c-1",
			BrandID:    "b-1",
		},
	}

	s.reviews = []api.Review{
		{ID: "r-1", ProductID: "p-1", UserName: "Sam", Rating: 5, Comment: "Fits great."},
	}
}
