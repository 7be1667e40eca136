package catalogapi

import (
	"time"

	"github.com/abgdnv/storefront/internal/admin"
	"github.com/abgdnv/storefront/internal/catalog"
)

const unsplash = "https://images.unsplash.com/"

// SeedProducts is the catalog a fresh catalogd serves.
func SeedProducts() []catalog.Product {
	return []catalog.Product{
		{
			ID:          "1",
			Name:        "Classic White Tee",
			Description: "Premium cotton t-shirt for everyday wear.",
			Price:       catalog.NewMoney("29.99"),
			Category:    catalog.CategoryClothing,
			Department:  catalog.DepartmentMen,
			Sizes:       []string{"S", "M", "L", "XL"},
			Colors:      []catalog.Color{{Name: "White", Hex: "#FFFFFF"}, {Name: "Black", Hex: "#000000"}},
			Images:      []string{unsplash + "photo-1521572163474-6864f9cf17ab?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
			IsTrending:  true,
			InStock:     true,
		},
		{
			ID:          "2",
			Name:        "Slim Fit Jeans",
			Description: "Modern slim fit jeans with stretch.",
			Price:       catalog.NewMoney("59.99"),
			Category:    catalog.CategoryClothing,
			Department:  catalog.DepartmentMen,
			Sizes:       []string{"M", "L", "XL"},
			Colors:      []catalog.Color{{Name: "Blue", Hex: "#0000FF"}},
			Images:      []string{unsplash + "photo-1542272454315-4c01d7abdf4a?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
			InStock:     true,
		},
		{
			ID:          "3",
			Name:        "Floral Summer Dress",
			Description: "Light and breezy dress for summer days.",
			Price:       catalog.NewMoney("49.99"),
			Category:    catalog.CategoryClothing,
			Department:  catalog.DepartmentWomen,
			Sizes:       []string{"S", "M", "L"},
			Colors:      []catalog.Color{{Name: "Red", Hex: "#FF0000"}},
			Images:      []string{unsplash + "photo-1572804013309-59a88b7e92f1?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
			IsTrending:  true,
			InStock:     true,
		},
		{
			ID:          "4",
			Name:        "Leather Boots",
			Description: "Genuine leather boots for all seasons.",
			Price:       catalog.NewMoney("89.99"),
			Category:    catalog.CategoryShoes,
			Department:  catalog.DepartmentWomen,
			Sizes:       []string{"S", "M", "L"},
			Colors:      []catalog.Color{{Name: "Brown", Hex: "#8B4513"}},
			Images:      []string{unsplash + "photo-1551107696-a4b0c5a0d9a2?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
			InStock:     true,
		},
		{
			ID:          "5",
			Name:        "Kids Superhero Tee",
			Description: "Fun superhero graphic tee.",
			Price:       catalog.NewMoney("19.99"),
			Category:    catalog.CategoryClothing,
			Department:  catalog.DepartmentKids,
			Sizes:       []string{"S", "M"},
			Colors:      []catalog.Color{{Name: "Blue", Hex: "#0000FF"}},
			Images:      []string{unsplash + "photo-1519238263430-660d12402f09?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
			InStock:     true,
		},
		{
			ID:          "6",
			Name:        "Running Sneakers",
			Description: "Lightweight sneakers for active kids.",
			Price:       catalog.NewMoney("39.99"),
			Category:    catalog.CategoryShoes,
			Department:  catalog.DepartmentKids,
			Sizes:       []string{"S", "M", "L"},
			Colors:      []catalog.Color{{Name: "Green", Hex: "#008000"}},
			Images:      []string{unsplash + "photo-1515347619252-60a6bf4fffce?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
			InStock:     true,
		},
	}
}

// SeedUsers returns one administrator and one shopper.
func SeedUsers() []admin.User {
	return []admin.User{
		{ID: "u1", Name: "Store Admin", Email: "admin@storefront.local", Role: admin.RoleAdmin, IsAdmin: true},
		{ID: "u2", Name: "Jane Shopper", Email: "jane@storefront.local", Role: admin.RoleUser},
	}
}

// SeedOrders returns orders placed by the seeded shopper, oldest first.
func SeedOrders(now time.Time) []admin.Order {
	shopper := &admin.OrderUser{ID: "u2", Name: "Jane Shopper"}
	paidAt := now.Add(-47 * time.Hour)
	return []admin.Order{
		{ID: "o1", User: shopper, TotalPrice: catalog.NewMoney("79.98"), IsPaid: true, PaidAt: &paidAt, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "o2", User: shopper, TotalPrice: catalog.NewMoney("19.99"), CreatedAt: now.Add(-2 * time.Hour)},
	}
}
