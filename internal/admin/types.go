package admin

import (
	"time"

	"github.com/abgdnv/storefront/internal/catalog"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Session is the signed-in identity the admin API calls are made as.
type Session struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

type User struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
}

func (u User) GetID() string { return u.ID }

// OrderUser is the populated customer reference of an order.
type OrderUser struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Order struct {
	ID          string        `json:"_id"`
	User        *OrderUser    `json:"user,omitempty"`
	TotalPrice  catalog.Money `json:"totalPrice"`
	IsPaid      bool          `json:"isPaid"`
	PaidAt      *time.Time    `json:"paidAt,omitempty"`
	IsDelivered bool          `json:"isDelivered"`
	DeliveredAt *time.Time    `json:"deliveredAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

func (o Order) GetID() string { return o.ID }

// OrderStatus flags an order paid and/or delivered. Nil fields are left as they are.
type OrderStatus struct {
	IsPaid      *bool `json:"isPaid,omitempty"`
	IsDelivered *bool `json:"isDelivered,omitempty"`
}

type Stats struct {
	TotalRevenue  catalog.Money `json:"totalRevenue"`
	TotalOrders   int           `json:"totalOrders"`
	TotalProducts int           `json:"totalProducts"`
	TotalUsers    int           `json:"totalUsers"`
	RecentOrders  []Order       `json:"recentOrders"`
}

// ProductInput is the create and update payload for a product.
type ProductInput struct {
	Name        string             `json:"name" validate:"required,min=1,max=200"`
	Description string             `json:"description" validate:"required"`
	Price       catalog.Money      `json:"price"`
	Category    catalog.Category   `json:"category" validate:"required,oneof=Clothing Shoes"`
	Department  catalog.Department `json:"department" validate:"required,oneof=Men Women Kids"`
	Sizes       []string           `json:"sizes" validate:"dive,required"`
	Colors      []catalog.Color    `json:"colors" validate:"dive"`
	Images      []string           `json:"images" validate:"dive,url"`
	IsTrending  bool               `json:"isTrending"`
	InStock     *bool              `json:"inStock,omitempty"`
}
