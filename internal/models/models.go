package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	StockQty    int             `json:"stock_qty"` // can drop below zero, see store.PlaceOrder
	ImageURL    string          `json:"image_url"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductSpec struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Unit      string `json:"unit"`
}

// SpecFilterGroup is one spec key with every value seen for it, used by the catalog filters.
type SpecFilterGroup struct {
	Key    string
	Values []string
}

type DeliveryType struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"is_active"`
}

type OrderStatus struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StatusNew is the status every placed order starts in.
const StatusNew int64 = 1

// Customer holds the contact fields captured at checkout.
type Customer struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	AddressLine string `json:"address_line"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type Order struct {
	ID               int64           `json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	UserID           *int64          `json:"user_id"` // nil for guest orders
	Customer         Customer        `json:"customer"`
	DeliveryTypeID   int64           `json:"delivery_type_id"`
	DeliveryTypeName string          `json:"delivery_type_name"`
	ItemsTotal       decimal.Decimal `json:"items_total"`
	DeliveryPrice    decimal.Decimal `json:"delivery_price"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	StatusID         int64           `json:"status_id"`
	StatusName       string          `json:"status_name"`
	Items            []OrderItem     `json:"items"`
}

// OrderItem is the purchased-product snapshot kept with an order.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   *int64          `json:"product_id"` // nil once the product is deleted
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type ContactMessage struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	SenderName string    `json:"sender_name"` // joined from the user row for display
	Email      string    `json:"email"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	IsRead     bool      `json:"is_read"`
}
