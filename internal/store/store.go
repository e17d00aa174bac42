// ABOUTME: Store interface and data types for the NubArmory backend
// ABOUTME: Defines admin credentials, catalog (products, colors) and order records

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrColorNameExists is returned when creating a color whose name is taken
var ErrColorNameExists = errors.New("color name already exists")

// ErrInvalidStatus is returned for an order status outside OrderStatuses
var ErrInvalidStatus = errors.New("invalid order status")

// Color is a selectable product finish.
type Color struct {
	ID        string
	Name      string
	Hex       string // "#RRGGBB"
	CreatedAt time.Time
}

// Product is a catalog item. Description is Markdown.
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	Active      bool
	ColorIDs    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid OrderStatus.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order. Name and price are copied at order time.
type OrderItem struct {
	ProductID      string
	ProductName    string
	ColorID        string
	Quantity       int
	UnitPriceCents int64
}

// Order is a storefront order. Custom marks custom-order intake requests.
type Order struct {
	ID            string
	CustomerEmail string
	CustomerName  string
	TotalCents    int64
	Status        OrderStatus
	Custom        bool
	Notes         string
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderFilter narrows ListOrders. Zero values mean no filtering.
type OrderFilter struct {
	Status OrderStatus
	Limit  int
}

// CatalogStore covers products and colors.
type CatalogStore interface {
	CreateColor(ctx context.Context, color *Color) error
	ListColors(ctx context.Context) ([]*Color, error)
	DeleteColor(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, product *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// OrderStore covers orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) error
}

// Store is the full persistence surface used by the server.
type Store interface {
	AdminStore
	CatalogStore
	OrderStore

	Ping(ctx context.Context) error
	Close() error
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
