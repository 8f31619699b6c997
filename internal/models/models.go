package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type User struct {
	ID        int64            `json:"id"`
	Email     string           `json:"email"`
	Name      string           `json:"name"`
	Role      Role             `json:"role"`
	Phone     string           `json:"phone,omitempty"`
	Address   *Address         `json:"address,omitempty"`
	IsActive  bool             `json:"isActive"`
	Wishlist  []ProductSummary `json:"wishlist,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Version   int              `json:"version"`
}

// UserSummary is the slice of a user embedded in admin order listings.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Product struct {
	ID                 int64            `json:"id"`
	SKU                string           `json:"sku"`
	Name               string           `json:"name"`
	Description        string           `json:"description,omitempty"`
	Price              decimal.Decimal  `json:"price"`
	OriginalPrice      *decimal.Decimal `json:"originalPrice,omitempty"`
	Category           string           `json:"category"`
	Subcategory        string           `json:"subcategory,omitempty"`
	Brand              string           `json:"brand,omitempty"`
	Images             ImageList        `json:"images"`
	Colors             ColorList        `json:"colors"`
	Sizes              SizeList         `json:"sizes"`
	Tags               StringList       `json:"tags"`
	StockQuantity      int              `json:"stock"`
	IsActive           bool             `json:"isActive"`
	IsFeatured         bool             `json:"isFeatured"`
	IsCustomizable     bool             `json:"isCustomizable"`
	DiscountPercentage decimal.Decimal  `json:"discountPercentage"`
	DiscountValidUntil *time.Time       `json:"discountValidUntil,omitempty"`
	Ratings            Ratings          `json:"ratings"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
	Version            int              `json:"version"`
}

type Ratings struct {
	Average decimal.Decimal `json:"average"`
	Count   int             `json:"count"`
}

type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	UserID    int64     `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"date"`
}

// ProductSummary is what orders and wishlists show for a referenced product.
type ProductSummary struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Images   ImageList       `json:"images"`
	Stock    *int            `json:"stock,omitempty"`
	IsActive *bool           `json:"isActive,omitempty"`
}

var ProductCategories = []string{"T-Shirts", "Hoodies", "Pants", "Accessories", "Shoes", "Custom"}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPayPal, PaymentBankTransfer, PaymentCashOnDelivery:
		return true
	}
	return false
}

type Size string

var Sizes = []Size{"XS", "S", "M", "L", "XL", "XXL", "XXXL"}

func (s Size) Valid() bool {
	for _, v := range Sizes {
		if s == v {
			return true
		}
	}
	return false
}

type OrderKind string

const (
	OrderKindCatalog OrderKind = "catalog"
	OrderKindCustom  OrderKind = "custom"
)

type Order struct {
	ID                 int64           `json:"id"`
	UserID             int64           `json:"userId"`
	Customer           *UserSummary    `json:"user,omitempty"`
	OrderNumber        string          `json:"orderNumber"`
	Kind               OrderKind       `json:"kind"`
	Items              []OrderItem     `json:"items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Tax                decimal.Decimal `json:"tax"`
	Shipping           decimal.Decimal `json:"shipping"`
	Discount           decimal.Decimal `json:"discount"`
	Total              decimal.Decimal `json:"total"`
	Status             OrderStatus     `json:"status"`
	PaymentStatus      PaymentStatus   `json:"paymentStatus"`
	PaymentMethod      PaymentMethod   `json:"paymentMethod"`
	ShippingAddress    Address         `json:"shippingAddress"`
	BillingAddress     Address         `json:"billingAddress"`
	Notes              OrderNotes      `json:"notes"`
	Tracking           *Tracking       `json:"tracking,omitempty"`
	EstimatedDelivery  *time.Time      `json:"estimatedDelivery,omitempty"`
	ShippedAt          *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt        *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	CancelledBy        *int64          `json:"cancelledBy,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	Version            int             `json:"version"`
}

type OrderItem struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"orderId"`
	ProductID     *int64          `json:"productId"`
	Product       *ProductSummary `json:"product,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"price"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Size          Size            `json:"size,omitempty"`
	Color         *Color          `json:"color,omitempty"`
	Customization *Customization  `json:"customization,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type OrderNotes struct {
	Customer string `json:"customer,omitempty"`
	Internal string `json:"internal,omitempty"`
}

type Tracking struct {
	Number  string `json:"number,omitempty"`
	Carrier string `json:"carrier,omitempty"`
	URL     string `json:"url,omitempty"`
}

func (t *Tracking) Empty() bool {
	return t == nil || (t.Number == "" && t.Carrier == "" && t.URL == "")
}

// OrderSummary is the compact projection used in order confirmations.
type OrderSummary struct {
	OrderNumber string          `json:"orderNumber"`
	Total       decimal.Decimal `json:"total"`
	Status      OrderStatus     `json:"status"`
	ItemCount   int             `json:"itemCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (o *Order) Summary() OrderSummary {
	return OrderSummary{
		OrderNumber: o.OrderNumber,
		Total:       o.Total,
		Status:      o.Status,
		ItemCount:   len(o.Items),
		CreatedAt:   o.CreatedAt,
	}
}

type Design struct {
	ID            string    `json:"id"`
	UserID        int64     `json:"userId"`
	Name          string    `json:"name"`
	OutfitType    string    `json:"outfitType"`
	SelectedColor string    `json:"selectedColor"`
	CustomText    string    `json:"customText,omitempty"`
	TextPlacement string    `json:"textPlacement,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
