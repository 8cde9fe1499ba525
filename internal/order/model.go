package order

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Order is the commercial record of a purchase. Created PENDING at
// checkout; moves to PAID only on a verified payment confirmation.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	CustomerEmail string      `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerName  string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	Status        Status      `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`
	TotalAmount   float64     `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	// GatewayRef is the payment-gateway order id handed out at checkout.
	GatewayRef    string      `gorm:"type:varchar(100);index" json:"gateway_ref,omitempty"`
	PaymentRef    *string     `gorm:"type:varchar(100)" json:"payment_ref,omitempty"`
	LocationID    *uint       `json:"location_id,omitempty"` // overrides the product default when set
	OrderItems    []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is the unit reconciled into a booking: one (student, date)
// purchased. Immutable once created.
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	ProductID   uint      `gorm:"not null" json:"product_id"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	BookingDate time.Time `gorm:"not null" json:"booking_date"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaymentConfirmation is what the payment gateway yields once a charge
// settles.
type PaymentConfirmation struct {
	GatewayOrderRef string
	PaymentRef      string
	Amount          float64
}

// ============================
// Request DTOs

type CheckoutItemRequest struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	StudentName string `json:"student_name" binding:"required"`
	Birthdate   string `json:"birthdate,omitempty"` // "2006-01-02"
	Allergies   string `json:"allergies,omitempty"`
	BookingDate string `json:"booking_date" binding:"required"` // "2006-01-02"
}

type CheckoutRequest struct {
	CustomerEmail string                `json:"customer_email" binding:"required,email"`
	CustomerName  string                `json:"customer_name" binding:"required"`
	LocationID    *uint                 `json:"location_id,omitempty"`
	Items         []CheckoutItemRequest `json:"items" binding:"required,min=1"`
}

type CheckoutResponse struct {
	OrderID     uint    `json:"order_id"`
	GatewayRef  string  `json:"gateway_ref"`
	TotalAmount float64 `json:"total_amount"`
}

type WebhookRequest struct {
	GatewayOrderRef string  `json:"razorpay_order_id" binding:"required"`
	PaymentRef      string  `json:"razorpay_payment_id" binding:"required"`
	Signature       string  `json:"razorpay_signature" binding:"required"`
	Amount          float64 `json:"amount"`
}
