package reports

import "time"

// RosterRow is one attendee line on an event roster.
type RosterRow struct {
	BookingID   uint      `json:"booking_id"`
	StudentName string    `json:"student_name"`
	Birthdate   *time.Time `json:"birthdate,omitempty"`
	Allergies   string    `json:"allergies"`
	Status      string    `json:"status"`
	BookedAt    time.Time `json:"booked_at"`
}

// RosterData is everything the roster export needs about an event.
type RosterData struct {
	EventID    uint      `json:"event_id"`
	EventTitle string    `json:"event_title"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	Location   string    `json:"location"`
	Capacity   int       `json:"capacity"`
	Rows       []RosterRow
}

// ReceiptLine is one purchased item on an order receipt.
type ReceiptLine struct {
	StudentName string
	ProductName string
	BookingDate time.Time
	Price       float64
}

// ReceiptData is everything the receipt export needs about an order.
type ReceiptData struct {
	OrderID       uint
	CustomerName  string
	CustomerEmail string
	Status        string
	PaymentRef    string
	CreatedAt     time.Time
	Lines         []ReceiptLine
	Total         float64
}
