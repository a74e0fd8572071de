package regions

import "time"

// DefaultPaymentNote is applied to newly created regions.
const DefaultPaymentNote = "HIPPO 2026"

// Region is an administrative area applications are filed under.
type Region struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	IsActive        bool      `json:"isActive"`
	PaymentReceiver string    `json:"paymentReceiver,omitempty"`
	PaymentNote     string    `json:"paymentNote,omitempty"`
	QRPath          string    `json:"qrPath,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Update carries the editable fields of a region.
type Update struct {
	Name            string
	IsActive        bool
	PaymentReceiver string
	PaymentNote     string
}
