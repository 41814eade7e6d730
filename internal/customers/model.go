package customers

import (
	"time"

	"github.com/omnidesk/omnidesk-core/internal/identity"
)

// CustomerKind distinguishes individual and business customers.
type CustomerKind string

const (
	KindIndividual CustomerKind = "individual"
	KindBusiness   CustomerKind = "business"
)

// Address is the customer's shipping address. Owned by order processing;
// carried here because the customer record stores it.
type Address struct {
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	ZipCode    string `json:"zip_code,omitempty"`
}

// Customer is the cross-channel customer record, keyed by one or more
// canonical identifiers.
type Customer struct {
	ID              string               `json:"id"`
	CompanyID       string               `json:"company_id"`
	Name            string               `json:"name"`
	Kind            CustomerKind         `json:"kind"`
	TradeName       string               `json:"trade_name,omitempty"`
	Identifiers     identity.Identifiers `json:"identifiers"`
	OrderCount      int                  `json:"order_count"`
	TotalSpentCents int64                `json:"total_spent_cents"`
	Address         Address              `json:"address"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// Profile carries the display attributes supplied on first contact.
type Profile struct {
	Name      string       `json:"name"`
	Kind      CustomerKind `json:"kind"`
	TradeName string       `json:"trade_name,omitempty"`
}
