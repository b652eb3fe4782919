package models

import "time"

// Customer represents a person holding coworking passes.
type Customer struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	NameKey   string    `json:"-" db:"name_key"` // Normalized name, unique per store
	Email     *string   `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CustomerRef is the customer projection embedded in pass responses.
type CustomerRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

// Ref projects the customer onto the fields shown next to a pass.
func (c *Customer) Ref() CustomerRef {
	return CustomerRef{ID: c.ID, Name: c.Name, Email: c.Email}
}

// CustomerDetails is a customer together with the passes it owns.
type CustomerDetails struct {
	Customer
	Passes []PassWithCustomer `json:"passes"`
}

// CustomerStats summarizes the customer base for the dashboard.
type CustomerStats struct {
	Total            int `json:"total"`
	WithActivePasses int `json:"withActivePasses"`
	NewThisMonth     int `json:"newThisMonth"`
}
