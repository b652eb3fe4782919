package models

import "time"

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Pass status values. Status is derived at read time and never stored.
const (
	PassStatusUpcoming = "upcoming"
	PassStatusActive   = "active"
	PassStatusExpired  = "expired"
)

// Pass grants a customer access for a single day or a date range.
// Single-day passes carry Date and mirror it into StartDate and EndDate.
type Pass struct {
	ID         string    `json:"id" db:"id"`
	Type       string    `json:"type" db:"type"`
	Date       *string   `json:"date" db:"date"`
	StartDate  string    `json:"startDate" db:"start_date"`
	EndDate    string    `json:"endDate" db:"end_date"`
	CustomerID string    `json:"customerId" db:"customer_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// IsSingleDay reports whether the pass was issued in the single-day shape.
func (p *Pass) IsSingleDay() bool {
	return p.Date != nil
}

// StatusOn derives the pass status for the given calendar day (DateLayout).
// Dates in DateLayout compare correctly as strings.
func (p *Pass) StatusOn(today string) string {
	switch {
	case today < p.StartDate:
		return PassStatusUpcoming
	case today > p.EndDate:
		return PassStatusExpired
	default:
		return PassStatusActive
	}
}

// PassWithCustomer is a pass joined with its customer for display.
type PassWithCustomer struct {
	Pass
	Status   string      `json:"status"`
	Customer CustomerRef `json:"customer"`
}

// PassFilters narrows ListPasses.
type PassFilters struct {
	Search     string // Case-insensitive substring of the customer name
	CustomerID string
	Limit      int
}

// PassStats counts passes by derived status for one calendar day.
type PassStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Upcoming int `json:"upcoming"`
	Expired  int `json:"expired"`
}

// Add counts one pass under the status it has on today.
func (s *PassStats) Add(pass *Pass, today string) {
	s.Total++
	switch pass.StatusOn(today) {
	case PassStatusUpcoming:
		s.Upcoming++
	case PassStatusExpired:
		s.Expired++
	default:
		s.Active++
	}
}
