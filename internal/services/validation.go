package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"eden_passes_backend/internal/models"
)

// Field limits.
const (
	MaxPassTypeLength     = 50
	MaxCustomerNameLength = 120
)

// CreatePassRequest is the body of a pass registration.
// Either Date or StartDate (+ optional EndDate) carries the dates, and
// either CustomerID or CustomerName identifies the customer.
type CreatePassRequest struct {
	Type         string  `json:"type"`
	Date         *string `json:"date"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	CustomerID   *string `json:"customerId"`
	CustomerName *string `json:"customerName"`
}

// passInput is a request with surrounding whitespace removed.
// Empty strings count as absent.
type passInput struct {
	passType     string
	date         string
	startDate    string
	endDate      string
	customerID   string
	customerName string
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func newPassInput(req CreatePassRequest) passInput {
	return passInput{
		passType:     strings.TrimSpace(req.Type),
		date:         trimmed(req.Date),
		startDate:    trimmed(req.StartDate),
		endDate:      trimmed(req.EndDate),
		customerID:   trimmed(req.CustomerID),
		customerName: trimmed(req.CustomerName),
	}
}

// passRule checks one property of a request. Rules do not mutate their input.
type passRule func(in passInput) error

func checkPassType(in passInput) error {
	if in.passType == "" {
		return ErrInvalidType
	}
	if utf8.RuneCountInString(in.passType) > MaxPassTypeLength {
		return fmt.Errorf("%w (at most %d characters)", ErrInvalidType, MaxPassTypeLength)
	}
	return nil
}

func checkDateShape(in passInput) error {
	if in.date != "" && (in.startDate != "" || in.endDate != "") {
		return ErrConflictingDates
	}
	return nil
}

func checkDatePresent(in passInput) error {
	if in.date == "" && in.startDate == "" {
		return ErrDateRequired
	}
	return nil
}

func checkDateFormat(in passInput) error {
	for _, value := range []string{in.date, in.startDate, in.endDate} {
		if value == "" {
			continue
		}
		if _, err := parseCalendarDate(value); err != nil {
			return err
		}
	}
	return nil
}

func checkDateOrder(in passInput) error {
	if in.startDate == "" || in.endDate == "" {
		return nil
	}
	start, _ := parseCalendarDate(in.startDate)
	end, _ := parseCalendarDate(in.endDate)
	if end < start {
		return ErrEndBeforeStart
	}
	return nil
}

func checkCustomerPresent(in passInput) error {
	if in.customerID == "" && in.customerName == "" {
		return ErrCustomerRequired
	}
	return nil
}

func checkCustomerUnambiguous(in passInput) error {
	if in.customerID != "" && in.customerName != "" {
		return ErrAmbiguousCustomer
	}
	return nil
}

func checkCustomerName(in passInput) error {
	if in.customerName != "" {
		return validateCustomerName(in.customerName)
	}
	return nil
}

// createPassRules run in order; the first failure wins.
var createPassRules = []passRule{
	checkPassType,
	checkDateShape,
	checkDatePresent,
	checkDateFormat,
	checkDateOrder,
	checkCustomerPresent,
	checkCustomerUnambiguous,
	checkCustomerName,
}

// validateCreatePass applies createPassRules to the request.
func validateCreatePass(req CreatePassRequest) (passInput, error) {
	in := newPassInput(req)
	for _, rule := range createPassRules {
		if err := rule(in); err != nil {
			return passInput{}, err
		}
	}
	return in, nil
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(name) > MaxCustomerNameLength {
		return fmt.Errorf("%w (at most %d characters)", ErrInvalidName, MaxCustomerNameLength)
	}
	return nil
}

// parseCalendarDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns
// the calendar date as written, in models.DateLayout.
func parseCalendarDate(value string) (string, error) {
	if t, err := time.Parse(models.DateLayout, value); err == nil {
		return t.Format(models.DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(models.DateLayout), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// buildPass normalizes the date shape of validated input into a pass record.
// A single date is mirrored into StartDate and EndDate; a missing EndDate
// defaults to StartDate.
func buildPass(in passInput, id, customerID string, createdAt time.Time) *models.Pass {
	pass := &models.Pass{
		ID:         id,
		Type:       in.passType,
		CustomerID: customerID,
		CreatedAt:  createdAt,
	}
	if in.date != "" {
		date, _ := parseCalendarDate(in.date)
		pass.Date = &date
		pass.StartDate = date
		pass.EndDate = date
		return pass
	}
	pass.StartDate, _ = parseCalendarDate(in.startDate)
	pass.EndDate = pass.StartDate
	if in.endDate != "" {
		pass.EndDate, _ = parseCalendarDate(in.endDate)
	}
	return pass
}

// UpdatePassRequest is the body of a pass update. Absent or blank fields
// keep their stored value. Sending date switches the pass to a single day;
// sending startDate or endDate switches it to a range.
type UpdatePassRequest struct {
	Type       *string `json:"type"`
	Date       *string `json:"date"`
	StartDate  *string `json:"startDate"`
	EndDate    *string `json:"endDate"`
	CustomerID *string `json:"customerId"`
}

// validateUpdatePass merges the request into the stored pass and checks the
// result with the same rules as a new pass. A range update without endDate
// keeps the stored end of a range and defaults to startDate for a former
// single-day pass.
func validateUpdatePass(existing models.Pass, req UpdatePassRequest) (passInput, error) {
	patch := newPassInput(CreatePassRequest{
		Date:       req.Date,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		CustomerID: req.CustomerID,
	})
	patch.passType = trimmed(req.Type)

	merged := passInput{passType: existing.Type, customerID: existing.CustomerID}
	if patch.passType != "" {
		merged.passType = patch.passType
	}
	if patch.customerID != "" {
		merged.customerID = patch.customerID
	}

	switch {
	case patch.date != "":
		merged.date = patch.date
	case patch.startDate != "" || patch.endDate != "":
		merged.startDate = existing.StartDate
		if patch.startDate != "" {
			merged.startDate = patch.startDate
		}
		switch {
		case patch.endDate != "":
			merged.endDate = patch.endDate
		case !existing.IsSingleDay():
			merged.endDate = existing.EndDate
		}
	case existing.IsSingleDay():
		merged.date = *existing.Date
	default:
		merged.startDate, merged.endDate = existing.StartDate, existing.EndDate
	}

	if err := checkPassType(merged); err != nil {
		return passInput{}, err
	}
	if err := checkDateShape(patch); err != nil {
		return passInput{}, err
	}
	for _, rule := range []passRule{checkDateFormat, checkDateOrder} {
		if err := rule(merged); err != nil {
			return passInput{}, err
		}
	}
	return merged, nil
}

// displayName is the stored form of a customer name.
func displayName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
