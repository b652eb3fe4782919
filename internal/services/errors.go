package services

import "errors"

// --- Validation errors, reported in the order the rules are checked ---
var (
	ErrInvalidType       = errors.New("pass type must be a non-empty string")
	ErrConflictingDates  = errors.New("date cannot be combined with startDate or endDate")
	ErrDateRequired      = errors.New("either date or startDate is required")
	ErrInvalidDate       = errors.New("dates must use the YYYY-MM-DD format")
	ErrEndBeforeStart    = errors.New("endDate cannot be before startDate")
	ErrCustomerRequired  = errors.New("either customerId or customerName is required")
	ErrAmbiguousCustomer = errors.New("customerId and customerName cannot both be given")
	ErrInvalidName       = errors.New("customer name must be a non-empty string")
	ErrInvalidEmail      = errors.New("email format is invalid")
)

// --- Lookup and state errors ---
var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrCustomerExists     = errors.New("a customer with this name already exists")
	ErrCustomerHasPasses  = errors.New("customer cannot be deleted while passes reference it")
	ErrPassNotFound       = errors.New("pass not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
