package services

import (
	"strings"
	"testing"
	"time"

	"eden_passes_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestValidateCreatePassOrder(t *testing.T) {
	tests := []struct {
		name string
		req  CreatePassRequest
		want error
	}{
		{"empty type", CreatePassRequest{Type: "", Date: str("2024-01-01"), CustomerName: str("X")}, ErrInvalidType},
		{"blank type", CreatePassRequest{Type: "   ", CustomerName: str("X")}, ErrInvalidType},
		{"long type", CreatePassRequest{Type: strings.Repeat("a", MaxPassTypeLength+1), Date: str("2024-01-01"), CustomerName: str("X")}, ErrInvalidType},
		{"type before dates", CreatePassRequest{Date: str("2024-01-01"), StartDate: str("2024-01-01")}, ErrInvalidType},
		{"date and startDate", CreatePassRequest{Type: "day", Date: str("2024-01-01"), StartDate: str("2024-01-01"), CustomerName: str("X")}, ErrConflictingDates},
		{"date and endDate", CreatePassRequest{Type: "day", Date: str("2024-01-01"), EndDate: str("2024-01-02"), CustomerName: str("X")}, ErrConflictingDates},
		{"conflict before customer", CreatePassRequest{Type: "day", Date: str("2024-01-01"), StartDate: str("2024-01-01")}, ErrConflictingDates},
		{"no dates", CreatePassRequest{Type: "day", CustomerName: str("X")}, ErrDateRequired},
		{"only endDate", CreatePassRequest{Type: "day", EndDate: str("2024-01-02"), CustomerName: str("X")}, ErrDateRequired},
		{"empty date counts as absent", CreatePassRequest{Type: "day", Date: str(" "), CustomerName: str("X")}, ErrDateRequired},
		{"unparseable date", CreatePassRequest{Type: "day", Date: str("15/01/2024"), CustomerName: str("X")}, ErrInvalidDate},
		{"impossible date", CreatePassRequest{Type: "day", StartDate: str("2024-02-30"), CustomerName: str("X")}, ErrInvalidDate},
		{"end before start", CreatePassRequest{Type: "range", StartDate: str("2024-01-31"), EndDate: str("2024-01-01"), CustomerName: str("X")}, ErrEndBeforeStart},
		{"end before start wins over customer", CreatePassRequest{Type: "range", StartDate: str("2024-01-31"), EndDate: str("2024-01-01")}, ErrEndBeforeStart},
		{"no customer", CreatePassRequest{Type: "day", Date: str("2024-01-01")}, ErrCustomerRequired},
		{"both customer fields", CreatePassRequest{Type: "day", Date: str("2024-01-01"), CustomerID: str("abc"), CustomerName: str("X")}, ErrAmbiguousCustomer},
		{"long name", CreatePassRequest{Type: "day", Date: str("2024-01-01"), CustomerName: str(strings.Repeat("n", MaxCustomerNameLength+1))}, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateCreatePass(tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateCreatePassAccepts(t *testing.T) {
	in, err := validateCreatePass(CreatePassRequest{
		Type:         "  weekly ",
		StartDate:    str("2024-01-01"),
		EndDate:      str("2024-01-01"),
		CustomerName: str(" Alice "),
	})
	require.NoError(t, err)
	assert.Equal(t, "weekly", in.passType)
	assert.Equal(t, "Alice", in.customerName)
}

func TestParseCalendarDate(t *testing.T) {
	got, err := parseCalendarDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", got)

	got, err = parseCalendarDate("2024-01-15T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", got, "calendar date as written, not converted to UTC")

	_, err = parseCalendarDate("tomorrow")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestBuildPass(t *testing.T) {
	createdAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	single := buildPass(passInput{passType: "weekly", date: "2024-01-15"}, "p1", "c1", createdAt)
	require.NotNil(t, single.Date)
	assert.Equal(t, "2024-01-15", *single.Date)
	assert.Equal(t, "2024-01-15", single.StartDate)
	assert.Equal(t, "2024-01-15", single.EndDate)
	assert.True(t, single.IsSingleDay())

	open := buildPass(passInput{passType: "hourly", startDate: "2024-01-15"}, "p2", "c1", createdAt)
	assert.Nil(t, open.Date)
	assert.Equal(t, "2024-01-15", open.EndDate)

	ranged := buildPass(passInput{passType: "monthly", startDate: "2024-01-01", endDate: "2024-01-31"}, "p3", "c1", createdAt)
	assert.Equal(t, "2024-01-01", ranged.StartDate)
	assert.Equal(t, "2024-01-31", ranged.EndDate)
	assert.Equal(t, "c1", ranged.CustomerID)
	assert.Equal(t, createdAt, ranged.CreatedAt)
}

func TestValidateUpdatePass(t *testing.T) {
	day := "2024-01-15"
	singleDay := models.Pass{Type: "daily", Date: &day, StartDate: day, EndDate: day, CustomerID: "c1"}
	ranged := models.Pass{Type: "weekly", StartDate: "2024-01-10", EndDate: "2024-01-20", CustomerID: "c1"}

	tests := []struct {
		name     string
		existing models.Pass
		req      UpdatePassRequest
		want     passInput
		wantErr  error
	}{
		{"empty request keeps single day", singleDay, UpdatePassRequest{},
			passInput{passType: "daily", date: day, customerID: "c1"}, nil},
		{"empty request keeps range", ranged, UpdatePassRequest{Type: str("  ")},
			passInput{passType: "weekly", startDate: "2024-01-10", endDate: "2024-01-20", customerID: "c1"}, nil},
		{"new type and owner", ranged, UpdatePassRequest{Type: str(" monthly "), CustomerID: str("c2")},
			passInput{passType: "monthly", startDate: "2024-01-10", endDate: "2024-01-20", customerID: "c2"}, nil},
		{"range to single day", ranged, UpdatePassRequest{Date: str("2024-02-01")},
			passInput{passType: "weekly", date: "2024-02-01", customerID: "c1"}, nil},
		{"single day to range defaults end", singleDay, UpdatePassRequest{StartDate: str("2024-02-01")},
			passInput{passType: "daily", startDate: "2024-02-01", customerID: "c1"}, nil},
		{"single day extended by end", singleDay, UpdatePassRequest{EndDate: str("2024-01-18")},
			passInput{passType: "daily", startDate: day, endDate: "2024-01-18", customerID: "c1"}, nil},
		{"range keeps end when start moves", ranged, UpdatePassRequest{StartDate: str("2024-01-12")},
			passInput{passType: "weekly", startDate: "2024-01-12", endDate: "2024-01-20", customerID: "c1"}, nil},
		{"type too long", ranged, UpdatePassRequest{Type: str(strings.Repeat("x", MaxPassTypeLength+1)), Date: str(day), StartDate: str(day)},
			passInput{}, ErrInvalidType},
		{"conflicting dates", ranged, UpdatePassRequest{Date: str(day), EndDate: str(day)},
			passInput{}, ErrConflictingDates},
		{"invalid date", ranged, UpdatePassRequest{EndDate: str("2024-13-01")},
			passInput{}, ErrInvalidDate},
		{"start moved past stored end", ranged, UpdatePassRequest{StartDate: str("2024-01-25")},
			passInput{}, ErrEndBeforeStart},
		{"end before stored start", ranged, UpdatePassRequest{EndDate: str("2024-01-05")},
			passInput{}, ErrEndBeforeStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateUpdatePass(tt.existing, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
