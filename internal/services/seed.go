package services

import (
	"context"
	"fmt"

	"eden_passes_backend/internal/models"
	"eden_passes_backend/pkg/utils"
)

func strPtr(s string) *string { return &s }

// SeedDemoData registers the demo customers and passes. It is meant for an
// empty store and skips the passes when customers already exist.
func SeedDemoData(ctx context.Context, customers CustomerService, passes PassService) error {
	existing, err := customers.SearchCustomers(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		utils.LogInfo("Store is not empty, skipping demo data", map[string]interface{}{"customers": len(existing)})
		return nil
	}

	demoCustomers := []CreateCustomerRequest{
		{Name: "John Doe"},
		{Name: "Jane Smith"},
		{Name: "Bob Johnson"},
	}
	created := make([]*models.Customer, 0, len(demoCustomers))
	for _, req := range demoCustomers {
		customer, err := customers.CreateCustomer(ctx, req)
		if err != nil {
			return fmt.Errorf("seeding customer %q: %w", req.Name, err)
		}
		created = append(created, customer)
	}

	demoPasses := []CreatePassRequest{
		{Type: "weekly", Date: strPtr("2024-01-15"), CustomerID: strPtr(created[0].ID)},
		{Type: "monthly", Date: strPtr("2024-01-20"), CustomerID: strPtr(created[1].ID)},
	}
	for _, req := range demoPasses {
		if _, err := passes.CreatePass(ctx, req); err != nil {
			return fmt.Errorf("seeding %s pass: %w", req.Type, err)
		}
	}

	utils.LogInfo("Demo data seeded", map[string]interface{}{"customers": len(created), "passes": len(demoPasses)})
	return nil
}
