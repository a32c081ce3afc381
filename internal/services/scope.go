package services

import (
	"strings"
	"time"

	"bizflow_backend/internal/models"
	"bizflow_backend/pkg/utils"

	"github.com/google/uuid"
)

// SaleListParams holds raw query values for the sales list.
type SaleListParams struct {
	CustomerID    string
	PaymentStatus string
	StartDate     string // YYYY-MM-DD, inclusive
	EndDate       string // YYYY-MM-DD, inclusive
}

// SaleListScope builds the filters for a sales listing. The business is
// always the caller's, and a customer caller is pinned to their own sales
// whatever customer_id the request carries.
func SaleListScope(p models.Principal, params SaleListParams) (models.SaleFilters, error) {
	filters := models.SaleFilters{BusinessID: p.BusinessID}

	if p.IsCustomer() {
		self := p.ID
		filters.CustomerID = &self
	} else {
		customerID, err := utils.ParseOptionalUUID(params.CustomerID)
		if err != nil {
			return filters, invalidField("customer_id", "must be a valid id")
		}
		filters.CustomerID = customerID
	}

	if raw := strings.TrimSpace(params.PaymentStatus); raw != "" {
		status := models.PaymentStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return filters, invalidField("payment_status", "must be one of PENDING, PARTIAL, PAID")
		}
		filters.PaymentStatus = &status
	}

	start, end, err := parseDateRange(params.StartDate, params.EndDate)
	if err != nil {
		return filters, err
	}
	filters.StartDate, filters.EndDate = start, end
	return filters, nil
}

// CanViewSale reports whether p may read sale s. The business check is done
// by the repository; customers additionally see only their own sales.
func CanViewSale(p models.Principal, s *models.Sale) bool {
	return !p.IsCustomer() || s.CustomerID == p.ID
}

// DashboardScope returns the creator filter for dashboard revenue figures
// and whether the admin-only aggregates are included.
func DashboardScope(p models.Principal) (createdBy *uuid.UUID, includeAdminFields bool) {
	if p.IsAdmin() {
		return nil, true
	}
	self := p.ID
	return &self, false
}

// parseDateRange turns inclusive YYYY-MM-DD bounds into [start, end+1day).
func parseDateRange(rawStart, rawEnd string) (*time.Time, *time.Time, error) {
	start, err := utils.ParseOptionalDate(rawStart)
	if err != nil {
		return nil, nil, invalidField("start_date", "must be a date in YYYY-MM-DD format")
	}
	end, err := utils.ParseOptionalDate(rawEnd)
	if err != nil {
		return nil, nil, invalidField("end_date", "must be a date in YYYY-MM-DD format")
	}
	if end != nil {
		exclusive := end.AddDate(0, 0, 1)
		end = &exclusive
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, invalidField("end_date", "must not be before start_date")
	}
	return start, end, nil
}
