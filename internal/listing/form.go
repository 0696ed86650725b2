package listing

import (
	"math"
	"strconv"
	"strings"

	"github.com/openstay/marketplace/backend/internal/currency"
)

// Form carries the collected fields of a new listing. It is an explicit
// form-state value: category selection goes through SetCategory so that
// a stale subcategory choice can never survive a category change.
type Form struct {
	Title         string
	Description   string
	CategoryID    *int64
	SubcategoryID *int64
	Price         string
	Currency      string
	Address       string
	City          string
	State         string
	Country       string
	PostalCode    string
	Rules         string
	AmenityIDs    []int64
}

// SetCategory records a category choice. Changing to a different
// category (or clearing it) invalidates any chosen subcategory, since
// subcategories only make sense under their parent.
func (f *Form) SetCategory(id *int64) {
	switch {
	case id == nil:
		f.SubcategoryID = nil
	case f.CategoryID == nil || *f.CategoryID != *id:
		f.SubcategoryID = nil
	}
	f.CategoryID = id
}

// SetSubcategory records a subcategory choice under the current category.
func (f *Form) SetSubcategory(id *int64) {
	f.SubcategoryID = id
}

// Validate runs the pure field checks and returns a map of field name
// to message. An empty map means the form is acceptable; the price is a
// non-negative decimal kept as a string, and the currency must come
// from the static reference list (defaulting when blank).
func (f *Form) Validate() map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(f.Description) == "" {
		errs["description"] = "description is required"
	}

	if strings.TrimSpace(f.Price) == "" {
		errs["price"] = "price is required"
	} else if n, err := strconv.ParseFloat(f.Price, 64); err != nil {
		errs["price"] = "price must be numeric"
	} else if math.IsNaN(n) || math.IsInf(n, 0) {
		// ParseFloat accepts "NaN" and "Inf"; neither is a price.
		errs["price"] = "price must be a finite number"
	} else if n < 0 {
		errs["price"] = "price must not be negative"
	}

	if f.Currency == "" {
		f.Currency = currency.Default
	} else if !currency.Valid(f.Currency) {
		errs["currency"] = "unknown currency code"
	}

	if f.SubcategoryID != nil && f.CategoryID == nil {
		errs["subcategory_id"] = "subcategory requires a category"
	}

	return errs
}
