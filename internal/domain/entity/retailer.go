package entity

import "time"

// Retailer is a physical dispensary location orders are picked up from.
type Retailer struct {
	ID            string `json:"id" firestore:"id"`
	OrgID         string `json:"org_id" firestore:"orgId"`
	Name          string `json:"name" firestore:"name"`
	Address       string `json:"address" firestore:"address"`
	State         string `json:"state" firestore:"state"`
	LicenseNumber string `json:"license_number" firestore:"licenseNumber"`

	// CannMenusKey identifies this location in the CannMenus catalog,
	// used for menu sync and competitor snapshots.
	CannMenusKey string `json:"cannmenus_key,omitempty" firestore:"cannmenusKey,omitempty"`

	// SalesTaxBps and ExciseTaxBps are tax rates in basis points
	// (1/100 of a percent) applied to the discounted subtotal.
	SalesTaxBps  int64 `json:"sales_tax_bps" firestore:"salesTaxBps"`
	ExciseTaxBps int64 `json:"excise_tax_bps" firestore:"exciseTaxBps"`

	Active    bool      `json:"active" firestore:"active"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// TaxBps returns the combined tax rate in basis points.
func (r *Retailer) TaxBps() int64 {
	return r.SalesTaxBps + r.ExciseTaxBps
}
