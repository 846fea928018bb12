package entity

import "time"

// Product is a catalog item owned by an org. All money amounts across
// the platform are integer cents.
type Product struct {
	ID       string `json:"id" firestore:"id"`
	OrgID    string `json:"org_id" firestore:"orgId"`
	Name     string `json:"name" firestore:"name"`
	Brand    string `json:"brand" firestore:"brand"`
	Category string `json:"category" firestore:"category"` // flower, edible, vape, ...

	// PriceCents is the base price; RetailerPrices overrides it per
	// retailer where a dispensary sets its own shelf price.
	PriceCents     int64            `json:"price_cents" firestore:"priceCents"`
	RetailerPrices map[string]int64 `json:"retailer_prices,omitempty" firestore:"retailerPrices,omitempty"`

	THCPercent float64 `json:"thc_percent" firestore:"thcPercent"`
	CBDPercent float64 `json:"cbd_percent" firestore:"cbdPercent"`

	ImageURL  string    `json:"image_url,omitempty" firestore:"imageUrl,omitempty"`
	Active    bool      `json:"active" firestore:"active"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// PriceFor returns the unit price for a retailer, falling back to the
// base price when no override exists.
func (p *Product) PriceFor(retailerID string) int64 {
	if price, ok := p.RetailerPrices[retailerID]; ok {
		return price
	}

	return p.PriceCents
}
