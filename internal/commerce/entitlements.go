package commerce

import "time"

// premiumEntitlements is the allow-list of entitlement names that count
// as premium access.
var premiumEntitlements = map[string]struct{}{
	"premium": {},
	"pro":     {},
}

// Entitlement is one active right in a provider customer-info snapshot.
type Entitlement struct {
	ProductID string    `json:"productId"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Transaction is one non-subscription purchase in the snapshot.
type Transaction struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

// CustomerInfo is the provider snapshot returned after a purchase or a
// restore.
type CustomerInfo struct {
	AppUserID    string                 `json:"appUserId"`
	Entitlements map[string]Entitlement `json:"entitlements"`
	Transactions []Transaction          `json:"transactions"`
}

// PremiumStatus reports whether any allow-listed entitlement is active,
// plus the raw product id behind it.
func PremiumStatus(info CustomerInfo) (bool, string) {
	for name, ent := range info.Entitlements {
		if !ent.Active {
			continue
		}
		if _, ok := premiumEntitlements[name]; ok {
			return true, ent.ProductID
		}
	}
	return false, ""
}
