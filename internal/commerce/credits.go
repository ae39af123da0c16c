// Package commerce resolves purchase results from the two commerce
// providers into credit quantities and entitlement flags. Neither adapter
// performs network I/O; they interpret what the provider already reported.
package commerce

// DefaultPackageCredits is granted when a purchased product id is not in
// the table, so an unrecognized package still delivers something.
const DefaultPackageCredits = 5

var packageCredits = map[string]int{
	"paintsnap_credits_5":  5,
	"paintsnap_credits_15": 15,
	"paintsnap_credits_40": 40,
	"paintsnap_starter":    5,
	"paintsnap_popular":    15,
	"paintsnap_studio":     40,
}

// PackageCredits looks up the credit quantity for a known product id.
func PackageCredits(productID string) (int, bool) {
	credits, ok := packageCredits[productID]
	return credits, ok
}

// CreditsForProduct maps a purchased product id to a credit quantity.
func CreditsForProduct(productID string) int {
	if credits, ok := packageCredits[productID]; ok {
		return credits
	}
	return DefaultPackageCredits
}
