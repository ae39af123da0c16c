package commerce

import "testing"

func TestCreditsForProduct(t *testing.T) {
	cases := []struct {
		productID string
		want      int
	}{
		{"paintsnap_credits_5", 5},
		{"paintsnap_credits_15", 15},
		{"paintsnap_credits_40", 40},
		{"paintsnap_studio", 40},
		{"com.vendor.unknown_pack", DefaultPackageCredits},
		{"", DefaultPackageCredits},
	}
	for _, tc := range cases {
		if got := CreditsForProduct(tc.productID); got != tc.want {
			t.Errorf("CreditsForProduct(%q) = %d, want %d", tc.productID, got, tc.want)
		}
	}
}

func TestPremiumStatus(t *testing.T) {
	t.Run("active premium entitlement", func(t *testing.T) {
		premium, productID := PremiumStatus(CustomerInfo{
			Entitlements: map[string]Entitlement{
				"premium": {ProductID: "paintsnap_monthly", Active: true},
			},
		})
		if !premium || productID != "paintsnap_monthly" {
			t.Fatalf("status = %v/%q", premium, productID)
		}
	})

	t.Run("pro also counts", func(t *testing.T) {
		premium, _ := PremiumStatus(CustomerInfo{
			Entitlements: map[string]Entitlement{
				"pro": {ProductID: "paintsnap_yearly", Active: true},
			},
		})
		if !premium {
			t.Fatal("pro entitlement not recognized")
		}
	})

	t.Run("inactive entitlement does not count", func(t *testing.T) {
		premium, _ := PremiumStatus(CustomerInfo{
			Entitlements: map[string]Entitlement{
				"premium": {ProductID: "paintsnap_monthly", Active: false},
			},
		})
		if premium {
			t.Fatal("inactive entitlement reported premium")
		}
	})

	t.Run("unlisted entitlement does not count", func(t *testing.T) {
		premium, _ := PremiumStatus(CustomerInfo{
			Entitlements: map[string]Entitlement{
				"beta_tester": {ProductID: "beta", Active: true},
			},
		})
		if premium {
			t.Fatal("unlisted entitlement reported premium")
		}
	})

	t.Run("empty snapshot", func(t *testing.T) {
		if premium, _ := PremiumStatus(CustomerInfo{}); premium {
			t.Fatal("empty snapshot reported premium")
		}
	})
}
