package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"paintsnap/internal/commerce"
	"paintsnap/internal/config"
	"paintsnap/internal/ids"
	"paintsnap/internal/models"
)

// CommerceService applies purchase completions and restores to the
// profile. Every grant goes through the ledger first, so a replayed
// completion event is a no-op.
type CommerceService struct {
	users  UserStore
	ledger LedgerStore
	cfg    config.CommerceConfig
	log    zerolog.Logger
}

func NewCommerceService(users UserStore, ledger LedgerStore, cfg config.CommerceConfig, log zerolog.Logger) *CommerceService {
	return &CommerceService{users: users, ledger: ledger, cfg: cfg, log: log}
}

// creditsFor resolves a product id against the package table, falling
// back to the configured default for ids the table does not know.
func (s *CommerceService) creditsFor(productID string) int {
	if credits, ok := commerce.PackageCredits(productID); ok {
		return credits
	}
	if s.cfg.DefaultCredits > 0 {
		return s.cfg.DefaultCredits
	}
	return commerce.DefaultPackageCredits
}

type PurchaseEvent struct {
	EventID   string
	UserID    string
	ProductID string
	Source    models.LedgerSource
}

// ApplyPurchase resolves the product to a credit quantity and grants it
// once per event id. Returns the updated profile and whether the grant
// was applied (false on replay).
func (s *CommerceService) ApplyPurchase(ctx context.Context, event PurchaseEvent) (models.User, bool, error) {
	if event.EventID == "" || event.UserID == "" {
		return models.User{}, false, fmt.Errorf("event id and user id required")
	}

	credits := s.creditsFor(event.ProductID)

	applied, err := s.ledger.Record(ctx, models.LedgerEntry{
		ID:        ids.New(),
		UserID:    event.UserID,
		EventID:   event.EventID,
		ProductID: event.ProductID,
		Credits:   credits,
		Source:    event.Source,
	})
	if err != nil {
		return models.User{}, false, fmt.Errorf("record grant: %w", err)
	}

	if !applied {
		s.log.Info().Str("event_id", event.EventID).Msg("duplicate purchase event ignored")
		user, err := s.users.GetByID(ctx, event.UserID)
		return user, false, err
	}

	user, err := s.users.AddGenerations(ctx, event.UserID, credits)
	if err != nil {
		return models.User{}, false, fmt.Errorf("grant credits: %w", err)
	}

	s.log.Info().
		Str("user_id", event.UserID).
		Str("product_id", event.ProductID).
		Int("credits", credits).
		Msg("purchase applied")
	return user, true, nil
}

// ApplyCustomerInfo reconciles a provider customer-info snapshot: the
// premium entitlement flag is recomputed from the allow-list and any
// unseen non-subscription transactions are granted through the ledger.
func (s *CommerceService) ApplyCustomerInfo(ctx context.Context, userID string, info commerce.CustomerInfo) (models.User, error) {
	premium, productID := commerce.PremiumStatus(info)

	var productPtr *string
	if premium {
		productPtr = &productID
	}

	user, err := s.users.SetPremium(ctx, userID, premium, productPtr)
	if err != nil {
		return models.User{}, fmt.Errorf("set premium: %w", err)
	}

	for _, tx := range info.Transactions {
		user, _, err = s.ApplyPurchase(ctx, PurchaseEvent{
			EventID:   tx.ID,
			UserID:    userID,
			ProductID: tx.ProductID,
			Source:    models.LedgerSourceRestore,
		})
		if err != nil {
			return models.User{}, err
		}
	}

	return user, nil
}
