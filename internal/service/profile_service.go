package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"paintsnap/internal/models"
	"paintsnap/internal/styles"
)

// ProfileService owns profile reads and credit mutations. All mutations
// are relative increments applied by the store, so overlapping calls from
// multiple devices cannot lose updates.
type ProfileService struct {
	users UserStore
	log   zerolog.Logger
}

func NewProfileService(users UserStore, log zerolog.Logger) *ProfileService {
	return &ProfileService{users: users, log: log}
}

func (s *ProfileService) Load(ctx context.Context, userID string) (models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// AddGenerations grants n generations (and mirrors the credit counter)
// and returns the updated profile.
func (s *ProfileService) AddGenerations(ctx context.Context, userID string, amount int) (models.User, error) {
	if amount <= 0 {
		return models.User{}, fmt.Errorf("amount must be positive")
	}
	user, err := s.users.AddGenerations(ctx, userID, amount)
	if err != nil {
		return models.User{}, err
	}
	s.log.Info().Str("user_id", userID).Int("amount", amount).Int("remaining", user.GenerationsRemaining).Msg("generations granted")
	return user, nil
}

// ConsumeGeneration spends one generation. ErrNoGenerations comes back
// when the counter is already zero.
func (s *ProfileService) ConsumeGeneration(ctx context.Context, userID string) (models.User, error) {
	return s.users.ConsumeGeneration(ctx, userID)
}

func (s *ProfileService) SetFavoriteArtist(ctx context.Context, userID string, artist *string) (models.User, error) {
	if artist != nil {
		if _, ok := styles.Lookup(*artist); !ok {
			return models.User{}, fmt.Errorf("unknown artist style: %s", *artist)
		}
	}
	return s.users.SetFavoriteArtist(ctx, userID, artist)
}
