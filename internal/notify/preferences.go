// Package notify persists per-user notification preferences: one
// namespaced key holding a small JSON object, read and written wholesale.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Preferences struct {
	RemindersEnabled    bool `json:"remindersEnabled"`
	ResultAlertsEnabled bool `json:"resultAlertsEnabled"`
	PromotionsEnabled   bool `json:"promotionsEnabled"`
}

// DefaultPreferences is what a user gets before ever saving.
func DefaultPreferences() Preferences {
	return Preferences{
		RemindersEnabled:    true,
		ResultAlertsEnabled: true,
		PromotionsEnabled:   false,
	}
}

type PreferenceStore struct {
	client *redis.Client
}

func NewPreferenceStore(client *redis.Client) *PreferenceStore {
	return &PreferenceStore{client: client}
}

func prefsKey(userID string) string {
	return "notify:prefs:" + userID
}

func (s *PreferenceStore) Get(ctx context.Context, userID string) (Preferences, error) {
	raw, err := s.client.Get(ctx, prefsKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return DefaultPreferences(), nil
		}
		return Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

func (s *PreferenceStore) Set(ctx context.Context, userID string, prefs Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.client.Set(ctx, prefsKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
