package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestProfileGenerations(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore()
	seedUser(t, users, 2)
	svc := NewProfileService(users, zerolog.Nop())

	t.Run("grants accumulate", func(t *testing.T) {
		user, err := svc.AddGenerations(ctx, "user-1", 3)
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if user.GenerationsRemaining != 5 || user.Credits != 5 {
			t.Fatalf("profile = %d/%d, want 5/5", user.GenerationsRemaining, user.Credits)
		}
	})

	t.Run("non-positive grant is rejected", func(t *testing.T) {
		if _, err := svc.AddGenerations(ctx, "user-1", 0); err == nil {
			t.Fatalf("expected error for zero grant")
		}
		if _, err := svc.AddGenerations(ctx, "user-1", -4); err == nil {
			t.Fatalf("expected error for negative grant")
		}
	})

	t.Run("consume counts down to zero then blocks", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			if _, err := svc.ConsumeGeneration(ctx, "user-1"); err != nil {
				t.Fatalf("consume %d: %v", i, err)
			}
		}
		user, _ := svc.Load(ctx, "user-1")
		if user.GenerationsRemaining != 0 {
			t.Fatalf("generations = %d, want 0", user.GenerationsRemaining)
		}
		if user.CanTransform() {
			t.Fatalf("exhausted profile reports CanTransform")
		}
		if _, err := svc.ConsumeGeneration(ctx, "user-1"); !errors.Is(err, ErrNoGenerations) {
			t.Fatalf("err = %v, want ErrNoGenerations", err)
		}
	})
}

func TestSetFavoriteArtist(t *testing.T) {
	ctx := context.Background()
	users := newMemUserStore()
	seedUser(t, users, 1)
	svc := NewProfileService(users, zerolog.Nop())

	t.Run("known style", func(t *testing.T) {
		artist := "van-gogh"
		user, err := svc.SetFavoriteArtist(ctx, "user-1", &artist)
		if err != nil {
			t.Fatalf("set: %v", err)
		}
		if user.FavoriteArtist == nil || *user.FavoriteArtist != "van-gogh" {
			t.Fatalf("favorite = %v", user.FavoriteArtist)
		}
	})

	t.Run("unknown style is rejected", func(t *testing.T) {
		artist := "banksy"
		if _, err := svc.SetFavoriteArtist(ctx, "user-1", &artist); err == nil {
			t.Fatalf("expected error for unknown style")
		}
	})

	t.Run("nil clears the preference", func(t *testing.T) {
		user, err := svc.SetFavoriteArtist(ctx, "user-1", nil)
		if err != nil {
			t.Fatalf("clear: %v", err)
		}
		if user.FavoriteArtist != nil {
			t.Fatalf("favorite = %v, want nil", user.FavoriteArtist)
		}
	})
}
