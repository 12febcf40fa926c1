package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	state := models.NewConversationState("conv-1", "user-1", "671234567", 3)
	state.StartFlow(models.FlowTransfer, models.StepAskReceiver)
	state.AddData("receiver_phone", "698765432")
	state.Language = "fr"

	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FlowType != models.FlowTransfer || got.FlowStep != models.StepAskReceiver {
		t.Errorf("flow = %s/%s, want transfer/ask_receiver", got.FlowType, got.FlowStep)
	}
	if got.Data("receiver_phone") != "698765432" {
		t.Errorf("collected data lost: %v", got.CollectedData)
	}
	if got.Language != "fr" {
		t.Errorf("language = %q, want fr", got.Language)
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	now := time.Now()
	store.now = func() time.Time { return now }

	state := models.NewConversationState("conv-1", "user-1", "671234567", 3)
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Still there just before the TTL.
	now = now.Add(59 * time.Second)
	if _, err := store.Get(ctx, "conv-1"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	// Expired reads behave like not-found.
	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "conv-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreSaveRestartsTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	now := time.Now()
	store.now = func() time.Time { return now }

	state := models.NewConversationState("conv-1", "user-1", "671234567", 3)
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A save at t+50s must push expiry out to t+110s.
	now = now.Add(50 * time.Second)
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("re-Save: %v", err)
	}

	now = now.Add(100 * time.Second)
	if _, err := store.Get(ctx, "conv-1"); err != nil {
		t.Errorf("Get after TTL restart: %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	state := models.NewConversationState("conv-1", "user-1", "671234567", 3)
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, "conv-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "conv-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	// Deleting twice is fine.
	if err := store.Delete(ctx, "conv-1"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestMemoryStoreCopiesState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	state := models.NewConversationState("conv-1", "user-1", "671234567", 3)
	state.AddData("name", "Marie")
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the caller's copy after save must not leak into the store.
	state.AddData("name", "Paul")

	got, err := store.Get(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Data("name") != "Marie" {
		t.Errorf("stored data mutated through caller reference: %q", got.Data("name"))
	}

	// And mutating the returned copy must not affect the next read.
	got.AddData("name", "Jean")
	again, err := store.Get(ctx, "conv-1")
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if again.Data("name") != "Marie" {
		t.Errorf("stored data mutated through returned reference: %q", again.Data("name"))
	}
}
