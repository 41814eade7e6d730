package conversation

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestTranscript(t *testing.T, max int64) *TranscriptStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTranscriptStore(client, max)
}

func TestTranscriptAppendAndList(t *testing.T) {
	store := newTestTranscript(t, 250)
	ctx := context.Background()

	msgs := []Message{
		{ID: "m1", ConversationID: "conv-1", Role: RoleCustomer, Content: "oi"},
		{ID: "m2", ConversationID: "conv-1", Role: RoleAgent, Content: "olá!"},
		{ID: "m3", ConversationID: "conv-1", Role: RoleOperator, Content: "assumindo", OperatorName: "Paula"},
	}
	for _, m := range msgs {
		if err := store.Append(ctx, "conv-1", m); err != nil {
			t.Fatalf("Append(%s) error: %v", m.ID, err)
		}
	}

	got, err := store.List(ctx, "conv-1", 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "m1" || got[2].ID != "m3" {
		t.Errorf("order = [%s .. %s], want oldest first", got[0].ID, got[2].ID)
	}
	if got[2].OperatorName != "Paula" {
		t.Errorf("operator name = %q, want Paula", got[2].OperatorName)
	}
}

func TestTranscriptListLimit(t *testing.T) {
	store := newTestTranscript(t, 250)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		msg := Message{ID: fmt.Sprintf("m%d", i), ConversationID: "conv-1", Role: RoleCustomer, Content: "x"}
		if err := store.Append(ctx, "conv-1", msg); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.List(ctx, "conv-1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "m3" || got[1].ID != "m4" {
		t.Errorf("limit must keep the most recent messages, got [%s, %s]", got[0].ID, got[1].ID)
	}
}

func TestTranscriptCapsRetention(t *testing.T) {
	store := newTestTranscript(t, 3)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		msg := Message{ID: fmt.Sprintf("m%d", i), ConversationID: "conv-1", Role: RoleCustomer, Content: "x"}
		if err := store.Append(ctx, "conv-1", msg); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.List(ctx, "conv-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (capped)", len(got))
	}
	if got[0].ID != "m3" {
		t.Errorf("oldest retained = %s, want m3", got[0].ID)
	}
}

func TestTranscriptEmptyConversationID(t *testing.T) {
	store := newTestTranscript(t, 10)
	if err := store.Append(context.Background(), "", Message{}); err == nil {
		t.Error("Append with empty conversation id must fail")
	}
	if _, err := store.List(context.Background(), "", 0); err == nil {
		t.Error("List with empty conversation id must fail")
	}
}

func TestTranscriptNilStoreIsNoop(t *testing.T) {
	var store *TranscriptStore
	if err := store.Append(context.Background(), "conv-1", Message{}); err != nil {
		t.Errorf("nil store Append error: %v", err)
	}
	msgs, err := store.List(context.Background(), "conv-1", 0)
	if err != nil || msgs != nil {
		t.Errorf("nil store List = (%v, %v), want (nil, nil)", msgs, err)
	}
}
