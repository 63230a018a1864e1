package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"DrinkBuddy/internal/model"
)

func TestOutboxRelayerDeliversInOrder(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	host := createUser(t, gdb, "host")
	a := createUser(t, gdb, "alice")
	m := createMeetup(t, gdb, host.ID, 2)

	parts := NewParticipantService(gdb)
	if _, err := parts.Join(ctx, m.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := parts.Leave(ctx, m.ID, a.ID); err != nil {
		t.Fatal(err)
	}

	var got []string
	sender := func(_ context.Context, ob *model.MeetupOutbox) error {
		var body map[string]any
		if err := json.Unmarshal([]byte(ob.Payload), &body); err != nil {
			t.Fatalf("payload: %v", err)
		}
		if uint64(body["meetup_id"].(float64)) != m.ID {
			t.Fatalf("payload meetup id = %v", body["meetup_id"])
		}
		got = append(got, ob.EventType)
		return nil
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	relayer := NewOutboxRelayer(gdb, sender, RelayerConfig{BatchSize: 10}, logger)

	if n := relayer.DrainOnce(ctx); n != 2 {
		t.Fatalf("sent = %d, want 2", n)
	}
	if len(got) != 2 || got[0] != model.EventJoined || got[1] != model.EventLeft {
		t.Fatalf("events = %v", got)
	}
	if n := relayer.DrainOnce(ctx); n != 0 {
		t.Fatalf("second drain sent = %d", n)
	}
}

func TestOutboxRelayerRetriesUntilLimit(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()
	host := createUser(t, gdb, "host")
	m := createMeetup(t, gdb, host.ID, 2)
	if _, err := NewMeetupService(gdb).Close(ctx, m.ID, host.ID); err != nil {
		t.Fatal(err)
	}

	attempts := 0
	failing := func(context.Context, *model.MeetupOutbox) error {
		attempts++
		return errors.New("broker down")
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	relayer := NewOutboxRelayer(gdb, failing, RelayerConfig{MaxRetry: 2}, logger)

	for i := 0; i < 4; i++ {
		relayer.DrainOnce(ctx)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}

	var ob model.MeetupOutbox
	if err := gdb.First(&ob).Error; err != nil {
		t.Fatal(err)
	}
	if ob.Status != model.OutboxFailed || ob.Retry != 2 {
		t.Fatalf("outbox row = %+v", ob)
	}
}

func TestLogSender(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := LogSender(logger)(context.Background(), &model.MeetupOutbox{EventType: model.EventJoined}); err != nil {
		t.Fatal(err)
	}
}
