package pkg

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := NewSigner("k", 0).WithClock(func() time.Time { return now })

	token, exp, err := s.Issue(42, "neo")
	if err != nil {
		t.Fatal(err)
	}
	if !exp.Equal(now.Add(AccessTTL)) || AccessTTL != 7*24*time.Hour {
		t.Fatalf("exp = %v", exp)
	}

	claims, err := s.ParseAccess(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "neo" || claims.ID == "" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseFailures(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := now
	s := NewSigner("k", time.Minute).WithClock(func() time.Time { return clock })
	token, _, _ := s.Issue(1, "a")

	if _, err := s.ParseAccess("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("garbage: %v", err)
	}
	if _, err := NewSigner("other", time.Minute).WithClock(func() time.Time { return now }).ParseAccess(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong key: %v", err)
	}

	clock = now.Add(2 * time.Minute)
	if _, err := s.ParseAccess(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expired: %v", err)
	}
}

func TestParseRejectsZeroUser(t *testing.T) {
	s := NewSigner("k", time.Minute)
	token, _, _ := s.Issue(0, "ghost")
	if _, err := s.ParseAccess(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("zero user: %v", err)
	}
}

func TestRequestID(t *testing.T) {
	if RequestID("abc") != "abc" {
		t.Fatal("should keep incoming id")
	}
	if id := RequestID(""); len(id) != 36 {
		t.Fatalf("generated id = %q", id)
	}
}

func TestNewKafkaProducerValidates(t *testing.T) {
	if _, err := NewKafkaProducer(KafkaConfig{Topic: "t"}); err == nil {
		t.Fatal("expected error without brokers")
	}
	p, err := NewKafkaProducer(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "meetup-events"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Topic() != "meetup-events" {
		t.Fatalf("topic = %q", p.Topic())
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if MakeKeyFromID(15) != "15" {
		t.Fatal("key")
	}
}
