package token

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClampTTL(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want time.Duration
	}{
		{0, MinTTL},
		{-5 * time.Minute, MinTTL},
		{30 * time.Second, MinTTL},
		{time.Minute, time.Minute},
		{2 * time.Hour, 2 * time.Hour},
		{24 * time.Hour, MaxTTL},
		{999 * time.Hour, MaxTTL},
	}
	for _, tc := range cases {
		if got := ClampTTL(tc.in); got != tc.want {
			t.Fatalf("ClampTTL(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIssueDefaultTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec, _ := NewCodec("test-secret", WithDecodeClock(fixedClock(now)))
	store := NewInMemory()
	issuer, err := NewIssuer(codec, store, WithClock(fixedClock(now)))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	rec, err := issuer.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if rec.Username != "alice" {
		t.Fatalf("unexpected owner: %s", rec.Username)
	}
	if !rec.ExpiresAt.Equal(now.Add(DefaultTTL)) {
		t.Fatalf("expected expiry %v, got %v", now.Add(DefaultTTL), rec.ExpiresAt)
	}

	// Signed expiry and stored expiry must agree exactly.
	claims, err := codec.Decode(rec.Token)
	if err != nil {
		t.Fatalf("Decode issued token: %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(rec.ExpiresAt) {
		t.Fatalf("signed expiry %v != stored expiry %v", claims.ExpiresAt.Time, rec.ExpiresAt)
	}

	stored, err := store.FindByToken(context.Background(), rec.Token)
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if stored.ID != rec.ID {
		t.Fatalf("issuance was not persisted: %v", stored)
	}
}

func TestIssueWithTTLClamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec, _ := NewCodec("test-secret")
	store := NewInMemory()
	issuer, _ := NewIssuer(codec, store, WithClock(fixedClock(now)))

	cases := []struct {
		ttl  time.Duration
		want time.Duration
	}{
		{0, MinTTL},
		{-time.Hour, MinTTL},
		{2 * time.Hour, 2 * time.Hour},
		{48 * time.Hour, MaxTTL},
	}
	for i, tc := range cases {
		// Distinct subjects keep the deterministic raw tokens unique even
		// when two cases clamp to the same expiry.
		username := fmt.Sprintf("user-%d", i)
		rec, err := issuer.IssueWithTTL(context.Background(), username, tc.ttl)
		if err != nil {
			t.Fatalf("IssueWithTTL(%v): %v", tc.ttl, err)
		}
		if !rec.ExpiresAt.Equal(now.Add(tc.want)) {
			t.Fatalf("IssueWithTTL(%v): expected expiry %v, got %v", tc.ttl, now.Add(tc.want), rec.ExpiresAt)
		}
	}
}

func TestIssueCreatesNewRecordEveryTime(t *testing.T) {
	// Advancing clock: tokens are deterministic per instant, so distinct
	// issuance times keep the raw strings unique.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	codec, _ := NewCodec("test-secret")
	store := NewInMemory()
	issuer, _ := NewIssuer(codec, store, WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))

	first, err := issuer.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	second, err := issuer.Issue(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("each issuance must persist a distinct record")
	}

	recs, err := store.FindAllByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindAllByOwner: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
}

func TestIssueRequiresUsername(t *testing.T) {
	codec, _ := NewCodec("test-secret")
	issuer, _ := NewIssuer(codec, NewInMemory())
	if _, err := issuer.Issue(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
