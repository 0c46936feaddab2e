package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"todovault.org/internal/obs"
	"todovault.org/internal/user"
)

func TestLogEvent(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-123")
	ctx = user.ContextWithPrincipal(ctx, user.User{ID: "u1", Username: "alice"})

	if err := LogEvent(ctx, "auth.token.issued", map[string]any{"token_id": "t1"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v (%s)", err, buf.String())
	}
	if entry["type"] != "audit" {
		t.Fatalf("unexpected type: %v", entry["type"])
	}
	if entry["event"] != "auth.token.issued" {
		t.Fatalf("unexpected event: %v", entry["event"])
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("unexpected request id: %v", entry["request_id"])
	}
	if entry["username"] != "alice" {
		t.Fatalf("unexpected username: %v", entry["username"])
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["token_id"] != "t1" {
		t.Fatalf("fields missing or incorrect: %v", entry["fields"])
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for blank event name")
	}
}

func TestLogEventWithoutContext(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	if err := LogEvent(context.Background(), "migrate.applied", nil); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if _, present := entry["request_id"]; present {
		t.Fatal("request_id must be omitted outside a request")
	}
	if _, present := entry["username"]; present {
		t.Fatal("username must be omitted without a principal")
	}
}
