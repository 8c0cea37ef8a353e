package notifier

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestDiscordNotifier(t *testing.T, handler http.HandlerFunc) *DiscordNotifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	n, err := NewDiscordNotifier(server.URL)
	if err != nil {
		t.Fatalf("NewDiscordNotifier() error: %v", err)
	}
	n.pause = 0
	return n
}

func TestNewDiscordNotifier_RequiresURL(t *testing.T) {
	if _, err := NewDiscordNotifier(""); err == nil {
		t.Error("expected an error for empty webhook URL")
	}
}

func TestDiscordNotify(t *testing.T) {
	var payloads []webhookPayload
	n := newTestDiscordNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var payload webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding payload: %v", err)
		}
		payloads = append(payloads, payload)
		w.WriteHeader(http.StatusNoContent)
	})

	err := n.Notify([]string{"first message", "second message"})
	if err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	if len(payloads) != 2 {
		t.Fatalf("got %d posts, want 2", len(payloads))
	}
	if payloads[0].Content != "first message" || payloads[1].Content != "second message" {
		t.Errorf("payloads = %+v, want messages in order", payloads)
	}
}

func TestDiscordNotify_RetriesOnce(t *testing.T) {
	attempts := 0
	n := newTestDiscordNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := n.Notify([]string{"message"}); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestDiscordNotify_FailsAfterRetry(t *testing.T) {
	attempts := 0
	n := newTestDiscordNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if err := n.Notify([]string{"message"}); err == nil {
		t.Error("Notify() should fail after the retry")
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestDiscordNotify_TruncatesLongMessage(t *testing.T) {
	var got string
	n := newTestDiscordNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		json.NewDecoder(r.Body).Decode(&payload)
		got = payload.Content
		w.WriteHeader(http.StatusNoContent)
	})

	long := strings.Repeat("x", maxMessageLength+100)
	if err := n.Notify([]string{long}); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if len(got) != maxMessageLength {
		t.Errorf("len = %d, want %d", len(got), maxMessageLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated message should end with ellipsis")
	}
}

func TestDryRunNotify(t *testing.T) {
	var buf bytes.Buffer
	n := &DryRunNotifier{out: &buf}

	if err := n.Notify([]string{"hello", "world"}); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"--- Notification 1/2 ---", "hello", "--- Notification 2/2 ---", "world"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
