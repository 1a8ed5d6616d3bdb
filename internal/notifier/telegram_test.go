package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tn := NewTelegramNotifier("TOKEN", "42", "", zaptest.NewLogger(t))
	tn.BaseURL = srv.URL
	tn.Backoff = time.Millisecond
	return tn
}

func TestSend(t *testing.T) {
	var gotPath string
	var payload map[string]string
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
		fmt.Fprint(w, `{"ok":true}`)
	})

	if err := tn.Send(context.Background(), "", "<b>hi</b>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/botTOKEN/sendMessage" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if payload["chat_id"] != "42" || payload["parse_mode"] != "HTML" || payload["text"] != "<b>hi</b>" {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestSend_ExplicitChat(t *testing.T) {
	var payload map[string]string
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	})
	if err := tn.Send(context.Background(), "7", "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["chat_id"] != "7" {
		t.Errorf("expected chat 7, got %s", payload["chat_id"])
	}
}

func TestSend_APIError(t *testing.T) {
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"description":"chat not found"}`)
	})
	err := tn.Send(context.Background(), "", "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected API error with body, got %v", err)
	}
}

func TestSendWithRetry_RecoversAfterFailures(t *testing.T) {
	var calls atomic.Int32
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	})
	if err := tn.SendWithRetry(context.Background(), "x", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	var calls atomic.Int32
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	err := tn.SendWithRetry(context.Background(), "x", 2)
	if err == nil || !strings.Contains(err.Error(), "all 3 attempts failed") {
		t.Fatalf("expected exhaustion error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	tn.Backoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := tn.SendWithRetry(ctx, "x", 3); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStartPolling_RepliesToSender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		offsets []string
		sent    map[string]string
	)
	done := make(chan struct{})
	var served atomic.Bool

	tn := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			mu.Lock()
			offsets = append(offsets, r.URL.Query().Get("offset"))
			mu.Unlock()
			if served.CompareAndSwap(false, true) {
				fmt.Fprint(w, `{"ok":true,"result":[
					{"update_id":5,"message":{"text":" /help ","chat":{"id":99}}},
					{"update_id":6}
				]}`)
				return
			}
			select {
			case <-r.Context().Done():
			case <-time.After(50 * time.Millisecond):
			}
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			mu.Lock()
			_ = json.NewDecoder(r.Body).Decode(&sent)
			mu.Unlock()
			fmt.Fprint(w, `{"ok":true}`)
			close(done)
		}
	})

	var got string
	stopped := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(_ context.Context, text string) string {
			got = text
			return "help text"
		})
		close(stopped)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reply was not sent")
	}
	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}

	if got != "/help" {
		t.Errorf("expected trimmed command, got %q", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if sent["chat_id"] != "99" || sent["text"] != "help text" {
		t.Errorf("unexpected reply payload %v", sent)
	}
	if len(offsets) < 2 || offsets[0] != "0" || offsets[1] != "7" {
		t.Errorf("expected offsets 0 then 7, got %v", offsets)
	}
}
