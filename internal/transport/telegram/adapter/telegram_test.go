package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	kit "reviewbot/internal/transport"
	logx "reviewbot/pkg/logx"
)

func TestSplitTelegramText(t *testing.T) {
	t.Parallel()
	if got := splitTelegramText("short", 10, ""); len(got) != 1 || got[0] != "short" {
		t.Fatalf("short text split: %q", got)
	}

	long := strings.Repeat("a", 6) + "\n" + strings.Repeat("b", 6)
	got := splitTelegramText(long, 10, "")
	if len(got) != 2 || got[0] != "aaaaaa" || got[1] != "bbbbbb" {
		t.Fatalf("newline split = %q", got)
	}

	noBreak := strings.Repeat("x", 25)
	got = splitTelegramText(noBreak, 10, "")
	if len(got) != 3 || len([]rune(got[2])) != 5 {
		t.Fatalf("hard split = %q", got)
	}
}

func TestSplitTelegramTextAvoidsHTMLTags(t *testing.T) {
	t.Parallel()
	got := splitTelegramText("abcdefg<b>bold</b>", 9, "HTML")
	if got[0] != "abcdefg" {
		t.Fatalf("first chunk = %q, want split before tag", got[0])
	}
}

type fakeBotAPI struct {
	mu    sync.Mutex
	texts []string
	fail  bool
}

func (f *fakeBotAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			t.Errorf("unexpected method path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		_ = json.Unmarshal(body, &req)

		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if f.fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
			return
		}
		text, _ := req["text"].(string)
		f.texts = append(f.texts, text)
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":`+strconv.Itoa(len(f.texts))+`,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`)
	}
}

func TestSendTextDeliversToBotAPI(t *testing.T) {
	t.Parallel()
	api := &fakeBotAPI{}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	a, err := New(Config{Token: "123:abc", APIURL: srv.URL, Timeout: 2 * time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ref, err := a.SendText(context.Background(), kit.ChatTarget{ChatID: 42}, "hello", nil)
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if ref.MessageID != 1 || ref.ChatID != 42 {
		t.Fatalf("unexpected ref %+v", ref)
	}
	if len(api.texts) != 1 || api.texts[0] != "hello" {
		t.Fatalf("api saw %q", api.texts)
	}
}

func TestSendTextReportsAPIError(t *testing.T) {
	t.Parallel()
	api := &fakeBotAPI{fail: true}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	a, err := New(Config{Token: "123:abc", APIURL: srv.URL}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.SendText(context.Background(), kit.ChatTarget{ChatID: 1}, "hello", nil); err == nil {
		t.Fatal("expected error from failing Bot API")
	}
}

func TestNewRejectsEmptyToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{Token: "  "}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}
