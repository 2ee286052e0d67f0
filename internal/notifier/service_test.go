package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reviewbot/internal/storage"
	kit "reviewbot/internal/transport"
	logx "reviewbot/pkg/logx"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	to    []kit.ChatTarget
	err   error
	block bool
}

func (f *fakeSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if f.block {
		<-ctx.Done()
		return kit.MessageRef{}, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return kit.MessageRef{}, f.err
	}
	f.sent = append(f.sent, text)
	f.to = append(f.to, to)
	return kit.MessageRef{ChatID: to.ChatID, MessageID: len(f.sent)}, nil
}

type memJournal struct {
	mu      sync.Mutex
	notices []storage.Notice
}

func (m *memJournal) Append(ctx context.Context, n storage.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, n)
	return nil
}

func (m *memJournal) Close() error { return nil }

func TestNotifySendsToConfiguredChat(t *testing.T) {
	t.Parallel()
	snd := &fakeSender{}
	j := &memJournal{}
	s := New(Config{ChatID: 777, RatePerSec: 100}, snd, j, logx.Nop())

	err := s.Notify(context.Background(), Message{Text: "hello", Kind: storage.KindStatus, Key: "approved", CycleID: "c1"})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(snd.sent) != 1 || snd.sent[0] != "hello" || snd.to[0].ChatID != 777 {
		t.Fatalf("unexpected delivery %q to %+v", snd.sent, snd.to)
	}
	if h := s.History(); len(h) != 1 || h[0].MessageID != 1 {
		t.Fatalf("unexpected history %+v", h)
	}
	if len(j.notices) != 1 || !j.notices[0].Delivered || j.notices[0].Key != "approved" {
		t.Fatalf("unexpected journal %+v", j.notices)
	}
}

func TestNotifyReturnsDeliveryError(t *testing.T) {
	t.Parallel()
	cause := errors.New("telegram: chat not found (400)")
	j := &memJournal{}
	s := New(Config{ChatID: 1, RatePerSec: 100}, &fakeSender{err: cause}, j, logx.Nop())

	err := s.Notify(context.Background(), Message{Text: "x"})
	var de *DeliveryError
	if !errors.As(err, &de) || !errors.Is(err, cause) {
		t.Fatalf("Notify error = %v, want DeliveryError wrapping cause", err)
	}
	if len(s.History()) != 0 {
		t.Fatal("failed delivery must not enter history")
	}
	if len(j.notices) != 1 || j.notices[0].Delivered || j.notices[0].Error == "" {
		t.Fatalf("failed attempt not journaled: %+v", j.notices)
	}
}

func TestNotifyTimesOut(t *testing.T) {
	t.Parallel()
	s := New(Config{ChatID: 1, SendTimeout: 30 * time.Millisecond}, &fakeSender{block: true}, nil, logx.Nop())

	start := time.Now()
	err := s.Notify(context.Background(), Message{Text: "x"})
	var de *DeliveryError
	if !errors.As(err, &de) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Notify error = %v, want DeliveryError(deadline)", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("send timeout not enforced")
	}
}

func TestNotifyWithoutSender(t *testing.T) {
	t.Parallel()
	s := New(Config{ChatID: 1}, nil, nil, logx.Nop())
	if err := s.Notify(context.Background(), Message{Text: "x"}); !errors.Is(err, ErrNoSender) {
		t.Fatalf("Notify error = %v, want ErrNoSender", err)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	t.Parallel()
	s := New(Config{ChatID: 1, RatePerSec: 1000, HistorySize: 3}, &fakeSender{}, nil, logx.Nop())
	for i := 0; i < 5; i++ {
		if err := s.Notify(context.Background(), Message{Text: "n"}); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}
	h := s.History()
	if len(h) != 3 || h[0].MessageID != 3 || h[2].MessageID != 5 {
		t.Fatalf("unexpected history %+v", h)
	}
}
