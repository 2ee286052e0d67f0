package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"reviewbot/internal/storage"
	kit "reviewbot/internal/transport"
	logx "reviewbot/pkg/logx"
)

var ErrNoSender = errors.New("notifier has no sender")

// Service sends notices to a single fixed chat.
//
// It is safe for concurrent use, although the poll loop is its only caller.
type Service struct {
	log     logx.Logger
	sender  kit.Sender
	journal storage.Journal

	cfg     Config
	limiter *rate.Limiter

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, sender kit.Sender, journal storage.Journal, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 50
	}
	return &Service{
		log:     log,
		sender:  sender,
		journal: journal,
		cfg:     cfg,
		// Token bucket: burst = rate per sec, so short spikes don't block too hard.
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// Target returns the destination chat.
func (s *Service) Target() kit.ChatTarget {
	return kit.ChatTarget{ChatID: s.cfg.ChatID, ThreadID: s.cfg.ThreadID}
}

// Notify makes one delivery attempt. It never retries.
func (s *Service) Notify(ctx context.Context, m Message) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	ref, err := s.deliver(ctx, m.Text)
	s.record(m, err)
	if err != nil {
		return &DeliveryError{Cause: err}
	}

	s.log.Info("notification sent", logx.String("kind", m.Kind), logx.String("key", m.Key), logx.Int("message_id", ref.MessageID))
	s.hmu.Lock()
	s.history = append(s.history, HistoryItem{At: time.Now(), Text: m.Text, MessageID: ref.MessageID})
	if over := len(s.history) - s.cfg.HistorySize; over > 0 {
		s.history = append([]HistoryItem(nil), s.history[over:]...)
	}
	s.hmu.Unlock()
	return nil
}

func (s *Service) deliver(ctx context.Context, text string) (kit.MessageRef, error) {
	if s.sender == nil {
		return kit.MessageRef{}, ErrNoSender
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return kit.MessageRef{}, fmt.Errorf("rate limit: %w", err)
	}
	return s.sender.SendText(ctx, s.Target(), text, &kit.SendOptions{DisablePreview: true})
}

func (s *Service) record(m Message, sendErr error) {
	if s.journal == nil {
		return
	}
	n := storage.Notice{
		At:        time.Now(),
		CycleID:   m.CycleID,
		Kind:      m.Kind,
		Key:       m.Key,
		Text:      m.Text,
		Delivered: sendErr == nil,
	}
	if sendErr != nil {
		n.Error = sendErr.Error()
	}
	// The journal is best-effort: it gets its own short deadline so an expired send
	// context does not also drop the record of the failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.journal.Append(ctx, n); err != nil {
		s.log.Warn("journal append failed", logx.Err(err))
	}
}

// History returns a copy of recently delivered notices (oldest first).
func (s *Service) History() []HistoryItem {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	return append([]HistoryItem(nil), s.history...)
}
