package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"SignalSage/internal/collector"
	"SignalSage/internal/model"
	"SignalSage/internal/notifier"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sendRetries = 3

// SignalSource produces signals and chat answers.
type SignalSource interface {
	Signal(ctx context.Context, pair string, depth int) (*model.Signal, error)
	Respond(ctx context.Context, query string, profile model.UserProfile) string
}

// Sender delivers alert messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler refreshes watchlist signals on a cron and alerts on changes.
type Scheduler struct {
	Cron      *cron.Cron
	Source    SignalSource
	Notifier  Sender
	Watchlist []string
	Ctx       context.Context

	log  *zap.Logger
	mu   sync.Mutex
	last map[string]*model.Signal
}

// NewScheduler creates a new Scheduler. tn may be nil, in which case
// signals are refreshed and recorded without alerts.
func NewScheduler(ctx context.Context, src SignalSource, tn Sender, watchlist []string, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	pairs := make([]string, 0, len(watchlist))
	for _, p := range watchlist {
		if n := collector.NormalizeSymbol(p); n != "" {
			pairs = append(pairs, n)
		}
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Source:    src,
		Notifier:  tn,
		Watchlist: pairs,
		Ctx:       ctx,
		log:       log,
		last:      make(map[string]*model.Signal),
	}
}

// Register adds the watchlist refresh task.
func (s *Scheduler) Register(watchCron string) error {
	if _, err := s.Cron.AddFunc(watchCron, s.refreshTask); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Strings("watchlist", s.Watchlist))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow refreshes the watchlist immediately and returns the new signals.
func (s *Scheduler) RunNow() []*model.Signal {
	return s.refresh(s.Ctx)
}

func (s *Scheduler) refreshTask() {
	s.refresh(s.Ctx)
}

func (s *Scheduler) refresh(ctx context.Context) []*model.Signal {
	s.log.Info("refreshing watchlist", zap.Int("pairs", len(s.Watchlist)))
	var fresh []*model.Signal
	for _, pair := range s.Watchlist {
		if ctx.Err() != nil {
			break
		}
		sig, err := s.Source.Signal(ctx, pair, 0)
		if err != nil {
			s.log.Warn("watchlist signal failed", zap.String("pair", pair), zap.Error(err))
			continue
		}
		fresh = append(fresh, sig)

		s.mu.Lock()
		prev, seen := s.last[pair]
		s.last[pair] = sig
		s.mu.Unlock()

		if seen && prev.Signal != sig.Signal {
			s.log.Info("signal changed",
				zap.String("pair", pair),
				zap.String("from", string(prev.Signal)),
				zap.String("to", string(sig.Signal)))
			s.trySend(ctx, notifier.FormatSignalChange(sig, prev.Signal))
		}
	}
	return fresh
}

// Latest returns the last refreshed signal for every watchlist pair seen so far.
func (s *Scheduler) Latest() []*model.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Signal, 0, len(s.last))
	for _, pair := range s.Watchlist {
		if sig, ok := s.last[pair]; ok {
			out = append(out, sig)
		}
	}
	return out
}

// HandleCommand processes a chat message and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch strings.ToLower(fields[0]) {
	case "/start", "/help":
		return notifier.FormatHelp()
	case "/watchlist":
		latest := s.Latest()
		if len(latest) == 0 {
			latest = s.refresh(ctx)
		}
		return notifier.FormatWatchlist(latest)
	case "/signal":
		if len(fields) < 2 {
			return "Usage: /signal &lt;pair&gt;"
		}
		sig, err := s.Source.Signal(ctx, strings.Join(fields[1:], ""), 0)
		if err != nil {
			s.log.Warn("command signal failed", zap.String("text", text), zap.Error(err))
			return fmt.Sprintf("❌ Could not build a signal for %s", html.EscapeString(strings.Join(fields[1:], " ")))
		}
		return notifier.FormatSignal(sig)
	default:
		return html.EscapeString(s.Source.Respond(ctx, text, model.DefaultProfile()))
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, sendRetries); err != nil {
		s.log.Error("send notification failed", zap.Error(err))
	}
}
