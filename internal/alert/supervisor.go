// Package alert implements the background supervisor that watches the
// pantry and warns when stocked ingredients are about to spoil.
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/larder/internal/domain"
	"github.com/hammamikhairi/larder/internal/expiry"
	"github.com/hammamikhairi/larder/internal/feasibility"
	"github.com/hammamikhairi/larder/internal/logger"
)

// StateSource yields the current pantry snapshot.
type StateSource interface {
	Load(ctx context.Context) (domain.State, error)
}

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor checks the pantry.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithNotifyCooldown sets the minimum time between repeated notices about
// one ingredient in one status.
func WithNotifyCooldown(d time.Duration) Option {
	return func(s *Supervisor) {
		s.notifyCooldown = d
	}
}

// WithMaxReminders sets how many notices an ingredient gets per status
// before the supervisor stops nagging.
func WithMaxReminders(n int) Option {
	return func(s *Supervisor) {
		s.maxReminders = n
	}
}

// WithSuggestions makes the supervisor name the recipe that best uses up
// the flagged ingredients.
func WithSuggestions(feas *feasibility.Engine) Option {
	return func(s *Supervisor) {
		s.feas = feas
	}
}

// WithClock replaces time.Now for cooldown bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		s.now = now
	}
}

type notice struct {
	status expiry.Status
	at     time.Time
	count  int
}

// Supervisor periodically evaluates expiry dates and notifies: expired
// items are urgent, items inside the warning window are normal notices.
type Supervisor struct {
	source         StateSource
	eval           *expiry.Evaluator
	notifier       domain.Notifier
	log            *logger.Logger
	feas           *feasibility.Engine
	tickInterval   time.Duration
	notifyCooldown time.Duration
	maxReminders   int
	now            func() time.Time

	mu      sync.Mutex
	sent    map[string]notice
	running bool
	cancel  context.CancelFunc
}

// New creates an expiry supervisor.
func New(source StateSource, eval *expiry.Evaluator, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		source:         source,
		eval:           eval,
		notifier:       notifier,
		log:            log,
		tickInterval:   time.Hour,
		notifyCooldown: 12 * time.Hour,
		maxReminders:   3,
		now:            time.Now,
		sent:           make(map[string]notice),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background loop. Non-blocking. The first check runs
// immediately.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("expiry supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	go s.loop(childCtx)

	s.log.Info("expiry supervisor started (tick=%s, cooldown=%s)", s.tickInterval, s.notifyCooldown)
}

// Stop shuts the supervisor down.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.running = false
	s.log.Info("expiry supervisor stopped")
}

func (s *Supervisor) loop(ctx context.Context) {
	s.Check(ctx)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Check runs one cycle and returns how many notices were sent.
func (s *Supervisor) Check(ctx context.Context) int {
	st, err := s.source.Load(ctx)
	if err != nil {
		s.log.Error("supervisor: loading pantry: %v", err)
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	results := s.eval.EvaluateAll(st.Ingredients)
	sent := 0

	for name := range s.sent {
		if _, ok := st.Ingredients[name]; !ok {
			delete(s.sent, name)
		}
	}

	for _, name := range st.IngredientNames() {
		res := results[name]
		if res.Status != expiry.StatusExpired && res.Status != expiry.StatusSoon {
			delete(s.sent, name)
			continue
		}

		prev, seen := s.sent[name]
		if seen && prev.status != res.Status {
			prev = notice{}
		}
		if prev.count >= s.maxReminders {
			continue
		}
		if prev.count > 0 && now.Sub(prev.at) < s.notifyCooldown {
			continue
		}

		msg := message(name, res)
		var nerr error
		if res.Status == expiry.StatusExpired {
			nerr = s.notifier.NotifyUrgent(ctx, msg)
		} else {
			nerr = s.notifier.Notify(ctx, msg)
		}
		if nerr != nil {
			s.log.Error("supervisor: notifying %s: %v", name, nerr)
			continue
		}
		s.sent[name] = notice{status: res.Status, at: now, count: prev.count + 1}
		sent++
	}

	if sent > 0 && s.feas != nil {
		if top := s.feas.Prioritized(st.Ingredients, st.Recipes); len(top) > 0 {
			msg := fmt.Sprintf("[Larder] Cook %s to use them up.", top[0].Recipe.Name)
			if err := s.notifier.Notify(ctx, msg); err != nil {
				s.log.Error("supervisor: suggestion notify: %v", err)
			}
		}
	}
	s.log.Debug("supervisor: checked %d ingredients, %d notices", len(results), sent)
	return sent
}

func message(name string, res expiry.Result) string {
	if res.Status == expiry.StatusExpired {
		return fmt.Sprintf("[Expiry] %s expired %s.", name, formatDaysAgo(-res.DaysLeft))
	}
	return fmt.Sprintf("[Expiry] %s expires %s.", name, formatDaysAhead(res.DaysLeft))
}

func formatDaysAgo(n int) string {
	if n == 1 {
		return "yesterday"
	}
	return fmt.Sprintf("%d days ago", n)
}

func formatDaysAhead(n int) string {
	switch n {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", n)
	}
}
