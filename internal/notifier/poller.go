package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/agenda/internal/constants"
	"github.com/julianstephens/agenda/internal/logger"
	"github.com/julianstephens/agenda/internal/models"
)

// Source lists the appointments due within a window from now.
type Source interface {
	ListDueAppointments(ctx context.Context, window time.Duration) ([]models.Occurrence, error)
}

// Poller periodically checks for due appointments and sends one reminder
// per appointment for the lifetime of the poller. It never writes to the store.
type Poller struct {
	source   Source
	sender   Sender
	interval time.Duration
	window   time.Duration

	mu       sync.Mutex
	notified map[string]bool
	cron     *cron.Cron
	stopped  bool
}

func NewPoller(source Source, sender Sender, interval, window time.Duration) *Poller {
	if interval <= 0 {
		interval = constants.DefaultNotifyInterval
	}
	if window <= 0 {
		window = constants.DefaultNotifyWindow
	}
	return &Poller{
		source:   source,
		sender:   sender,
		interval: interval,
		window:   window,
		notified: make(map[string]bool),
	}
}

// Check sends reminders for due appointments not yet notified and returns
// how many were sent.
func (p *Poller) Check(ctx context.Context) (int, error) {
	due, err := p.source.ListDueAppointments(ctx, p.window)
	if err != nil {
		return 0, fmt.Errorf("failed to list due appointments: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	sent := 0
	for _, occ := range due {
		if p.notified[occ.ID] {
			continue
		}
		if err := p.sender.Notify(reminderText(occ)); err != nil {
			logger.Warn("Failed to send notification", "occurrence", occ.ID, "error", err)
			continue
		}
		p.notified[occ.ID] = true
		sent++
	}
	return sent, nil
}

func reminderText(occ models.Occurrence) string {
	if occ.Name != nil && *occ.Name != "" {
		return fmt.Sprintf("Upcoming: %s (%s) on %s", occ.Description, *occ.Name, occ.Date)
	}
	return fmt.Sprintf("Upcoming: %s on %s", occ.Description, occ.Date)
}

// Start runs a check immediately and then every interval until ctx is done
// or Stop is called. Once stopped, a poller cannot be started again.
func (p *Poller) Start(ctx context.Context) error {
	if p.isStopped() {
		logger.Debug("Poller already stopped, not starting")
		return nil
	}
	p.runCheck(ctx)

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", p.interval), func() { p.runCheck(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule poller: %w", err)
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.cron = c
	c.Start()
	p.mu.Unlock()
	logger.Debug("Poller started", "interval", p.interval, "window", p.window)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()
	return nil
}

func (p *Poller) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

func (p *Poller) runCheck(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := p.Check(ctx)
	if err != nil {
		logger.Warn("Notification check failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Sent notifications", "count", n)
	}
}

// Stop halts the schedule and waits for a running check to finish. It is
// safe to call before Start and more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	c := p.cron
	p.cron = nil
	p.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	logger.Debug("Poller stopped")
}
