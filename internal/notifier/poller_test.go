package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/agenda/internal/models"
)

type fakeSource struct {
	mu    sync.Mutex
	due   []models.Occurrence
	err   error
	calls int
}

func (f *fakeSource) ListDueAppointments(ctx context.Context, window time.Duration) ([]models.Occurrence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.due, f.err
}

func (f *fakeSource) set(due ...models.Occurrence) {
	f.mu.Lock()
	f.due = due
	f.mu.Unlock()
}

type recorder struct {
	mu    sync.Mutex
	texts []string
	fail  bool
}

func (r *recorder) Notify(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("tray offline")
	}
	r.texts = append(r.texts, text)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.texts)
}

func appt(id, date, desc string) models.Occurrence {
	return models.Occurrence{ID: id, Date: date, Description: desc, Kind: models.KindAppointment, Status: models.StatusPending}
}

func TestCheckNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{}
	rec := &recorder{}
	p := NewPoller(source, rec, time.Hour, 24*time.Hour)

	source.set(appt("a", "2026-10-12", "dentist"))
	n, err := p.Check(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Check() = %d, %v", n, err)
	}

	source.set(appt("a", "2026-10-12", "dentist"), appt("b", "2026-10-13", "vet"))
	n, err = p.Check(ctx)
	if err != nil || n != 1 {
		t.Fatalf("second Check() = %d, %v", n, err)
	}
	if rec.texts[0] != "Upcoming: dentist on 2026-10-12" || rec.texts[1] != "Upcoming: vet on 2026-10-13" {
		t.Errorf("texts = %v", rec.texts)
	}
}

func TestCheckRetriesFailedSends(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{}
	source.set(appt("a", "2026-10-12", "dentist"))
	rec := &recorder{fail: true}
	p := NewPoller(source, rec, time.Hour, time.Hour)

	if n, _ := p.Check(ctx); n != 0 {
		t.Errorf("failed send counted: %d", n)
	}
	rec.fail = false
	if n, _ := p.Check(ctx); n != 1 {
		t.Errorf("retry sent %d, want 1", n)
	}
}

func TestCheckSourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("db down")}
	p := NewPoller(source, &recorder{}, time.Hour, time.Hour)
	if _, err := p.Check(context.Background()); err == nil {
		t.Error("expected source error")
	}
}

func TestStartChecksImmediatelyAndStops(t *testing.T) {
	source := &fakeSource{}
	source.set(appt("a", "2026-10-12", "dentist"))
	rec := &recorder{}
	p := NewPoller(source, rec, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := p.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if rec.count() != 1 {
		t.Errorf("no immediate check: %d notifications", rec.count())
	}
	p.Stop()
	p.Stop()
}

func TestStartAfterStopIsNoop(t *testing.T) {
	source := &fakeSource{}
	source.set(appt("a", "2026-10-12", "dentist"))
	rec := &recorder{}
	p := NewPoller(source, rec, time.Hour, time.Hour)

	p.Stop()
	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	p.mu.Lock()
	running := p.cron != nil
	p.mu.Unlock()
	if running {
		t.Error("poller scheduled checks after Stop")
	}
	source.mu.Lock()
	calls := source.calls
	source.mu.Unlock()
	if calls != 0 || rec.count() != 0 {
		t.Errorf("checks after Stop: %d calls, %d notifications", calls, rec.count())
	}
}

func TestNewPollerDefaults(t *testing.T) {
	p := NewPoller(&fakeSource{}, &recorder{}, 0, 0)
	if p.interval != time.Hour || p.window != 24*time.Hour {
		t.Errorf("defaults = %v, %v", p.interval, p.window)
	}
}
