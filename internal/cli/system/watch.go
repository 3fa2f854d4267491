package system

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/agenda/internal/cli"
	"github.com/julianstephens/agenda/internal/notifier"
)

// WatchCmd runs the appointment reminder poller until interrupted.
type WatchCmd struct {
	DryRun   bool          `help:"Log notifications instead of sending them to the tray app."`
	Interval time.Duration `help:"Time between checks. Defaults to notify.interval."`
	Window   time.Duration `help:"How far ahead to look. Defaults to notify.window."`
}

func (c *WatchCmd) sender() notifier.Sender {
	if c.DryRun {
		return notifier.LogSender{}
	}
	return notifier.FallbackSender{Primary: notifier.New()}
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	interval := c.Interval
	if interval <= 0 {
		interval = ctx.Config.Notify.Interval
	}
	window := c.Window
	if window <= 0 {
		window = ctx.Config.Notify.Window
	}

	runCtx, stop := signal.NotifyContext(ctx.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := notifier.NewPoller(ctx.Service, c.sender(), interval, window)
	if err := poller.Start(runCtx); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Writer(), "Watching for appointments every %s (Ctrl+C to stop)\n", interval)

	<-runCtx.Done()
	poller.Stop()
	if err := runCtx.Err(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
