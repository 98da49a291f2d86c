/*
scheduler.go - Monthly window-open notifier

PURPOSE:
  Emails every active user when the monthly submission window opens. Runs on
  a cron schedule (08:00 on day 1) so nobody has to remember; the admin
  "resend notifications" endpoint reuses the same dispatch for manual
  triggers.

DESIGN:
  - robfig/cron with the standard 5-field spec
  - Notification day may itself fall before the resolved window start (the
    1st can be a holiday); the email always carries the resolved dates
  - Failures are per-recipient: one bad address never blocks the rest

USAGE:
  s := NewWindowScheduler(handler)
  s.Start()
  defer s.Stop()
*/
package api

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// windowCronSpec fires at 08:00 on the first day of every month.
const windowCronSpec = "0 8 1 * *"

// WindowScheduler sends the window-open notification on a monthly schedule.
type WindowScheduler struct {
	handler *Handler
	cron    *cron.Cron
	logger  *log.Logger
}

// NewWindowScheduler wires the scheduler. A nil logger falls back to the
// default logger.
func NewWindowScheduler(h *Handler, logger *log.Logger) *WindowScheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &WindowScheduler{handler: h, cron: cron.New(), logger: logger}
}

// Start registers the monthly job and begins the cron loop.
func (s *WindowScheduler) Start() error {
	if _, err := s.cron.AddFunc(windowCronSpec, s.RunNow); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Printf("[scheduler] window notifier started (%s)", windowCronSpec)
	return nil
}

// Stop halts the cron loop; running jobs finish.
func (s *WindowScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Println("[scheduler] window notifier stopped")
}

// RunNow dispatches the window-open notification immediately.
func (s *WindowScheduler) RunNow() {
	ctx := context.Background()
	now := s.handler.now()
	win := s.handler.Windows.Resolve(now.Year(), now.Month())

	users, err := s.handler.Store.ListUsers(ctx)
	if err != nil {
		s.logger.Printf("[scheduler] listing users failed: %v", err)
		return
	}

	sent := 0
	for _, u := range users {
		if u.Disabled {
			continue
		}
		if err := s.handler.Dispatcher.SendWindowOpen(ctx, u, win.Start, win.End); err != nil {
			s.logger.Printf("[scheduler] window notification to %s failed: %v", u.Email, err)
			continue
		}
		sent++
	}
	s.logger.Printf("[scheduler] window %s: notified %d users", win, sent)
}
