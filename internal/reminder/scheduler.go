// Package reminder dispatches push notifications for reminders due at the current minute.
package reminder

import (
	"context"
	"time"

	"github.com/pathakanu/muditam/internal/model"
	"github.com/pathakanu/muditam/internal/push"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Title is the fixed title of every reminder notification.
const Title = "Muditam Reminder"

// TimeLayout is the "HH:MM" layout reminders are stored and matched in.
const TimeLayout = "15:04"

var bodies = map[string]string{
	model.CategoryWater: "💧 Time to drink water!",
	model.CategoryFood:  "🍱 Time for your healthy meal!",
	model.CategoryWalk:  "🚶‍♂️ Time to go for a walk!",
}

const defaultBody = "Time to take care of yourself!"

// Body returns the notification text for a reminder category.
func Body(category string) string {
	if body, ok := bodies[category]; ok {
		return body
	}
	return defaultBody
}

// Store finds reminders due at a given "HH:MM" with their owners loaded.
type Store interface {
	RemindersDueAt(ctx context.Context, hhmm string) ([]model.Reminder, error)
}

// Sender delivers a single push message.
type Sender interface {
	Send(ctx context.Context, msg push.Message) (push.Ticket, error)
}

// TickReport summarises one scheduler pass.
type TickReport struct {
	Time    string
	Matched int
	Sent    int
	Skipped int
	Failed  int
}

// Scheduler runs a once-a-minute pass over due reminders.
type Scheduler struct {
	cron   *cron.Cron
	store  Store
	sender Sender
	loc    *time.Location
	now    func() time.Time
	logger *zap.SugaredLogger
}

// New creates a Scheduler matching reminder times in loc.
func New(store Store, sender Sender, loc *time.Location, logger *zap.SugaredLogger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return &Scheduler{
		cron:   c,
		store:  store,
		sender: sender,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// Start registers the minute job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		report := s.Tick(context.Background(), s.now())
		if report.Matched > 0 {
			s.logger.Infow("reminder tick", "time", report.Time, "matched", report.Matched,
				"sent", report.Sent, "skipped", report.Skipped, "failed", report.Failed)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Tick dispatches one notification per reminder whose time equals now's "HH:MM".
// Reminders without a usable push token are skipped; failed sends are not retried.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) TickReport {
	report := TickReport{Time: now.In(s.loc).Format(TimeLayout)}

	reminders, err := s.store.RemindersDueAt(ctx, report.Time)
	if err != nil {
		s.logger.Errorw("reminder tick: query failed", "time", report.Time, "error", err)
		return report
	}
	report.Matched = len(reminders)

	for _, reminder := range reminders {
		switch s.dispatch(ctx, reminder) {
		case outcomeSent:
			report.Sent++
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
		}
	}
	return report
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (s *Scheduler) dispatch(ctx context.Context, reminder model.Reminder) outcome {
	user := reminder.User
	if user == nil || !push.IsExpoPushToken(user.ExpoPushToken) {
		s.logger.Warnw("invalid or missing push token", "user", ownerLabel(reminder), "reminder", reminder.ID)
		return outcomeSkipped
	}

	msg := push.Message{
		To:    user.ExpoPushToken,
		Sound: "default",
		Title: Title,
		Body:  Body(reminder.Type),
	}
	if _, err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Errorw("push failed", "user", user.ID, "reminder", reminder.ID, "error", err)
		return outcomeFailed
	}
	return outcomeSent
}

func ownerLabel(reminder model.Reminder) any {
	if reminder.User != nil && reminder.User.Name != "" {
		return reminder.User.Name
	}
	return reminder.UserID
}

// cronLogger routes cron's own logging into zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		c.l.Warnw("reminder tick skipped, previous tick still running", keysAndValues...)
		return
	}
	c.l.Debugw("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
