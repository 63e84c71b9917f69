// Package sideeffect holds the post-commit collaborators. They run off
// the critical path: a failure here is logged and never surfaces as a
// registration failure.
package sideeffect

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type CalendarEntry struct {
	Title       string
	Description string
	Location    string
	StartDate   time.Time
	EndDate     time.Time
}

// CalendarSync mirrors a committed registration into the user's calendar.
type CalendarSync interface {
	Add(ctx context.Context, userEmail string, entry CalendarEntry) error
}

// NotificationSink dispatches e-mail style notifications (cancellation
// refunds, attendance certificates).
type NotificationSink interface {
	Notify(ctx context.Context, userID uint, subject, body string) error
}

// LogCalendarSync stands in for the real calendar integration.
type LogCalendarSync struct{}

func NewLogCalendarSync() *LogCalendarSync {
	return &LogCalendarSync{}
}

func (s *LogCalendarSync) Add(_ context.Context, userEmail string, entry CalendarEntry) error {
	zap.L().Info("calendar entry added",
		zap.String("user_email", userEmail),
		zap.String("title", entry.Title),
		zap.Time("start_date", entry.StartDate))

	return nil
}

// LogNotificationSink stands in for the real mail delivery service.
type LogNotificationSink struct{}

func NewLogNotificationSink() *LogNotificationSink {
	return &LogNotificationSink{}
}

func (s *LogNotificationSink) Notify(_ context.Context, userID uint, subject, _ string) error {
	zap.L().Info("notification dispatched",
		zap.Uint("user_id", userID),
		zap.String("subject", subject))

	return nil
}
