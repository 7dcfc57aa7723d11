package tracker

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gitlab.com/yelinaung/finance-tracker/internal/ledger"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// session holds per-login state that is never persisted.
type session struct {
	notifications []models.Notification
}

// SessionReport summarizes what happened when a session started.
type SessionReport struct {
	Generated     int
	Notifications []models.Notification
}

// StartSession catches up every recurring template and computes the
// user's due notifications. It is called on login and is safe to call
// again for an already active user.
func (s *Service) StartSession(ctx context.Context, userID string) (report SessionReport, err error) {
	ctx, span, began := s.start(ctx, "StartSession", userID)
	defer func() { s.finish(span, "start_session", userID, began, err) }()

	generated, err := s.MaterializeRecurring(ctx, userID)
	if err != nil {
		return SessionReport{}, err
	}

	notes, err := s.RefreshNotifications(ctx, userID)
	if err != nil {
		return SessionReport{}, err
	}

	s.mu.Lock()
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)

	if s.generatedPerSession != nil {
		s.generatedPerSession.Record(ctx, int64(generated),
			metric.WithAttributes(attribute.String("user.hash", logger.HashUserID(userID))))
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Int("generated", generated).
		Int("notifications", len(notes)).
		Msg("Session started")
	return SessionReport{Generated: generated, Notifications: notes}, nil
}

// EndSession drops the user's in-memory notifications.
func (s *Service) EndSession(_ context.Context, userID string) {
	s.mu.Lock()
	delete(s.sessions, userID)
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)

	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Msg("Session ended")
}

// ActiveSessions returns the ids of users with an active session.
func (s *Service) ActiveSessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// RefreshNotifications recomputes due reminders from the user's settings
// and keeps the read state of reminders already shown.
func (s *Service) RefreshNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}

	templates := s.store.Snapshot(userID).Recurring
	fresh := ledger.DueNotifications(templates, user.Settings.Recurring, s.now(), s.loc)

	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	var added int
	for _, n := range fresh {
		if !slices.ContainsFunc(sess.notifications, func(old models.Notification) bool { return old.ID == n.ID }) {
			added++
		}
	}
	sess.notifications = ledger.MergeNotifications(sess.notifications, fresh)
	out := slices.Clone(sess.notifications)
	s.mu.Unlock()

	s.metrics.AddNotifications(added)
	return out, nil
}

// Notifications returns the session's current notifications.
func (s *Service) Notifications(_ context.Context, userID string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return slices.Clone(sess.notifications)
	}
	return nil
}

// MarkAllNotificationsRead flags every notification as read and returns
// how many were unread.
func (s *Service) MarkAllNotificationsRead(_ context.Context, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return 0
	}
	var n int
	for i := range sess.notifications {
		if !sess.notifications[i].Read {
			sess.notifications[i].Read = true
			n++
		}
	}
	return n
}
