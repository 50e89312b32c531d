package study

import (
	"context"

	"github.com/rcliao/study-assistant/internal/model"
)

// StartSession creates an active session and makes it the user's current one.
func (s *Service) StartSession(ctx context.Context, userID, subject string) string {
	id := s.newID()
	sess := model.Session{
		ID:         id,
		User:       userID,
		Subject:    subject,
		Start:      s.now(),
		Activities: []model.Activity{},
	}
	s.backend.Set(ctx, sessionKey(id), sess, 0)
	s.backend.Set(ctx, currentSessionKey(userID), id, s.sessionTTL)
	return id
}

// GetSession looks a session up by id.
func (s *Service) GetSession(ctx context.Context, id string) (model.Session, bool) {
	var sess model.Session
	ok := s.load(ctx, sessionKey(id), &sess)
	return sess, ok
}

// CurrentSession returns the user's current session id, if any.
func (s *Service) CurrentSession(ctx context.Context, userID string) (string, bool) {
	var id string
	if !s.load(ctx, currentSessionKey(userID), &id) || id == "" {
		return "", false
	}
	return id, true
}

// LogActivity appends an activity to an active session. Unknown and ended
// sessions are skipped.
func (s *Service) LogActivity(ctx context.Context, sessionID, activity string) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	sess, ok := s.GetSession(ctx, sessionID)
	if !ok || sess.Ended() {
		s.log.WithField("session", sessionID).Debug("activity skipped: no active session")
		return
	}
	sess.Activities = append(sess.Activities, model.Activity{Time: s.now(), Activity: activity})
	s.backend.Set(ctx, sessionKey(sessionID), sess, 0)
}

// EndSession stamps the end time and appends the session to its owner's
// history. Unknown and already ended sessions are skipped.
func (s *Service) EndSession(ctx context.Context, sessionID string) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	sess, ok := s.GetSession(ctx, sessionID)
	if !ok || sess.Ended() {
		s.log.WithField("session", sessionID).Debug("end skipped: no active session")
		return
	}
	end := s.now()
	sess.End = &end
	s.backend.Set(ctx, sessionKey(sessionID), sess, 0)
	if sess.User != "" {
		s.backend.Push(ctx, sessionsKey(sess.User), sess, HistoryCap)
	}
}

// UserSessions returns up to limit ended sessions, newest first.
func (s *Service) UserSessions(ctx context.Context, userID string, limit int) []model.Session {
	return loadList[model.Session](ctx, s, sessionsKey(userID), limit)
}
