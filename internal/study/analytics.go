package study

import (
	"context"

	"github.com/rcliao/study-assistant/internal/model"
)

// GetAnalytics aggregates the user's most recent sessions. It is recomputed
// on every call.
func (s *Service) GetAnalytics(ctx context.Context, userID string) model.Analytics {
	sessions := s.UserSessions(ctx, userID, AnalyticsWindow)

	a := model.Analytics{Sessions: len(sessions), Subjects: []string{}}
	seen := make(map[string]bool)
	for _, sess := range sessions {
		if sess.Ended() {
			a.Hours++
		}
		if sess.Subject != "" && !seen[sess.Subject] {
			seen[sess.Subject] = true
			a.Subjects = append(a.Subjects, sess.Subject)
		}
	}
	return a
}
