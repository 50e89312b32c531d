// Package study implements the user, session and content lifecycle on top
// of a storage backend.
package study

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/rcliao/study-assistant/internal/store"
)

const (
	// HistoryCap bounds the per-user session and content history lists.
	HistoryCap = 100
	// DefaultSessionTTL is how long the current-session pointer stays readable.
	DefaultSessionTTL = 24 * time.Hour
	// AnalyticsWindow is how many recent sessions GetAnalytics scans.
	AnalyticsWindow = 50
)

// Service exposes the study operations used by agents and the CLI.
type Service struct {
	backend    store.Backend
	log        logrus.FieldLogger
	now        func() time.Time
	sessionTTL time.Duration

	// updateMu serializes read-modify-write cycles on stored records.
	updateMu sync.Mutex

	idMu    sync.Mutex
	entropy *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSessionTTL sets the expiry of the current-session pointer.
// Zero keeps the pointer until it is replaced.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) { s.sessionTTL = d }
}

// New returns a Service backed by b.
func New(b store.Backend, opts ...Option) *Service {
	s := &Service{
		backend:    b,
		log:        logrus.StandardLogger(),
		now:        time.Now,
		sessionTTL: DefaultSessionTTL,
		entropy:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, fn := range opts {
		fn(s)
	}
	s.log = s.log.WithField("component", "study")
	return s
}

// Backend returns the underlying storage backend.
func (s *Service) Backend() store.Backend {
	return s.backend
}

func (s *Service) newID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

// load decodes the value under key into dst. Decode failures count as absent.
func (s *Service) load(ctx context.Context, key string, dst any) bool {
	v, ok := s.backend.Get(ctx, key)
	if !ok {
		return false
	}
	if err := v.Decode(dst); err != nil {
		s.log.WithField("key", key).WithError(err).Warn("ignoring undecodable value")
		return false
	}
	return true
}

// loadList decodes each list entry with decode, skipping entries that fail.
func loadList[T any](ctx context.Context, s *Service, key string, limit int) []T {
	vals := s.backend.GetList(ctx, key, limit)
	out := make([]T, 0, len(vals))
	for _, v := range vals {
		var item T
		if err := v.Decode(&item); err != nil {
			s.log.WithField("key", key).WithError(err).Warn("skipping undecodable list entry")
			continue
		}
		out = append(out, item)
	}
	return out
}

// ClearAll wipes every stored user, session and content item.
func (s *Service) ClearAll(ctx context.Context) {
	s.backend.Clear(ctx)
}

// DatabaseStats reports backend statistics. The bool is false when the
// backend does not keep statistics or they could not be read.
func (s *Service) DatabaseStats(ctx context.Context) (*store.Stats, bool) {
	r, ok := s.backend.(store.StatsReporter)
	if !ok {
		return nil, false
	}
	st, err := r.Stats(ctx)
	if err != nil {
		s.log.WithError(err).Error("stats failed")
		return nil, false
	}
	return st, true
}

func userKey(id string) string           { return "user:" + id }
func sessionKey(id string) string        { return "session:" + id }
func currentSessionKey(id string) string { return "current_session:" + id }
func contentKey(id string) string        { return "content:" + id }
func sessionsKey(user string) string     { return "sessions:" + user }
func userContentKey(user string) string  { return "user_content:" + user }
