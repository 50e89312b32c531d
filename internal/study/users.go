package study

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/rcliao/study-assistant/internal/model"
)

// UserIDForName derives a stable user id from a display name. Case and
// surrounding whitespace are ignored.
func UserIDForName(name string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(name))))
	return hex.EncodeToString(sum[:])[:16]
}

// CreateUser stores a new user with the default style and returns its id.
func (s *Service) CreateUser(ctx context.Context) string {
	id := uuid.NewString()
	s.backend.Set(ctx, userKey(id), model.User{Created: s.now(), Style: model.DefaultStyle}, 0)
	return id
}

// EnsureUser returns the id for name, creating the user on first encounter.
func (s *Service) EnsureUser(ctx context.Context, name string) string {
	id := UserIDForName(name)
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	var u model.User
	if s.load(ctx, userKey(id), &u) {
		return id
	}
	u = model.User{Name: strings.TrimSpace(name), Created: s.now(), Style: model.DefaultStyle}
	s.backend.Set(ctx, userKey(id), u, 0)
	s.log.WithField("user", id).Info("created user")
	return id
}

// GetUser returns the stored user, or the zero User when unknown.
func (s *Service) GetUser(ctx context.Context, id string) model.User {
	var u model.User
	if !s.load(ctx, userKey(id), &u) {
		return model.User{}
	}
	return u
}

// SetStyle changes a known user's learning style. It reports false when the
// user does not exist or style is empty.
func (s *Service) SetStyle(ctx context.Context, id, style string) bool {
	style = strings.TrimSpace(style)
	if style == "" {
		return false
	}
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	var u model.User
	if !s.load(ctx, userKey(id), &u) {
		return false
	}
	u.Style = style
	s.backend.Set(ctx, userKey(id), u, 0)
	return true
}

// StyleOf returns the user's learning style, falling back to the default.
func (s *Service) StyleOf(ctx context.Context, id string) string {
	if u := s.GetUser(ctx, id); u.Style != "" {
		return u.Style
	}
	return model.DefaultStyle
}
