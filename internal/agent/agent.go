// Package agent implements the study planner and content processor
// workflows on top of the study service and a chat model.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rcliao/study-assistant/internal/llm"
	"github.com/rcliao/study-assistant/internal/study"
)

var (
	// ErrNoUser is returned by workflows that need a user context.
	ErrNoUser = errors.New("no user set")
	// ErrNoProcessedContent is returned when a plan is requested before any
	// file has been processed.
	ErrNoProcessedContent = errors.New("no processed content")
)

// Agent carries the state shared by every agent: the acting user, that
// user's current session and the collaborators used to answer requests.
type Agent struct {
	name string
	svc  *study.Service
	chat llm.ChatService
	log  logrus.FieldLogger

	userID    string
	sessionID string
}

func newAgent(name string, svc *study.Service, chat llm.ChatService, log logrus.FieldLogger) *Agent {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Agent{
		name: name,
		svc:  svc,
		chat: chat,
		log:  log.WithField("agent", name),
	}
}

// Name returns the agent name.
func (a *Agent) Name() string { return a.name }

// UserID returns the acting user, or "" when none is set.
func (a *Agent) UserID() string { return a.userID }

// SessionID returns the session activities are logged to, or "".
func (a *Agent) SessionID() string { return a.sessionID }

// SetUser switches the acting user and picks up that user's current session.
func (a *Agent) SetUser(ctx context.Context, userID string) {
	a.userID = userID
	a.sessionID, _ = a.svc.CurrentSession(ctx, userID)
	a.log.WithFields(logrus.Fields{"user": userID, "session": a.sessionID}).Debug("user set")
}

func (a *Agent) style(ctx context.Context) string {
	if a.userID == "" {
		return "visual"
	}
	return a.svc.StyleOf(ctx, a.userID)
}

// CallAI sends prompt to the chat model, prefixed with the user's learning
// context when a user is set. A successful call is logged as an activity of
// the current session.
func (a *Agent) CallAI(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if a.chat == nil {
		return "", llm.ErrNoAPIKey
	}
	if a.userID != "" {
		prompt = fmt.Sprintf("User Context:\nLearning Style: %s\nAgent: %s\n\nUser Request: %s",
			a.style(ctx), a.name, prompt)
	}

	out, err := a.chat.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return "", fmt.Errorf("%s: %w", a.name, err)
	}
	if a.sessionID != "" {
		a.svc.LogActivity(ctx, a.sessionID, a.name+": AI call")
	}
	return out, nil
}

// SendMessage records a message addressed to another agent.
func (a *Agent) SendMessage(ctx context.Context, to, message string) {
	if a.sessionID != "" {
		a.svc.LogActivity(ctx, a.sessionID, fmt.Sprintf("Message to %s: %s", to, message))
	}
	a.log.WithField("to", to).Info(message)
}

func (a *Agent) save(ctx context.Context, filename, contentType, content string) {
	if a.userID == "" {
		return
	}
	a.svc.SaveContent(ctx, a.userID, filename, contentType, content)
}
