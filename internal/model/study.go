// Package model defines the core study data types.
package model

import "time"

// User is a learner profile. It is created on first encounter and only
// mutated by style changes.
type User struct {
	Name    string    `json:"name,omitempty"`
	Created time.Time `json:"created"`
	Style   string    `json:"style"`
}

// Activity is one entry in a session's activity log.
type Activity struct {
	Time     time.Time `json:"time"`
	Activity string    `json:"activity"`
}

// Session is one bounded study period. End is nil until the session is ended.
type Session struct {
	ID         string     `json:"id"`
	User       string     `json:"user"`
	Subject    string     `json:"subject"`
	Start      time.Time  `json:"start"`
	Activities []Activity `json:"activities"`
	End        *time.Time `json:"end,omitempty"`
}

// Ended reports whether the session has been finalized.
func (s Session) Ended() bool {
	return s.End != nil
}

// ContentItem is one immutable generated artifact.
type ContentItem struct {
	ID       string    `json:"id"`
	User     string    `json:"user"`
	Filename string    `json:"filename"`
	Type     string    `json:"type"`
	Content  string    `json:"content"`
	Created  time.Time `json:"created"`
}

// Analytics is the read-time aggregate over a user's recent sessions.
// Hours counts completed sessions.
type Analytics struct {
	Sessions int      `json:"sessions"`
	Hours    int      `json:"hours"`
	Subjects []string `json:"subjects"`
}

// DefaultStyle is the learning style assigned to new users.
const DefaultStyle = "visual"

// Content types.
const (
	ContentSummary      = "summary"
	ContentNotes        = "notes"
	ContentQuestions    = "questions"
	ContentAnalysis     = "analysis"
	ContentStudyPlan    = "study_plan"
	ContentFileAnalysis = "file_analysis"
)

// ValidStyles are the predefined learning styles. Any other non-empty
// string is accepted as a custom style.
var ValidStyles = map[string]bool{
	"visual":   true,
	"auditory": true,
	"reading":  true,
}

// ValidContentTypes are the allowed content item types.
var ValidContentTypes = map[string]bool{
	ContentSummary:      true,
	ContentNotes:        true,
	ContentQuestions:    true,
	ContentAnalysis:     true,
	ContentStudyPlan:    true,
	ContentFileAnalysis: true,
}
