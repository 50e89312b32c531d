package agent

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rcliao/study-assistant/internal/chunker"
	"github.com/rcliao/study-assistant/internal/llm"
	"github.com/rcliao/study-assistant/internal/model"
	"github.com/rcliao/study-assistant/internal/study"
)

// PlanRequest describes the plan a user asks for.
type PlanRequest struct {
	Subject  string
	Hours    string
	Deadline string
	Focus    string
	Goals    string
}

// StudyPlanner creates study plans and method advice from the user's
// learning style and history.
type StudyPlanner struct {
	*Agent
	processor *ContentProcessor
}

// NewStudyPlanner returns a StudyPlanner. processor may be nil, in which
// case ComprehensivePlan ignores files.
func NewStudyPlanner(svc *study.Service, chat llm.ChatService, processor *ContentProcessor, log logrus.FieldLogger) *StudyPlanner {
	return &StudyPlanner{
		Agent:     newAgent("StudyPlanner", svc, chat, log),
		processor: processor,
	}
}

// SetUser switches the acting user of the planner and its processor.
func (sp *StudyPlanner) SetUser(ctx context.Context, userID string) {
	sp.Agent.SetUser(ctx, userID)
	if sp.processor != nil {
		sp.processor.SetUser(ctx, userID)
	}
}

func (sp *StudyPlanner) recentSessions(ctx context.Context, n int) []model.Session {
	if sp.userID == "" {
		return nil
	}
	return sp.svc.UserSessions(ctx, sp.userID, n)
}

// CreatePlan asks for a personalized plan and saves it as a study_plan item.
func (sp *StudyPlanner) CreatePlan(ctx context.Context, req PlanRequest) (string, error) {
	var history string
	if sessions := sp.recentSessions(ctx, 5); len(sessions) > 0 {
		subjects := make([]string, len(sessions))
		for i, s := range sessions {
			subjects[i] = s.Subject
		}
		history = "\nRecent study subjects: " + strings.Join(subjects, ", ")
	}

	prompt := fmt.Sprintf(`Create a personalized study plan for %s.

User Profile:
- Learning Style: %s
- Hours Available: %s
- Deadline: %s
- Focus Areas: %s
- Goals: %s
%s

Create a detailed study plan with:
- Weekly schedule breakdown
- Daily study blocks with specific hours
- Study techniques suited to their learning style
- Weekly milestones and checkpoints
- Review schedules
- Specific actionable tasks

Make it personalized and realistic.`,
		req.Subject, sp.style(ctx), req.Hours, req.Deadline, req.Focus, req.Goals, history)

	out, err := sp.CallAI(ctx, prompt, 1000)
	if err != nil {
		return "", err
	}
	sp.save(ctx, "Study Plan - "+req.Subject, model.ContentStudyPlan, out)
	return out, nil
}

// Methods recommends study techniques for a topic. An empty style uses the
// user's own.
func (sp *StudyPlanner) Methods(ctx context.Context, subject, topic, style string) (string, error) {
	if style == "" {
		style = sp.style(ctx)
	}
	prompt := fmt.Sprintf(`Recommend study methods for %s, topic: %s

User Learning Style: %s

Provide:
- Top 3 techniques for this learning style
- Step-by-step instructions
- Tools and resources needed
- How to measure progress
- Time estimates

Make it practical and actionable.`, subject, topic, style)
	return sp.CallAI(ctx, prompt, 600)
}

// Recommendations gives advice on plan based on the user's study history.
func (sp *StudyPlanner) Recommendations(ctx context.Context, subject, plan string) (string, error) {
	sessions := sp.recentSessions(ctx, 10)
	var subjects []string
	completed := 0
	for _, s := range sessions {
		if len(subjects) < 3 {
			subjects = append(subjects, s.Subject)
		}
		if s.Ended() {
			completed++
		}
	}
	plan = chunker.Truncate(plan, 500)

	prompt := fmt.Sprintf(`Based on this user's study history and learning style, provide strategic recommendations:

User: %s learner
Recent subjects: %s
Study frequency: %d completed sessions
Current plan for: %s

Plan preview: %s

Give personalized advice on:
- Key success factors for this user
- Potential challenges based on their history
- Optimization tips for their learning style
- Resource suggestions
- Study schedule adjustments

Keep concise and actionable.`, sp.style(ctx), strings.Join(subjects, ", "), completed, subject, plan)
	return sp.CallAI(ctx, prompt, 500)
}

// ComprehensivePlan analyses files, creates a plan, adds recommendations
// and closes with a summary of the user's recent activity. Files that
// cannot be read or analysed are skipped.
func (sp *StudyPlanner) ComprehensivePlan(ctx context.Context, req PlanRequest, files []string) (string, error) {
	var sections []string

	if len(files) > 0 && sp.processor != nil {
		sp.SendMessage(ctx, sp.processor.Name(), "Process files for comprehensive planning")
		var insights []string
		for _, path := range files {
			text, err := sp.processor.ReadFile(ctx, path)
			if err != nil {
				sp.log.WithField("file", filepath.Base(path)).WithError(err).Warn("file skipped")
				continue
			}
			insight, err := sp.processor.AnalyzeForPlanning(ctx, text, path)
			if err != nil {
				sp.log.WithField("file", filepath.Base(path)).WithError(err).Warn("analysis skipped")
				continue
			}
			insights = append(insights, fmt.Sprintf("%s: %s", filepath.Base(path), insight))
			sp.save(ctx, filepath.Base(path), model.ContentAnalysis, insight)
		}
		if len(insights) > 0 {
			sections = append(sections, "FILE ANALYSIS:\n"+strings.Join(insights, "\n\n"))
		}
	}

	sp.SendMessage(ctx, "ContentProcessor", "Creating enhanced plan with file context")
	plan, err := sp.CreatePlan(ctx, req)
	if err != nil {
		return "", err
	}
	sections = append(sections, "STUDY PLAN:\n"+plan)

	recs, err := sp.Recommendations(ctx, req.Subject, plan)
	if err != nil {
		return "", err
	}
	sections = append(sections, "RECOMMENDATIONS:\n"+recs)
	sections = append(sections, sp.activitySummary(ctx, len(files)))

	return strings.Join(sections, "\n\n"+strings.Repeat("=", 60)+"\n\n"), nil
}

func (sp *StudyPlanner) activitySummary(ctx context.Context, files int) string {
	sessions := sp.recentSessions(ctx, 5)
	var saved int
	if sp.userID != "" {
		saved = len(sp.svc.UserContent(ctx, sp.userID, 5))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SESSION SUMMARY:\n- Files Processed: %d\n- Content Saved: %d\n- Recent Sessions: %d\n- Enhanced Plan Created: Yes\n\nRecent Study Activity:",
		files, saved, len(sessions))
	for i, s := range sessions {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "\n  - %s - %s: %d activities", s.Start.Format("2006-01-02 15:04"), s.Subject, len(s.Activities))
	}
	return b.String()
}
