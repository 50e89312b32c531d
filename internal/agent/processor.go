package agent

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rcliao/study-assistant/internal/chunker"
	"github.com/rcliao/study-assistant/internal/document"
	"github.com/rcliao/study-assistant/internal/llm"
	"github.com/rcliao/study-assistant/internal/model"
	"github.com/rcliao/study-assistant/internal/study"
)

// Excerpt budgets for the text sent with each prompt.
const (
	analysisExcerpt = 1500
	materialExcerpt = 3000
	planExcerpt     = 2000
)

// ContentProcessor turns uploaded documents into summaries, notes,
// questions and plans.
type ContentProcessor struct {
	*Agent
	reader *document.Reader
}

// NewContentProcessor returns a ContentProcessor reading files with reader.
func NewContentProcessor(svc *study.Service, chat llm.ChatService, reader *document.Reader, log logrus.FieldLogger) *ContentProcessor {
	return &ContentProcessor{
		Agent:  newAgent("ContentProcessor", svc, chat, log),
		reader: reader,
	}
}

// ReadFile returns the text of path. The first read of a file while a user
// is set also stores a file_analysis item for it; a failed analysis does
// not fail the read.
func (p *ContentProcessor) ReadFile(ctx context.Context, path string) (string, error) {
	fresh := !p.reader.Cached(path)
	text, err := p.reader.Read(path)
	if err != nil {
		return "", err
	}
	if fresh && p.userID != "" {
		analysis, err := p.AnalyzeForPlanning(ctx, text, path)
		if err != nil {
			p.log.WithField("file", filepath.Base(path)).WithError(err).Warn("file analysis skipped")
		} else {
			p.save(ctx, filepath.Base(path), model.ContentFileAnalysis, analysis)
		}
	}
	return text, nil
}

// AnalyzeForPlanning asks for the subject, key concepts and difficulty of text.
func (p *ContentProcessor) AnalyzeForPlanning(ctx context.Context, text, filename string) (string, error) {
	excerpt, _ := chunker.Excerpt(text, analysisExcerpt)
	prompt := fmt.Sprintf("Analyze for study planning:\nFile: %s\nStyle: %s\nContent: %s\n\n"+
		"Provide: subject, key concepts, difficulty, study time, focus areas.",
		filepath.Base(filename), p.style(ctx), excerpt)
	return p.CallAI(ctx, prompt, 400)
}

// Summary creates a summary of the file at path. displayName names the
// saved item; the file's base name is used when it is empty.
func (p *ContentProcessor) Summary(ctx context.Context, path, length, displayName string) (string, error) {
	if length == "" {
		length = "medium"
	}
	return p.process(ctx, path, displayName, model.ContentSummary, func(style, excerpt string) string {
		return fmt.Sprintf("Create a %s summary for a %s learner:\n%s", length, style, excerpt)
	})
}

// Notes creates study notes for the file at path.
func (p *ContentProcessor) Notes(ctx context.Context, path, displayName string) (string, error) {
	return p.process(ctx, path, displayName, model.ContentNotes, func(style, excerpt string) string {
		return fmt.Sprintf("Create study notes for a %s learner:\n%s\n\n"+
			"Include main topics, key facts, and review questions.", style, excerpt)
	})
}

// Questions generates practice questions with answers for the file at path.
func (p *ContentProcessor) Questions(ctx context.Context, path, difficulty, displayName string) (string, error) {
	if difficulty == "" {
		difficulty = "medium"
	}
	return p.process(ctx, path, displayName, model.ContentQuestions, func(style, excerpt string) string {
		return fmt.Sprintf("Generate %s questions for a %s learner:\n%s\n\n"+
			"Include recall, comprehension, and application questions with answers.", difficulty, style, excerpt)
	})
}

func (p *ContentProcessor) process(ctx context.Context, path, displayName, contentType string, prompt func(style, excerpt string) string) (string, error) {
	text, err := p.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}
	excerpt, truncated := chunker.Excerpt(text, materialExcerpt)
	if truncated {
		p.log.WithFields(logrus.Fields{"file": filepath.Base(path), "chars": len(text)}).Debug("material truncated")
	}

	out, err := p.CallAI(ctx, prompt(p.style(ctx), excerpt), 800)
	if err != nil {
		return "", err
	}
	if displayName == "" {
		displayName = filepath.Base(path)
	}
	p.save(ctx, displayName, contentType, out)
	return out, nil
}

// PlanFromProcessedFile builds a study plan from everything generated for
// the most recently processed file.
func (p *ContentProcessor) PlanFromProcessedFile(ctx context.Context, hours, deadline string) (string, error) {
	if p.userID == "" {
		return "", ErrNoUser
	}
	items := p.svc.UserContent(ctx, p.userID, 10)
	if len(items) == 0 {
		return "", ErrNoProcessedContent
	}

	latest := items[0].Filename
	var parts []string
	for _, it := range items {
		if it.Filename == latest {
			parts = append(parts, strings.ToUpper(it.Type)+": "+it.Content)
		}
	}
	material, _ := chunker.Excerpt(strings.Join(parts, "\n\n"), planExcerpt)
	style := p.style(ctx)

	prompt := fmt.Sprintf(`Create study plan:
File: %s
Hours: %s
Deadline: %s
Style: %s

CONTENT:
%s

Create a plan that uses the content above, breaks down %s hours until %s, and matches %s learning.`,
		latest, hours, deadline, style, material, hours, deadline, style)

	out, err := p.CallAI(ctx, prompt, 1000)
	if err != nil {
		return "", err
	}
	p.save(ctx, "Study Plan - "+latest, model.ContentStudyPlan, out)
	return out, nil
}
