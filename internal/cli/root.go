// Package cli implements the study-assistant CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rcliao/study-assistant/internal/agent"
	"github.com/rcliao/study-assistant/internal/config"
	"github.com/rcliao/study-assistant/internal/document"
	"github.com/rcliao/study-assistant/internal/llm"
	"github.com/rcliao/study-assistant/internal/store"
	"github.com/rcliao/study-assistant/internal/study"
)

var (
	logLevel  string
	logFormat string
	userName  string
	userID    string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "study-assistant",
	Short: "Study planning and document processing with persistent history",
	Long: "Create study plans and turn documents into summaries, notes and questions.\n" +
		"Users, sessions and generated content are kept in SQLite or Redis.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel, logFormat)
	},
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.String("backend", store.KindSQLite, "Storage backend: sqlite, redis or memory")
	pf.StringP("db", "d", "", "SQLite database path (default: $STUDY_DB or ~/.study-assistant/study.db)")
	pf.String("redis-url", "", "Redis URL (default: $STUDY_REDIS_URL or "+config.DefaultRedisURL+")")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	pf.StringVarP(&userName, "user", "u", "", "Act as the user with this name (created on first use)")
	pf.StringVar(&userID, "user-id", "", "Act as the user with this id")
}

func setupLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	switch format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q (valid: text, json)", format)
	}
	logrus.SetOutput(os.Stderr)
	return nil
}

// app bundles what a command needs for one invocation.
type app struct {
	cfg     *config.Config
	backend store.Backend
	svc     *study.Service
}

func openApp(ctx context.Context) *app {
	cfg, err := config.Load(RootCmd.PersistentFlags())
	if err != nil {
		exitErr("load config", err)
	}
	log := logrus.StandardLogger()
	b, err := store.Open(ctx, cfg.StoreOptions(), store.WithLogger(log))
	if err != nil {
		exitErr("open store", err)
	}
	return &app{
		cfg:     cfg,
		backend: b,
		svc:     study.New(b, study.WithLogger(log), study.WithSessionTTL(cfg.SessionTTL)),
	}
}

func (a *app) Close() {
	a.backend.Close()
}

// user resolves the acting user from --user-id or --user.
func (a *app) user(ctx context.Context) string {
	switch {
	case userID != "":
		return userID
	case userName != "":
		return a.svc.EnsureUser(ctx, userName)
	default:
		exitErr("user", fmt.Errorf("--user or --user-id is required"))
		return ""
	}
}

func (a *app) agents() (*agent.StudyPlanner, *agent.ContentProcessor) {
	chat, err := llm.NewOpenRouter(a.cfg.LLM, logrus.StandardLogger())
	if err != nil {
		exitErr("llm", err)
	}
	log := logrus.StandardLogger()
	proc := agent.NewContentProcessor(a.svc, chat, document.NewReader(time.Hour), log)
	return agent.NewStudyPlanner(a.svc, chat, proc, log), proc
}

// inSession runs fn inside a fresh study session for user, the way each
// workflow is recorded in the user's history.
func (a *app) inSession(ctx context.Context, user, subject string, fn func() (string, error)) string {
	id := a.svc.StartSession(ctx, user, subject)
	defer a.svc.EndSession(ctx, id)
	out, err := fn()
	if err != nil {
		a.svc.EndSession(ctx, id)
		exitErr(subject, err)
	}
	return out
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
