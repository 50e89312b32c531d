package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/study-assistant/internal/agent"
)

func init() {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Turn a document into study material",
	}

	summary := &cobra.Command{
		Use:   "summary [file]",
		Short: "Summarize a document",
		Args:  cobra.ExactArgs(1),
		Run:   runProcessSummary,
	}
	summary.Flags().String("length", "medium", "Summary length: short, medium or long")
	cmd.AddCommand(summary)

	cmd.AddCommand(&cobra.Command{
		Use:   "notes [file]",
		Short: "Create study notes from a document",
		Args:  cobra.ExactArgs(1),
		Run:   runProcessNotes,
	})

	questions := &cobra.Command{
		Use:   "questions [file]",
		Short: "Generate practice questions from a document",
		Args:  cobra.ExactArgs(1),
		Run:   runProcessQuestions,
	}
	questions.Flags().String("difficulty", "medium", "Difficulty: easy, medium or hard")
	cmd.AddCommand(questions)

	plan := &cobra.Command{
		Use:   "plan",
		Short: "Create a study plan from the most recently processed document",
		Args:  cobra.NoArgs,
		Run:   runProcessPlan,
	}
	plan.Flags().String("hours", "10", "Hours available")
	plan.Flags().String("deadline", "", "Deadline")
	cmd.AddCommand(plan)

	cmd.PersistentFlags().String("name", "", "Filename to save results under (default: the file's base name)")

	RootCmd.AddCommand(cmd)
}

// runProcessor runs fn with a content processor bound to the user, inside a
// session named after the task.
func runProcessor(cmd *cobra.Command, task string, fn func(p *agent.ContentProcessor) (string, error)) {
	ctx := cmd.Context()
	a := openApp(ctx)
	defer a.Close()

	user := a.user(ctx)
	_, proc := a.agents()
	out := a.inSession(ctx, user, task, func() (string, error) {
		proc.SetUser(ctx, user)
		return fn(proc)
	})
	fmt.Println(out)
}

func runProcessSummary(cmd *cobra.Command, args []string) {
	length, _ := cmd.Flags().GetString("length")
	name, _ := cmd.Flags().GetString("name")
	runProcessor(cmd, "Summary: "+filepath.Base(args[0]), func(p *agent.ContentProcessor) (string, error) {
		return p.Summary(cmd.Context(), args[0], length, name)
	})
}

func runProcessNotes(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	runProcessor(cmd, "Notes: "+filepath.Base(args[0]), func(p *agent.ContentProcessor) (string, error) {
		return p.Notes(cmd.Context(), args[0], name)
	})
}

func runProcessQuestions(cmd *cobra.Command, args []string) {
	difficulty, _ := cmd.Flags().GetString("difficulty")
	name, _ := cmd.Flags().GetString("name")
	runProcessor(cmd, "Questions: "+filepath.Base(args[0]), func(p *agent.ContentProcessor) (string, error) {
		return p.Questions(cmd.Context(), args[0], difficulty, name)
	})
}

func runProcessPlan(cmd *cobra.Command, args []string) {
	hours, _ := cmd.Flags().GetString("hours")
	deadline, _ := cmd.Flags().GetString("deadline")
	runProcessor(cmd, "Study Plan from File", func(p *agent.ContentProcessor) (string, error) {
		return p.PlanFromProcessedFile(cmd.Context(), hours, deadline)
	})
}
