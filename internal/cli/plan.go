package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/study-assistant/internal/agent"
)

func init() {
	plan := &cobra.Command{
		Use:   "plan",
		Short: "Create a personalized study plan",
		Long:  "Create a study plan. With --file the documents are analysed first and the plan is followed by recommendations and a session summary.",
		Args:  cobra.NoArgs,
		Run:   runPlan,
	}
	plan.Flags().String("subject", "", "Subject (required)")
	plan.Flags().String("hours", "10", "Hours available")
	plan.Flags().String("deadline", "", "Deadline")
	plan.Flags().String("focus", "", "Focus areas")
	plan.Flags().String("goals", "", "Goals")
	plan.Flags().StringArrayP("file", "F", nil, "Document to analyse (repeatable)")
	plan.MarkFlagRequired("subject")
	RootCmd.AddCommand(plan)

	methods := &cobra.Command{
		Use:   "methods",
		Short: "Recommend study methods for a topic",
		Args:  cobra.NoArgs,
		Run:   runMethods,
	}
	methods.Flags().String("subject", "", "Subject (required)")
	methods.Flags().String("topic", "", "Topic")
	methods.Flags().String("style", "", "Learning style (default: the user's)")
	methods.MarkFlagRequired("subject")
	RootCmd.AddCommand(methods)
}

func runPlan(cmd *cobra.Command, args []string) {
	req := agent.PlanRequest{}
	req.Subject, _ = cmd.Flags().GetString("subject")
	req.Hours, _ = cmd.Flags().GetString("hours")
	req.Deadline, _ = cmd.Flags().GetString("deadline")
	req.Focus, _ = cmd.Flags().GetString("focus")
	req.Goals, _ = cmd.Flags().GetString("goals")
	files, _ := cmd.Flags().GetStringArray("file")

	ctx := cmd.Context()
	a := openApp(ctx)
	defer a.Close()

	user := a.user(ctx)
	planner, _ := a.agents()
	out := a.inSession(ctx, user, "Study Planning: "+req.Subject, func() (string, error) {
		planner.SetUser(ctx, user)
		if len(files) > 0 {
			return planner.ComprehensivePlan(ctx, req, files)
		}
		return planner.CreatePlan(ctx, req)
	})
	fmt.Println(out)
}

func runMethods(cmd *cobra.Command, args []string) {
	subject, _ := cmd.Flags().GetString("subject")
	topic, _ := cmd.Flags().GetString("topic")
	style, _ := cmd.Flags().GetString("style")

	ctx := cmd.Context()
	a := openApp(ctx)
	defer a.Close()

	user := a.user(ctx)
	planner, _ := a.agents()
	out := a.inSession(ctx, user, "Study Methods: "+subject, func() (string, error) {
		planner.SetUser(ctx, user)
		return planner.Methods(ctx, subject, topic, style)
	})
	fmt.Println(out)
}
