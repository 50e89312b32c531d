package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show study analytics for the user",
		Args:  cobra.NoArgs,
		Run:   runAnalytics,
	}

	RootCmd.AddCommand(cmd)
}

func runAnalytics(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.Close()

	printJSON(a.svc.GetAnalytics(cmd.Context(), a.user(cmd.Context())))
}
