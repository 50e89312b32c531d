package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all users, sessions and content",
		Args:  cobra.NoArgs,
		Run:   runClear,
	}

	cmd.Flags().Bool("yes", false, "Confirm deletion")

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		exitErr("clear", fmt.Errorf("refusing to delete all data without --yes"))
	}

	a := openApp(cmd.Context())
	defer a.Close()

	a.svc.ClearAll(cmd.Context())
	fmt.Printf("cleared %s backend\n", a.backend.Name())
}
