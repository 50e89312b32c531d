package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Args:  cobra.NoArgs,
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.Close()

	out := map[string]any{"backend": a.backend.Name()}
	if stats, ok := a.svc.DatabaseStats(cmd.Context()); ok {
		out["total_keys"] = stats.TotalKeys
		out["total_lists"] = stats.TotalLists
		out["database_path"] = stats.DBPath
		out["db_size_bytes"] = stats.DBSizeBytes
	}
	printJSON(out)
}
