package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/study-assistant/internal/study"
)

func init() {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage study sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start [subject]",
		Short: "Start a session and make it current",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSessionStart,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "log [activity]",
		Short: "Log an activity to the current session (or --session)",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSessionLog,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "End the current session (or --session)",
		Args:  cobra.NoArgs,
		Run:   runSessionEnd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get [id]",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionGet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Print the current session id",
		Args:  cobra.NoArgs,
		Run:   runSessionCurrent,
	})

	list := &cobra.Command{
		Use:   "list",
		Short: "List ended sessions, newest first",
		Args:  cobra.NoArgs,
		Run:   runSessionList,
	}
	list.Flags().IntP("limit", "l", 10, "Max results")
	cmd.AddCommand(list)

	cmd.PersistentFlags().StringP("session", "s", "", "Session id (default: the user's current session)")

	RootCmd.AddCommand(cmd)
}

func runSessionStart(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.Close()

	fmt.Println(a.svc.StartSession(cmd.Context(), a.user(cmd.Context()), strings.Join(args, " ")))
}

// targetSession returns --session or the user's current session.
func targetSession(cmd *cobra.Command, a *app) string {
	if id, _ := cmd.Flags().GetString("session"); id != "" {
		return id
	}
	id, ok := a.svc.CurrentSession(cmd.Context(), a.user(cmd.Context()))
	if !ok {
		exitErr("session", fmt.Errorf("no current session"))
	}
	return id
}

func runSessionLog(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.Close()

	a.svc.LogActivity(cmd.Context(), targetSession(cmd, a), strings.Join(args, " "))
}

func runSessionEnd(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.Close()

	id := targetSession(cmd, a)
	a.svc.EndSession(cmd.Context(), id)
	fmt.Println(id)
}

func runSessionGet(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.Close()

	sess, ok := a.svc.GetSession(cmd.Context(), args[0])
	if !ok {
		exitErr("get", fmt.Errorf("session %s not found", args[0]))
	}
	printJSON(sess)
}

func runSessionCurrent(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.Close()

	id, ok := a.svc.CurrentSession(cmd.Context(), a.user(cmd.Context()))
	if !ok {
		exitErr("current", fmt.Errorf("no current session"))
	}
	fmt.Println(id)
}

func runSessionList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit > study.HistoryCap {
		limit = study.HistoryCap
	}

	a := openApp(cmd.Context())
	defer a.Close()

	printJSON(a.svc.UserSessions(cmd.Context(), a.user(cmd.Context()), limit))
}
