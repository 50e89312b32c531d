package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/study-assistant/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create an anonymous user and print its id",
		Args:  cobra.NoArgs,
		Run:   runUserCreate,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "login [name]",
		Short: "Print the id for a name, creating the user on first login",
		Args:  cobra.ExactArgs(1),
		Run:   runUserLogin,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		Run:   runUserGet,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "style [style]",
		Short: "Set the learning style: visual, auditory, reading or any custom text",
		Args:  cobra.MinimumNArgs(1),
		Run:   runUserStyle,
	})

	RootCmd.AddCommand(cmd)
}

func runUserCreate(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.Close()

	fmt.Println(a.svc.CreateUser(cmd.Context()))
}

func runUserLogin(cmd *cobra.Command, args []string) {
	name := strings.TrimSpace(args[0])
	if name == "" {
		exitErr("login", fmt.Errorf("name is required"))
	}

	a := openApp(cmd.Context())
	defer a.Close()

	fmt.Println(a.svc.EnsureUser(cmd.Context(), name))
}

func runUserGet(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.Close()

	id := a.user(cmd.Context())
	printJSON(struct {
		ID string `json:"id"`
		model.User
	}{id, a.svc.GetUser(cmd.Context(), id)})
}

func runUserStyle(cmd *cobra.Command, args []string) {
	style := strings.Join(args, " ")

	a := openApp(cmd.Context())
	defer a.Close()

	id := a.user(cmd.Context())
	if !a.svc.SetStyle(cmd.Context(), id, style) {
		exitErr("style", fmt.Errorf("unknown user %s or empty style", id))
	}
	if !model.ValidStyles[style] {
		fmt.Printf("custom style set: %s\n", style)
		return
	}
	fmt.Printf("style set: %s\n", style)
}
