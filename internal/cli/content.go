package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/study-assistant/internal/model"
	"github.com/rcliao/study-assistant/internal/study"
)

func init() {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage generated content",
	}

	save := &cobra.Command{
		Use:   "save [content]",
		Short: "Save a content item",
		Long:  "Save a content item. Content can be a positional arg or piped via stdin.",
		Run:   runContentSave,
	}
	save.Flags().StringP("type", "t", "", "Type: "+strings.Join(contentTypes(), ", "))
	save.Flags().String("file", "", "Source filename (required)")
	save.MarkFlagRequired("type")
	save.MarkFlagRequired("file")
	cmd.AddCommand(save)

	list := &cobra.Command{
		Use:   "list",
		Short: "List content items, newest first",
		Args:  cobra.NoArgs,
		Run:   runContentList,
	}
	list.Flags().IntP("limit", "l", 10, "Max results")
	list.Flags().StringP("type", "t", "", "Filter by type")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "get [id]",
		Short: "Show a content item",
		Args:  cobra.ExactArgs(1),
		Run:   runContentGet,
	})

	export := &cobra.Command{
		Use:   "export",
		Short: "Export content items as files",
		Long:  "Write each content item to <dir>/<type>-<filename>-<id>.txt, or print them as JSON when no directory is given.",
		Args:  cobra.NoArgs,
		Run:   runContentExport,
	}
	export.Flags().StringP("out", "o", "", "Output directory")
	export.Flags().IntP("limit", "l", study.HistoryCap, "Max items")
	cmd.AddCommand(export)

	RootCmd.AddCommand(cmd)
}

func contentTypes() []string {
	types := make([]string, 0, len(model.ValidContentTypes))
	for t := range model.ValidContentTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func runContentSave(cmd *cobra.Command, args []string) {
	typ, _ := cmd.Flags().GetString("type")
	file, _ := cmd.Flags().GetString("file")
	if !model.ValidContentTypes[typ] {
		exitErr("save", fmt.Errorf("invalid type %q (valid: %s)", typ, strings.Join(contentTypes(), ", ")))
	}

	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}
	if strings.TrimSpace(content) == "" {
		exitErr("save", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	a := openApp(cmd.Context())
	defer a.Close()

	fmt.Println(a.svc.SaveContent(cmd.Context(), a.user(cmd.Context()), file, typ, strings.TrimSpace(content)))
}

func runContentList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	typ, _ := cmd.Flags().GetString("type")

	a := openApp(cmd.Context())
	defer a.Close()

	items := a.svc.UserContent(cmd.Context(), a.user(cmd.Context()), limit)
	if typ != "" {
		filtered := items[:0]
		for _, it := range items {
			if it.Type == typ {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	printJSON(items)
}

func runContentGet(cmd *cobra.Command, args []string) {
	a := openApp(cmd.Context())
	defer a.Close()

	item, ok := a.svc.GetContent(cmd.Context(), args[0])
	if !ok {
		exitErr("get", fmt.Errorf("content %s not found", args[0]))
	}
	printJSON(item)
}

func runContentExport(cmd *cobra.Command, args []string) {
	dir, _ := cmd.Flags().GetString("out")
	limit, _ := cmd.Flags().GetInt("limit")

	a := openApp(cmd.Context())
	defer a.Close()

	items := a.svc.UserContent(cmd.Context(), a.user(cmd.Context()), limit)
	if dir == "" {
		printJSON(items)
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		exitErr("export", err)
	}
	for _, it := range items {
		path := filepath.Join(dir, exportName(it))
		if err := os.WriteFile(path, []byte(it.Content), 0o644); err != nil {
			exitErr("export", err)
		}
		fmt.Println(path)
	}
}

// exportName builds a filesystem-safe name for a content item.
func exportName(it model.ContentItem) string {
	base := strings.TrimSuffix(filepath.Base(it.Filename), filepath.Ext(it.Filename))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	return fmt.Sprintf("%s-%s-%s.txt", it.Type, base, it.ID)
}
