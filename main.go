// stringsync — offline translation manager for git-hosted string resources.
//
// It clones an upstream repository, discovers Android-convention resource
// files, keeps a cleaned default baseline plus one consolidated store per
// locale, and re-synchronizes against upstream without losing local edits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stringsync/stringsync/config"
	"github.com/stringsync/stringsync/i18n"
	"github.com/stringsync/stringsync/langmeta"
	"github.com/stringsync/stringsync/notify"
	"github.com/stringsync/stringsync/repo"
	"github.com/stringsync/stringsync/store"
	"github.com/stringsync/stringsync/vcs"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// app bundles the collaborators every command shares.
type app struct {
	cfg    *config.Config
	client *vcs.GitClient
	bus    *notify.Bus
}

func newApp() (*app, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	client := vcs.NewGitClient()
	client.Depth = cfg.CloneDepth
	return &app{cfg: cfg, client: client, bus: notify.NewBus()}, nil
}

func (a *app) handler(url string) (*repo.Handler, error) {
	return repo.New(a.cfg.ReposDir, url, a.client, a.bus)
}

func (a *app) policy(takeUpstream bool) store.Policy {
	if takeUpstream || a.cfg.MergePolicy == config.PolicyTakeUpstream {
		return store.PolicyTakeUpstream
	}
	return store.PolicyKeepLocal
}

// runSync drives one sync pipeline, printing stage progress.
func (a *app) runSync(h *repo.Handler, policy store.Policy) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := <-h.SyncAsync(ctx, policy, func(stage repo.Stage, description string) {
		logInfo("%s", i18n.T(description))
	})
	if res.Err != nil {
		logError("%s: %v", i18n.T("Sync failed"), res.Err)
		return res.Err
	}
	logSuccess("%s", i18n.T("Repository synced"))
	return nil
}

func main() {
	i18n.Init("")
	logrus.SetLevel(logrus.WarnLevel)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "stringsync",
		Short:         "Offline translation manager for git-hosted string resources",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newVersionCmd(),
		newReposCmd(),
		newAddCmd(),
		newSyncCmd(),
		newRemoveCmd(),
		newLocalesCmd(),
		newLocaleCmd(),
		newSetCmd(),
		newShowCmd(),
		newExportCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stringsync %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func newReposCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repos",
		Short: "List known repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			handlers, err := repo.ListRepositories(a.cfg.ReposDir, a.client, a.bus)
			if err != nil {
				return err
			}
			if len(handlers) == 0 {
				fmt.Println(i18n.T("No repositories yet. Use 'stringsync add <url>' to start."))
				return nil
			}
			for _, h := range handlers {
				locales := 0
				for _, l := range h.Locales() {
					if l != repo.DefaultLocale {
						locales++
					}
				}
				fmt.Printf("%s  (%s)\n", h.Name(), fmt.Sprintf(i18n.N("%d locale", "%d locales", locales), locales))
			}
			fmt.Printf(i18n.N("%d repository", "%d repositories", len(handlers))+"\n", len(handlers))
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	var takeUpstream bool
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a repository and run the first sync",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			h, err := a.handler(args[0])
			if err != nil {
				return err
			}
			return a.runSync(h, a.policy(takeUpstream))
		},
	}
	cmd.Flags().BoolVar(&takeUpstream, "take-upstream", false, "overwrite local edits with upstream content")
	return cmd
}

func newSyncCmd() *cobra.Command {
	var takeUpstream bool
	cmd := &cobra.Command{
		Use:   "sync <url>",
		Short: "Re-synchronize a repository against upstream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			h, err := a.handler(args[0])
			if err != nil {
				return err
			}
			if h.AnyModified() && a.policy(takeUpstream) == store.PolicyTakeUpstream {
				logWarning("local edits exist and will be overwritten (take-upstream policy)")
			}
			return a.runSync(h, a.policy(takeUpstream))
		},
	}
	cmd.Flags().BoolVar(&takeUpstream, "take-upstream", false, "overwrite local edits with upstream content")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <url>",
		Short: "Delete a repository and all its translations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			h, err := a.handler(args[0])
			if err != nil {
				return err
			}
			if err := h.Delete(); err != nil {
				return err
			}
			logSuccess("deleted %s", h.Name())
			return nil
		},
	}
}

func newLocalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locales <url>",
		Short: "List a repository's locales by display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			h, err := a.handler(args[0])
			if err != nil {
				return err
			}
			for _, locale := range h.Locales() {
				if locale == repo.DefaultLocale {
					continue
				}
				marker := " "
				if h.LoadResources(locale).AnyModified() {
					marker = "*"
				}
				fmt.Printf("%s %-8s %s\n", marker, locale, langmeta.Display(locale))
			}
			return nil
		},
	}
}

func newLocaleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locale",
		Short: "Create or delete a translation locale",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <url> <locale>",
			Short: "Create an empty locale store",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp()
				if err != nil {
					return err
				}
				h, err := a.handler(args[0])
				if err != nil {
					return err
				}
				if err := h.CreateLocale(args[1]); err != nil {
					return err
				}
				logSuccess("locale %s (%s) ready", args[1], langmeta.Display(args[1]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <url> <locale>",
			Short: "Delete a locale store",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp()
				if err != nil {
					return err
				}
				h, err := a.handler(args[0])
				if err != nil {
					return err
				}
				return h.DeleteLocale(args[1])
			},
		},
	)
	return cmd
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <url> <locale> <id> <value>",
		Short: "Set one entry's translation in a locale",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			h, err := a.handler(args[0])
			if err != nil {
				return err
			}
			return h.SetTranslation(args[1], args[2], args[3])
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <url> <locale>",
		Short: "Show a locale's entries and translation progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			h, err := a.handler(args[0])
			if err != nil {
				return err
			}
			locale := args[1]
			source := h.LoadDefaultResources()
			st := h.LoadResources(locale)
			for _, name := range source.Names() {
				src, _ := source.Lookup(name)
				if !src.IsTranslatable() {
					continue
				}
				marker := " "
				if st.WasModified(name) {
					marker = "*"
				}
				fmt.Printf("%s %-30s %s\n", marker, name, st.Content(name))
			}
			total, _ := source.Stats()
			done := 0
			for _, e := range st.Entries() {
				if e.IsTranslated() {
					done++
				}
			}
			fmt.Printf("%d/%d translated\n", done, total)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <url> <locale>",
		Short: "Render a locale's translation against the default baseline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			h, err := a.handler(args[0])
			if err != nil {
				return err
			}
			out, err := h.MergeDefaultTemplate(args[1])
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = os.Stdout.Write(out)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(outPath, out, 0644); err != nil {
				return err
			}
			logSuccess("wrote %s", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	return cmd
}
