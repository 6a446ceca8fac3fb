package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vidyasagar/wikisurf/internal/app"
	"github.com/vidyasagar/wikisurf/internal/config"
	wslog "github.com/vidyasagar/wikisurf/internal/log"
	"github.com/vidyasagar/wikisurf/internal/nav"
	"github.com/vidyasagar/wikisurf/internal/storage"
	"github.com/vidyasagar/wikisurf/internal/theme"
)

// LogFile is the log file name inside the XDG state directory.
const LogFile = "wikisurf.log"

var errUnknownWidget = errors.New("unknown widget")

// rootOptions holds the flags shared by the reader and its subcommands.
type rootOptions struct {
	configPath string
	verbose    bool
	lang       string

	theme  string
	search string
	share  string
	widget string
}

// NewRootCmd creates the root command for wikisurf.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "wikisurf [title-or-url]",
		Short: "A terminal reader for Wikipedia",
		Long: `wikisurf reads Wikipedia in the terminal.

With no arguments it resumes the pages you had open last time, or starts
at the main page. A title opens that article; a wiki link opens the page
it points to, on whichever language edition it names.`,
		Example: `  wikisurf                      # resume, or the main page
  wikisurf "Alan Turing"        # open an article
  wikisurf https://de.wikipedia.org/wiki/Berlin
  wikisurf --share "turing machine"  # search for shared text
  wikisurf --lang fr            # read the French Wikipedia`,
		Args:          cobra.MaximumNArgs(1),
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReader(cmd.Context(), opts, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "Config file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.StringVarP(&opts.lang, "lang", "l", "", "Wikipedia language edition (en, de, fr, ...)")

	f := cmd.Flags()
	f.StringVarP(&opts.theme, "theme", "t", "", "Color theme ("+strings.Join(theme.List(), ", ")+")")
	f.StringVarP(&opts.search, "search", "s", "", "Open the article with this title")
	f.StringVar(&opts.share, "share", "", "Open the search bar with shared text")
	f.StringVar(&opts.widget, "widget", "", "Start as if a widget was tapped (search, featured)")

	cmd.AddCommand(NewHistoryCmd(opts))
	cmd.AddCommand(NewSavedCmd(opts))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flags over it. A
// missing file leaves the defaults.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, err
	}
	if opts.lang != "" {
		cfg.Language = strings.ToLower(opts.lang)
	}
	if opts.theme != "" {
		cfg.Theme = opts.theme
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// launchIntent maps the command line to the reader's entry point. The
// second result is false when nothing was asked for, so the saved session
// may be resumed instead.
func launchIntent(opts *rootOptions, args []string) (nav.Intent, bool, error) {
	switch opts.widget {
	case "":
	case "search":
		return nav.Intent{Kind: nav.IntentSearchWidget}, true, nil
	case "featured":
		return nav.Intent{Kind: nav.IntentFeaturedWidget}, true, nil
	default:
		return nav.Intent{}, false, fmt.Errorf("%w: %q", errUnknownWidget, opts.widget)
	}

	switch {
	case opts.share != "":
		return nav.Intent{Kind: nav.IntentShare, Query: opts.share}, true, nil
	case opts.search != "":
		return nav.Intent{Kind: nav.IntentSearch, Query: opts.search}, true, nil
	case len(args) == 0:
		return nav.Intent{Kind: nav.IntentMain}, false, nil
	}

	arg := strings.TrimSpace(args[0])
	if strings.Contains(arg, "://") || strings.HasPrefix(arg, "/wiki/") {
		return nav.Intent{Kind: nav.IntentView, URI: arg}, true, nil
	}
	return nav.Intent{Kind: nav.IntentSearch, Query: arg}, true, nil
}

func runReader(ctx context.Context, opts *rootOptions, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	in, explicit, err := launchIntent(opts, args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	theme.Set(cfg.Theme)

	log, closer, err := wslog.OpenFile(filepath.Join(config.XDGStateDir(), LogFile), opts.verbose)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(log)

	env, err := app.Open(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := env.Close(ctx); err != nil {
			log.Warn("closing failed", "error", err)
		}
	}()

	appOpts := app.Options{Intent: in}
	if !explicit {
		st, err := storage.LoadState(cfg.DataPath())
		switch {
		case err == nil:
			appOpts.Restore = &st
		case !errors.Is(err, storage.ErrNoState):
			log.Warn("loading navigation state failed", "error", err)
		}
	}
	log.Info("starting", "version", getVersion(), "language", cfg.Language, "intent", in.Kind)

	p := tea.NewProgram(app.New(env, appOpts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running reader: %w", err)
	}
	return nil
}
