package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	wslog "github.com/vidyasagar/wikisurf/internal/log"
	"github.com/vidyasagar/wikisurf/internal/storage"
)

const timeLayout = "2006-01-02 15:04"

// openLibrary opens the reader's database for the history and saved commands.
func openLibrary(opts *rootOptions) (*storage.DB, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return storage.OpenDB(cfg.DataPath())
}

// NewHistoryCmd creates the history command.
func NewHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit    int
		query    string
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recently read articles as a Markdown table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openLibrary(root)
			if err != nil {
				return err
			}
			defer db.Close()

			hs := storage.NewHistoryStore(db, wslog.New(cmd.ErrOrStderr(), root.verbose))
			defer hs.Close()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if clearAll {
				if err := hs.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
				return nil
			}

			var entries []storage.HistoryEntry
			if query != "" {
				entries, err = hs.Search(ctx, query, limit)
			} else {
				entries, err = hs.Recent(ctx, limit)
			}
			if err != nil {
				return err
			}
			return writeHistory(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to print")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only entries whose title contains this text")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete the whole history")
	return cmd
}

// NewSavedCmd creates the saved command.
func NewSavedCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "saved",
		Short: "List pages saved for offline reading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openLibrary(root)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pages, err := storage.NewSavedPageStore(db).List(ctx)
			if err != nil {
				return err
			}
			return writeSaved(cmd.OutOrStdout(), pages)
		},
	}
}

func writeHistory(w io.Writer, entries []storage.HistoryEntry) error {
	md := markdown.NewMarkdown(w)
	md.H1("Reading history")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("Nothing read yet.")
		return md.Build()
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.VisitedAt.Local().Format(timeLayout),
			"[" + e.Title.Text + "](" + e.Title.URL() + ")",
			e.Title.Language(),
			e.Source.String(),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Read", "Article", "Language", "Via"},
		Rows:   rows,
	})
	md.PlainText("")
	md.PlainText(strconv.Itoa(len(entries)) + " entries")
	return md.Build()
}

func writeSaved(w io.Writer, pages []storage.SavedPage) error {
	md := markdown.NewMarkdown(w)
	md.H1("Saved pages")
	md.PlainText("")

	if len(pages) == 0 {
		md.PlainText("No saved pages.")
		return md.Build()
	}

	rows := make([][]string, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, []string{
			p.SavedAt.Local().Format(timeLayout),
			"[" + p.Title.Text + "](" + p.Title.URL() + ")",
			p.Title.Language(),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Saved", "Article", "Language"},
		Rows:   rows,
	})
	return md.Build()
}
