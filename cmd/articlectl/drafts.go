package main

import (
	"fmt"

	"article-admin/internal/article"
	"article-admin/internal/draft"
	"article-admin/internal/edit"
	"article-admin/internal/ingest"
	"article-admin/internal/session"

	"github.com/spf13/cobra"
)

func newDraftsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Inspect and clean up local drafts",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List local drafts, most recently saved first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				entries, err := a.drafts.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					kind := "existing"
					if draft.IsNew(e.ID) {
						kind = "new"
					}
					saved := "-"
					if !e.SavedAt.IsZero() {
						saved = formatDate(&e.SavedAt)
					}
					rows = append(rows, []string{e.ID, e.Title, kind, saved})
				}
				return renderTable(cmd.OutOrStdout(), []string{"DRAFT", "TITLE", "KIND", "SAVED"}, rows)
			},
		},
		&cobra.Command{
			Use:   "show DRAFT",
			Short: "Print a draft as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, ok, err := a.drafts.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no draft %q", args[0])
				}
				text, err := edit.FormatRaw(f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm DRAFT",
			Short: "Remove a draft",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.drafts.Remove(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "prune",
			Short: "Remove expired drafts and the oldest ones over capacity",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				n, err := a.drafts.Prune(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d drafts\n", n)
				return nil
			},
		},
	)
	return cmd
}

func newNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a draft for a new article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := session.Start(cmd.Context(), a.api, a.drafts, a.sessionOptions(cmd, draft.NewID()))
			if err != nil {
				return err
			}
			if err := sess.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.DraftID())
			return nil
		},
	}
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open ID",
		Short: "Copy a stored article into a draft, replacing any local draft of it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.Open(cmd.Context(), a.api, a.drafts, args[0], a.sessionOptions(cmd, args[0]))
			if err != nil {
				return err
			}
			if err := sess.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.DraftID())
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import URL",
		Short: "Start a new draft from the readable text of a web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.importer.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sess, err := session.Start(cmd.Context(), a.api, a.drafts, a.sessionOptions(cmd, draft.NewID()))
			if err != nil {
				return err
			}
			fields := ingest.ToFields(page)
			if err := sess.Apply(cmd.Context(), func(_ article.Fields) (article.Fields, error) {
				return fields, nil
			}); err != nil {
				return err
			}
			if err := sess.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.DraftID())
			return nil
		},
	}
}

func newSubmitCmd(a *app) *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:   "submit DRAFT",
		Short: "Create or update the stored article from a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok, err := a.drafts.Load(cmd.Context(), args[0]); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("no draft %q", args[0])
			}
			opts := a.sessionOptions(cmd, args[0])
			opts.Autosave = false
			opts.KeepDraftOnSubmit = keep
			sess, err := session.Start(cmd.Context(), a.api, a.drafts, opts)
			if err != nil {
				return err
			}
			art, err := sess.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submitted article %s\n", art.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&keep, "keep-draft", false, "keep the local draft after a successful submit")
	return cmd
}
