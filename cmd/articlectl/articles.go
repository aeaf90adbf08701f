package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored articles, newest publish date first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.api.List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{it.ID, it.Title, formatDate(it.PublishDate), yesNo(it.Published)})
			}
			return renderTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "PUBLISH DATE", "PUBLISHED"}, rows)
		},
	}
}

func newPublishCmd(a *app, use string, published bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: fmt.Sprintf("Set published=%t on a stored article", published),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := a.api.SetPublished(cmd.Context(), args[0], published)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "article %s published=%t\n", art.ID, art.Published)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			art, err := a.api.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted article %s (%s)\n", art.ID, art.Title)
			return nil
		},
	}
}
