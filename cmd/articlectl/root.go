package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "articlectl",
		Short: "Edit and manage learning articles",
		Long: `articlectl edits articles through local drafts and manages the
articles stored behind the article-admin API.

Example usage:
  articlectl new                            # start a draft for a new article
  articlectl edit -d new-... set title "Le chat"
  articlectl edit -d new-... vocab easy add
  articlectl submit new-...                 # create the article, drop the draft
  articlectl list                           # stored articles, newest first`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}

	root.AddCommand(
		newListCmd(a),
		newPublishCmd(a, "publish", true),
		newPublishCmd(a, "unpublish", false),
		newDeleteCmd(a),
		newDraftsCmd(a),
		newNewCmd(a),
		newOpenCmd(a),
		newImportCmd(a),
		newEditCmd(a),
		newSubmitCmd(a),
	)
	return root
}
