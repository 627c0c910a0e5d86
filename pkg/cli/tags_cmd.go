package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

func newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags <namespace.table>",
		Short: "Recommend classification-tag propagation for a table",
		Long:  "Proposes copying access-classification tags from tagged direct producers. Pure passthrough columns are safe to propagate; transformed columns are flagged review-required. Apply mode executes only the propagate-recommended entries.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apply, err := parseModeFlag(cmd)
			if err != nil {
				return err
			}
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			table := domain.ParseTableRef(args[0])
			recs, err := rt.app.Service.RecommendTagPropagation(cmd.Context(), table)
			if err != nil {
				return err
			}

			if !apply {
				return emit(cmd, map[string]interface{}{"table": table.FQN(), "recommendations": tagRecommendationsJSON(recs)}, func(w io.Writer) {
					printTagRecommendations(w, recs)
				})
			}

			outcomes := rt.app.Service.ApplyTags(cmd.Context(), recs)
			return emit(cmd, map[string]interface{}{"table": table.FQN(), "outcomes": outcomesJSON(outcomes)}, func(w io.Writer) {
				printOutcomes(w, outcomes)
			})
		},
	}
	addModeFlag(cmd)
	return cmd
}
