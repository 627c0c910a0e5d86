package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lineage-summary <namespace.table>",
		Short: "Show upstream/downstream reach and enrichment potential for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			table := domain.ParseTableRef(args[0])
			summary, err := rt.app.Service.LineageSummary(cmd.Context(), table)
			if err != nil {
				return err
			}

			payload := map[string]interface{}{
				"table":                table.FQN(),
				"upstream_entities":    summary.UpstreamEntities,
				"downstream_entities":  summary.DownstreamEntities,
				"missing_descriptions": summary.MissingDescriptions,
				"enrichable":           summary.Enrichable,
			}
			return emit(cmd, payload, func(w io.Writer) {
				fmt.Fprintf(w, "table: %s\n", table.FQN())
				fmt.Fprintf(w, "upstream entities (%d):\n", len(summary.UpstreamEntities))
				for entity, count := range summary.UpstreamEntities {
					fmt.Fprintf(w, "  %s (%d columns)\n", entity, count)
				}
				fmt.Fprintf(w, "downstream entities (%d):\n", len(summary.DownstreamEntities))
				for entity, count := range summary.DownstreamEntities {
					fmt.Fprintf(w, "  %s (%d columns)\n", entity, count)
				}
				fmt.Fprintf(w, "missing descriptions: %d\n", len(summary.MissingDescriptions))
				for _, column := range summary.MissingDescriptions {
					fmt.Fprintf(w, "  %s\n", column)
				}
				fmt.Fprintf(w, "enrichable from upstream: %d\n", summary.Enrichable)
			})
		},
	}
}
