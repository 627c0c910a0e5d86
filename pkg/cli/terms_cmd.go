package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

func newTermsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "terms <namespace.table>",
		Short: "Rank controlled-vocabulary terms for a table's columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			table := domain.ParseTableRef(args[0])
			matches, err := rt.app.Service.RecommendTerms(cmd.Context(), table)
			if err != nil {
				return err
			}

			payload := make(map[string][]map[string]interface{}, len(matches))
			for column, candidates := range matches {
				ranked := make([]map[string]interface{}, len(candidates))
				for i, c := range candidates {
					ranked[i] = map[string]interface{}{
						"term_id":      c.TermID,
						"display_name": c.DisplayName,
						"confidence":   c.Confidence,
						"lexical":      c.Signals.Lexical,
						"semantic":     c.Signals.Semantic,
					}
				}
				payload[column] = ranked
			}

			return emit(cmd, map[string]interface{}{"table": table.FQN(), "matches": payload}, func(w io.Writer) {
				if len(matches) == 0 {
					fmt.Fprintln(w, "no term matches")
					return
				}
				columns := make([]string, 0, len(matches))
				for column := range matches {
					columns = append(columns, column)
				}
				sort.Strings(columns)
				for _, column := range columns {
					fmt.Fprintf(w, "%s.%s:\n", table.FQN(), column)
					for _, c := range matches[column] {
						fmt.Fprintf(w, "  %.2f  %s (%s)\n", c.Confidence, c.DisplayName, c.TermID)
					}
				}
			})
		},
	}
}
