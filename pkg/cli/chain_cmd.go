package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

func newChainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain <namespace.table>",
		Short: "Pull descriptions into a table, then push them onward",
		Long:  "Runs pull propagation into the table, applies the gated records, then pushes the table's descriptions downstream so freshly inherited metadata flows onward in one pass. Report mode previews without writing.",
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
			outcomes, err := rt.app.Service.Chain(cmd.Context(), table, !apply)
			if err != nil {
				return err
			}
			return emit(cmd, map[string]interface{}{"table": table.FQN(), "dry_run": !apply, "outcomes": outcomesJSON(outcomes)}, func(w io.Writer) {
				printOutcomes(w, outcomes)
			})
		},
	}
	addModeFlag(cmd)
	return cmd
}
