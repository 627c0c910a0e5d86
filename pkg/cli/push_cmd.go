package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <namespace.table>",
		Short: "Push a table's descriptions to undescribed downstream consumers",
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
			records, err := rt.app.Service.PushDescriptions(cmd.Context(), table)
			if err != nil {
				return err
			}

			if !apply {
				return emit(cmd, map[string]interface{}{"table": table.FQN(), "records": recordsJSON(records)}, func(w io.Writer) {
					printRecords(w, records)
				})
			}

			outcomes, err := rt.app.Service.Apply(cmd.Context(), records, false)
			if err != nil {
				return err
			}
			return emit(cmd, map[string]interface{}{"table": table.FQN(), "outcomes": outcomesJSON(outcomes)}, func(w io.Writer) {
				printOutcomes(w, outcomes)
			})
		},
	}
	addModeFlag(cmd)
	return cmd
}
