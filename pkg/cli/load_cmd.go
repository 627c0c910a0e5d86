package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/akanksha86/governance-metadata-propagation/internal/app"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <snapshot.yaml>",
		Short: "Load a metastore snapshot (tables, lineage edges, statements, glossary terms)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			snap, err := app.ReadSnapshot(args[0])
			if err != nil {
				return err
			}
			if err := app.LoadSnapshot(cmd.Context(), rt.dbDeps(), snap); err != nil {
				return err
			}

			payload := map[string]interface{}{
				"tables": len(snap.Tables),
				"edges":  len(snap.Edges),
				"terms":  len(snap.Terms),
			}
			return emit(cmd, payload, func(w io.Writer) {
				fmt.Fprintf(w, "loaded %d tables, %d edges, %d terms into %s\n",
					len(snap.Tables), len(snap.Edges), len(snap.Terms), rt.cfg.MetaDBPath)
			})
		},
	}
}
