package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [namespace]",
		Short: "List columns that lack descriptions",
		Long:  "Walks every table of the namespace (or the whole metastore) and reports columns without a description.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			namespace := ""
			if len(args) == 1 {
				namespace = args[0]
			}

			missing, err := rt.app.Service.ScanMissing(cmd.Context(), namespace)
			if err != nil {
				return err
			}

			fqns := make([]string, len(missing))
			for i, col := range missing {
				fqns[i] = col.FQN()
			}
			return emit(cmd, map[string]interface{}{"namespace": namespace, "missing": fqns}, func(w io.Writer) {
				if len(fqns) == 0 {
					fmt.Fprintln(w, "no missing descriptions")
					return
				}
				for _, fqn := range fqns {
					fmt.Fprintln(w, fqn)
				}
			})
		},
	}
}
