package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newReviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "List and resolve queued review items",
	}
	cmd.AddCommand(newReviewsListCmd(), newReviewsResolveCmd())
	return cmd
}

func newReviewsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List review items by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			status, _ := cmd.Flags().GetString("status")
			items, err := rt.app.Service.ReviewQueue(cmd.Context(), status)
			if err != nil {
				return err
			}

			payload := make([]map[string]interface{}, len(items))
			for i, item := range items {
				payload[i] = map[string]interface{}{
					"id":          item.ID,
					"target":      item.Target.FQN(),
					"source":      item.Source.FQN(),
					"description": item.Description,
					"confidence":  item.Confidence,
					"status":      item.Status,
					"created_at":  item.CreatedAt,
				}
			}
			return emit(cmd, map[string]interface{}{"status": status, "items": payload}, func(w io.Writer) {
				if len(items) == 0 {
					fmt.Fprintln(w, "no review items")
					return
				}
				for _, item := range items {
					fmt.Fprintf(w, "%s  %-8s %s <- %s (%.2f)\n", item.ID, item.Status, item.Target.FQN(), item.Source.FQN(), item.Confidence)
					fmt.Fprintf(w, "  %q\n", item.Description)
				}
			})
		},
	}
	cmd.Flags().String("status", "PENDING", "review status to list (PENDING, APPROVED, REJECTED)")
	return cmd
}

func newReviewsResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id> <APPROVED|REJECTED>",
		Short: "Approve or reject a review item; approval applies the proposed description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			id, status := args[0], strings.ToUpper(args[1])
			if err := rt.app.Service.ResolveReview(cmd.Context(), id, status); err != nil {
				return err
			}
			return emit(cmd, map[string]interface{}{"id": id, "status": status}, func(w io.Writer) {
				fmt.Fprintf(w, "review %s %s\n", id, strings.ToLower(status))
			})
		},
	}
}
