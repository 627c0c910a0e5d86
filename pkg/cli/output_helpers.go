package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akanksha86/governance-metadata-propagation/internal/domain"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit renders payload as JSON or hands off to the text renderer, depending
// on the --output flag.
func emit(cmd *cobra.Command, payload interface{}, text func(w io.Writer)) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), payload)
	}
	text(cmd.OutOrStdout())
	return nil
}

// JSON shapes for CLI output, matching the HTTP API field names.

func recordJSON(rec domain.PropagationRecord) map[string]interface{} {
	return map[string]interface{}{
		"target":      rec.Target.FQN(),
		"source":      rec.Source.FQN(),
		"description": rec.Description,
		"confidence":  rec.Confidence,
		"hop_depth":   rec.HopDepth,
		"hints":       rec.Hints,
		"decision":    string(rec.Decision),
	}
}

func recordsJSON(records []domain.PropagationRecord) []map[string]interface{} {
	out := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		out[i] = recordJSON(rec)
	}
	return out
}

func outcomesJSON(outcomes []domain.ApplyOutcome) []map[string]interface{} {
	out := make([]map[string]interface{}, len(outcomes))
	for i, o := range outcomes {
		entry := map[string]interface{}{
			"record": recordJSON(o.Record),
			"status": string(o.Status),
		}
		if o.Err != nil {
			entry["error"] = o.Err.Error()
		}
		out[i] = entry
	}
	return out
}

func tagRecommendationsJSON(recs []domain.TagRecommendation) []map[string]interface{} {
	out := make([]map[string]interface{}, len(recs))
	for i, rec := range recs {
		out[i] = map[string]interface{}{
			"target":         rec.Target.FQN(),
			"source":         rec.Source.FQN(),
			"tags":           rec.Tags,
			"direct_copy":    rec.DirectCopy,
			"logic":          rec.Logic,
			"recommendation": rec.Recommendation,
		}
	}
	return out
}

func printRecords(w io.Writer, records []domain.PropagationRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no recommendations")
		return
	}
	for _, rec := range records {
		fmt.Fprintf(w, "%-10s %s <- %s (confidence %.2f, hops %d)\n",
			rec.Decision, rec.Target.FQN(), rec.Source.FQN(), rec.Confidence, rec.HopDepth)
		fmt.Fprintf(w, "           %q\n", rec.Description)
	}
}

func printOutcomes(w io.Writer, outcomes []domain.ApplyOutcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "nothing to apply")
		return
	}
	for _, o := range outcomes {
		line := fmt.Sprintf("%-14s %s", o.Status, o.Record.Target.FQN())
		if o.Err != nil {
			line += ": " + o.Err.Error()
		}
		fmt.Fprintln(w, line)
	}
}

func printTagRecommendations(w io.Writer, recs []domain.TagRecommendation) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "no tag recommendations")
		return
	}
	for _, rec := range recs {
		fmt.Fprintf(w, "%-16s %s <- %s tags=[%s]\n",
			rec.Recommendation, rec.Target.FQN(), rec.Source.FQN(), strings.Join(rec.Tags, ", "))
		if rec.Logic != "" {
			fmt.Fprintf(w, "                 transformation: %s\n", rec.Logic)
		}
	}
}

// parseModeFlag validates the --mode flag shared by propagation verbs.
// Report mode never mutates; apply executes the gated records.
func parseModeFlag(cmd *cobra.Command) (apply bool, err error) {
	mode, _ := cmd.Flags().GetString("mode")
	switch mode {
	case "", "report":
		return false, nil
	case "apply":
		return true, nil
	default:
		return false, fmt.Errorf("unsupported mode %q: use 'report' or 'apply'", mode)
	}
}

func addModeFlag(cmd *cobra.Command) {
	cmd.Flags().String("mode", "report", "report (print only) or apply (execute gated changes)")
}
