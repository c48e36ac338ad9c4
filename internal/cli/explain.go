package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pinpoint-db/pinpoint/internal/extract"
	"github.com/pinpoint-db/pinpoint/internal/predicate"
	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// ExplainResult holds the diagnostic output of one extraction.
type ExplainResult struct {
	Predicate   string              `json:"predicate"`
	Mode        string              `json:"mode"`
	Columns     []string            `json:"columns"`
	Candidates  map[string][]string `json:"candidates,omitempty"`
	SeenUnknown bool                `json:"seen_unknown"`
	Extracted   bool                `json:"extracted"`
	Tuples      [][]string          `json:"tuples,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	var targets string
	var mode string
	var maxCombinations int

	cmd := &cobra.Command{
		Use:   "explain <predicate>",
		Short: "Show what an extraction sees in a predicate",
		Long: `Parse a predicate, run tuple extraction against the given target
columns, and print the per-column equality candidates plus the extracted
tuples (if any).

Exact mode refuses predicates with unanalyzable parts; parent mode tolerates
them and yields a superset of the matching tuples.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, cmd, args[0], targets, mode, maxCombinations)
		},
	}

	cmd.Flags().StringVar(&targets, "targets", "", "comma-separated target columns (required)")
	cmd.Flags().StringVar(&mode, "mode", "exact", "extraction mode (exact|parent)")
	cmd.Flags().IntVar(&maxCombinations, "max-combinations", extract.DefaultMaxCombinations, "candidate combination cap")
	cmd.MarkFlagRequired("targets")

	return cmd
}

func runExplain(opts *RootOptions, cmd *cobra.Command, input, targets, mode string, maxCombinations int) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if mode != "exact" && mode != "parent" {
		return commandError(formatter, ErrCodeBadFlag, fmt.Sprintf("invalid mode %q: must be exact or parent", mode))
	}

	columns, err := parseTargets(targets)
	if err != nil {
		return commandError(formatter, ErrCodeBadFlag, err.Error())
	}

	pred, err := predicate.Parse(input)
	if err != nil {
		return commandError(formatter, ErrCodeParse, fmt.Sprintf("parsing predicate: %v", err))
	}

	exact := mode == "exact"
	extraction, err := extract.Collect(columns, pred, exact)
	if err != nil {
		return commandError(formatter, ErrCodeExtract, fmt.Sprintf("analyzing predicate: %v", err))
	}

	extractor := extract.New()
	extractor.MaxCombinations = maxCombinations
	rows, ok, err := extractor.Enumerate(extraction)
	if err != nil {
		return commandError(formatter, ErrCodeExtract, fmt.Sprintf("enumerating tuples: %v", err))
	}

	result := ExplainResult{
		Predicate:   input,
		Mode:        mode,
		Columns:     columnNames(columns),
		Candidates:  candidateMap(extraction, columns),
		SeenUnknown: extraction.SeenUnknown,
		Extracted:   ok,
	}
	if ok {
		result.Tuples = renderTuples(rows)
	}

	return outputExplain(formatter, result)
}

func parseTargets(targets string) ([]sym.ColumnIdent, error) {
	var columns []sym.ColumnIdent
	for _, part := range strings.Split(targets, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		columns = append(columns, sym.ParseColumn(part))
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("--targets is empty")
	}
	return columns, nil
}

func columnNames(columns []sym.ColumnIdent) []string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Fqn()
	}
	return names
}

func candidateMap(x *extract.Extraction, columns []sym.ColumnIdent) map[string][]string {
	m := make(map[string][]string, len(columns))
	for _, col := range columns {
		origins := x.CandidateOrigins(col)
		rendered := make([]string, len(origins))
		for i, origin := range origins {
			rendered[i] = sym.SymbolString(origin)
		}
		m[col.Fqn()] = rendered
	}
	return m
}

func renderTuple(row []sym.Value) []string {
	rendered := make([]string, len(row))
	for i, v := range row {
		rendered[i] = sym.ValueString(v)
	}
	return rendered
}

func renderTuples(rows [][]sym.Value) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = renderTuple(row)
	}
	return out
}

func outputExplain(formatter *OutputFormatter, result ExplainResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "predicate: %s\n", result.Predicate)
	fmt.Fprintf(w, "mode:      %s\n", result.Mode)
	fmt.Fprintf(w, "columns:   %s\n", strings.Join(result.Columns, ", "))
	fmt.Fprintln(w)

	for _, col := range result.Columns {
		candidates := result.Candidates[col]
		if len(candidates) == 0 {
			fmt.Fprintf(w, "  %s: no equality candidates\n", col)
			continue
		}
		fmt.Fprintf(w, "  %s:\n", col)
		for _, c := range candidates {
			fmt.Fprintf(w, "    %s\n", c)
		}
	}
	fmt.Fprintln(w)

	if result.SeenUnknown {
		fmt.Fprintln(w, "predicate contains unanalyzable parts")
	}

	if !result.Extracted {
		fmt.Fprintln(w, "no finite tuple set (fall back to broadcast)")
		return nil
	}
	if len(result.Tuples) == 0 {
		fmt.Fprintln(w, "predicate is unsatisfiable (zero tuples)")
		return nil
	}

	fmt.Fprintf(w, "extracted %d tuple(s):\n", len(result.Tuples))
	for _, tuple := range result.Tuples {
		fmt.Fprintf(w, "  (%s)\n", strings.Join(tuple, ", "))
	}
	return nil
}
