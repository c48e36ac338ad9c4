package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pinpoint-db/pinpoint/internal/catalog"
	"github.com/pinpoint-db/pinpoint/internal/extract"
	"github.com/pinpoint-db/pinpoint/internal/predicate"
	"github.com/pinpoint-db/pinpoint/internal/router"
	"github.com/pinpoint-db/pinpoint/internal/store"
)

// RouteResult is the JSON shape of a routing plan.
type RouteResult struct {
	Token    string        `json:"token"`
	Table    string        `json:"table"`
	Kind     string        `json:"kind"`
	Targets  []RouteTarget `json:"targets,omitempty"`
	Residual string        `json:"residual,omitempty"`
}

// RouteTarget is one plan target in JSON form.
type RouteTarget struct {
	Ident  string   `json:"ident"`
	Values []string `json:"values"`
	Shard  int      `json:"shard,omitempty"`
	Shards int      `json:"shards,omitempty"`
}

// NewRouteCommand creates the route command.
func NewRouteCommand(rootOpts *RootOptions) *cobra.Command {
	var specsDir string
	var dbPath string
	var table string
	var maxCombinations int

	cmd := &cobra.Command{
		Use:   "route <predicate>",
		Short: "Plan which shards a query must touch",
		Long: `Parse a predicate, extract its admissible value tuples against the
table's primary-key and partition columns, and print the resulting routing
plan: direct shard targets, a pruned partition set, nothing (proven
unsatisfiable), or broadcast.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(rootOpts, cmd, args[0], specsDir, dbPath, table, maxCombinations)
		},
	}

	cmd.Flags().StringVar(&specsDir, "specs", "", "directory of CUE table specs (required)")
	cmd.Flags().StringVar(&dbPath, "db", "", "partition map database (required)")
	cmd.Flags().StringVar(&table, "table", "", "table to route against (required)")
	cmd.Flags().IntVar(&maxCombinations, "max-combinations", extract.DefaultMaxCombinations, "candidate combination cap")
	cmd.MarkFlagRequired("specs")
	cmd.MarkFlagRequired("db")
	cmd.MarkFlagRequired("table")

	return cmd
}

func runRoute(opts *RootOptions, cmd *cobra.Command, input, specsDir, dbPath, table string, maxCombinations int) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := catalog.Load(specsDir, catalog.LoadModeFailFast)
	if len(loadErrors) > 0 {
		return commandError(formatter, loadErrorCode(loadErrors[0]), loadErrors[0].Error())
	}
	formatter.VerboseLog("loaded %d table(s) from %s", len(loadResult.Catalog.Tables), specsDir)

	tbl, err := loadResult.Catalog.Lookup(table)
	if err != nil {
		return commandError(formatter, ErrCodeBadFlag, err.Error())
	}

	pred, err := predicate.Parse(input)
	if err != nil {
		return commandError(formatter, ErrCodeParse, fmt.Sprintf("parsing predicate: %v", err))
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return commandError(formatter, ErrCodeStore, fmt.Sprintf("opening partition map: %v", err))
	}
	defer st.Close()

	r := router.New(st)
	r.Extractor.MaxCombinations = maxCombinations

	plan, err := r.Route(cmd.Context(), tbl, pred)
	if err != nil {
		return commandError(formatter, ErrCodeRoute, fmt.Sprintf("planning: %v", err))
	}

	return outputRoute(formatter, planResult(plan))
}

func planResult(plan router.Plan) RouteResult {
	result := RouteResult{
		Token: plan.Token,
		Table: plan.Table,
		Kind:  plan.Kind.String(),
	}
	for _, target := range plan.Targets {
		result.Targets = append(result.Targets, RouteTarget{
			Ident:  target.Ident,
			Values: renderTuple(target.Values),
			Shard:  target.Shard,
			Shards: target.Shards,
		})
	}
	if plan.Residual != nil {
		result.Residual = plan.Residual.SQL
	}
	return result
}

func outputRoute(formatter *OutputFormatter, result RouteResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "plan:  %s\n", result.Token)
	fmt.Fprintf(w, "table: %s\n", result.Table)
	fmt.Fprintf(w, "route: %s\n", result.Kind)

	switch result.Kind {
	case "direct":
		for _, target := range result.Targets {
			fmt.Fprintf(w, "  shard %d  key %s  (%s)\n",
				target.Shard, shortIdent(target.Ident), strings.Join(target.Values, ", "))
		}
	case "partitions":
		for _, target := range result.Targets {
			fmt.Fprintf(w, "  partition %s  shards %d  (%s)\n",
				shortIdent(target.Ident), target.Shards, strings.Join(target.Values, ", "))
		}
	case "nothing":
		fmt.Fprintln(w, "  predicate is unsatisfiable; no shard contacted")
	default:
		fmt.Fprintln(w, "  no pruning possible; all shards contacted")
	}

	if result.Residual != "" {
		fmt.Fprintf(w, "residual: %s\n", result.Residual)
	}
	return nil
}

// loadErrorCode maps a catalog load error to its CLI error code.
func loadErrorCode(err error) string {
	if loadErr, ok := err.(*catalog.LoadError); ok {
		return loadErr.Code
	}
	return catalog.ErrCodeGeneric
}

// shortIdent abbreviates a content-addressed ident for text output.
func shortIdent(ident string) string {
	if len(ident) > 12 {
		return ident[:12]
	}
	return ident
}
