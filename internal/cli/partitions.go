package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pinpoint-db/pinpoint/internal/store"
)

// PartitionRow is one registered partition in JSON form.
type PartitionRow struct {
	Table  string   `json:"table"`
	Ident  string   `json:"ident"`
	Values []string `json:"values"`
	Shards int      `json:"shards"`
}

// PartitionsResult holds the partition listing.
type PartitionsResult struct {
	Partitions []PartitionRow `json:"partitions"`
}

// NewPartitionsCommand creates the partitions command.
func NewPartitionsCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string
	var table string

	cmd := &cobra.Command{
		Use:   "partitions",
		Short: "List registered partitions",
		Long: `List the partitions registered in the partition map, optionally
restricted to one table. Output order is deterministic (by tuple identity).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPartitions(rootOpts, cmd, dbPath, table)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "partition map database (required)")
	cmd.Flags().StringVar(&table, "table", "", "restrict listing to one table")
	cmd.MarkFlagRequired("db")

	return cmd
}

func runPartitions(opts *RootOptions, cmd *cobra.Command, dbPath, table string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return commandError(formatter, ErrCodeStore, fmt.Sprintf("opening partition map: %v", err))
	}
	defer st.Close()

	tables := []string{table}
	if table == "" {
		tables, err = st.Tables(cmd.Context())
		if err != nil {
			return commandError(formatter, ErrCodeStore, fmt.Sprintf("listing tables: %v", err))
		}
	}

	result := PartitionsResult{Partitions: []PartitionRow{}}
	for _, name := range tables {
		partitions, err := st.ListPartitions(cmd.Context(), name)
		if err != nil {
			return commandError(formatter, ErrCodeStore, fmt.Sprintf("listing partitions: %v", err))
		}
		for _, p := range partitions {
			result.Partitions = append(result.Partitions, PartitionRow{
				Table:  p.Table,
				Ident:  p.Ident,
				Values: renderTuple(p.Values),
				Shards: p.Shards,
			})
		}
	}

	return outputPartitions(formatter, result)
}

func outputPartitions(formatter *OutputFormatter, result PartitionsResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if len(result.Partitions) == 0 {
		fmt.Fprintln(w, "no partitions registered")
		return nil
	}

	for _, p := range result.Partitions {
		fmt.Fprintf(w, "%s  %s  shards %d  (%s)\n",
			p.Table, shortIdent(p.Ident), p.Shards, strings.Join(p.Values, ", "))
	}
	return nil
}
