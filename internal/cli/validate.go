package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinpoint-db/pinpoint/internal/catalog"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                      `json:"valid"`
	Tables int                       `json:"tables"`
	Errors []catalog.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate table specs",
		Long: `Load CUE table specs and check their consistency rules: declared
columns, shard counts, primary-key and partition-column references.

Collects all errors rather than stopping at the first one.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := catalog.Load(specsDir, catalog.LoadModeCollectAll)

	// Directory-level failures are command errors, not validation failures
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *catalog.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return commandError(formatter, loadErr.Code, loadErr.Message)
		}
		return commandError(formatter, catalog.ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	var validationErrors []catalog.ValidationError
	for _, err := range loadErrors {
		var loadErr *catalog.LoadError
		if errors.As(err, &loadErr) {
			validationErrors = append(validationErrors, catalog.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
			})
		} else {
			validationErrors = append(validationErrors, catalog.ValidationError{
				Field:   "load",
				Message: err.Error(),
			})
		}
	}
	validationErrors = append(validationErrors, loadResult.Catalog.Validate()...)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, len(loadResult.Catalog.Tables))
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, tables int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Tables: tables})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d table spec(s) valid\n", tables)
	return nil
}

// outputValidationErrors outputs validation failures with exit code 1.
func outputValidationErrors(formatter *OutputFormatter, errs []catalog.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    catalog.ErrCodeGeneric,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Table != "" {
			fmt.Fprintf(formatter.Writer, "  table %s, %s: %s\n", err.Table, err.Field, err.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", err.Field, err.Message)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
