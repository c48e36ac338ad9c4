package catalog

import "fmt"

// ValidationError describes one consistency failure in a table spec.
type ValidationError struct {
	Table   string `json:"table,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("table %s: %s: %s", e.Table, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks catalog-wide consistency rules.
// Returns all errors found (does not fail-fast).
func (c *Catalog) Validate() []ValidationError {
	var errs []ValidationError
	for _, t := range c.Tables {
		for _, e := range t.validate() {
			e.Table = t.Name
			errs = append(errs, e)
		}
	}
	return errs
}

// validate checks the structural rules for one table:
//   - shards >= 1
//   - primary_key columns must be declared
//   - partitioned_by columns must be declared
//   - a column cannot be both a primary key and a partition column
//     (partition values address partitions, key values address rows;
//     overlapping the two makes tuple alignment ambiguous)
func (t *Table) validate() []ValidationError {
	var errs []ValidationError

	if t.Shards < 1 {
		errs = append(errs, ValidationError{
			Field:   "shards",
			Message: fmt.Sprintf("must be at least 1, got %d", t.Shards),
		})
	}

	pk := make(map[string]bool, len(t.PrimaryKey))
	for _, col := range t.PrimaryKey {
		if _, ok := t.Columns[col]; !ok {
			errs = append(errs, ValidationError{
				Field:   "primary_key",
				Message: fmt.Sprintf("column %q is not declared", col),
			})
		}
		if pk[col] {
			errs = append(errs, ValidationError{
				Field:   "primary_key",
				Message: fmt.Sprintf("column %q listed twice", col),
			})
		}
		pk[col] = true
	}

	seen := make(map[string]bool, len(t.PartitionedBy))
	for _, col := range t.PartitionedBy {
		if _, ok := t.Columns[col]; !ok {
			errs = append(errs, ValidationError{
				Field:   "partitioned_by",
				Message: fmt.Sprintf("column %q is not declared", col),
			})
		}
		if seen[col] {
			errs = append(errs, ValidationError{
				Field:   "partitioned_by",
				Message: fmt.Sprintf("column %q listed twice", col),
			})
		}
		seen[col] = true
		if pk[col] {
			errs = append(errs, ValidationError{
				Field:   "partitioned_by",
				Message: fmt.Sprintf("column %q is also a primary-key column", col),
			})
		}
	}

	return errs
}
