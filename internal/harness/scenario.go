package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a routing conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file
	// name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs is the directory of CUE table specs, relative to the scenario
	// file location.
	Specs string `yaml:"specs"`

	// Partitions lists the partition rows to register before routing.
	Partitions []PartitionStep `yaml:"partitions,omitempty"`

	// Queries lists the predicates to route, in order.
	Queries []QueryStep `yaml:"queries"`
}

// PartitionStep registers one partition row.
type PartitionStep struct {
	// Table is the partitioned table's name.
	Table string `yaml:"table"`

	// Values is the partition-column value tuple. Floats are rejected.
	Values []interface{} `yaml:"values"`

	// Shards is the partition's shard count.
	Shards int `yaml:"shards"`
}

// QueryStep routes one predicate and optionally checks the plan.
type QueryStep struct {
	// Table names the routed table.
	Table string `yaml:"table"`

	// Predicate is the WHERE predicate text.
	Predicate string `yaml:"predicate"`

	// Expect specifies the expected plan. If nil, the query only
	// contributes to the golden snapshot.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected plan properties.
// Subset match: only set fields are checked.
type ExpectClause struct {
	// Kind is the expected plan kind: direct, partitions, nothing, or
	// broadcast.
	Kind string `yaml:"kind"`

	// Targets is the expected target count. Nil skips the check.
	Targets *int `yaml:"targets,omitempty"`

	// Residual expects a residual re-check on the plan.
	Residual bool `yaml:"residual,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file, resolving
// the specs directory relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "querys:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Specs != "" && !filepath.IsAbs(scenario.Specs) && basePath != "" {
		scenario.Specs = filepath.Join(basePath, scenario.Specs)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Specs == "" {
		return fmt.Errorf("specs directory is required")
	}
	if info, err := os.Stat(s.Specs); err != nil || !info.IsDir() {
		return fmt.Errorf("specs directory not found: %s", s.Specs)
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	for i, step := range s.Partitions {
		if step.Table == "" {
			return fmt.Errorf("partitions[%d]: table is required", i)
		}
		if len(step.Values) == 0 {
			return fmt.Errorf("partitions[%d]: values is required", i)
		}
		if step.Shards < 1 {
			return fmt.Errorf("partitions[%d]: shards must be at least 1", i)
		}
	}

	for i, step := range s.Queries {
		if step.Table == "" {
			return fmt.Errorf("queries[%d]: table is required", i)
		}
		if step.Predicate == "" {
			return fmt.Errorf("queries[%d]: predicate is required", i)
		}
		if step.Expect != nil {
			switch step.Expect.Kind {
			case "direct", "partitions", "nothing", "broadcast":
			case "":
				return fmt.Errorf("queries[%d].expect: kind is required", i)
			default:
				return fmt.Errorf("queries[%d].expect: unknown kind %q", i, step.Expect.Kind)
			}
			if step.Expect.Targets != nil && *step.Expect.Targets < 0 {
				return fmt.Errorf("queries[%d].expect: targets must be non-negative", i)
			}
		}
	}

	return nil
}
