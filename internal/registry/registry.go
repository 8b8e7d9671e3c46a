// =============================================================================
// Portfolio Consolidation - Document Type Registry
// =============================================================================
//
// The registry is the static catalog of spreadsheet extracts the pipeline
// understands. It is embedded in the binary as YAML, decoded once, and
// validated before anything else runs: a malformed entry is a startup error,
// never a surprise halfway through a batch.
//
// Each DocumentType declares:
//   - the parse strategy (flat, multi_sheet, positional)
//   - per sheet: the projected source columns and their canonical names,
//     the merge key, and the columns that must be present after loading
//   - an optional cleanup rule applied after loading
//
// =============================================================================

package registry

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

//go:embed registry.yaml
var embeddedRegistry []byte

// =============================================================================
// REGISTRY STRUCTURES
// =============================================================================

// Strategy is how a document type is read from its workbook.
type Strategy string

const (
	// StrategyFlat reads the first sheet, header in the first row.
	StrategyFlat Strategy = "flat"

	// StrategyMultiSheet reads each declared sheet by name.
	StrategyMultiSheet Strategy = "multi_sheet"

	// StrategyPositional skips a fixed number of rows and names the columns
	// by position.
	StrategyPositional Strategy = "positional"
)

// Cleanup names a type-specific rewrite applied after loading.
type Cleanup string

const (
	CleanupNone Cleanup = ""

	// CleanupCodebtor rewrites "." and blank cells to the no-codebtor sentinel.
	CleanupCodebtor Cleanup = "codebtor"
)

// ColumnSpec maps one source header to its canonical column name.
//
// In YAML it is written either as a one-entry mapping ("SOURCE: Target")
// or as a bare name that keeps its name.
type ColumnSpec struct {
	Source string
	Target string
}

// UnmarshalYAML accepts "SOURCE: Target" or "NAME".
func (c *ColumnSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		c.Source, c.Target = node.Value, node.Value
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: column mapping must have exactly one entry", node.Line)
		}
		c.Source, c.Target = node.Content[0].Value, node.Content[1].Value
		return nil
	default:
		return fmt.Errorf("line %d: column must be a name or a 'SOURCE: Target' pair", node.Line)
	}
}

// SheetSpec describes one sheet of a document type.
type SheetSpec struct {
	// Name is the worksheet name. Empty means the first sheet.
	Name string `yaml:"name"`

	// Columns are the projected source columns, in output order.
	Columns []ColumnSpec `yaml:"columns"`

	// Names are the positional column names (positional strategy only).
	Names []string `yaml:"names"`

	// SkipRows is the number of leading rows to discard (positional only).
	SkipRows int `yaml:"skip_rows"`

	// MergeKey is the column this sheet is joined on.
	MergeKey string `yaml:"merge_key"`

	// Required lists canonical columns that must exist after loading.
	Required []string `yaml:"required"`
}

// Targets returns the canonical column names the sheet produces.
func (s *SheetSpec) Targets() []string {
	if len(s.Names) > 0 {
		return append([]string(nil), s.Names...)
	}
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Target
	}
	return out
}

// Renames returns the source-to-target map of the sheet.
func (s *SheetSpec) Renames() map[string]string {
	out := make(map[string]string, len(s.Columns))
	for _, c := range s.Columns {
		out[c.Source] = c.Target
	}
	return out
}

// DocumentType is one entry of the registry.
type DocumentType struct {
	Key         string      `yaml:"key"`
	Description string      `yaml:"description"`
	Strategy    Strategy    `yaml:"strategy"`
	Primary     bool        `yaml:"primary"`
	Cleanup     Cleanup     `yaml:"cleanup"`
	Sheets      []SheetSpec `yaml:"sheets"`
}

// Sheet returns the first sheet spec. Flat and positional types have
// exactly one.
func (d *DocumentType) Sheet() *SheetSpec {
	return &d.Sheets[0]
}

// Registry is the validated, immutable catalog.
type Registry struct {
	types []*DocumentType
	byKey map[string]*DocumentType

	// matchOrder holds the types sorted longest key first.
	matchOrder []*DocumentType
}

type registryFile struct {
	Types []*DocumentType `yaml:"types"`
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// Default returns the registry embedded in the binary.
func Default() (*Registry, error) {
	reg, err := Parse(embeddedRegistry)
	if err != nil {
		return nil, fmt.Errorf("embedded registry: %w", err)
	}
	return reg, nil
}

// Parse decodes and validates a registry document.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return New(file.Types)
}

// New validates the given types and builds a registry from them.
func New(docTypes []*DocumentType) (*Registry, error) {
	reg := &Registry{byKey: make(map[string]*DocumentType, len(docTypes))}

	primaries := 0
	for i, dt := range docTypes {
		if err := validateType(dt); err != nil {
			return nil, fmt.Errorf("type #%d (%s): %w", i+1, dt.Key, err)
		}
		if _, dup := reg.byKey[dt.Key]; dup {
			return nil, fmt.Errorf("duplicate document type key '%s'", dt.Key)
		}
		if dt.Primary {
			primaries++
		}
		reg.byKey[dt.Key] = dt
		reg.types = append(reg.types, dt)
	}
	if primaries != 1 {
		return nil, fmt.Errorf("registry must declare exactly one primary type, found %d", primaries)
	}

	reg.matchOrder = append([]*DocumentType(nil), reg.types...)
	sort.SliceStable(reg.matchOrder, func(i, j int) bool {
		li := utf8.RuneCountInString(reg.matchOrder[i].Key)
		lj := utf8.RuneCountInString(reg.matchOrder[j].Key)
		if li != lj {
			return li > lj
		}
		return reg.matchOrder[i].Key < reg.matchOrder[j].Key
	})
	return reg, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateType(dt *DocumentType) error {
	if dt == nil {
		return fmt.Errorf("empty entry")
	}
	if strings.TrimSpace(dt.Key) == "" {
		return fmt.Errorf("key is required")
	}
	if len(dt.Sheets) == 0 {
		return fmt.Errorf("at least one sheet is required")
	}

	switch dt.Strategy {
	case StrategyFlat:
		if len(dt.Sheets) != 1 {
			return fmt.Errorf("flat type must declare exactly one sheet")
		}
	case StrategyPositional:
		if len(dt.Sheets) != 1 {
			return fmt.Errorf("positional type must declare exactly one sheet")
		}
		if len(dt.Sheets[0].Names) == 0 {
			return fmt.Errorf("positional type must declare column names")
		}
	case StrategyMultiSheet:
		for i, s := range dt.Sheets {
			if s.Name == "" {
				return fmt.Errorf("sheet #%d of a multi_sheet type needs a name", i+1)
			}
		}
	default:
		return fmt.Errorf("unknown strategy '%s'", dt.Strategy)
	}

	switch dt.Cleanup {
	case CleanupNone, CleanupCodebtor:
	default:
		return fmt.Errorf("unknown cleanup '%s'", dt.Cleanup)
	}

	for i := range dt.Sheets {
		if err := validateSheet(dt, &dt.Sheets[i]); err != nil {
			return fmt.Errorf("sheet '%s': %w", dt.Sheets[i].Name, err)
		}
	}
	return nil
}

func validateSheet(dt *DocumentType, s *SheetSpec) error {
	if s.SkipRows < 0 {
		return fmt.Errorf("skip_rows cannot be negative")
	}
	if dt.Strategy != StrategyPositional {
		if len(s.Names) > 0 || s.SkipRows > 0 {
			return fmt.Errorf("names and skip_rows are only valid for positional types")
		}
		if len(s.Columns) == 0 {
			return fmt.Errorf("columns are required")
		}
	}

	targets := make(map[string]bool)
	for _, name := range s.Targets() {
		if name == "" {
			return fmt.Errorf("empty column name")
		}
		if targets[name] {
			return fmt.Errorf("column '%s' is produced twice", name)
		}
		targets[name] = true
	}
	sources := make(map[string]bool)
	for _, c := range s.Columns {
		if sources[c.Source] {
			return fmt.Errorf("source column '%s' is listed twice", c.Source)
		}
		sources[c.Source] = true
	}

	// The credit key is derived from its two parts after loading.
	derived := targets[types.ColCreditType] && targets[types.ColCreditNumber]
	has := func(col string) bool {
		return targets[col] || (col == types.ColCreditKey && derived)
	}

	if s.MergeKey == "" {
		return fmt.Errorf("merge_key is required")
	}
	if !has(s.MergeKey) {
		return fmt.Errorf("merge_key '%s' is not produced by the sheet", s.MergeKey)
	}
	for _, req := range s.Required {
		if !has(req) {
			return fmt.Errorf("required column '%s' is not produced by the sheet", req)
		}
	}
	return nil
}

// =============================================================================
// LOOKUP
// =============================================================================

// Get returns the type with the given key.
func (r *Registry) Get(key string) (*DocumentType, bool) {
	dt, ok := r.byKey[key]
	return dt, ok
}

// Types returns all types in declaration order.
func (r *Registry) Types() []*DocumentType {
	return append([]*DocumentType(nil), r.types...)
}

// Primary returns the primary ledger type.
func (r *Registry) Primary() *DocumentType {
	for _, dt := range r.types {
		if dt.Primary {
			return dt
		}
	}
	return nil
}
