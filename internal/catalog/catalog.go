package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed data/formats.yaml
var embeddedCatalog []byte

//go:embed schema.json
var catalogSchema string

const catalogSchemaURL = "catalog.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(catalogSchemaURL, strings.NewReader(catalogSchema)); err != nil {
		return nil, fmt.Errorf("failed to add catalog schema: %w", err)
	}
	return compiler.Compile(catalogSchemaURL)
})

// document mirrors the on-disk catalog layout
type document struct {
	Categories []Category `mapstructure:"categories"`
	Formats    []Format   `mapstructure:"formats"`
}

// Catalog is the immutable, indexed collection of formats. It is safe for
// concurrent use because nothing mutates it after Load returns.
type Catalog struct {
	formats    []Format
	byID       map[string]int
	categories []Category
	platforms  []Platform
}

// Default loads the catalog compiled into the binary
func Default() (*Catalog, error) {
	return Load("embedded", embeddedCatalog)
}

// LoadFile reads and validates a catalog document from disk
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- catalog path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(path, data)
}

// Load parses a YAML catalog document, validates it against the catalog
// schema and the cross-record invariants, and builds the lookup indexes.
func Load(source string, data []byte) (*Catalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", source, err)
	}

	// Normalise YAML scalars into JSON types for the validator and decoder
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode catalog %s: %w", source, err)
	}
	var tree any
	if err := json.Unmarshal(payload, &tree); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", source, err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("internal error: failed to compile catalog schema: %w", err)
	}
	if err := schema.Validate(tree); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, source, err)
	}

	var doc document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(tree); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, source, err)
	}

	if err := checkIntegrity(doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCatalog, source, err)
	}

	return build(doc), nil
}

// checkIntegrity reports every invariant the schema cannot express
func checkIntegrity(doc document) error {
	var problems []error

	categoryIDs := make(map[string]bool, len(doc.Categories))
	for _, c := range doc.Categories {
		if categoryIDs[c.ID] {
			problems = append(problems, fmt.Errorf("duplicate category id %q", c.ID))
		}
		categoryIDs[c.ID] = true
	}
	if categoryIDs[AllCategories] {
		problems = append(problems, fmt.Errorf("category id %q is reserved", AllCategories))
	}

	formatIDs := make(map[string]bool, len(doc.Formats))
	for _, f := range doc.Formats {
		if formatIDs[f.ID] {
			problems = append(problems, fmt.Errorf("duplicate format id %q", f.ID))
		}
		formatIDs[f.ID] = true

		if !categoryIDs[f.Category] {
			problems = append(
				problems,
				fmt.Errorf("format %q references unknown category %q", f.ID, f.Category),
			)
		}

		if sz := f.SafeZone; sz != nil {
			if sz.Top > f.Height || sz.Bottom > f.Height {
				problems = append(
					problems,
					fmt.Errorf("format %q safe zone exceeds height %d", f.ID, f.Height),
				)
			}
			if sz.Left > f.Width || sz.Right > f.Width {
				problems = append(
					problems,
					fmt.Errorf("format %q safe zone exceeds width %d", f.ID, f.Width),
				)
			}
		}
	}

	return errors.Join(problems...)
}

func build(doc document) *Catalog {
	c := &Catalog{
		formats:    doc.Formats,
		byID:       make(map[string]int, len(doc.Formats)),
		categories: doc.Categories,
	}

	categoryIndex := make(map[string]int, len(c.categories))
	for i := range c.categories {
		c.categories[i].Count = 0
		categoryIndex[c.categories[i].ID] = i
	}

	platformCounts := make(map[string]int)
	for i, f := range c.formats {
		c.byID[f.ID] = i
		c.categories[categoryIndex[f.Category]].Count++
		platformCounts[f.Platform]++
	}

	c.platforms = make([]Platform, 0, len(platformCounts))
	for name, count := range platformCounts {
		c.platforms = append(c.platforms, Platform{Name: name, Count: count})
	}
	sort.Slice(c.platforms, func(i, j int) bool {
		return c.platforms[i].Name < c.platforms[j].Name
	})

	return c
}

// Len returns the number of formats in the catalog
func (c *Catalog) Len() int {
	return len(c.formats)
}

// Formats returns every format in catalog order
func (c *Catalog) Formats() []Format {
	return slices.Clone(c.formats)
}

// Lookup finds a format by its exact identifier
func (c *Catalog) Lookup(id string) (Format, error) {
	i, ok := c.byID[id]
	if !ok {
		return Format{}, ErrFormatNotFound
	}
	return c.formats[i], nil
}

// Categories returns the declared categories with their derived counts
func (c *Catalog) Categories() []Category {
	return slices.Clone(c.categories)
}

// Platforms returns the distinct platforms sorted by name
func (c *Catalog) Platforms() []Platform {
	return slices.Clone(c.platforms)
}

// Query filters and paginates the catalog
func (c *Catalog) Query(q Query) Page {
	return Apply(c.formats, q)
}
