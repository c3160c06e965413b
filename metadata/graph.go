package metadata

import (
	"fmt"
	"io"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/syssam/rowgraph"
)

// GraphFile is the YAML shape of a relationship graph: the root type name,
// the edges, and optional per-type column-prefix overrides.
type GraphFile struct {
	Root          string            `yaml:"root"`
	Relationships []GraphEdge       `yaml:"relationships"`
	Prefixes      map[string]string `yaml:"prefixes,omitempty"`
}

// GraphEdge is one declared relationship.
type GraphEdge struct {
	Parent      string `yaml:"parent"`
	Child       string `yaml:"child"`
	Property    string `yaml:"property"`
	Cardinality string `yaml:"cardinality"`
}

// ParseGraph decodes a YAML graph document. Unknown fields are rejected so
// a typo in a document fails loudly instead of silently dropping an edge.
func ParseGraph(r io.Reader) (*GraphFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var g GraphFile
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("metadata: decoding graph document: %w", err)
	}
	if g.Root == "" {
		return nil, rowgraph.NewConfigError(nil, "", "graph document names no root type")
	}
	return &g, nil
}

// Builder turns the parsed document into a rowgraph.Builder. The mappers
// registry resolves the document's type names; every name the document
// uses must be present. Prefix overrides, if any, wrap the provider so
// the named types resolve with the document's column prefixes.
func (g *GraphFile) Builder(provider rowgraph.DescriptorProvider, mappers map[string]*rowgraph.Mapper) (*rowgraph.Builder, error) {
	if provider == nil {
		return nil, rowgraph.NewConfigError(nil, "", "nil descriptor provider")
	}
	resolve := func(name string) (*rowgraph.Mapper, error) {
		m, ok := mappers[name]
		if !ok || m == nil {
			return nil, rowgraph.NewConfigError(nil, "", "graph document references unknown type %q", name)
		}
		return m, nil
	}
	root, err := resolve(g.Root)
	if err != nil {
		return nil, err
	}
	if len(g.Prefixes) > 0 {
		overrides := make(map[reflect.Type]string, len(g.Prefixes))
		for name, prefix := range g.Prefixes {
			m, err := resolve(name)
			if err != nil {
				return nil, err
			}
			overrides[m.Type()] = prefix
		}
		provider = &prefixProvider{base: provider, prefixes: overrides}
	}
	b := rowgraph.NewBuilder(provider, root)
	registered := map[string]bool{g.Root: true}
	register := func(name string) error {
		if registered[name] {
			return nil
		}
		m, err := resolve(name)
		if err != nil {
			return err
		}
		b.Register(m)
		registered[name] = true
		return nil
	}
	for _, e := range g.Relationships {
		if err := register(e.Parent); err != nil {
			return nil, err
		}
		if err := register(e.Child); err != nil {
			return nil, err
		}
		parent, child := mappers[e.Parent].Type(), mappers[e.Child].Type()
		switch e.Cardinality {
		case "many":
			b.Relationship(parent).HasMany(child, e.Property)
		case "one":
			b.Relationship(parent).HasOne(child, e.Property)
		default:
			return nil, rowgraph.NewConfigError(parent, e.Property,
				"cardinality must be %q or %q, got %q", "one", "many", e.Cardinality)
		}
	}
	return b, nil
}

// prefixProvider overlays per-type column prefixes on a base provider.
type prefixProvider struct {
	base     rowgraph.DescriptorProvider
	prefixes map[reflect.Type]string
}

func (p *prefixProvider) Describe(t reflect.Type) (*rowgraph.Descriptor, error) {
	d, err := p.base.Describe(t)
	if err != nil {
		return nil, err
	}
	prefix, ok := p.prefixes[t]
	if !ok {
		return d, nil
	}
	override := *d
	override.ColumnPrefix = prefix
	return &override, nil
}
