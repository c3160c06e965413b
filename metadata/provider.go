package metadata

import (
	"reflect"
	"strings"
	"sync"

	"github.com/syssam/rowgraph"
)

// Provider is a rowgraph.DescriptorProvider over explicitly registered
// types. It is safe for concurrent use; registration and description may
// interleave.
type Provider struct {
	mu          sync.RWMutex
	descriptors map[reflect.Type]*rowgraph.Descriptor
}

// NewProvider returns an empty Provider.
func NewProvider() *Provider {
	return &Provider{descriptors: make(map[reflect.Type]*rowgraph.Descriptor)}
}

// Option adjusts the descriptor produced for one registered type.
type Option func(*rowgraph.Descriptor)

// WithPrefix sets the column-prefix namespace the type's columns carry in
// joined rows.
func WithPrefix(prefix string) Option {
	return func(d *rowgraph.Descriptor) { d.ColumnPrefix = prefix }
}

// WithIDProperty names the identifier property explicitly, overriding the
// `db:"...,id"` tag scan.
func WithIDProperty(name string) Option {
	return func(d *rowgraph.Descriptor) { d.IDProperty = name }
}

// WithGeneratedID marks the identifier as database-generated.
func WithGeneratedID() Option {
	return func(d *rowgraph.Descriptor) { d.IDGenerated = true }
}

// Register adds the entity type T to the provider. The identifier
// property is found by scanning for a `db` tag carrying the id flag
// (`db:"order_id,id"`, or `db:"order_id,id,auto"` when the database
// generates the value); a field named ID is the fallback. A type with no
// discoverable identifier, or one registered twice, is a configuration
// error.
func Register[T any](p *Provider, opts ...Option) error {
	t := rowgraph.TypeOf[T]()
	if t.Kind() != reflect.Struct {
		return rowgraph.NewConfigError(t, "", "entity type must be a struct, got %s", t.Kind())
	}
	d := &rowgraph.Descriptor{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" || f.Anonymous {
			continue
		}
		id, auto := tagFlags(f.Tag.Get("db"))
		if !id {
			continue
		}
		if d.IDProperty != "" {
			return rowgraph.NewConfigError(t, f.Name, "second identifier tag; %q already carries one", d.IDProperty)
		}
		d.IDProperty = f.Name
		d.IDGenerated = auto
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.IDProperty == "" {
		if _, ok := t.FieldByName("ID"); ok {
			d.IDProperty = "ID"
		} else {
			return rowgraph.NewConfigError(t, "", "no identifier: no `db:\",id\"` tag and no ID field")
		}
	}
	if f, ok := t.FieldByName(d.IDProperty); !ok || f.PkgPath != "" {
		return rowgraph.NewConfigError(t, d.IDProperty, "invalid identifier property name")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.descriptors[t]; ok {
		return rowgraph.NewConfigError(t, "", "duplicate registration")
	}
	p.descriptors[t] = d
	return nil
}

// tagFlags reports whether a db tag carries the id flag, and whether the
// identifier is marked database-generated.
func tagFlags(tag string) (id, auto bool) {
	_, rest, ok := strings.Cut(tag, ",")
	if !ok {
		return false, false
	}
	for _, flag := range strings.Split(rest, ",") {
		switch flag {
		case "id":
			id = true
		case "auto":
			auto = true
		}
	}
	return id, id && auto
}

// Describe implements rowgraph.DescriptorProvider.
func (p *Provider) Describe(t reflect.Type) (*rowgraph.Descriptor, error) {
	p.mu.RLock()
	d, ok := p.descriptors[t]
	p.mu.RUnlock()
	if !ok {
		return nil, rowgraph.NewConfigError(t, "", "type not registered")
	}
	return d, nil
}
