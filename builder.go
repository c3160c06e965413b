package rowgraph

import "reflect"

// Cardinality is the cardinality of a relationship edge.
type Cardinality int8

// Relationship cardinalities.
const (
	// One links a single child instance into a parent property.
	One Cardinality = iota
	// Many appends child instances into a parent collection property.
	Many
)

// String returns the cardinality name.
func (c Cardinality) String() string {
	if c == Many {
		return "Many"
	}
	return "One"
}

// edge is one validated relationship: parent type, child type, cardinality
// and the parent property receiving the child(ren). elem records the
// declared element type of a Many collection (*C or C).
type edge struct {
	parent      reflect.Type
	child       reflect.Type
	cardinality Cardinality
	property    string

	prop      *property
	elemIsPtr bool
}

// Builder assembles and validates a relationship graph. All validation
// happens in Build; an invalid graph never processes a single row.
type Builder struct {
	provider DescriptorProvider
	root     reflect.Type
	mappers  []*Mapper
	edges    []*edge
	strict   bool
}

// NewBuilder starts a graph whose root type is the one built by root.
// Additional mappers register the related types appearing in the same
// rows. The provider resolves descriptors once per materialization run.
func NewBuilder(provider DescriptorProvider, root *Mapper, extras ...*Mapper) *Builder {
	b := &Builder{provider: provider}
	if root != nil {
		b.root = root.Type()
	}
	b.mappers = append(b.mappers, root)
	b.mappers = append(b.mappers, extras...)
	return b
}

// Register adds another mapper to the graph.
func (b *Builder) Register(m *Mapper) *Builder {
	b.mappers = append(b.mappers, m)
	return b
}

// StrictCollections extends collection validation to every registered
// type: slice properties without a declared element type (element type
// any) are rejected at Build even when no edge targets them. The default
// only validates properties that edges target.
func (b *Builder) StrictCollections() *Builder {
	b.strict = true
	return b
}

// RelationshipBuilder scopes edge declarations to one parent type.
type RelationshipBuilder struct {
	b      *Builder
	parent reflect.Type
}

// Relationship starts declaring edges whose parent is the given type.
func (b *Builder) Relationship(parent reflect.Type) RelationshipBuilder {
	return RelationshipBuilder{b: b, parent: parent}
}

// HasMany declares a one-to-many edge: child instances are appended to the
// named collection property on the parent.
func (r RelationshipBuilder) HasMany(child reflect.Type, property string) *Builder {
	r.b.edges = append(r.b.edges, &edge{
		parent:      r.parent,
		child:       child,
		cardinality: Many,
		property:    property,
	})
	return r.b
}

// HasOne declares a one-to-one edge: the child instance is assigned to the
// named property on the parent.
func (r RelationshipBuilder) HasOne(child reflect.Type, property string) *Builder {
	r.b.edges = append(r.b.edges, &edge{
		parent:      r.parent,
		child:       child,
		cardinality: One,
		property:    property,
	})
	return r.b
}

// Build validates the declared mappers and edges and returns a usable
// Materializer. Validation fails fast: the first violated rule halts the
// build with a ConfigError naming the offending type and property.
func (b *Builder) Build() (*Materializer, error) {
	if b.provider == nil {
		return nil, newConfigError(nil, "", "nil descriptor provider")
	}
	byType, err := b.checkMappers()
	if err != nil {
		return nil, err
	}
	for _, e := range b.edges {
		if err := b.checkEdge(e, byType); err != nil {
			return nil, err
		}
	}
	if err := b.checkConflicts(); err != nil {
		return nil, err
	}
	if b.strict {
		if err := b.checkUntargeted(); err != nil {
			return nil, err
		}
	}
	types := make([]reflect.Type, 0, len(b.mappers))
	for _, m := range b.mappers {
		types = append(types, m.Type())
	}
	return &Materializer{
		provider: b.provider,
		root:     b.root,
		types:    types,
		mappers:  byType,
		edges:    b.edges,
		built:    true,
	}, nil
}

// checkMappers validates mapper registration: every type referenced as
// root, parent or child must have exactly one non-nil mapper.
func (b *Builder) checkMappers() (map[reflect.Type]*Mapper, error) {
	byType := make(map[reflect.Type]*Mapper, len(b.mappers))
	for _, m := range b.mappers {
		if m == nil {
			continue
		}
		if _, ok := byType[m.Type()]; !ok {
			byType[m.Type()] = m
		}
	}
	if b.root == nil {
		return nil, newConfigError(nil, "", "could not find a mapper for the root type: nil mapper")
	}
	for _, e := range b.edges {
		if _, ok := byType[e.parent]; !ok {
			return nil, newConfigError(e.parent, "", "could not find a mapper for type")
		}
		if _, ok := byType[e.child]; !ok {
			return nil, newConfigError(e.child, "", "could not find a mapper for related type")
		}
	}
	seen := make(map[reflect.Type]bool, len(b.mappers))
	for _, m := range b.mappers {
		if m == nil {
			return nil, newConfigError(nil, "", "nil mapper registered")
		}
		if seen[m.Type()] {
			return nil, newConfigError(m.Type(), "", "duplicate mapper for type")
		}
		seen[m.Type()] = true
		if m.err != nil {
			return nil, m.err
		}
	}
	return byType, nil
}

// checkEdge validates one edge's target property against rules 3-5 of the
// build sequence and resolves its accessor entry.
func (b *Builder) checkEdge(e *edge, byType map[reflect.Type]*Mapper) error {
	parent := byType[e.parent]
	prop, ok := parent.table.lookup(e.property)
	if !ok {
		return newConfigError(e.parent, e.property, "invalid property name")
	}
	e.prop = prop
	childPtr := reflect.PointerTo(e.child)
	switch e.cardinality {
	case Many:
		if prop.typ.Kind() != reflect.Slice {
			return newConfigError(e.parent, e.property, "many relationship target is not a collection")
		}
		elem := prop.typ.Elem()
		if elem.Kind() == reflect.Interface {
			return newConfigError(e.parent, e.property, "collection lacks a declared element type")
		}
		switch elem {
		case childPtr:
			e.elemIsPtr = true
		case e.child:
			e.elemIsPtr = false
		default:
			return newConfigError(e.parent, e.property,
				"collection declares element type %s, edge expects %s", elem, e.child)
		}
	case One:
		if !childPtr.AssignableTo(prop.typ) {
			return newConfigError(e.parent, e.property,
				"property type %s is not assignable from %s", prop.typ, childPtr)
		}
	}
	return nil
}

// checkConflicts rejects edges that reuse a property with conflicting
// declarations, and exact duplicate edges.
func (b *Builder) checkConflicts() error {
	type propKey struct {
		parent   reflect.Type
		property string
	}
	type edgeKey struct {
		parent   reflect.Type
		child    reflect.Type
		property string
	}
	props := make(map[propKey]*edge, len(b.edges))
	exact := make(map[edgeKey]bool, len(b.edges))
	for _, e := range b.edges {
		ek := edgeKey{parent: e.parent, child: e.child, property: e.property}
		if exact[ek] {
			return newConfigError(e.parent, e.property, "duplicate edge to %s", e.child)
		}
		exact[ek] = true
		pk := propKey{parent: e.parent, property: e.property}
		if prev, ok := props[pk]; ok && (prev.child != e.child || prev.cardinality != e.cardinality) {
			return newConfigError(e.parent, e.property, "property type conflict: %s %s vs %s %s",
				prev.cardinality, prev.child, e.cardinality, e.child)
		}
		props[pk] = e
	}
	return nil
}

// checkUntargeted rejects element-type-less collections on registered
// types even when no edge targets them (StrictCollections mode).
func (b *Builder) checkUntargeted() error {
	for _, m := range b.mappers {
		for _, p := range m.table.props {
			if p.typ.Kind() == reflect.Slice && p.typ.Elem().Kind() == reflect.Interface {
				return newConfigError(m.Type(), p.name, "collection lacks a declared element type")
			}
		}
	}
	return nil
}
