package rowgraph

import "reflect"

// Descriptor carries the structural facts the engine needs about one
// entity type: which property identifies an instance, whether the database
// generates that identifier, and the column-prefix namespace under which
// the type's columns appear in a joined row.
//
// Descriptors are owned by the metadata layer (see the metadata package);
// the engine treats them as read-only input and looks each one up once per
// materialization run.
type Descriptor struct {
	// IDProperty is the name of the struct field holding the identifier.
	IDProperty string
	// IDGenerated reports whether the identifier value is
	// database-generated rather than assigned by the application.
	IDGenerated bool
	// ColumnPrefix namespaces the type's columns in a joined row,
	// e.g. "o_" for columns aliased o_order_id, o_customer_id.
	ColumnPrefix string
}

// DescriptorProvider resolves entity types to their Descriptors. Describe
// returns a ConfigError when the type carries no usable metadata.
type DescriptorProvider interface {
	Describe(t reflect.Type) (*Descriptor, error)
}

// DescribeFunc allows an ordinary function to act as a DescriptorProvider.
type DescribeFunc func(t reflect.Type) (*Descriptor, error)

// Describe calls f(t).
func (f DescribeFunc) Describe(t reflect.Type) (*Descriptor, error) { return f(t) }

// StaticProvider is a DescriptorProvider over hand-built descriptors. It
// is the simplest way to drive the engine without the metadata package.
type StaticProvider struct {
	descriptors map[reflect.Type]*Descriptor
}

// NewStaticProvider returns an empty StaticProvider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{descriptors: make(map[reflect.Type]*Descriptor)}
}

// Add registers the descriptor for t. Registering two descriptors for the
// same type is a configuration error.
func (p *StaticProvider) Add(t reflect.Type, d *Descriptor) error {
	switch {
	case t == nil:
		return newConfigError(nil, "", "nil type")
	case d == nil:
		return newConfigError(t, "", "nil descriptor")
	case d.IDProperty == "":
		return newConfigError(t, "", "descriptor without identifier property")
	}
	if _, ok := p.descriptors[t]; ok {
		return newConfigError(t, "", "duplicate descriptor")
	}
	p.descriptors[t] = d
	return nil
}

// Describe implements DescriptorProvider.
func (p *StaticProvider) Describe(t reflect.Type) (*Descriptor, error) {
	d, ok := p.descriptors[t]
	if !ok {
		return nil, newConfigError(t, "", "no descriptor registered")
	}
	return d, nil
}

// TypeOf returns the reflect.Type of the entity type T. It is a
// convenience for the builder's Relationship API:
//
//	b.Relationship(rowgraph.TypeOf[Order]()).
//	    HasMany(rowgraph.TypeOf[Line](), "Lines")
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
