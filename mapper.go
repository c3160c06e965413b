package rowgraph

import "reflect"

// Mapper builds instances of one entity type from rows. A Mapper is a pure
// function of (Row, Descriptor): it holds no per-run state and is safe for
// concurrent use once constructed.
type Mapper struct {
	typ       reflect.Type
	prefix    string
	overrides map[string]string
	table     *accessorTable
	err       error
}

// MapperOption configures a Mapper.
type MapperOption func(*Mapper)

// WithColumnPrefix overrides the descriptor's column prefix for this
// mapper, e.g. when the same type appears under a different alias in one
// query.
func WithColumnPrefix(prefix string) MapperOption {
	return func(m *Mapper) { m.prefix = prefix }
}

// WithColumn overrides the column name a single property reads from,
// taking precedence over the `db` tag and the snake_case default.
func WithColumn(property, column string) MapperOption {
	return func(m *Mapper) {
		if m.overrides == nil {
			m.overrides = make(map[string]string)
		}
		m.overrides[property] = column
	}
}

// MapperFor returns a Mapper for the entity type T. The accessor table is
// built eagerly; construction problems (a non-struct T) surface when the
// mapper is registered into a Builder and Build is called.
func MapperFor[T any](opts ...MapperOption) *Mapper {
	t := TypeOf[T]()
	m := &Mapper{typ: t}
	for _, opt := range opts {
		opt(m)
	}
	m.table, m.err = accessorsFor(t)
	return m
}

// Type returns the entity type the mapper builds.
func (m *Mapper) Type() reflect.Type { return m.typ }

// column resolves the effective column name for a property under the
// given descriptor.
func (m *Mapper) column(p *property, d *Descriptor) string {
	prefix := d.ColumnPrefix
	if m.prefix != "" {
		prefix = m.prefix
	}
	column := p.column
	if c, ok := m.overrides[p.name]; ok {
		column = c
	}
	return prefix + column
}

// identity reads the entity's identifier column from the row. ok is false
// when the column is NULL or absent, which represents the unmatched side
// of an outer join and yields no instance for this row.
func (m *Mapper) identity(row Row, d *Descriptor) (any, bool) {
	p, ok := m.table.lookup(d.IDProperty)
	if !ok {
		return nil, false
	}
	v, ok := row.Lookup(m.column(p, d))
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Build constructs one entity instance from the row, populating every
// property whose prefixed column is present. It returns ok=false (and no
// instance) when the identifier column is NULL in this row. The returned
// instance is a pointer to a freshly allocated struct.
func (m *Mapper) Build(row Row, d *Descriptor) (any, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	if d == nil {
		return nil, false, newRunError("nil descriptor for type %s", m.typ)
	}
	if _, ok := m.identity(row, d); !ok {
		return nil, false, nil
	}
	ptr := reflect.New(m.typ)
	entity := ptr.Elem()
	for _, p := range m.table.props {
		v, ok := row.Lookup(m.column(p, d))
		if !ok || v == nil {
			// Absent columns and SQL NULLs leave the zero value.
			continue
		}
		if err := p.set(entity, v); err != nil {
			return nil, false, newRunError("building %s.%s: %v", m.typ, p.name, err)
		}
	}
	return ptr.Interface(), true, nil
}

// validate reports the mapper's deferred construction error, plus basic
// structural checks, under the given descriptor.
func (m *Mapper) validate(d *Descriptor) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.table.lookup(d.IDProperty); !ok {
		return newConfigError(m.typ, d.IDProperty, "invalid identifier property name")
	}
	return nil
}
