package rowgraph

import (
	"fmt"
	"reflect"
)

// Materializer turns a sequence of flat rows into a graph of linked entity
// instances. It is produced by Builder.Build, immutable afterwards, and
// safe to reuse across sequential or concurrent Run calls: every piece of
// mutable state below lives in the run, not the Materializer.
type Materializer struct {
	provider DescriptorProvider
	root     reflect.Type
	types    []reflect.Type
	mappers  map[reflect.Type]*Mapper
	edges    []*edge
	built    bool
}

// run holds the state of one materialization call: per-type identity maps,
// the ordered root output, and per-parent child dedup sets for Many edges.
type run struct {
	m           *Materializer
	descriptors map[reflect.Type]*Descriptor
	identity    map[reflect.Type]map[any]any
	roots       []any
	linked      map[*edge]map[any]map[any]bool

	// per-row scratch: instances and identifier keys by type.
	current map[reflect.Type]any
	keys    map[reflect.Type]any
}

// Run drives the cursor to exhaustion and returns the root entities in
// first-row-of-appearance order, relationship properties populated
// according to the graph's edges. If the cursor fails mid-iteration the
// whole materialization is discarded; no partial result is returned.
func (m *Materializer) Run(cursor Cursor) ([]any, error) {
	if m == nil || !m.built {
		return nil, wrapRunError(ErrNotBuilt, "run")
	}
	if cursor == nil {
		return nil, newRunError("nil cursor")
	}
	r := &run{
		m:           m,
		descriptors: make(map[reflect.Type]*Descriptor, len(m.types)),
		identity:    make(map[reflect.Type]map[any]any, len(m.types)),
		roots:       []any{},
		linked:      make(map[*edge]map[any]map[any]bool, len(m.edges)),
		current:     make(map[reflect.Type]any, len(m.types)),
		keys:        make(map[reflect.Type]any, len(m.types)),
	}
	for _, t := range m.types {
		d, err := m.provider.Describe(t)
		if err != nil {
			return nil, err
		}
		if err := m.mappers[t].validate(d); err != nil {
			return nil, err
		}
		r.descriptors[t] = d
		r.identity[t] = make(map[any]any)
	}
	for cursor.Next() {
		if err := r.row(cursor.Row()); err != nil {
			return nil, err
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("rowgraph: reading cursor: %w", err)
	}
	return r.roots, nil
}

// row materializes one cursor position: build or look up an instance per
// registered type, then apply every edge whose parent and child are both
// present on this row.
func (r *run) row(row Row) error {
	clear(r.current)
	clear(r.keys)
	for _, t := range r.m.types {
		mapper, d := r.m.mappers[t], r.descriptors[t]
		id, ok := mapper.identity(row, d)
		if !ok {
			// NULL identifier: no instance of this type on this row.
			continue
		}
		key, err := normalizeKey(id)
		if err != nil {
			return err
		}
		inst, ok := r.identity[t][key]
		if !ok {
			inst, ok, err = mapper.Build(row, d)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			r.initCollections(t, inst)
			r.identity[t][key] = inst
			if t == r.m.root {
				r.roots = append(r.roots, inst)
			}
		}
		r.current[t] = inst
		r.keys[t] = key
	}
	for _, e := range r.m.edges {
		parent, ok := r.current[e.parent]
		if !ok {
			continue
		}
		child, ok := r.current[e.child]
		if !ok {
			continue
		}
		r.link(e, parent, child)
	}
	return nil
}

// initCollections sets every Many edge target on a freshly built parent to
// an empty, non-nil collection, so unmatched parents come out with empty
// collections and linking only ever appends.
func (r *run) initCollections(t reflect.Type, inst any) {
	entity := reflect.ValueOf(inst).Elem()
	for _, e := range r.m.edges {
		if e.parent != t {
			continue
		}
		if e.cardinality == Many {
			field := entity.FieldByIndex(e.prop.index)
			if field.IsNil() {
				field.Set(reflect.MakeSlice(e.prop.typ, 0, 0))
			}
		}
	}
}

// link applies one edge for the current row. One assigns directly; Many
// appends, deduplicating by child identifier within this parent instance
// so that join fan-out from unrelated tables cannot double-append.
func (r *run) link(e *edge, parent, child any) {
	entity := reflect.ValueOf(parent).Elem()
	field := entity.FieldByIndex(e.prop.index)
	cv := reflect.ValueOf(child)
	if e.cardinality == One {
		field.Set(cv)
		return
	}
	parentKey, childKey := r.keys[e.parent], r.keys[e.child]
	perParent := r.linked[e]
	if perParent == nil {
		perParent = make(map[any]map[any]bool)
		r.linked[e] = perParent
	}
	seen := perParent[parentKey]
	if seen == nil {
		seen = make(map[any]bool)
		perParent[parentKey] = seen
	}
	if seen[childKey] {
		return
	}
	seen[childKey] = true
	if !e.elemIsPtr {
		cv = cv.Elem()
	}
	field.Set(reflect.Append(field, cv))
}

// All runs the materializer over the cursor and returns the roots as their
// concrete type. It fails with a RunError when T is not the graph's root
// type.
func All[T any](m *Materializer, cursor Cursor) ([]*T, error) {
	if m == nil || !m.built {
		return nil, wrapRunError(ErrNotBuilt, "run")
	}
	if want := TypeOf[T](); want != m.root {
		return nil, newRunError("root type mismatch: graph materializes %s, caller asked for %s", m.root, want)
	}
	out, err := m.Run(cursor)
	if err != nil {
		return nil, err
	}
	roots := make([]*T, len(out))
	for i, v := range out {
		roots[i] = v.(*T)
	}
	return roots, nil
}
