package rowgraph

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"
)

// accessorCacheSize bounds the number of entity types whose accessor
// tables are kept hot.
const accessorCacheSize = 256

// property is one entry of a type's accessor table: a struct field with
// its resolved column name and get/set functions. The table replaces
// per-row reflection with functions built once per type.
type property struct {
	name   string
	column string
	typ    reflect.Type
	index  []int
	get    func(entity reflect.Value) any
	set    func(entity reflect.Value, v any) error
}

// accessorTable holds the accessor entries for one entity type, keyed by
// property (struct field) name.
type accessorTable struct {
	typ    reflect.Type
	props  []*property
	byName map[string]*property
}

func (t *accessorTable) lookup(name string) (*property, bool) {
	p, ok := t.byName[name]
	return p, ok
}

var accessorCache = newTableCache(accessorCacheSize)

// accessorsFor builds (or returns the cached) accessor table for the
// struct type t. Column names come from the `db` struct tag, defaulting to
// snake_case of the field name; fields tagged `db:"-"` are skipped.
func accessorsFor(t reflect.Type) (*accessorTable, error) {
	if t.Kind() != reflect.Struct {
		return nil, newConfigError(t, "", "entity type must be a struct, got %s", t.Kind())
	}
	if cached, ok := accessorCache.get(t); ok {
		return cached, nil
	}
	table := &accessorTable{
		typ:    t,
		byName: make(map[string]*property, t.NumField()),
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" || f.Anonymous {
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		column, _, _ := strings.Cut(tag, ",")
		if column == "" {
			column = inflect.Underscore(f.Name)
		}
		idx := f.Index
		ft := f.Type
		p := &property{
			name:   f.Name,
			column: column,
			typ:    ft,
			index:  idx,
			get: func(entity reflect.Value) any {
				return entity.FieldByIndex(idx).Interface()
			},
			set: func(entity reflect.Value, v any) error {
				return assignValue(entity.FieldByIndex(idx), v)
			},
		}
		table.props = append(table.props, p)
		table.byName[p.name] = p
	}
	accessorCache.put(t, table)
	return table, nil
}

// assignValue coerces a driver-provided value into the destination field.
// It honors sql.Scanner destinations, pointer fields (NULL becomes a nil
// pointer), numeric widening, and the string/[]byte pairing.
func assignValue(dst reflect.Value, v any) error {
	if dst.CanAddr() {
		if sc, ok := dst.Addr().Interface().(sql.Scanner); ok {
			return sc.Scan(v)
		}
	}
	if v == nil {
		switch dst.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		default:
			return fmt.Errorf("cannot assign NULL to %s", dst.Type())
		}
	}
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assignValue(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	sv := reflect.ValueOf(v)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if sv.Type().ConvertibleTo(dst.Type()) && isNumeric(sv.Kind()) {
			dst.Set(sv.Convert(dst.Type()))
			return nil
		}
	case reflect.String:
		if b, ok := v.([]byte); ok {
			dst.SetString(string(b))
			return nil
		}
	case reflect.Slice:
		if s, ok := v.(string); ok && dst.Type().Elem().Kind() == reflect.Uint8 {
			dst.SetBytes([]byte(s))
			return nil
		}
	case reflect.Bool:
		if n, ok := v.(int64); ok {
			dst.SetBool(n != 0)
			return nil
		}
	}
	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// normalizeKey canonicalizes an identifier value for identity-map lookups,
// so that int32 and int64 forms of the same id (or []byte and string)
// collide as expected.
func normalizeKey(v any) (any, error) {
	switch k := v.(type) {
	case []byte:
		return string(k), nil
	case int, int8, int16, int32:
		return reflect.ValueOf(v).Int(), nil
	case uint, uint8, uint16, uint32:
		return reflect.ValueOf(v).Uint(), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || !rv.Comparable() {
		return nil, newRunError("identifier value of type %T is not comparable", v)
	}
	return v, nil
}

// tableCache is a two-tier cache with cheap rotation: curr is the hot set,
// prev the previous generation, and lookups promote.
type tableCache struct {
	mu   sync.RWMutex
	curr map[reflect.Type]*accessorTable
	prev map[reflect.Type]*accessorTable
	max  int
}

func newTableCache(max int) *tableCache {
	return &tableCache{
		curr: make(map[reflect.Type]*accessorTable, max/2),
		prev: make(map[reflect.Type]*accessorTable),
		max:  max,
	}
}

func (c *tableCache) get(t reflect.Type) (*accessorTable, bool) {
	c.mu.RLock()
	if table, ok := c.curr[t]; ok {
		c.mu.RUnlock()
		return table, true
	}
	table, ok := c.prev[t]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	c.put(t, table)
	return table, true
}

func (c *tableCache) put(t reflect.Type, table *accessorTable) {
	c.mu.Lock()
	if len(c.curr) >= c.max {
		c.prev = c.curr
		c.curr = make(map[reflect.Type]*accessorTable, c.max/2)
	}
	c.curr[t] = table
	c.mu.Unlock()
}
