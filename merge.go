package rowgraph

import "reflect"

// KeyFunc extracts the join key from an entity instance.
type KeyFunc[K comparable, V any] func(V) K

// GroupByKey groups values by the key the function extracts, preserving
// the input order within each group.
func GroupByKey[K comparable, V any](values []V, key KeyFunc[K, V]) map[K][]V {
	groups := make(map[K][]V, len(values))
	for _, v := range values {
		k := key(v)
		groups[k] = append(groups[k], v)
	}
	return groups
}

// MergeInto attaches independently loaded children onto their parents by
// join key, the two-query alternative to materializing a joined result
// set. The parent property decides the shape: a collection property
// receives every child sharing the parent's key (or an empty, non-nil
// collection when none match), a pointer property receives the first
// matching child (or stays nil).
//
// Nil or empty inputs are not errors: with no parents there is nothing to
// do, and with no children the parents are left exactly as they were. A
// property that does not exist on P, or whose type fits neither shape, is
// a ConfigError.
func MergeInto[P any, C any, K comparable](parents []*P, children []*C, property string, parentKey KeyFunc[K, *P], childKey KeyFunc[K, *C]) error {
	if len(parents) == 0 || len(children) == 0 {
		return nil
	}
	pt := TypeOf[P]()
	table, err := accessorsFor(pt)
	if err != nil {
		return err
	}
	prop, ok := table.lookup(property)
	if !ok {
		return newConfigError(pt, property, "invalid property name")
	}
	if parentKey == nil || childKey == nil {
		return newConfigError(pt, property, "nil key function")
	}
	ct := TypeOf[C]()
	childPtr := reflect.PointerTo(ct)
	switch prop.typ.Kind() {
	case reflect.Slice:
		elem := prop.typ.Elem()
		if elem.Kind() == reflect.Interface {
			return newConfigError(pt, property, "collection lacks a declared element type")
		}
		if elem != childPtr && elem != ct {
			return newConfigError(pt, property,
				"collection declares element type %s, merge provides %s", elem, ct)
		}
		groups := GroupByKey(children, childKey)
		for _, p := range parents {
			group := groups[parentKey(p)]
			field := reflect.ValueOf(p).Elem().FieldByIndex(prop.index)
			out := reflect.MakeSlice(prop.typ, 0, len(group))
			for _, c := range group {
				cv := reflect.ValueOf(c)
				if elem != childPtr {
					cv = cv.Elem()
				}
				out = reflect.Append(out, cv)
			}
			field.Set(out)
		}
	case reflect.Pointer, reflect.Interface:
		if !childPtr.AssignableTo(prop.typ) {
			return newConfigError(pt, property,
				"property type %s is not assignable from %s", prop.typ, childPtr)
		}
		first := make(map[K]*C, len(children))
		for _, c := range children {
			k := childKey(c)
			if _, ok := first[k]; !ok {
				first[k] = c
			}
		}
		for _, p := range parents {
			c, ok := first[parentKey(p)]
			if !ok {
				continue
			}
			field := reflect.ValueOf(p).Elem().FieldByIndex(prop.index)
			field.Set(reflect.ValueOf(c))
		}
	default:
		return newConfigError(pt, property,
			"merge target must be a collection or pointer property, got %s", prop.typ)
	}
	return nil
}
