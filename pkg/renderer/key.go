package renderer

import "reflect"

type refKey struct {
	typ reflect.Type
	ptr uintptr
}

// ComponentKey returns the resolution cache key for a component value, or nil
// when the value has no stable identity. Comparable values key by value; func,
// map, and slice values key by type and pointer, so closures created from the
// same function literal share a key.
func ComponentKey(component any) any {
	if component == nil {
		return nil
	}
	v := reflect.ValueOf(component)
	switch v.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return nil
		}
		return refKey{typ: v.Type(), ptr: v.Pointer()}
	}
	if !v.Comparable() {
		return nil
	}
	return component
}
