package bind

import (
	"reflect"

	"github.com/viant/shapely"
	"github.com/viant/xunsafe"
)

// newSetter binds an xunsafe field writer; scalar fields take the typed fast
// path, composites convert the parser materialized value into the field type.
func newSetter(field reflect.StructField) shapely.Setter {
	xField := xunsafe.NewField(field)
	rType := field.Type
	switch rType.Kind() {
	case reflect.String:
		return func(target, value interface{}) {
			xField.SetString(xunsafe.AsPointer(target), value.(string))
		}
	case reflect.Bool:
		return func(target, value interface{}) {
			xField.SetBool(xunsafe.AsPointer(target), value.(bool))
		}
	case reflect.Int:
		return func(target, value interface{}) {
			xField.SetInt(xunsafe.AsPointer(target), int(value.(int64)))
		}
	case reflect.Int64:
		if rType == reflect.TypeOf(int64(0)) {
			return func(target, value interface{}) {
				xField.SetValue(xunsafe.AsPointer(target), value.(int64))
			}
		}
	case reflect.Float64:
		if rType == reflect.TypeOf(float64(0)) {
			return func(target, value interface{}) {
				xField.SetFloat64(xunsafe.AsPointer(target), value.(float64))
			}
		}
	}
	return func(target, value interface{}) {
		converted := assignValue(value, rType)
		xField.SetValue(xunsafe.AsPointer(target), converted.Interface())
	}
}

// newGetter binds an xunsafe field reader; pointer fields deref so absent
// values surface as nil to the writer plan.
func newGetter(field reflect.StructField) shapely.Getter {
	xField := xunsafe.NewField(field)
	if field.Type.Kind() == reflect.Ptr {
		return func(target interface{}) interface{} {
			value := xField.Value(xunsafe.AsPointer(target))
			rv := reflect.ValueOf(value)
			if !rv.IsValid() || rv.IsNil() {
				return nil
			}
			return rv.Elem().Interface()
		}
	}
	return func(target interface{}) interface{} {
		return xField.Value(xunsafe.AsPointer(target))
	}
}

// assignValue converts a parser materialized value into the target type: the
// parse core hands over typed scalars, []interface{} lists, string keyed maps
// and factory made *struct targets.
func assignValue(value interface{}, rType reflect.Type) reflect.Value {
	if value == nil {
		return reflect.Zero(rType)
	}
	rv := reflect.ValueOf(value)
	if rv.Type() == rType {
		return rv
	}
	switch rType.Kind() {
	case reflect.Ptr:
		elem := assignValue(value, rType.Elem())
		ret := reflect.New(rType.Elem())
		ret.Elem().Set(elem)
		return ret
	case reflect.Struct:
		if rv.Kind() == reflect.Ptr && rv.Type().Elem() == rType {
			return rv.Elem()
		}
	case reflect.Slice:
		if items, ok := value.([]interface{}); ok {
			ret := reflect.MakeSlice(rType, len(items), len(items))
			for i, item := range items {
				ret.Index(i).Set(assignValue(item, rType.Elem()))
			}
			return ret
		}
	case reflect.Array:
		if items, ok := value.([]interface{}); ok {
			ret := reflect.New(rType).Elem()
			for i := 0; i < len(items) && i < rType.Len(); i++ {
				ret.Index(i).Set(assignValue(items[i], rType.Elem()))
			}
			return ret
		}
	case reflect.Map:
		switch actual := value.(type) {
		case map[string]interface{}:
			ret := reflect.MakeMapWithSize(rType, len(actual))
			for key, item := range actual {
				ret.SetMapIndex(assignValue(key, rType.Key()), assignValue(item, rType.Elem()))
			}
			return ret
		case map[interface{}]interface{}:
			ret := reflect.MakeMapWithSize(rType, len(actual))
			for key, item := range actual {
				ret.SetMapIndex(assignValue(key, rType.Key()), assignValue(item, rType.Elem()))
			}
			return ret
		}
	case reflect.Interface:
		ret := reflect.New(rType).Elem()
		ret.Set(rv)
		return ret
	}
	return rv.Convert(rType)
}
