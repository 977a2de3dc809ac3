package utils

import (
	"reflect"
)

var ColumnTag = "db"

// StructTagValues returns the column names of a row struct, descending into
// embedded structs so that shared column groups can be composed.
func StructTagValues(input any) []string {
	targetValue := reflect.ValueOf(input)
	if targetValue.Kind() == reflect.Ptr {
		targetValue = targetValue.Elem()
	}

	if targetValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	result := make([]string, 0, targetValue.NumField())
	walkColumns(targetValue, func(column string, _ reflect.Value) {
		result = append(result, column)
	})

	return result
}

// StructToMap maps column names to field values, suitable for squirrel's SetMap.
func StructToMap(input any) map[string]any {
	itemValue := reflect.ValueOf(input)
	if itemValue.Kind() == reflect.Ptr {
		itemValue = itemValue.Elem()
	}

	if itemValue.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	result := make(map[string]any)
	walkColumns(itemValue, func(column string, field reflect.Value) {
		result[column] = field.Interface()
	})

	return result
}

func walkColumns(value reflect.Value, fn func(column string, field reflect.Value)) {
	valueType := value.Type()

	for i := 0; i < value.NumField(); i++ {
		field := valueType.Field(i)
		tagValue := field.Tag.Get(ColumnTag)
		if tagValue == "-" {
			continue
		}

		// Exported columns of an embedded struct are promoted even when the
		// embedded type itself is unexported.
		if tagValue == "" && field.Anonymous && field.Type.Kind() == reflect.Struct {
			walkColumns(value.Field(i), fn)
			continue
		}

		if field.PkgPath != "" || tagValue == "" {
			continue
		}

		fn(tagValue, value.Field(i))
	}
}
