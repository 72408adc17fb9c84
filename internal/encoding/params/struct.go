// Copyright (c) 2025 @AmarnathCJD

package params

import (
	"reflect"

	"github.com/fatih/structtag"
	"github.com/pkg/errors"
)

const tagName = "json"

var ErrNotStruct = errors.New("params: value is not a struct")

// FromStruct builds a record from the exported fields of a struct, in
// declaration order. Keys and the omitempty option come from json tags;
// a "-" tag skips the field.
func FromStruct(v any) (*Record, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.Wrap(ErrNotStruct, "nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrNotStruct, "got %s", rv.Kind())
	}

	rt := rv.Type()
	r := &Record{}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		key, omitEmpty, skip, err := parseTag(field)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}

		fv := rv.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		r.Set(key, fv.Interface())
	}
	return r, nil
}

func parseTag(field reflect.StructField) (key string, omitEmpty, skip bool, err error) {
	key = field.Name
	if field.Tag == "" {
		return key, false, false, nil
	}

	tags, err := structtag.Parse(string(field.Tag))
	if err != nil {
		return "", false, false, errors.Wrapf(err, "field %s", field.Name)
	}
	tag, err := tags.Get(tagName)
	if err != nil {
		// no json tag on this field
		return key, false, false, nil
	}
	if tag.Name == "-" && len(tag.Options) == 0 {
		return "", false, true, nil
	}
	if tag.Name != "" {
		key = tag.Name
	}
	return key, tag.HasOption("omitempty"), false, nil
}
