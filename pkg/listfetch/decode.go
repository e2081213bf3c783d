package listfetch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Validator is implemented by records that check their own invariants after decoding.
type Validator interface {
	Validate() error
}

// DecodeOptions tunes DecodeList.
type DecodeOptions struct {
	// DisallowUnknownFields rejects objects carrying keys the record does not declare.
	DisallowUnknownFields bool
}

var errNotArray = errors.New("body is not a JSON array")

// DecodeList parses data as a JSON array and decodes every element into T.
// Decoding is all-or-nothing: the first failing element aborts the whole list.
//
// For struct records, every field is required unless it is a pointer or its
// json tag carries omitempty or omitzero. Wire names come from json tags, so
// `json:"max_weight_lbs"` aliases a wire key onto a differently named field.
func DecodeList[T any](data []byte, opts DecodeOptions) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, err
	}

	required := requiredKeys(reflect.TypeOf((*T)(nil)).Elem())
	out := make([]T, 0, len(elems))
	for i, raw := range elems {
		rec, err := decodeElement[T](raw, required, opts)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeElement[T any](raw json.RawMessage, required []string, opts DecodeOptions) (T, error) {
	var rec T

	if len(required) > 0 {
		if err := checkRequired(raw, required); err != nil {
			return rec, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if opts.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&rec); err != nil {
		return rec, err
	}

	if v, ok := any(rec).(Validator); ok {
		if err := v.Validate(); err != nil {
			return rec, fmt.Errorf("validate: %w", err)
		}
	} else if v, ok := any(&rec).(Validator); ok {
		if err := v.Validate(); err != nil {
			return rec, fmt.Errorf("validate: %w", err)
		}
	}
	return rec, nil
}

// checkRequired fails when raw is not an object or lacks a non-null value for a required key.
// Keys match case-insensitively, as encoding/json does.
func checkRequired(raw json.RawMessage, required []string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err
	}
	if obj == nil {
		return errors.New("element is null")
	}

	for _, key := range required {
		if !hasValue(obj, key) {
			return fmt.Errorf("missing required field %q", key)
		}
	}
	return nil
}

func hasValue(obj map[string]json.RawMessage, key string) bool {
	if v, ok := obj[key]; ok {
		return !isNull(v)
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return !isNull(v)
		}
	}
	return false
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// requiredKeys lists the wire names of required fields of t, following
// embedded structs the way encoding/json promotes them.
func requiredKeys(t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		return nil
	}

	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, tagOpts, _ := strings.Cut(tag, ",")

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				continue
			}
			keys = append(keys, requiredKeys(ft)...)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if f.Type.Kind() == reflect.Pointer || hasTagOption(tagOpts, "omitempty") || hasTagOption(tagOpts, "omitzero") {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys = append(keys, name)
	}
	return keys
}

func hasTagOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}
