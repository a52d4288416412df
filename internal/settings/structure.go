package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
)

// IsStructurallyEqual compares two decoded JSON values by shape. Mappings
// must have the same key set and structurally equal values per key. Anything
// else only needs the same basic type; the values themselves are ignored.
func IsStructurallyEqual(candidate, reference interface{}) bool {
	cm, cIsMap := candidate.(map[string]interface{})
	rm, rIsMap := reference.(map[string]interface{})
	if cIsMap != rIsMap {
		return false
	}
	if !cIsMap {
		return kindOf(candidate) == kindOf(reference)
	}

	if len(cm) != len(rm) {
		return false
	}
	for key, rv := range rm {
		cv, ok := cm[key]
		if !ok || !IsStructurallyEqual(cv, rv) {
			return false
		}
	}
	return true
}

// kindOf names the basic type of a decoded JSON value. Numbers decoded with
// UseNumber are split into integers and floats.
func kindOf(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return "int"
		}
		return "float"
	case float32, float64:
		return "float"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case []interface{}:
		return "array"
	default:
		return reflect.TypeOf(v).String()
	}
}

// decodeJSON decodes a single JSON value, keeping numbers as json.Number.
func decodeJSON(raw []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

// tree returns s as a decoded JSON value.
func (s RenderSettings) tree() interface{} {
	data, _ := json.Marshal(s)
	v, _ := decodeJSON(data)
	return v
}
