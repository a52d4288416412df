package settings

import "encoding/json"

// Parse accepts raw only if it has exactly the shape of the default layout
// and every placement lies on the page. Anything else yields the default
// layout and false; there is no partial merge.
func Parse(raw []byte) (RenderSettings, bool) {
	candidate, err := decodeJSON(raw)
	if err != nil {
		return Default(), false
	}
	if !IsStructurallyEqual(candidate, Default().tree()) {
		return Default(), false
	}

	var s RenderSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Default(), false
	}
	if err := s.Validate(); err != nil {
		return Default(), false
	}
	return s, true
}
