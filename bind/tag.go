package bind

import "strings"

type jsonTag struct {
	name      string
	omitEmpty bool
	ignore    bool
}

// parseJSONTag reads the conventional json struct tag: name, "-" to skip,
// omitempty to mark the field optional.
func parseJSONTag(tag string) jsonTag {
	if tag == "" {
		return jsonTag{}
	}
	parts := strings.Split(tag, ",")
	ret := jsonTag{name: parts[0]}
	if ret.name == "-" && len(parts) == 1 {
		return jsonTag{ignore: true}
	}
	for _, part := range parts[1:] {
		if part == "omitempty" {
			ret.omitEmpty = true
		}
	}
	return ret
}
