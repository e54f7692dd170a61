package shapely

import (
	"strconv"
	"strings"
)

// CanonicalKey derives the stable identity string of a shape. Two shapes that
// are equal as trees produce equal keys; parametric arguments are part of the
// key so List<Foo> and List<Bar> never collide. Cycles through named objects
// key as the bare object name on revisit; unnamed revisits key as a positional
// back reference.
func (s *Shape) CanonicalKey() string {
	builder := &strings.Builder{}
	s.appendKey(builder, map[*Shape]int{}, new(int))
	return builder.String()
}

func (s *Shape) appendKey(builder *strings.Builder, visited map[*Shape]int, counter *int) {
	if s == nil {
		builder.WriteString("<nil>")
		return
	}
	if s.Kind.IsScalar() || s.Kind == Any {
		builder.WriteString(s.Kind.String())
		return
	}
	if ord, ok := visited[s]; ok {
		if s.Name != "" {
			builder.WriteString(s.Name)
			return
		}
		builder.WriteByte('#')
		builder.WriteString(strconv.Itoa(ord))
		return
	}
	visited[s] = *counter
	*counter++
	//only the current descent path counts as visited, a sub shape shared by
	//sibling fields keys in full at every position
	defer delete(visited, s)
	switch s.Kind {
	case List:
		builder.WriteString("[]")
		s.Elem.appendKey(builder, visited, counter)
	case Map:
		builder.WriteString("map[")
		s.Key.appendKey(builder, visited, counter)
		builder.WriteByte(']')
		s.Elem.appendKey(builder, visited, counter)
	case Object:
		builder.WriteString(s.Name)
		builder.WriteByte('{')
		for i := range s.Fields {
			if i > 0 {
				builder.WriteByte(',')
			}
			field := &s.Fields[i]
			builder.WriteString(field.Name)
			if field.Optional {
				builder.WriteByte('?')
			}
			builder.WriteByte(':')
			field.Shape.appendKey(builder, visited, counter)
		}
		builder.WriteByte('}')
	default:
		builder.WriteString(s.Kind.String())
	}
}
