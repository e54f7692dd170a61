package writer

import (
	"math"
	"strconv"

	"github.com/viant/shapely"
)

const hexDigits = "0123456789abcdef"

// appendEscaped appends text as a quoted JSON string. Bytes below 0x20, the
// quote and the backslash are escaped; everything else passes through as raw
// UTF-8.
func appendEscaped(dst []byte, text string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b >= 0x20 && b != '"' && b != '\\' {
			continue
		}
		dst = append(dst, text[start:i]...)
		switch b {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xF])
		}
		start = i + 1
	}
	dst = append(dst, text[start:]...)
	return append(dst, '"')
}

// appendFloat renders the shortest round trip decimal; integral values keep a
// trailing .0 marker so a float never reads back as an integer literal.
func appendFloat(dst []byte, value float64, bits int) ([]byte, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return dst, shapely.NewError(shapely.NonFiniteNumber, -1, "JSON cannot represent "+strconv.FormatFloat(value, 'g', -1, bits))
	}
	mark := len(dst)
	dst = strconv.AppendFloat(dst, value, 'g', -1, bits)
	for _, b := range dst[mark:] {
		if b == '.' || b == 'e' || b == 'E' {
			return dst, nil
		}
	}
	return append(dst, '.', '0'), nil
}

// toInt64 coerces any signed or unsigned Go integer the accessors may hand
// over; ok is false for foreign values.
func toInt64(value interface{}) (int64, bool) {
	switch actual := value.(type) {
	case int:
		return int64(actual), true
	case int8:
		return int64(actual), true
	case int16:
		return int64(actual), true
	case int32:
		return int64(actual), true
	case int64:
		return actual, true
	case uint:
		return int64(actual), true
	case uint8:
		return int64(actual), true
	case uint16:
		return int64(actual), true
	case uint32:
		return int64(actual), true
	case uint64:
		return int64(actual), true
	case float64:
		if actual == math.Trunc(actual) {
			return int64(actual), true
		}
	}
	return 0, false
}

func toUint64(value interface{}) (uint64, bool) {
	switch actual := value.(type) {
	case uint:
		return uint64(actual), true
	case uint8:
		return uint64(actual), true
	case uint16:
		return uint64(actual), true
	case uint32:
		return uint64(actual), true
	case uint64:
		return actual, true
	case int:
		if actual >= 0 {
			return uint64(actual), true
		}
	case int8:
		if actual >= 0 {
			return uint64(actual), true
		}
	case int16:
		if actual >= 0 {
			return uint64(actual), true
		}
	case int32:
		if actual >= 0 {
			return uint64(actual), true
		}
	case int64:
		if actual >= 0 {
			return uint64(actual), true
		}
	case float64:
		if actual >= 0 && actual == math.Trunc(actual) {
			return uint64(actual), true
		}
	}
	return 0, false
}

func toFloat64(value interface{}) (float64, bool) {
	switch actual := value.(type) {
	case float64:
		return actual, true
	case float32:
		return float64(actual), true
	case int:
		return float64(actual), true
	case int8:
		return float64(actual), true
	case int16:
		return float64(actual), true
	case int32:
		return float64(actual), true
	case int64:
		return float64(actual), true
	case uint:
		return float64(actual), true
	case uint8:
		return float64(actual), true
	case uint16:
		return float64(actual), true
	case uint32:
		return float64(actual), true
	case uint64:
		return float64(actual), true
	}
	return 0, false
}
