package arrayconv

// BytesTo converts in into the typed slice out and returns the filled slice.
// A nil out returns nil. When out is not a supported slice type it is
// returned unchanged with no error.
func BytesTo(in []byte, out any, l Layout) (any, error) {
	if out == nil {
		return nil, nil
	}

	switch o := out.(type) {
	case []byte:
		return BytesToBytes(in, o, l)
	case []int16:
		return BytesToInt16(in, o, l)
	case []int32:
		return BytesToInt32(in, o, l)
	case []int64:
		return BytesToInt64(in, o, l)
	case []float32:
		return BytesToFloat32(in, o, l)
	case []float64:
		return BytesToFloat64(in, o, l)
	}
	return out, nil
}

// BytesToType converts in into a newly allocated slice of type t.
// Unsupported types return in unchanged.
func BytesToType(in []byte, t DataType, l Layout) (any, error) {
	switch t {
	case Byte:
		return BytesToBytes(in, nil, l)
	case Short:
		return BytesToInt16(in, nil, l)
	case Int:
		return BytesToInt32(in, nil, l)
	case Long:
		return BytesToInt64(in, nil, l)
	case Float:
		return BytesToFloat32(in, nil, l)
	case Double:
		return BytesToFloat64(in, nil, l)
	}
	return in, nil
}

// ToBytes converts the typed slice in to bytes, writing into out when it is
// not nil. When in is not a supported slice type out is returned unchanged.
func ToBytes(in any, out []byte, l Layout) ([]byte, error) {
	switch v := in.(type) {
	case []byte:
		return BytesToBytes(v, out, l)
	case []int16:
		return Int16ToBytes(v, out, l)
	case []int32:
		return Int32ToBytes(v, out, l)
	case []int64:
		return Int64ToBytes(v, out, l)
	case []float32:
		return Float32ToBytes(v, out, l)
	case []float64:
		return Float64ToBytes(v, out, l)
	}
	return out, nil
}

// ToFloat64 widens a supported typed slice to float64, leaving nil for
// anything else.
func ToFloat64(in any) []float64 {
	switch v := in.(type) {
	case []byte:
		return widen(v)
	case []int16:
		return widen(v)
	case []int32:
		return widen(v)
	case []int64:
		return widen(v)
	case []float32:
		return widen(v)
	case []float64:
		return append([]float64(nil), v...)
	}
	return nil
}

func widen[T numeric | ~uint8](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
