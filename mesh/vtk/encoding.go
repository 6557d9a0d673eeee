package vtk

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Encoding selects how DataArray payloads are stored
type Encoding int

const (
	ASCII Encoding = iota
	// Binary stores each array inline as base64 of a UInt32 byte count
	// followed by the little endian values
	Binary
)

func (e Encoding) String() string {
	if e == Binary {
		return "binary"
	}
	return "ascii"
}

func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ascii":
		return ASCII, nil
	case "binary", "base64":
		return Binary, nil
	default:
		return 0, fmt.Errorf("unknown VTK encoding %q, want ascii or binary", name)
	}
}

type number interface {
	~float32 | ~float64 | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

func vtkTypeName[T number]() string {
	var zero T
	switch any(zero).(type) {
	case float32:
		return "Float32"
	case float64:
		return "Float64"
	case int8:
		return "Int8"
	case uint8:
		return "UInt8"
	case int16:
		return "Int16"
	case uint16:
		return "UInt16"
	case int32:
		return "Int32"
	case uint32:
		return "UInt32"
	case int64:
		return "Int64"
	default:
		return "UInt64"
	}
}

func newDataArray[T number](name string, components int, vals []T, enc Encoding) dataArray {
	da := dataArray{
		Type:               vtkTypeName[T](),
		Name:               name,
		NumberOfComponents: components,
		Format:             enc.String(),
	}
	if enc == Binary {
		da.Data = encodeBinary(vals)
	} else {
		da.Data = encodeASCII(vals)
	}
	return da
}

func encodeASCII[T number](vals []T) string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for i, v := range vals {
		if i > 0 {
			if i%6 == 0 {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		switch x := any(v).(type) {
		case float64:
			sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		case float32:
			sb.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 32))
		default:
			fmt.Fprint(&sb, x)
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

func encodeBinary[T number](vals []T) string {
	var buf bytes.Buffer
	var zero T
	nbytes := uint32(len(vals) * binary.Size(zero))
	_ = binary.Write(&buf, binary.LittleEndian, nbytes)
	_ = binary.Write(&buf, binary.LittleEndian, vals)
	return "\n" + base64.StdEncoding.EncodeToString(buf.Bytes()) + "\n"
}

// decodeFloats reads any floating point or integer DataArray as float64
func decodeFloats(da dataArray, headerType string) ([]float64, error) {
	switch da.Type {
	case "Float32":
		return convert[float32, float64](decode[float32](da, headerType))
	case "Float64":
		return decode[float64](da, headerType)
	default:
		ints, err := decodeInts(da, headerType)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(ints))
		for i, v := range ints {
			out[i] = float64(v)
		}
		return out, nil
	}
}

// decodeInts reads any integer DataArray as int64
func decodeInts(da dataArray, headerType string) ([]int64, error) {
	switch da.Type {
	case "Int8":
		return convert[int8, int64](decode[int8](da, headerType))
	case "UInt8":
		return convert[uint8, int64](decode[uint8](da, headerType))
	case "Int16":
		return convert[int16, int64](decode[int16](da, headerType))
	case "UInt16":
		return convert[uint16, int64](decode[uint16](da, headerType))
	case "Int32":
		return convert[int32, int64](decode[int32](da, headerType))
	case "UInt32":
		return convert[uint32, int64](decode[uint32](da, headerType))
	case "Int64":
		return decode[int64](da, headerType)
	case "UInt64":
		vals, err := decode[uint64](da, headerType)
		if err != nil {
			return nil, err
		}
		out := make([]int64, len(vals))
		for i, v := range vals {
			if v > math.MaxInt64 {
				return nil, fmt.Errorf("DataArray %q: value %d overflows Int64", da.Name, v)
			}
			out[i] = int64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("DataArray %q: unsupported type %q", da.Name, da.Type)
	}
}

func convert[S, D number](vals []S, err error) ([]D, error) {
	if err != nil {
		return nil, err
	}
	out := make([]D, len(vals))
	for i, v := range vals {
		out[i] = D(v)
	}
	return out, nil
}

func decode[T number](da dataArray, headerType string) ([]T, error) {
	switch da.Format {
	case "ascii":
		return decodeASCII[T](da)
	case "binary":
		return decodeBinary[T](da, headerType)
	default:
		return nil, fmt.Errorf("DataArray %q: unsupported format %q", da.Name, da.Format)
	}
}

// decodeASCII parses whitespace separated values. Values that do not fit
// the declared type are an error, never truncated.
func decodeASCII[T number](da dataArray) ([]T, error) {
	fields := strings.Fields(da.Data)
	out := make([]T, len(fields))
	var zero T
	_, isFloat32 := any(zero).(float32)
	_, isFloat64 := any(zero).(float64)
	_, isUint64 := any(zero).(uint64)
	for i, f := range fields {
		switch {
		case isFloat32 || isFloat64:
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("DataArray %q: %w", da.Name, err)
			}
			if isFloat32 && !math.IsInf(v, 0) && math.Abs(v) > math.MaxFloat32 {
				return nil, fmt.Errorf("DataArray %q: value %s out of range for %s", da.Name, f, da.Type)
			}
			out[i] = T(v)
		case isUint64:
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("DataArray %q: %w", da.Name, err)
			}
			out[i] = T(v)
		default:
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("DataArray %q: %w", da.Name, err)
			}
			// Round trip through T catches both overflow and sign loss
			if t := T(v); int64(t) != v || (v < 0) != (t < 0) {
				return nil, fmt.Errorf("DataArray %q: value %s out of range for %s", da.Name, f, da.Type)
			}
			out[i] = T(v)
		}
	}
	return out, nil
}

func decodeBinary[T number](da dataArray, headerType string) ([]T, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(da.Data), ""))
	if err != nil {
		return nil, fmt.Errorf("DataArray %q: %w", da.Name, err)
	}
	var (
		r      = bytes.NewReader(raw)
		nbytes uint64
	)
	if headerType == "UInt64" {
		err = binary.Read(r, binary.LittleEndian, &nbytes)
	} else {
		var n32 uint32
		err = binary.Read(r, binary.LittleEndian, &n32)
		nbytes = uint64(n32)
	}
	if err != nil {
		return nil, fmt.Errorf("DataArray %q: reading header: %w", da.Name, err)
	}
	var zero T
	size := uint64(binary.Size(zero))
	if nbytes%size != 0 || nbytes > uint64(r.Len()) {
		return nil, fmt.Errorf("DataArray %q: header announces %d bytes, payload has %d",
			da.Name, nbytes, r.Len())
	}
	out := make([]T, nbytes/size)
	if err = binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("DataArray %q: %w", da.Name, err)
	}
	return out, nil
}
