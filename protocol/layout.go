package protocol

import (
	"encoding/binary"
	"fmt"
)

// FieldKind classifies how a field is put on the wire. All integers are
// little-endian. Variable-length fields always carry an explicit length
// prefix whose width is declared per field, never inferred.
type FieldKind uint8

const (
	KindU8 FieldKind = iota
	KindU16
	KindU32
	KindU64
	KindBytes // fixed Width raw bytes (hashes, pubkeys)
	KindVar   // PrefixWidth-byte LE length prefix, then body
)

type Field struct {
	Name        string
	Kind        FieldKind
	Width       int // KindBytes: exact byte width
	PrefixWidth int // KindVar: 1, 2 or 4
	MinBody     int // KindVar: body bytes counted toward the layout minimum
}

// Layout is an ordered field list interpreted by one generic encode/decode
// routine. The minimum payload length is derived from it mechanically.
type Layout []Field

func (l Layout) Validate() error {
	seen := make(map[string]struct{}, len(l))
	for _, f := range l {
		if f.Name == "" {
			return wireErr(ERR_LAYOUT_INVALID, "field name required")
		}
		if _, dup := seen[f.Name]; dup {
			return wireErr(ERR_LAYOUT_INVALID, "duplicate field "+f.Name)
		}
		seen[f.Name] = struct{}{}
		switch f.Kind {
		case KindU8, KindU16, KindU32, KindU64:
			if f.Width != 0 || f.PrefixWidth != 0 || f.MinBody != 0 {
				return wireErr(ERR_LAYOUT_INVALID, "int field "+f.Name+" declares width")
			}
		case KindBytes:
			if f.Width <= 0 {
				return wireErr(ERR_LAYOUT_INVALID, "bytes field "+f.Name+" needs width")
			}
		case KindVar:
			if f.PrefixWidth != 1 && f.PrefixWidth != 2 && f.PrefixWidth != 4 {
				return wireErr(ERR_LAYOUT_INVALID, "var field "+f.Name+" prefix width must be 1, 2 or 4")
			}
			if f.MinBody < 0 {
				return wireErr(ERR_LAYOUT_INVALID, "var field "+f.Name+" negative min body")
			}
		default:
			return wireErr(ERR_LAYOUT_INVALID, fmt.Sprintf("field %s: unknown kind %d", f.Name, f.Kind))
		}
	}
	return nil
}

// MinLen is the declared minimum payload length: every fixed field at full
// width plus, for each variable field, its prefix and minimum body.
func (l Layout) MinLen() int {
	n := 0
	for _, f := range l {
		n += f.minWidth()
	}
	return n
}

func (f Field) minWidth() int {
	switch f.Kind {
	case KindU8:
		return 1
	case KindU16:
		return 2
	case KindU32:
		return 4
	case KindU64:
		return 8
	case KindBytes:
		return f.Width
	case KindVar:
		return f.PrefixWidth + f.MinBody
	}
	return 0
}

// Values holds decoded field contents keyed by field name. Integer fields
// are stored as their little-endian wire bytes at declared width.
type Values map[string][]byte

func (v Values) PutU8(name string, x uint8) { v[name] = []byte{x} }

func (v Values) PutU16(name string, x uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], x)
	v[name] = b[:]
}

func (v Values) PutU32(name string, x uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], x)
	v[name] = b[:]
}

func (v Values) PutU64(name string, x uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], x)
	v[name] = b[:]
}

func (v Values) PutBytes(name string, b []byte) {
	v[name] = append([]byte(nil), b...)
}

func (v Values) U8(name string) uint8 {
	b := v[name]
	if len(b) != 1 {
		return 0
	}
	return b[0]
}

func (v Values) U16(name string) uint16 {
	b := v[name]
	if len(b) != 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (v Values) U32(name string) uint32 {
	b := v[name]
	if len(b) != 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (v Values) U64(name string) uint64 {
	b := v[name]
	if len(b) != 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (v Values) Bytes(name string) []byte { return v[name] }

func (v Values) Bytes32(name string) ([32]byte, bool) {
	var out [32]byte
	b := v[name]
	if len(b) != 32 {
		return out, false
	}
	copy(out[:], b)
	return out, true
}

// EncodeFields serializes vals according to l. Every field named by the
// layout must be present at its declared width.
func EncodeFields(l Layout, vals Values) ([]byte, error) {
	out := make([]byte, 0, l.MinLen())
	for _, f := range l {
		b, ok := vals[f.Name]
		if !ok {
			return nil, wireErr(ERR_FIELD_MISSING, f.Name)
		}
		switch f.Kind {
		case KindU8, KindU16, KindU32, KindU64, KindBytes:
			if len(b) != f.minWidth() {
				return nil, wireErr(ERR_FIELD_INVALID,
					fmt.Sprintf("%s: got %d bytes, want %d", f.Name, len(b), f.minWidth()))
			}
			out = append(out, b...)
		case KindVar:
			if maxBody := maxForPrefix(f.PrefixWidth); uint64(len(b)) > maxBody {
				return nil, wireErr(ERR_FIELD_INVALID,
					fmt.Sprintf("%s: %d bytes exceeds %d-byte prefix", f.Name, len(b), f.PrefixWidth))
			}
			switch f.PrefixWidth {
			case 1:
				out = append(out, byte(len(b)))
			case 2:
				out = binary.LittleEndian.AppendUint16(out, uint16(len(b)))
			case 4:
				out = binary.LittleEndian.AppendUint32(out, uint32(len(b)))
			}
			out = append(out, b...)
		}
	}
	return out, nil
}

// DecodeFields parses payload according to l. Trailing bytes beyond the
// last field are permitted (zero padding up to a selector minimum).
func DecodeFields(l Layout, payload []byte) (Values, error) {
	vals := make(Values, len(l))
	off := 0
	for _, f := range l {
		switch f.Kind {
		case KindU8, KindU16, KindU32, KindU64, KindBytes:
			b, err := take(payload, &off, f.minWidth())
			if err != nil {
				return nil, err
			}
			vals[f.Name] = append([]byte(nil), b...)
		case KindVar:
			pfx, err := take(payload, &off, f.PrefixWidth)
			if err != nil {
				return nil, err
			}
			var n int
			switch f.PrefixWidth {
			case 1:
				n = int(pfx[0])
			case 2:
				n = int(binary.LittleEndian.Uint16(pfx))
			case 4:
				n = int(binary.LittleEndian.Uint32(pfx))
			}
			b, err := take(payload, &off, n)
			if err != nil {
				return nil, err
			}
			vals[f.Name] = append([]byte(nil), b...)
		}
	}
	return vals, nil
}

// take slices the next n bytes at *off and advances it.
func take(b []byte, off *int, n int) ([]byte, error) {
	if n < 0 {
		return nil, wireErr(ERR_FIELD_INVALID, "negative length")
	}
	if len(b)-*off < n {
		return nil, wireErr(ERR_PAYLOAD_TOO_SHORT,
			fmt.Sprintf("need %d bytes at offset %d, have %d", n, *off, len(b)-*off))
	}
	v := b[*off : *off+n]
	*off += n
	return v, nil
}

func maxForPrefix(w int) uint64 {
	switch w {
	case 1:
		return 0xff
	case 2:
		return 0xffff
	default:
		return 0xffffffff
	}
}
