package envelope

import "fmt"

// ULEB128 varints, capped at 4 shift groups (28 bits) like the reference
// encoders. Envelope field lengths never approach that.

func appendUleb128(dst []byte, n int) []byte {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			dst = append(dst, b|0x80)
			continue
		}
		return append(dst, b)
	}
}

func readUleb128(b []byte, off *int) (int, error) {
	result := 0
	shift := 0
	for {
		if *off >= len(b) {
			return 0, fmt.Errorf("envelope: varint overruns buffer")
		}
		c := b[*off]
		*off++
		result |= int(c&0x7f) << shift
		if c&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift > 28 {
			return 0, fmt.Errorf("envelope: varint too large")
		}
	}
}

func appendVarBytes(dst, v []byte) []byte {
	dst = appendUleb128(dst, len(v))
	return append(dst, v...)
}

func readVarBytes(b []byte, off *int) ([]byte, error) {
	n, err := readUleb128(b, off)
	if err != nil {
		return nil, err
	}
	if *off+n > len(b) {
		return nil, fmt.Errorf("envelope: var bytes out of range")
	}
	v := append([]byte(nil), b[*off:*off+n]...)
	*off += n
	return v, nil
}
