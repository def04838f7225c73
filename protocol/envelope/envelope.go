// Package envelope implements the Styx envelope v1 binary format and its
// base64url memo form. An envelope is the encrypted payload carried by a
// relay instruction; relays and indexers parse the header without being
// able to read the body.
package envelope

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
)

var Magic = [4]byte{'S', 'T', 'Y', 'X'}

const Version1 = 1

// MemoPrefix precedes the base64url form when an envelope rides in a memo
// string.
const MemoPrefix = "styx1:"

// MaxEnvelopeBytes bounds a relayed envelope. Logs are public; the bound
// keeps relay transactions affordable.
const MaxEnvelopeBytes = 1024

type Kind uint8

const (
	KindMessage   Kind = 1
	KindReveal    Kind = 2
	KindKeybundle Kind = 3
)

type Algo uint8

const AlgoPMF1 Algo = 1

// Presence flags, u16 little-endian on the wire.
const (
	flagToHash = 1 << 0
	flagFrom   = 1 << 1
	flagNonce  = 1 << 2
	flagAAD    = 1 << 3
	flagSig    = 1 << 4
)

// Envelope is the decoded form. Optional fields are nil when absent; the
// flags word on the wire records which are present.
type Envelope struct {
	Kind   Kind
	Algo   Algo
	ID     [32]byte
	ToHash *[32]byte
	From   *[32]byte
	Nonce  []byte
	Body   []byte
	AAD    []byte
	Sig    []byte
}

const headerLen = 4 + 1 + 1 + 2 + 1 + 32

// Encode produces the canonical v1 byte form.
func Encode(e *Envelope) ([]byte, error) {
	if e.Kind < KindMessage || e.Kind > KindKeybundle {
		return nil, fmt.Errorf("envelope: unknown kind %d", e.Kind)
	}
	if e.Algo != AlgoPMF1 {
		return nil, fmt.Errorf("envelope: unknown algo %d", e.Algo)
	}

	var flags uint16
	if e.ToHash != nil {
		flags |= flagToHash
	}
	if e.From != nil {
		flags |= flagFrom
	}
	if e.Nonce != nil {
		flags |= flagNonce
	}
	if e.AAD != nil {
		flags |= flagAAD
	}
	if e.Sig != nil {
		flags |= flagSig
	}

	out := make([]byte, 0, headerLen+len(e.Body)+16)
	out = append(out, Magic[:]...)
	out = append(out, Version1, byte(e.Kind))
	var f2 [2]byte
	binary.LittleEndian.PutUint16(f2[:], flags)
	out = append(out, f2[:]...)
	out = append(out, byte(e.Algo))
	out = append(out, e.ID[:]...)

	if e.ToHash != nil {
		out = append(out, e.ToHash[:]...)
	}
	if e.From != nil {
		out = append(out, e.From[:]...)
	}
	if e.Nonce != nil {
		out = appendVarBytes(out, e.Nonce)
	}
	out = appendVarBytes(out, e.Body)
	if e.AAD != nil {
		out = appendVarBytes(out, e.AAD)
	}
	if e.Sig != nil {
		out = appendVarBytes(out, e.Sig)
	}
	if len(out) > MaxEnvelopeBytes {
		return nil, fmt.Errorf("envelope: %d bytes exceeds max %d", len(out), MaxEnvelopeBytes)
	}
	return out, nil
}

// Decode parses a v1 envelope. Trailing bytes are rejected: the format is
// canonical and an envelope is never embedded with padding.
func Decode(b []byte) (*Envelope, error) {
	if len(b) < headerLen {
		return nil, fmt.Errorf("envelope: too short")
	}
	if len(b) > MaxEnvelopeBytes {
		return nil, fmt.Errorf("envelope: %d bytes exceeds max %d", len(b), MaxEnvelopeBytes)
	}
	if [4]byte(b[0:4]) != Magic {
		return nil, fmt.Errorf("envelope: bad magic")
	}
	if b[4] != Version1 {
		return nil, fmt.Errorf("envelope: unsupported version %d", b[4])
	}
	kind := Kind(b[5])
	if kind < KindMessage || kind > KindKeybundle {
		return nil, fmt.Errorf("envelope: unknown kind %d", kind)
	}
	flags := binary.LittleEndian.Uint16(b[6:8])
	algo := Algo(b[8])
	if algo != AlgoPMF1 {
		return nil, fmt.Errorf("envelope: unknown algo %d", algo)
	}

	e := &Envelope{Kind: kind, Algo: algo}
	copy(e.ID[:], b[9:41])
	off := headerLen

	read32 := func() (*[32]byte, error) {
		if off+32 > len(b) {
			return nil, fmt.Errorf("envelope: truncated 32-byte field")
		}
		var v [32]byte
		copy(v[:], b[off:off+32])
		off += 32
		return &v, nil
	}

	var err error
	if flags&flagToHash != 0 {
		if e.ToHash, err = read32(); err != nil {
			return nil, err
		}
	}
	if flags&flagFrom != 0 {
		if e.From, err = read32(); err != nil {
			return nil, err
		}
	}
	if flags&flagNonce != 0 {
		if e.Nonce, err = readVarBytes(b, &off); err != nil {
			return nil, err
		}
	}
	if e.Body, err = readVarBytes(b, &off); err != nil {
		return nil, err
	}
	if flags&flagAAD != 0 {
		if e.AAD, err = readVarBytes(b, &off); err != nil {
			return nil, err
		}
	}
	if flags&flagSig != 0 {
		if e.Sig, err = readVarBytes(b, &off); err != nil {
			return nil, err
		}
	}

	if off != len(b) {
		return nil, fmt.Errorf("envelope: trailing bytes")
	}
	return e, nil
}

// EncodeMemo renders the envelope as a memo string.
func EncodeMemo(e *Envelope) (string, error) {
	raw, err := Encode(e)
	if err != nil {
		return "", err
	}
	return MemoPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeMemo parses a memo string back into an envelope.
func DecodeMemo(memo string) (*Envelope, error) {
	rest, ok := strings.CutPrefix(memo, MemoPrefix)
	if !ok {
		return nil, fmt.Errorf("envelope: memo missing %q prefix", MemoPrefix)
	}
	raw, err := base64.RawURLEncoding.DecodeString(rest)
	if err != nil {
		return nil, fmt.Errorf("envelope: memo base64url: %w", err)
	}
	return Decode(raw)
}
