package protocol

import "encoding/binary"

// Escape selector bytes. These never appear as tags or domains; the
// operation table rejects registrations that would shadow them.
const (
	SelExtended = 0x00 // [0x00][opHash:8][payload...]
	SelTLV      = 0xFE // [0xFE][type:1][len:2 LE][value:len]
	SelSchema   = 0xFF // [0xFF][schemaHash:32][payload...]
)

// Tags 0x01 and 0x02 predate the v1 table and stay reserved.
const minTag = 0x03

type SelectorForm uint8

const (
	FormTag SelectorForm = iota
	FormDomainOp
	FormExtended
	FormTLV
	FormSchema
)

func (f SelectorForm) String() string {
	switch f {
	case FormTag:
		return "tag"
	case FormDomainOp:
		return "domain+op"
	case FormExtended:
		return "extended"
	case FormTLV:
		return "tlv"
	case FormSchema:
		return "schema"
	}
	return "unknown"
}

// Instruction is a decoded selector plus the raw payload slice. The codec
// does not interpret field meaning; the payload is handed to the semantic
// layer (or through DecodeFields with the operation's layout).
type Instruction struct {
	Form SelectorForm

	// FormTag
	Tag uint8
	// FormDomainOp
	Domain uint8
	Op     uint8
	// FormExtended
	OpHash [8]byte
	// FormTLV
	TLVType uint8
	// FormSchema
	SchemaHash [32]byte

	// Name of the table entry. Empty for escape forms.
	Name string

	Payload []byte
}

// EncodeExtended builds a forward-compatible instruction keyed by an
// 8-byte operation hash.
func EncodeExtended(opHash [8]byte, payload []byte) []byte {
	out := make([]byte, 0, 1+8+len(payload))
	out = append(out, SelExtended)
	out = append(out, opHash[:]...)
	return append(out, payload...)
}

// EncodeTLV builds a self-describing type-length-value instruction.
func EncodeTLV(typ uint8, value []byte) ([]byte, error) {
	if len(value) > 0xffff {
		return nil, wireErr(ERR_FIELD_INVALID, "tlv value exceeds u16 length")
	}
	out := make([]byte, 0, 4+len(value))
	out = append(out, SelTLV, typ)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(value)))
	return append(out, value...), nil
}

// EncodeSchema builds an instruction keyed by a 32-byte schema hash.
func EncodeSchema(schemaHash [32]byte, payload []byte) []byte {
	out := make([]byte, 0, 1+32+len(payload))
	out = append(out, SelSchema)
	out = append(out, schemaHash[:]...)
	return append(out, payload...)
}
