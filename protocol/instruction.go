package protocol

import (
	"encoding/binary"
	"fmt"
)

// Decode splits an instruction byte string into selector and payload,
// enforcing selector validity and the table's minimum payload length.
// Structural failures are final; they indicate a caller or version bug,
// never a transient condition.
func (t *OpTable) Decode(b []byte) (*Instruction, error) {
	if len(b) == 0 {
		return nil, wireErr(ERR_MALFORMED_SELECTOR, "empty instruction")
	}

	switch b[0] {
	case SelExtended:
		if len(b) < 1+8 {
			return nil, wireErr(ERR_MALFORMED_SELECTOR, "extended selector truncated")
		}
		ins := &Instruction{Form: FormExtended, Payload: b[9:]}
		copy(ins.OpHash[:], b[1:9])
		return ins, nil

	case SelTLV:
		if len(b) < 1+1+2 {
			return nil, wireErr(ERR_MALFORMED_SELECTOR, "tlv selector truncated")
		}
		n := int(binary.LittleEndian.Uint16(b[2:4]))
		if len(b)-4 < n {
			return nil, wireErr(ERR_PAYLOAD_TOO_SHORT,
				fmt.Sprintf("tlv declares %d value bytes, %d present", n, len(b)-4))
		}
		return &Instruction{Form: FormTLV, TLVType: b[1], Payload: b[4 : 4+n]}, nil

	case SelSchema:
		if len(b) < 1+32 {
			return nil, wireErr(ERR_MALFORMED_SELECTOR, "schema selector truncated")
		}
		ins := &Instruction{Form: FormSchema, Payload: b[33:]}
		copy(ins.SchemaHash[:], b[1:33])
		return ins, nil
	}

	switch t.mode {
	case ModeTag:
		info, ok := t.LookupTag(b[0])
		if !ok {
			return nil, wireErr(ERR_UNKNOWN_SELECTOR, fmt.Sprintf("tag 0x%02x", b[0]))
		}
		payload := b[1:]
		if len(payload) < info.MinLen {
			return nil, wireErr(ERR_PAYLOAD_TOO_SHORT,
				fmt.Sprintf("%s: payload %d < min %d", info.Name, len(payload), info.MinLen))
		}
		return &Instruction{Form: FormTag, Tag: b[0], Name: info.Name, Payload: payload}, nil

	case ModeDomainOp:
		if len(b) < 2 {
			return nil, wireErr(ERR_MALFORMED_SELECTOR, "domain+op selector truncated")
		}
		info, ok := t.LookupOp(b[0], b[1])
		if !ok {
			return nil, wireErr(ERR_UNKNOWN_SELECTOR, fmt.Sprintf("op (0x%02x,0x%02x)", b[0], b[1]))
		}
		payload := b[2:]
		if len(payload) < info.MinLen {
			return nil, wireErr(ERR_PAYLOAD_TOO_SHORT,
				fmt.Sprintf("%s: payload %d < min %d", info.Name, len(payload), info.MinLen))
		}
		return &Instruction{Form: FormDomainOp, Domain: b[0], Op: b[1], Name: info.Name, Payload: payload}, nil
	}

	return nil, wireErr(ERR_TABLE_INVALID, "table mode unset")
}

// EncodeTag prefixes payload with a tag selector, zero-padding the payload
// up to the tag's declared minimum.
func (t *OpTable) EncodeTag(tag uint8, payload []byte) ([]byte, error) {
	if t.mode != ModeTag {
		return nil, wireErr(ERR_TABLE_INVALID, "table is not tag-form")
	}
	info, ok := t.LookupTag(tag)
	if !ok {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, fmt.Sprintf("tag 0x%02x", tag))
	}
	out := make([]byte, 0, 1+max(len(payload), info.MinLen))
	out = append(out, tag)
	out = append(out, payload...)
	return padToMin(out, 1, info.MinLen), nil
}

// EncodeOp prefixes payload with a (domain, op) selector, zero-padding up
// to the declared minimum.
func (t *OpTable) EncodeOp(domain, op uint8, payload []byte) ([]byte, error) {
	if t.mode != ModeDomainOp {
		return nil, wireErr(ERR_TABLE_INVALID, "table is not domain+op form")
	}
	info, ok := t.LookupOp(domain, op)
	if !ok {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, fmt.Sprintf("op (0x%02x,0x%02x)", domain, op))
	}
	out := make([]byte, 0, 2+max(len(payload), info.MinLen))
	out = append(out, domain, op)
	out = append(out, payload...)
	return padToMin(out, 2, info.MinLen), nil
}

// EncodeTagFields runs the tag's declared layout over vals and emits the
// full instruction. The tag must carry a layout.
func (t *OpTable) EncodeTagFields(tag uint8, vals Values) ([]byte, error) {
	if t.mode != ModeTag {
		return nil, wireErr(ERR_TABLE_INVALID, "table is not tag-form")
	}
	info, ok := t.LookupTag(tag)
	if !ok {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, fmt.Sprintf("tag 0x%02x", tag))
	}
	if info.Layout == nil {
		return nil, wireErr(ERR_LAYOUT_INVALID, info.Name+": no layout declared")
	}
	payload, err := EncodeFields(info.Layout, vals)
	if err != nil {
		return nil, err
	}
	return t.EncodeTag(tag, payload)
}

// EncodeOpFields is EncodeTagFields for domain+op tables.
func (t *OpTable) EncodeOpFields(domain, op uint8, vals Values) ([]byte, error) {
	if t.mode != ModeDomainOp {
		return nil, wireErr(ERR_TABLE_INVALID, "table is not domain+op form")
	}
	info, ok := t.LookupOp(domain, op)
	if !ok {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, fmt.Sprintf("op (0x%02x,0x%02x)", domain, op))
	}
	if info.Layout == nil {
		return nil, wireErr(ERR_LAYOUT_INVALID, info.Name+": no layout declared")
	}
	payload, err := EncodeFields(info.Layout, vals)
	if err != nil {
		return nil, err
	}
	return t.EncodeOp(domain, op, payload)
}

// Fields decodes ins.Payload with the operation's declared layout.
func (t *OpTable) Fields(ins *Instruction) (Values, error) {
	var info OpInfo
	var ok bool
	switch ins.Form {
	case FormTag:
		info, ok = t.LookupTag(ins.Tag)
	case FormDomainOp:
		info, ok = t.LookupOp(ins.Domain, ins.Op)
	default:
		return nil, wireErr(ERR_LAYOUT_INVALID, "escape-form payloads are free-form")
	}
	if !ok {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, ins.Name)
	}
	if info.Layout == nil {
		return nil, wireErr(ERR_LAYOUT_INVALID, info.Name+": no layout declared")
	}
	return DecodeFields(info.Layout, ins.Payload)
}

func padToMin(buf []byte, selectorWidth, minLen int) []byte {
	for len(buf)-selectorWidth < minLen {
		buf = append(buf, 0)
	}
	return buf
}
