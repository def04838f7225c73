package protocol

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestLayoutMinLenDerivation(t *testing.T) {
	cases := []struct {
		name   string
		layout Layout
		want   int
	}{
		{"PrivateMessage", privateMessageLayout(), 68},
		{"RoutedMessage", routedMessageLayout(), 70},
		{"PrivateTransfer", privateTransferLayout(), 84},
		{"RatchetMessage", ratchetMessageLayout(), 76},
		{"ComplianceReveal", complianceRevealLayout(), 98},
		{"InitCampaign", initCampaignLayout(), 168},
		{"Deposit", depositLayout(), 40},
		{"Claim", claimLayout(), 90},
	}
	for _, tc := range cases {
		if got := tc.layout.MinLen(); got != tc.want {
			t.Fatalf("%s: MinLen=%d want=%d", tc.name, got, tc.want)
		}
		if err := tc.layout.Validate(); err != nil {
			t.Fatalf("%s: Validate: %v", tc.name, err)
		}
	}
}

func TestLayoutValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		layout Layout
	}{
		{"unnamed field", Layout{{Kind: KindU8}}},
		{"duplicate name", Layout{{Name: "a", Kind: KindU8}, {Name: "a", Kind: KindU16}}},
		{"bytes without width", Layout{{Name: "h", Kind: KindBytes}}},
		{"int with width", Layout{{Name: "n", Kind: KindU32, Width: 4}}},
		{"var bad prefix", Layout{{Name: "v", Kind: KindVar, PrefixWidth: 3}}},
	}
	for _, tc := range cases {
		if err := tc.layout.Validate(); !IsCode(err, ERR_LAYOUT_INVALID) {
			t.Fatalf("%s: got err=%v, want ERR_LAYOUT_INVALID", tc.name, err)
		}
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	layout := Layout{
		{Name: "kind", Kind: KindU8},
		{Name: "count", Kind: KindU16},
		{Name: "epoch", Kind: KindU32},
		{Name: "amount", Kind: KindU64},
		{Name: "owner", Kind: KindBytes, Width: 32},
		{Name: "blob", Kind: KindVar, PrefixWidth: 2},
		{Name: "note", Kind: KindVar, PrefixWidth: 1},
	}
	if err := layout.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	in := make(Values, 7)
	in.PutU8("kind", 0x07)
	in.PutU16("count", 515)
	in.PutU32("epoch", 0xdeadbeef)
	in.PutU64("amount", 1<<40|42)
	in.PutBytes("owner", bytes.Repeat([]byte{0x11}, 32))
	in.PutBytes("blob", []byte("variable payload"))
	in.PutBytes("note", nil)

	enc, err := EncodeFields(layout, in)
	if err != nil {
		t.Fatalf("EncodeFields: %v", err)
	}
	out, err := DecodeFields(layout, enc)
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}

	if out.U8("kind") != 0x07 || out.U16("count") != 515 || out.U32("epoch") != 0xdeadbeef {
		t.Fatalf("int fields mismatch: %v", out)
	}
	if out.U64("amount") != 1<<40|42 {
		t.Fatalf("amount mismatch: %d", out.U64("amount"))
	}
	if !bytes.Equal(out.Bytes("owner"), in.Bytes("owner")) {
		t.Fatalf("owner mismatch")
	}
	if !bytes.Equal(out.Bytes("blob"), []byte("variable payload")) {
		t.Fatalf("blob mismatch")
	}
	if len(out.Bytes("note")) != 0 {
		t.Fatalf("note should be empty, got %x", out.Bytes("note"))
	}
}

func TestEncodeFieldsMissingField(t *testing.T) {
	layout := Layout{{Name: "owner", Kind: KindBytes, Width: 32}}
	_, err := EncodeFields(layout, Values{})
	if !IsCode(err, ERR_FIELD_MISSING) {
		t.Fatalf("got err=%v, want ERR_FIELD_MISSING", err)
	}
}

func TestEncodeFieldsWidthMismatch(t *testing.T) {
	layout := Layout{{Name: "owner", Kind: KindBytes, Width: 32}}
	vals := Values{}
	vals.PutBytes("owner", make([]byte, 31))
	_, err := EncodeFields(layout, vals)
	if !IsCode(err, ERR_FIELD_INVALID) {
		t.Fatalf("got err=%v, want ERR_FIELD_INVALID", err)
	}
}

func TestEncodeFieldsVarOverflow(t *testing.T) {
	layout := Layout{{Name: "v", Kind: KindVar, PrefixWidth: 1}}
	vals := Values{}
	vals.PutBytes("v", make([]byte, 256))
	_, err := EncodeFields(layout, vals)
	if !IsCode(err, ERR_FIELD_INVALID) {
		t.Fatalf("got err=%v, want ERR_FIELD_INVALID", err)
	}
}

func TestDecodeFieldsTruncated(t *testing.T) {
	layout := Layout{
		{Name: "owner", Kind: KindBytes, Width: 32},
		{Name: "v", Kind: KindVar, PrefixWidth: 2},
	}
	// 32-byte owner, then a prefix declaring more bytes than remain.
	buf := make([]byte, 32)
	buf = binary.LittleEndian.AppendUint16(buf, 10)
	buf = append(buf, 1, 2, 3)
	_, err := DecodeFields(layout, buf)
	if !IsCode(err, ERR_PAYLOAD_TOO_SHORT) {
		t.Fatalf("got err=%v, want ERR_PAYLOAD_TOO_SHORT", err)
	}

	// Length prefix itself cut off.
	_, err = DecodeFields(layout, append(make([]byte, 32), 0x05))
	if !IsCode(err, ERR_PAYLOAD_TOO_SHORT) {
		t.Fatalf("truncated prefix: got err=%v, want ERR_PAYLOAD_TOO_SHORT", err)
	}
}

func TestDecodeFieldsToleratesTrailingPadding(t *testing.T) {
	layout := Layout{{Name: "v", Kind: KindVar, PrefixWidth: 2}}
	vals := Values{}
	vals.PutBytes("v", []byte{0xaa})
	enc, err := EncodeFields(layout, vals)
	if err != nil {
		t.Fatalf("EncodeFields: %v", err)
	}
	padded := append(enc, 0, 0, 0)
	out, err := DecodeFields(layout, padded)
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}
	if !bytes.Equal(out.Bytes("v"), []byte{0xaa}) {
		t.Fatalf("v mismatch: %x", out.Bytes("v"))
	}
}
