package protocol

import (
	"fmt"

	"styx.dev/ledger/crypto"
)

// Typed views over the v1 operations. Each type round-trips through the
// operation's declared layout; none of them bypass the generic codec.

type PrivateMessage struct {
	Flags              uint8
	EncryptedRecipient [32]byte
	Sender             [32]byte
	Payload            []byte
}

// Seal prepares a message for the wire: the recipient handle is masked
// into EncryptedRecipient and, when FlagEncrypt is set, Payload is
// replaced by its AEAD ciphertext under the sender/recipient shared key.
func (m *PrivateMessage) Seal(s crypto.Suite, recipient [32]byte) error {
	m.EncryptedRecipient = MaskRecipient(s, m.Sender, recipient)
	if m.Flags&FlagEncrypt == 0 {
		return nil
	}
	key := SharedKey(s, m.Sender, recipient)
	nonce := DeriveNonce(s, tagMsgNonce, m.EncryptedRecipient[:])
	ct, err := SealPayload(key, nonce, m.Payload)
	if err != nil {
		return err
	}
	m.Payload = ct
	return nil
}

// Open reverses Seal: it unmasks and returns the recipient handle and,
// when FlagEncrypt is set, authenticates and decrypts Payload in place.
func (m *PrivateMessage) Open(s crypto.Suite) ([32]byte, error) {
	recipient := MaskRecipient(s, m.Sender, m.EncryptedRecipient)
	if m.Flags&FlagEncrypt == 0 {
		return recipient, nil
	}
	key := SharedKey(s, m.Sender, recipient)
	nonce := DeriveNonce(s, tagMsgNonce, m.EncryptedRecipient[:])
	pt, err := OpenPayload(key, nonce, m.Payload)
	if err != nil {
		return recipient, err
	}
	m.Payload = pt
	return recipient, nil
}

func (m *PrivateMessage) Encode(t *OpTable) ([]byte, error) {
	vals := make(Values, 4)
	vals.PutU8("flags", m.Flags)
	vals.PutBytes("encrypted_recipient", m.EncryptedRecipient[:])
	vals.PutBytes("sender", m.Sender[:])
	vals.PutBytes("payload", m.Payload)
	return t.EncodeTagFields(TagPrivateMessage, vals)
}

func ParsePrivateMessage(t *OpTable, ins *Instruction) (*PrivateMessage, error) {
	if ins.Form != FormTag || ins.Tag != TagPrivateMessage {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, "not a PrivateMessage instruction")
	}
	vals, err := t.Fields(ins)
	if err != nil {
		return nil, err
	}
	m := &PrivateMessage{Flags: vals.U8("flags"), Payload: vals.Bytes("payload")}
	m.EncryptedRecipient, _ = vals.Bytes32("encrypted_recipient")
	m.Sender, _ = vals.Bytes32("sender")
	return m, nil
}

type RoutedMessage struct {
	Flags            uint8
	HopCount         uint8
	SessionID        [32]byte
	CurrentHop       uint8
	NextHopEncrypted [32]byte
	LayeredPayload   []byte
}

func (m *RoutedMessage) Encode(t *OpTable) ([]byte, error) {
	if int(m.HopCount) > MaxHops {
		return nil, wireErr(ERR_FIELD_INVALID, fmt.Sprintf("hop count %d exceeds %d", m.HopCount, MaxHops))
	}
	vals := make(Values, 6)
	vals.PutU8("flags", m.Flags)
	vals.PutU8("hop_count", m.HopCount)
	vals.PutBytes("session_id", m.SessionID[:])
	vals.PutU8("current_hop", m.CurrentHop)
	vals.PutBytes("next_hop_encrypted", m.NextHopEncrypted[:])
	vals.PutBytes("layered_payload", m.LayeredPayload)
	return t.EncodeTagFields(TagRoutedMessage, vals)
}

func ParseRoutedMessage(t *OpTable, ins *Instruction) (*RoutedMessage, error) {
	if ins.Form != FormTag || ins.Tag != TagRoutedMessage {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, "not a RoutedMessage instruction")
	}
	vals, err := t.Fields(ins)
	if err != nil {
		return nil, err
	}
	m := &RoutedMessage{
		Flags:          vals.U8("flags"),
		HopCount:       vals.U8("hop_count"),
		CurrentHop:     vals.U8("current_hop"),
		LayeredPayload: vals.Bytes("layered_payload"),
	}
	m.SessionID, _ = vals.Bytes32("session_id")
	m.NextHopEncrypted, _ = vals.Bytes32("next_hop_encrypted")
	if int(m.HopCount) > MaxHops {
		return nil, wireErr(ERR_FIELD_INVALID, fmt.Sprintf("hop count %d exceeds %d", m.HopCount, MaxHops))
	}
	return m, nil
}

type PrivateTransfer struct {
	Flags              uint8
	EncryptedRecipient [32]byte
	Sender             [32]byte
	EncryptedAmount    uint64
	AmountNonce        [8]byte
	EncryptedMemo      []byte
}

func (m *PrivateTransfer) Encode(t *OpTable) ([]byte, error) {
	vals := make(Values, 6)
	vals.PutU8("flags", m.Flags)
	vals.PutBytes("encrypted_recipient", m.EncryptedRecipient[:])
	vals.PutBytes("sender", m.Sender[:])
	vals.PutU64("encrypted_amount", m.EncryptedAmount)
	vals.PutBytes("amount_nonce", m.AmountNonce[:])
	vals.PutBytes("encrypted_memo", m.EncryptedMemo)
	return t.EncodeTagFields(TagPrivateTransfer, vals)
}

func ParsePrivateTransfer(t *OpTable, ins *Instruction) (*PrivateTransfer, error) {
	if ins.Form != FormTag || ins.Tag != TagPrivateTransfer {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, "not a PrivateTransfer instruction")
	}
	vals, err := t.Fields(ins)
	if err != nil {
		return nil, err
	}
	m := &PrivateTransfer{
		Flags:           vals.U8("flags"),
		EncryptedAmount: vals.U64("encrypted_amount"),
		EncryptedMemo:   vals.Bytes("encrypted_memo"),
	}
	m.EncryptedRecipient, _ = vals.Bytes32("encrypted_recipient")
	m.Sender, _ = vals.Bytes32("sender")
	copy(m.AmountNonce[:], vals.Bytes("amount_nonce"))
	return m, nil
}

type RatchetMessage struct {
	Flags           uint8
	SessionID       [32]byte
	Counter         uint64
	EphemeralPubkey [32]byte
	Ciphertext      []byte
}

func (m *RatchetMessage) Encode(t *OpTable) ([]byte, error) {
	vals := make(Values, 5)
	vals.PutU8("flags", m.Flags)
	vals.PutBytes("session_id", m.SessionID[:])
	vals.PutU64("counter", m.Counter)
	vals.PutBytes("ephemeral_pubkey", m.EphemeralPubkey[:])
	vals.PutBytes("ciphertext", m.Ciphertext)
	return t.EncodeTagFields(TagRatchetMessage, vals)
}

func ParseRatchetMessage(t *OpTable, ins *Instruction) (*RatchetMessage, error) {
	if ins.Form != FormTag || ins.Tag != TagRatchetMessage {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, "not a RatchetMessage instruction")
	}
	vals, err := t.Fields(ins)
	if err != nil {
		return nil, err
	}
	m := &RatchetMessage{
		Flags:      vals.U8("flags"),
		Counter:    vals.U64("counter"),
		Ciphertext: vals.Bytes("ciphertext"),
	}
	m.SessionID, _ = vals.Bytes32("session_id")
	m.EphemeralPubkey, _ = vals.Bytes32("ephemeral_pubkey")
	return m, nil
}

// Reveal scopes for ComplianceReveal.
const (
	RevealFull      = 0
	RevealAmount    = 1
	RevealRecipient = 2
	RevealMetadata  = 3
)

type ComplianceReveal struct {
	Flags         uint8
	MessageID     [32]byte
	Auditor       [32]byte
	DisclosureKey [32]byte
	RevealType    uint8
}

func (m *ComplianceReveal) Encode(t *OpTable) ([]byte, error) {
	if m.RevealType > RevealMetadata {
		return nil, wireErr(ERR_FIELD_INVALID, fmt.Sprintf("unknown reveal type %d", m.RevealType))
	}
	vals := make(Values, 5)
	vals.PutU8("flags", m.Flags)
	vals.PutBytes("message_id", m.MessageID[:])
	vals.PutBytes("auditor", m.Auditor[:])
	vals.PutBytes("disclosure_key", m.DisclosureKey[:])
	vals.PutU8("reveal_type", m.RevealType)
	return t.EncodeTagFields(TagComplianceReveal, vals)
}

func ParseComplianceReveal(t *OpTable, ins *Instruction) (*ComplianceReveal, error) {
	if ins.Form != FormTag || ins.Tag != TagComplianceReveal {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, "not a ComplianceReveal instruction")
	}
	vals, err := t.Fields(ins)
	if err != nil {
		return nil, err
	}
	m := &ComplianceReveal{
		Flags:      vals.U8("flags"),
		RevealType: vals.U8("reveal_type"),
	}
	m.MessageID, _ = vals.Bytes32("message_id")
	m.Auditor, _ = vals.Bytes32("auditor")
	m.DisclosureKey, _ = vals.Bytes32("disclosure_key")
	return m, nil
}

type ClaimOp struct {
	CampaignID [32]byte
	Recipient  [32]byte
	Allocation uint64
	Nonce16    [16]byte
	Proof      [][32]byte
}

func (m *ClaimOp) Encode(t *OpTable) ([]byte, error) {
	vals := make(Values, 5)
	vals.PutBytes("campaign_id", m.CampaignID[:])
	vals.PutBytes("recipient", m.Recipient[:])
	vals.PutU64("allocation", m.Allocation)
	vals.PutBytes("nonce16", m.Nonce16[:])
	vals.PutBytes("proof", EncodeProofSiblings(m.Proof))
	return t.EncodeOpFields(DomainEscrow, OpClaim, vals)
}

func ParseClaimOp(t *OpTable, ins *Instruction) (*ClaimOp, error) {
	if ins.Form != FormDomainOp || ins.Domain != DomainEscrow || ins.Op != OpClaim {
		return nil, wireErr(ERR_UNKNOWN_SELECTOR, "not a Claim instruction")
	}
	vals, err := t.Fields(ins)
	if err != nil {
		return nil, err
	}
	m := &ClaimOp{Allocation: vals.U64("allocation")}
	m.CampaignID, _ = vals.Bytes32("campaign_id")
	m.Recipient, _ = vals.Bytes32("recipient")
	copy(m.Nonce16[:], vals.Bytes("nonce16"))
	m.Proof, err = DecodeProofSiblings(vals.Bytes("proof"))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// EncodeProofSiblings flattens a sibling path for the wire. The sorted
// node-hash convention needs no direction bits, so a proof is just the
// concatenated 32-byte siblings.
func EncodeProofSiblings(path [][32]byte) []byte {
	out := make([]byte, 0, 32*len(path))
	for _, p := range path {
		out = append(out, p[:]...)
	}
	return out
}

func DecodeProofSiblings(b []byte) ([][32]byte, error) {
	if len(b)%32 != 0 {
		return nil, wireErr(ERR_FIELD_INVALID, "proof bytes not a multiple of 32")
	}
	out := make([][32]byte, len(b)/32)
	for i := range out {
		copy(out[i][:], b[32*i:32*i+32])
	}
	return out, nil
}

// SortedProof wraps a bare sibling path as a Proof for VerifyProof under
// OrderSorted.
func SortedProof(path [][32]byte) Proof {
	return Proof{Path: path, Directions: make([]bool, len(path))}
}
