package protocol

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20poly1305"

	"styx.dev/ledger/crypto"
)

// Key-derivation domains for the stealth and ratchet helpers.
var (
	tagTransferMask = []byte("STYX_TRANSFER_V1")
	tagMetadataKey  = []byte("STYX_METADATA_KEY_V3")
	tagRatchetChain = []byte("STYX_RATCHET_CHAIN_V1")
	tagRatchetMsg   = []byte("STYX_RATCHET_MSG_V1")
	tagMsgNonce     = []byte("STYX_MSG_NONCE_V3")
)

// MaskRecipient XORs a recipient handle with a sender-derived pad. The
// operation is its own inverse; decoding a PrivateMessage applies it to
// the encrypted_recipient field.
func MaskRecipient(s crypto.Suite, sender, recipient [32]byte) [32]byte {
	pad := s.Hash256(tagMetadataKey, sender[:])
	var out [32]byte
	for i := range out {
		out[i] = recipient[i] ^ pad[i]
	}
	return out
}

// TransferMask derives the u64 pad hiding a transfer amount:
// encrypted_amount = amount XOR TransferMask(...).
func TransferMask(s crypto.Suite, sender, recipient [32]byte, amountNonce [8]byte) uint64 {
	h := s.Hash256(tagTransferMask, sender[:], recipient[:], amountNonce[:])
	return binary.LittleEndian.Uint64(h[:8])
}

// SharedKey derives the symmetric key two handles share. Both sides
// compute it with the same argument order: sender first.
func SharedKey(s crypto.Suite, sender, recipient [32]byte) [32]byte {
	return s.Hash256(sender[:], recipient[:])
}

// DeriveNonce derives a 96-bit AEAD nonce from a domain string and key
// material. With the message-nonce domain the material is the
// encrypted_recipient field, so each (sender, recipient) pair gets a
// distinct nonce without carrying one on the wire.
func DeriveNonce(s crypto.Suite, domain, material []byte) [12]byte {
	h := s.Hash256(domain, material)
	var n [12]byte
	copy(n[:], h[:12])
	return n
}

// SealPayload encrypts plaintext under ChaCha20-Poly1305.
func SealPayload(key [32]byte, nonce [12]byte, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, wireErr(ERR_FIELD_INVALID, "aead init: "+err.Error())
	}
	return aead.Seal(nil, nonce[:], plaintext, nil), nil
}

// OpenPayload authenticates and decrypts a sealed payload. A wrong key,
// wrong nonce or tampered ciphertext all fail the same way.
func OpenPayload(key [32]byte, nonce [12]byte, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, wireErr(ERR_FIELD_INVALID, "aead init: "+err.Error())
	}
	pt, err := aead.Open(nil, nonce[:], ciphertext, nil)
	if err != nil {
		return nil, wireErr(ERR_FIELD_INVALID, "payload authentication failed")
	}
	return pt, nil
}

// RatchetStep advances a forward-secrecy chain: from one chain key and
// message counter it derives the next chain key and the per-message key.
// Old message keys cannot be recovered once the chain key is discarded.
func RatchetStep(s crypto.Suite, chainKey [32]byte, counter uint64) (next, msgKey [32]byte) {
	ctr := binary.LittleEndian.AppendUint64(nil, counter)
	next = s.Hash256(tagRatchetChain, chainKey[:], ctr, []byte{0x01})
	msgKey = s.Hash256(tagRatchetMsg, chainKey[:], ctr, []byte{0x02})
	return next, msgKey
}
