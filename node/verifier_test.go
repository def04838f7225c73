package node

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"styx.dev/ledger/protocol"
	"styx.dev/ledger/store"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	v, err := NewVerifier(cfg, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

func TestNewVerifierRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HashSuite = "crc32"
	if _, err := NewVerifier(cfg, nil, nil); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestDecodeMemoInstruction(t *testing.T) {
	v := newTestVerifier(t)

	msg := &protocol.PrivateMessage{Flags: 0x01, Payload: []byte("sealed")}
	msg.EncryptedRecipient[0] = 0x11
	msg.Sender[0] = 0x22
	raw, err := msg.Encode(v.TagTable())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	ins, err := v.DecodeMemoInstruction(raw)
	if err != nil {
		t.Fatalf("DecodeMemoInstruction: %v", err)
	}
	back, err := protocol.ParsePrivateMessage(v.TagTable(), ins)
	if err != nil {
		t.Fatalf("ParsePrivateMessage: %v", err)
	}
	if back.EncryptedRecipient != msg.EncryptedRecipient || back.Flags != msg.Flags {
		t.Fatalf("decoded message mismatch")
	}

	if _, err := v.DecodeMemoInstruction(nil); err == nil {
		t.Fatalf("expected error decoding empty instruction")
	}
}

func TestHandleClaimEndToEnd(t *testing.T) {
	v := newTestVerifier(t)
	s := v.Suite()

	var campaignID [32]byte
	campaignID[0] = 0xd0
	var recipient [32]byte
	recipient[0] = 0xd1
	var other [32]byte
	other[0] = 0xd2
	var nonce [16]byte
	nonce[0] = 0xd3

	leaves := [][32]byte{
		protocol.ClaimLeaf(s, campaignID, recipient, 750, nonce),
		protocol.ClaimLeaf(s, campaignID, other, 250, nonce),
	}
	tree := protocol.BuildTree(s, protocol.OrderSorted, leaves)

	err := v.db.PutCampaign(store.Campaign{
		ID:         campaignID,
		MerkleRoot: tree.Root(),
		ExpiryUnix: uint64(time.Now().Add(time.Hour).Unix()),
	})
	if err != nil {
		t.Fatalf("PutCampaign: %v", err)
	}

	p, err := tree.ProofFor(0)
	if err != nil {
		t.Fatalf("ProofFor: %v", err)
	}
	op := &protocol.ClaimOp{
		CampaignID: campaignID,
		Recipient:  recipient,
		Allocation: 750,
		Nonce16:    nonce,
		Proof:      p.Path,
	}
	raw, err := op.Encode(v.DomainTable())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if err := v.HandleClaim(raw, time.Now()); err != nil {
		t.Fatalf("HandleClaim: %v", err)
	}
	err = v.HandleClaim(raw, time.Now())
	if !protocol.IsCode(err, protocol.ERR_DOUBLE_SPEND) {
		t.Fatalf("replayed claim: err=%v want %s", err, protocol.ERR_DOUBLE_SPEND)
	}
}

func TestSpendNote(t *testing.T) {
	v := newTestVerifier(t)
	s := v.Suite()

	var owner, asset, nonce, secret [32]byte
	owner[0] = 0xe0
	asset[0] = 0xe1
	nonce[0] = 0xe2
	secret[0] = 0xe3
	commitment := protocol.Commit(s, owner, asset, 42, nonce)

	var filler [32]byte
	filler[0] = 0xe4
	tree := protocol.BuildTree(s, v.Order(), [][32]byte{commitment, filler})
	const epoch = uint64(9)
	if err := v.db.PutNoteRoot(epoch, tree.Root()); err != nil {
		t.Fatalf("PutNoteRoot: %v", err)
	}
	proof, err := tree.ProofFor(0)
	if err != nil {
		t.Fatalf("ProofFor: %v", err)
	}

	// Unpublished epoch and non-member commitment both fail closed.
	if err := v.SpendNote(epoch+1, commitment, secret, proof); !protocol.IsCode(err, protocol.ERR_PROOF_INVALID) {
		t.Fatalf("unknown epoch: err=%v", err)
	}
	if err := v.SpendNote(epoch, filler, secret, proof); !protocol.IsCode(err, protocol.ERR_PROOF_INVALID) {
		t.Fatalf("wrong commitment: err=%v", err)
	}

	if err := v.SpendNote(epoch, commitment, secret, proof); err != nil {
		t.Fatalf("SpendNote: %v", err)
	}
	err = v.SpendNote(epoch, commitment, secret, proof)
	if !protocol.IsCode(err, protocol.ERR_DOUBLE_SPEND) {
		t.Fatalf("double spend: err=%v want %s", err, protocol.ERR_DOUBLE_SPEND)
	}
}
