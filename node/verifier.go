package node

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"styx.dev/ledger/crypto"
	"styx.dev/ledger/protocol"
	"styx.dev/ledger/store"
)

// Verifier is the receive path: decode an instruction, recompute what it
// claims, and apply the spend if everything holds. It owns no state of
// its own beyond the store handle.
type Verifier struct {
	cfg    Config
	suite  crypto.Suite
	order  protocol.SiblingOrder
	tags   *protocol.OpTable
	ops    *protocol.OpTable
	db     *store.DB
	logger *slog.Logger
}

func NewVerifier(cfg Config, db *store.DB, logger *slog.Logger) (*Verifier, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	suite, err := crypto.NewSuite(cfg.HashSuite)
	if err != nil {
		return nil, err
	}
	order, err := ResolveOrder(cfg.SiblingOrder)
	if err != nil {
		return nil, err
	}
	tags, err := protocol.TagTableV1()
	if err != nil {
		return nil, err
	}
	ops, err := protocol.DomainTableV1()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{cfg: cfg, suite: suite, order: order, tags: tags, ops: ops, db: db, logger: logger}, nil
}

func (v *Verifier) Suite() crypto.Suite            { return v.suite }
func (v *Verifier) Order() protocol.SiblingOrder   { return v.order }
func (v *Verifier) TagTable() *protocol.OpTable    { return v.tags }
func (v *Verifier) DomainTable() *protocol.OpTable { return v.ops }

// DecodeMemoInstruction decodes against the memo-program tag table.
func (v *Verifier) DecodeMemoInstruction(b []byte) (*protocol.Instruction, error) {
	return v.tags.Decode(b)
}

// DecodeLedgerInstruction decodes against the escrow/relay domain table.
func (v *Verifier) DecodeLedgerInstruction(b []byte) (*protocol.Instruction, error) {
	return v.ops.Decode(b)
}

// HandleClaim decodes and settles an escrow claim instruction.
func (v *Verifier) HandleClaim(b []byte, now time.Time) error {
	ins, err := v.ops.Decode(b)
	if err != nil {
		return err
	}
	op, err := protocol.ParseClaimOp(v.ops, ins)
	if err != nil {
		return err
	}
	if err := v.db.Claim(v.suite, op, now); err != nil {
		return err
	}
	v.logger.Info("claim settled",
		"campaign", fmt.Sprintf("%x", op.CampaignID[:4]),
		"allocation", op.Allocation)
	return nil
}

// SpendNote verifies a note's membership against a published epoch root
// and records its nullifier. At most one spend of a commitment can ever
// succeed.
func (v *Verifier) SpendNote(epoch uint64, commitment, secret [32]byte, proof protocol.Proof) error {
	root, ok, err := v.db.GetNoteRoot(epoch)
	if err != nil {
		return err
	}
	if !ok {
		return &protocol.WireError{Code: protocol.ERR_PROOF_INVALID, Msg: fmt.Sprintf("no root for epoch %d", epoch)}
	}
	if !protocol.VerifyProof(v.suite, v.order, commitment, proof, root) {
		return &protocol.WireError{Code: protocol.ERR_PROOF_INVALID, Msg: "commitment not in epoch root"}
	}
	nf := protocol.Nullify(v.suite, commitment, secret)
	var epochBytes [8]byte
	binary.LittleEndian.PutUint64(epochBytes[:], epoch)
	scope := v.suite.Hash256([]byte("styx:epoch:v1"), epochBytes[:])
	if err := v.db.RecordNullifier(scope, nf); err != nil {
		return err
	}
	v.logger.Info("note spent", "epoch", epoch, "nullifier", fmt.Sprintf("%x", nf[:4]))
	return nil
}
