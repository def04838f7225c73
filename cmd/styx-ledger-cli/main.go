// styx-ledger-cli is an offline protocol tool: it reads one JSON request
// from stdin, runs the named codec or accumulator operation, and writes
// one JSON response to stdout. It never touches the network or a wallet.
package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"styx.dev/ledger/crypto"
	"styx.dev/ledger/node"
	"styx.dev/ledger/protocol"
	"styx.dev/ledger/protocol/envelope"
)

type Request struct {
	Op string `json:"op"`

	Suite string `json:"suite,omitempty"`
	Order string `json:"order,omitempty"`

	InstructionHex string   `json:"instruction_hex,omitempty"`
	Table          string   `json:"table,omitempty"` // "tag" (default) or "domain"
	OwnerHex       string   `json:"owner,omitempty"`
	AssetHex       string   `json:"asset,omitempty"`
	Amount         uint64   `json:"amount,omitempty"`
	NonceHex       string   `json:"nonce,omitempty"`
	CommitmentHex  string   `json:"commitment,omitempty"`
	SecretHex      string   `json:"secret,omitempty"`
	Leaves         []string `json:"leaves,omitempty"`
	LeafIndex      int      `json:"leaf_index,omitempty"`
	Memo           string   `json:"memo,omitempty"`
}

type Response struct {
	Ok  bool   `json:"ok"`
	Err string `json:"err,omitempty"`

	Name       string   `json:"name,omitempty"`
	Form       string   `json:"form,omitempty"`
	PayloadHex string   `json:"payload_hex,omitempty"`
	HashHex    string   `json:"hash,omitempty"`
	RootHex    string   `json:"root,omitempty"`
	Height     int      `json:"height,omitempty"`
	Capacity   int      `json:"capacity,omitempty"`
	ProofHex   []string `json:"proof,omitempty"`
	Directions []bool   `json:"directions,omitempty"`
	Kind       uint8    `json:"kind,omitempty"`
	BodyHex    string   `json:"body_hex,omitempty"`
}

func writeResp(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func fail(err error) Response {
	var we *protocol.WireError
	if errors.As(err, &we) {
		return Response{Ok: false, Err: string(we.Code)}
	}
	return Response{Ok: false, Err: err.Error()}
}

func parseHex32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("bad hex")
	}
	if len(b) != 32 {
		return out, fmt.Errorf("want 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

// defaults supplies suite and order when a request leaves them blank;
// -config replaces it with a loaded profile.
var defaults = node.DefaultConfig()

func suiteFor(req Request) (crypto.Suite, error) {
	name := req.Suite
	if name == "" {
		name = defaults.HashSuite
	}
	return crypto.NewSuite(name)
}

func orderFor(req Request) (protocol.SiblingOrder, error) {
	name := req.Order
	if name == "" {
		name = defaults.SiblingOrder
	}
	return node.ResolveOrder(name)
}

func main() {
	configPath := flag.String("config", "", "deployment profile JSON; sets the default suite and sibling order")
	flag.Parse()

	if *configPath != "" {
		cfg, err := node.LoadConfig(*configPath)
		if err != nil {
			writeResp(os.Stdout, Response{Ok: false, Err: err.Error()})
			os.Exit(1)
		}
		defaults = cfg
	}

	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResp(os.Stdout, Response{Ok: false, Err: fmt.Sprintf("bad request: %v", err)})
		return
	}
	writeResp(os.Stdout, handle(req))
}

func handle(req Request) Response {
	switch req.Op {
	case "decode":
		return handleDecode(req)
	case "commit":
		return handleCommit(req)
	case "nullify":
		return handleNullify(req)
	case "merkle_root":
		return handleMerkleRoot(req)
	case "merkle_prove":
		return handleMerkleProve(req)
	case "envelope_decode":
		return handleEnvelopeDecode(req)
	}
	return Response{Ok: false, Err: fmt.Sprintf("unknown op %q", req.Op)}
}

func handleDecode(req Request) Response {
	b, err := hex.DecodeString(req.InstructionHex)
	if err != nil {
		return Response{Ok: false, Err: "bad hex"}
	}
	var table *protocol.OpTable
	switch req.Table {
	case "", "tag":
		table, err = protocol.TagTableV1()
	case "domain":
		table, err = protocol.DomainTableV1()
	default:
		return Response{Ok: false, Err: fmt.Sprintf("bad table %q", req.Table)}
	}
	if err != nil {
		return fail(err)
	}
	ins, err := table.Decode(b)
	if err != nil {
		return fail(err)
	}
	return Response{
		Ok:         true,
		Name:       ins.Name,
		Form:       ins.Form.String(),
		PayloadHex: hex.EncodeToString(ins.Payload),
	}
}

func handleCommit(req Request) Response {
	s, err := suiteFor(req)
	if err != nil {
		return fail(err)
	}
	owner, err := parseHex32(req.OwnerHex)
	if err != nil {
		return Response{Ok: false, Err: "owner: " + err.Error()}
	}
	asset, err := parseHex32(req.AssetHex)
	if err != nil {
		return Response{Ok: false, Err: "asset: " + err.Error()}
	}
	var nonce [32]byte
	if req.NonceHex == "" {
		nonce, err = protocol.NewNonce(s)
		if err != nil {
			return fail(err)
		}
	} else if nonce, err = parseHex32(req.NonceHex); err != nil {
		return Response{Ok: false, Err: "nonce: " + err.Error()}
	}
	cm := protocol.Commit(s, owner, asset, req.Amount, nonce)
	return Response{Ok: true, HashHex: hex.EncodeToString(cm[:])}
}

func handleNullify(req Request) Response {
	s, err := suiteFor(req)
	if err != nil {
		return fail(err)
	}
	cm, err := parseHex32(req.CommitmentHex)
	if err != nil {
		return Response{Ok: false, Err: "commitment: " + err.Error()}
	}
	secret, err := parseHex32(req.SecretHex)
	if err != nil {
		return Response{Ok: false, Err: "secret: " + err.Error()}
	}
	nf := protocol.Nullify(s, cm, secret)
	return Response{Ok: true, HashHex: hex.EncodeToString(nf[:])}
}

func parseLeaves(hexes []string) ([][32]byte, error) {
	leaves := make([][32]byte, 0, len(hexes))
	for _, h := range hexes {
		leaf, err := parseHex32(h)
		if err != nil {
			return nil, fmt.Errorf("leaf: %v", err)
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}

func handleMerkleRoot(req Request) Response {
	s, err := suiteFor(req)
	if err != nil {
		return fail(err)
	}
	order, err := orderFor(req)
	if err != nil {
		return fail(err)
	}
	leaves, err := parseLeaves(req.Leaves)
	if err != nil {
		return Response{Ok: false, Err: err.Error()}
	}
	tree := protocol.BuildTree(s, order, leaves)
	root := tree.Root()
	return Response{
		Ok:       true,
		RootHex:  hex.EncodeToString(root[:]),
		Height:   tree.Height(),
		Capacity: tree.Capacity(),
	}
}

func handleMerkleProve(req Request) Response {
	s, err := suiteFor(req)
	if err != nil {
		return fail(err)
	}
	order, err := orderFor(req)
	if err != nil {
		return fail(err)
	}
	leaves, err := parseLeaves(req.Leaves)
	if err != nil {
		return Response{Ok: false, Err: err.Error()}
	}
	tree := protocol.BuildTree(s, order, leaves)
	proof, err := tree.ProofFor(req.LeafIndex)
	if err != nil {
		return fail(err)
	}
	root := tree.Root()
	resp := Response{
		Ok:         true,
		RootHex:    hex.EncodeToString(root[:]),
		Height:     tree.Height(),
		Directions: proof.Directions,
	}
	for _, p := range proof.Path {
		resp.ProofHex = append(resp.ProofHex, hex.EncodeToString(p[:]))
	}
	return resp
}

func handleEnvelopeDecode(req Request) Response {
	env, err := envelope.DecodeMemo(req.Memo)
	if err != nil {
		return Response{Ok: false, Err: err.Error()}
	}
	return Response{
		Ok:      true,
		Kind:    uint8(env.Kind),
		BodyHex: hex.EncodeToString(env.Body),
	}
}
