package protocol

// Derived-address seed literals. The host ledger's deterministic address
// derivation consumes these; this module only fixes the seed bytes and
// their concatenation order.
var (
	seedCampaign  = []byte("campaign")
	seedEscrow    = []byte("escrow")
	seedNullifier = []byte("nullifier")
)

// CampaignSeed addresses the campaign record for an id.
func CampaignSeed(campaignID [32]byte) [][]byte {
	return [][]byte{seedCampaign, campaignID[:]}
}

// EscrowSeed addresses the escrow vault owned by a campaign.
func EscrowSeed(campaignAddr [32]byte) [][]byte {
	return [][]byte{seedEscrow, campaignAddr[:]}
}

// NullifierSeed addresses the spent-marker record for a nullifier value.
// Record creation at this address must be idempotent on the host: create
// once, fail if present.
func NullifierSeed(campaignAddr, nullifier [32]byte) [][]byte {
	return [][]byte{seedNullifier, campaignAddr[:], nullifier[:]}
}

// SeedBytes concatenates seed parts in their fixed order.
func SeedBytes(parts [][]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
