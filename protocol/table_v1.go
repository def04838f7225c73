package protocol

// Protocol v1 selector tables.
//
// Tag space carries the private-memo operations; the escrow and relay
// programs use the two-byte domain+op form. Minimum lengths are derived
// from the layouts, with the historical declared values pinned alongside
// so a drifting layout fails table validation instead of shipping.

const TableVersionV1 = 1

// Memo-program tags. 0x01 and 0x02 belonged to retired v2 operations and
// stay unassigned.
const (
	TagPrivateMessage   = 0x03
	TagRoutedMessage    = 0x04
	TagPrivateTransfer  = 0x05
	TagRatchetMessage   = 0x07
	TagComplianceReveal = 0x08
)

// Escrow/relay domains.
const (
	DomainEscrow = 0x01
	DomainRelay  = 0x02
)

const (
	OpInitCampaign = 0x01
	OpDeposit      = 0x02
	OpClaim        = 0x03

	OpRelayEnvelope = 0x01
)

// Flags shared by the memo-program payloads. Every memo payload begins
// with a flags byte; decoders must not skip it.
const (
	FlagEncrypt           = 0x01
	FlagStealth           = 0x02
	FlagComplianceEnabled = 0x10
)

// MaxHops bounds routed-message relay chains.
const MaxHops = 5

func privateMessageLayout() Layout {
	return Layout{
		{Name: "flags", Kind: KindU8},
		{Name: "encrypted_recipient", Kind: KindBytes, Width: 32},
		{Name: "sender", Kind: KindBytes, Width: 32},
		{Name: "payload", Kind: KindVar, PrefixWidth: 2, MinBody: 1},
	}
}

func routedMessageLayout() Layout {
	return Layout{
		{Name: "flags", Kind: KindU8},
		{Name: "hop_count", Kind: KindU8},
		{Name: "session_id", Kind: KindBytes, Width: 32},
		{Name: "current_hop", Kind: KindU8},
		{Name: "next_hop_encrypted", Kind: KindBytes, Width: 32},
		{Name: "layered_payload", Kind: KindVar, PrefixWidth: 2, MinBody: 1},
	}
}

func privateTransferLayout() Layout {
	return Layout{
		{Name: "flags", Kind: KindU8},
		{Name: "encrypted_recipient", Kind: KindBytes, Width: 32},
		{Name: "sender", Kind: KindBytes, Width: 32},
		{Name: "encrypted_amount", Kind: KindU64},
		{Name: "amount_nonce", Kind: KindBytes, Width: 8},
		{Name: "encrypted_memo", Kind: KindVar, PrefixWidth: 2, MinBody: 1},
	}
}

func ratchetMessageLayout() Layout {
	return Layout{
		{Name: "flags", Kind: KindU8},
		{Name: "session_id", Kind: KindBytes, Width: 32},
		{Name: "counter", Kind: KindU64},
		{Name: "ephemeral_pubkey", Kind: KindBytes, Width: 32},
		{Name: "ciphertext", Kind: KindVar, PrefixWidth: 2, MinBody: 1},
	}
}

func complianceRevealLayout() Layout {
	return Layout{
		{Name: "flags", Kind: KindU8},
		{Name: "message_id", Kind: KindBytes, Width: 32},
		{Name: "auditor", Kind: KindBytes, Width: 32},
		{Name: "disclosure_key", Kind: KindBytes, Width: 32},
		{Name: "reveal_type", Kind: KindU8},
	}
}

func initCampaignLayout() Layout {
	return Layout{
		{Name: "campaign_id", Kind: KindBytes, Width: 32},
		{Name: "manifest_hash", Kind: KindBytes, Width: 32},
		{Name: "merkle_root", Kind: KindBytes, Width: 32},
		{Name: "asset_id", Kind: KindBytes, Width: 32},
		{Name: "expiry_unix", Kind: KindU64},
		{Name: "authority", Kind: KindBytes, Width: 32},
	}
}

func depositLayout() Layout {
	return Layout{
		{Name: "campaign_id", Kind: KindBytes, Width: 32},
		{Name: "amount", Kind: KindU64},
	}
}

func claimLayout() Layout {
	return Layout{
		{Name: "campaign_id", Kind: KindBytes, Width: 32},
		{Name: "recipient", Kind: KindBytes, Width: 32},
		{Name: "allocation", Kind: KindU64},
		{Name: "nonce16", Kind: KindBytes, Width: 16},
		{Name: "proof", Kind: KindVar, PrefixWidth: 2},
	}
}

func relayEnvelopeLayout() Layout {
	return Layout{
		{Name: "fee", Kind: KindU64},
		{Name: "envelope", Kind: KindVar, PrefixWidth: 2, MinBody: 1},
	}
}

// TagTableV1 builds the frozen v1 tag table.
func TagTableV1() (*OpTable, error) {
	return NewTagTable(TableVersionV1, []TagEntry{
		{Tag: TagPrivateMessage, Info: OpInfo{Name: "PrivateMessage", MinLen: 68, Layout: privateMessageLayout()}},
		{Tag: TagRoutedMessage, Info: OpInfo{Name: "RoutedMessage", MinLen: 70, Layout: routedMessageLayout()}},
		{Tag: TagPrivateTransfer, Info: OpInfo{Name: "PrivateTransfer", MinLen: 84, Layout: privateTransferLayout()}},
		{Tag: TagRatchetMessage, Info: OpInfo{Name: "RatchetMessage", MinLen: 76, Layout: ratchetMessageLayout()}},
		{Tag: TagComplianceReveal, Info: OpInfo{Name: "ComplianceReveal", MinLen: 98, Layout: complianceRevealLayout()}},
	})
}

// DomainTableV1 builds the frozen v1 domain+op table.
func DomainTableV1() (*OpTable, error) {
	return NewDomainTable(TableVersionV1, []DomainOpEntry{
		{Domain: DomainEscrow, Op: OpInitCampaign, Info: OpInfo{Name: "InitCampaign", Layout: initCampaignLayout()}},
		{Domain: DomainEscrow, Op: OpDeposit, Info: OpInfo{Name: "Deposit", Layout: depositLayout()}},
		{Domain: DomainEscrow, Op: OpClaim, Info: OpInfo{Name: "Claim", Layout: claimLayout()}},
		{Domain: DomainRelay, Op: OpRelayEnvelope, Info: OpInfo{Name: "RelayEnvelope", Layout: relayEnvelopeLayout()}},
	})
}

// MustTagTableV1 is TagTableV1 for initialization paths where the static
// table failing to load is unrecoverable.
func MustTagTableV1() *OpTable {
	t, err := TagTableV1()
	if err != nil {
		panic(err)
	}
	return t
}

// MustDomainTableV1 is the domain+op counterpart of MustTagTableV1.
func MustDomainTableV1() *OpTable {
	t, err := DomainTableV1()
	if err != nil {
		panic(err)
	}
	return t
}
