package protocol

import "fmt"

type TableMode uint8

const (
	// ModeTag decodes a single-byte tag selector.
	ModeTag TableMode = iota
	// ModeDomainOp decodes a two-byte (domain, op) selector.
	ModeDomainOp
)

// OpInfo describes one operation. MinLen is the minimum payload length in
// bytes after the selector. When Layout is set, MinLen must either be zero
// (derived from the layout) or agree with the layout-derived value.
type OpInfo struct {
	Name   string
	MinLen int
	Layout Layout
}

type TagEntry struct {
	Tag  uint8
	Info OpInfo
}

type DomainOpEntry struct {
	Domain uint8
	Op     uint8
	Info   OpInfo
}

// OpTable is an immutable selector lookup structure pinned to a protocol
// version. Build it once at startup; mismatched registrations fail at
// load time rather than being silently reconciled.
type OpTable struct {
	version uint32
	mode    TableMode
	tags    map[uint8]OpInfo
	ops     map[uint16]OpInfo
}

func (t *OpTable) Version() uint32 { return t.version }
func (t *OpTable) Mode() TableMode { return t.mode }

// NewTagTable validates and freezes a tag-form table. Entries may repeat a
// tag only if every registration declares the same operation: two source
// generations disagreeing on a minimum length is a configuration bug, not
// something to guess around.
func NewTagTable(version uint32, entries []TagEntry) (*OpTable, error) {
	tags := make(map[uint8]OpInfo, len(entries))
	for _, e := range entries {
		if e.Tag < minTag {
			return nil, wireErr(ERR_TABLE_INVALID, fmt.Sprintf("tag 0x%02x below 0x%02x", e.Tag, minTag))
		}
		if e.Tag == SelTLV || e.Tag == SelSchema {
			return nil, wireErr(ERR_TABLE_INVALID, fmt.Sprintf("tag 0x%02x shadows escape selector", e.Tag))
		}
		info, err := normalizeInfo(e.Info, fmt.Sprintf("tag 0x%02x", e.Tag))
		if err != nil {
			return nil, err
		}
		if prev, dup := tags[e.Tag]; dup {
			if prev.Name != info.Name || prev.MinLen != info.MinLen {
				return nil, wireErr(ERR_TABLE_INVALID, fmt.Sprintf(
					"tag 0x%02x registered as %s/min=%d and %s/min=%d",
					e.Tag, prev.Name, prev.MinLen, info.Name, info.MinLen))
			}
			continue
		}
		tags[e.Tag] = info
	}
	return &OpTable{version: version, mode: ModeTag, tags: tags}, nil
}

// NewDomainTable validates and freezes a domain+op table. Domains 0x00,
// 0xFE and 0xFF are unreachable on decode (escape selectors win) and are
// rejected here.
func NewDomainTable(version uint32, entries []DomainOpEntry) (*OpTable, error) {
	ops := make(map[uint16]OpInfo, len(entries))
	for _, e := range entries {
		if e.Domain == SelExtended || e.Domain == SelTLV || e.Domain == SelSchema {
			return nil, wireErr(ERR_TABLE_INVALID, fmt.Sprintf("domain 0x%02x shadows escape selector", e.Domain))
		}
		info, err := normalizeInfo(e.Info, fmt.Sprintf("op (0x%02x,0x%02x)", e.Domain, e.Op))
		if err != nil {
			return nil, err
		}
		key := domainOpKey(e.Domain, e.Op)
		if prev, dup := ops[key]; dup {
			if prev.Name != info.Name || prev.MinLen != info.MinLen {
				return nil, wireErr(ERR_TABLE_INVALID, fmt.Sprintf(
					"op (0x%02x,0x%02x) registered as %s/min=%d and %s/min=%d",
					e.Domain, e.Op, prev.Name, prev.MinLen, info.Name, info.MinLen))
			}
			continue
		}
		ops[key] = info
	}
	return &OpTable{version: version, mode: ModeDomainOp, ops: ops}, nil
}

func normalizeInfo(info OpInfo, where string) (OpInfo, error) {
	if info.Name == "" {
		return info, wireErr(ERR_TABLE_INVALID, where+": name required")
	}
	if info.MinLen < 0 {
		return info, wireErr(ERR_TABLE_INVALID, where+": negative min length")
	}
	if info.Layout != nil {
		if err := info.Layout.Validate(); err != nil {
			return info, wireErr(ERR_TABLE_INVALID, fmt.Sprintf("%s (%s): %v", where, info.Name, err))
		}
		derived := info.Layout.MinLen()
		if info.MinLen == 0 {
			info.MinLen = derived
		} else if info.MinLen != derived {
			return info, wireErr(ERR_TABLE_INVALID, fmt.Sprintf(
				"%s (%s): declared min %d != layout-derived %d",
				where, info.Name, info.MinLen, derived))
		}
	}
	return info, nil
}

func domainOpKey(domain, op uint8) uint16 {
	return uint16(domain)<<8 | uint16(op)
}

// LookupTag returns the entry for a tag-form selector.
func (t *OpTable) LookupTag(tag uint8) (OpInfo, bool) {
	info, ok := t.tags[tag]
	return info, ok
}

// LookupOp returns the entry for a domain+op selector.
func (t *OpTable) LookupOp(domain, op uint8) (OpInfo, bool) {
	info, ok := t.ops[domainOpKey(domain, op)]
	return info, ok
}
