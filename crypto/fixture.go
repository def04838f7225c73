package crypto

// FixtureSuite wraps another suite but replaces its randomness with a
// counter, so tests can produce reproducible nonces. Never use outside
// tests: the nonces carry no entropy.
type FixtureSuite struct {
	Inner   Suite
	counter uint64
}

func NewFixtureSuite(inner Suite) *FixtureSuite {
	return &FixtureSuite{Inner: inner}
}

func (f *FixtureSuite) Hash256(chunks ...[]byte) [32]byte {
	return f.Inner.Hash256(chunks...)
}

func (f *FixtureSuite) ReadNonce(dst []byte) error {
	f.counter++
	seed := f.counter
	for i := range dst {
		dst[i] = byte(seed >> (8 * (uint(i) % 8)))
		if i%8 == 7 {
			seed++
		}
	}
	return nil
}

func (f *FixtureSuite) Name() string { return f.Inner.Name() + "+fixture" }
