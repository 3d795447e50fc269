package protocol

// CapabilitySet is the packed 4-byte (M1, M2, C1, C2) representation of
// which speeds a peer supports and which of those it certifies without a
// live test. 1x is implicitly supported and certified by every peer and
// has no bit of its own.
type CapabilitySet struct {
	m1, m2 byte
	c1, c2 byte
}

// group reports which mask pair (M1/C1 vs M2/C2) a speed's bit lives in,
// and the bit index within it. group2 is true for the M2/C2 group.
func group(s SpeedMultiplier) (bit uint, group2, ok bool) {
	switch s {
	case Speed2x:
		return 0, false, true
	case Speed3_3x:
		return 1, false, true
	case Speed4x:
		return 2, false, true
	case Speed5x:
		return 3, false, true
	case Speed6_6x:
		return 4, false, true
	case Speed8x:
		return 5, false, true
	case Speed10x:
		return 6, false, true
	case Speed13_3x:
		return 0, true, true
	case Speed16x:
		return 1, true, true
	case Speed20x:
		return 2, true, true
	default:
		return 0, false, false
	}
}

// Add marks s as supported, and additionally certified if certified is
// true. Speed1x and unknown speeds are no-ops: 1x is always supported and
// certified without a bit, and there is nowhere to record an unknown
// speed.
func (c *CapabilitySet) Add(s SpeedMultiplier, certified bool) {
	bit, group2, ok := group(s)
	if !ok {
		return
	}
	mask := byte(1) << bit
	if group2 {
		c.m2 |= mask
		if certified {
			c.c2 |= mask
		}
	} else {
		c.m1 |= mask
		if certified {
			c.c1 |= mask
		}
	}
}

// Has reports whether s is marked supported. Speed1x always returns true.
func (c CapabilitySet) Has(s SpeedMultiplier) bool {
	if s == Speed1x {
		return true
	}
	bit, group2, ok := group(s)
	if !ok {
		return false
	}
	if group2 {
		return c.m2&(1<<bit) != 0
	}
	return c.m1&(1<<bit) != 0
}

// IsCertified reports whether s is marked certified. Speed1x always
// returns true.
func (c CapabilitySet) IsCertified(s SpeedMultiplier) bool {
	if s == Speed1x {
		return true
	}
	bit, group2, ok := group(s)
	if !ok {
		return false
	}
	if group2 {
		return c.c2&(1<<bit) != 0
	}
	return c.c1&(1<<bit) != 0
}

// Bytes returns the raw (M1, M2, C1, C2) encoding for the SpeedAnswer
// payload.
func (c CapabilitySet) Bytes() [4]byte {
	return [4]byte{c.m1, c.m2, c.c1, c.c2}
}

// CapabilitySetFromBytes reconstructs a CapabilitySet from a decoded
// SpeedAnswer payload's (M1, M2, C1, C2) bytes.
func CapabilitySetFromBytes(b [4]byte) CapabilitySet {
	return CapabilitySet{m1: b[0], m2: b[1], c1: b[2], c2: b[3]}
}
