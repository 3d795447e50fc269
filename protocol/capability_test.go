package protocol

import "testing"

// TestCapabilityEncoding exercises a mixed supported/certified encoding.
func TestCapabilityEncoding(t *testing.T) {
	var c CapabilitySet
	c.Add(Speed2x, true)
	c.Add(Speed4x, false)
	c.Add(Speed16x, true)

	b := c.Bytes()
	want := [4]byte{0x05, 0x02, 0x01, 0x02}
	if b != want {
		t.Fatalf("Bytes() = %02X, want %02X", b, want)
	}
}

func TestCapabilityRoundTrip(t *testing.T) {
	var c CapabilitySet
	c.Add(Speed3_3x, true)
	c.Add(Speed6_6x, false)
	c.Add(Speed10x, true)
	c.Add(Speed13_3x, true)
	c.Add(Speed20x, false)

	back := CapabilitySetFromBytes(c.Bytes())
	if back.Bytes() != c.Bytes() {
		t.Fatalf("round trip mismatch: %02X != %02X", back.Bytes(), c.Bytes())
	}

	for _, s := range order {
		if c.Has(s) != back.Has(s) {
			t.Errorf("Has(%s) mismatch after round trip", s)
		}
		if c.IsCertified(s) != back.IsCertified(s) {
			t.Errorf("IsCertified(%s) mismatch after round trip", s)
		}
	}
}

func TestCapability1xAlwaysSupportedAndCertified(t *testing.T) {
	var c CapabilitySet
	if !c.Has(Speed1x) {
		t.Error("Speed1x should always be supported")
	}
	if !c.IsCertified(Speed1x) {
		t.Error("Speed1x should always be certified")
	}
}

func TestCapabilityUnknownSpeedIsNoOp(t *testing.T) {
	var c CapabilitySet
	c.Add(SpeedMultiplier(200), true)
	if c.Bytes() != ([4]byte{}) {
		t.Errorf("Add on unknown speed mutated bytes: %02X", c.Bytes())
	}
	if c.Has(SpeedMultiplier(200)) {
		t.Error("Has on unknown speed should be false")
	}
}

func TestCertifiedImpliesSupported(t *testing.T) {
	var c CapabilitySet
	c.Add(Speed8x, true)
	if !c.Has(Speed8x) {
		t.Error("certifying a speed must also mark it supported")
	}
}
