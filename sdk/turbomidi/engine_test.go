package turbomidi

import (
	"errors"
	"testing"

	"github.com/leandrodaf/turbomidi/protocol"
	"github.com/leandrodaf/turbomidi/sdk/contracts"
)

func mustNew(t *testing.T, tr contracts.Transport, role contracts.DeviceRole) *Engine {
	t.Helper()
	e, err := New(tr, role)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestConstructionDefaults(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleEither)

	if e.CurrentSpeed() != protocol.Speed1x {
		t.Errorf("CurrentSpeed() = %v, want Speed1x", e.CurrentSpeed())
	}
	if !e.localCaps.Has(protocol.Speed1x) {
		t.Error("local caps must always report Speed1x supported")
	}
	if !e.localCaps.IsCertified(protocol.Speed1x) {
		t.Error("local caps must always report Speed1x certified")
	}
	if e.testState != testIdle {
		t.Errorf("testState = %v, want idle", e.testState)
	}
}

// TestSlaveAnswersSpeedRequest checks the exact SpeedAnswer bytes a slave
// sends back after SetSupported has recorded 2x and 4x, both certified.
func TestSlaveAnswersSpeedRequest(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleSlave)
	e.SetSupported(protocol.Speed2x, true)
	e.SetSupported(protocol.Speed4x, true)

	tr.inject([]byte{0xF0, 0x00, 0x20, 0x3C, 0x00, 0x00, 0x10, 0xF7})
	e.Tick()

	want := []byte{0xF0, 0x00, 0x20, 0x3C, 0x00, 0x00, 0x11, 0x05, 0x00, 0x05, 0x00, 0xF7}
	got := tr.lastSent()
	if string(got) != string(want) {
		t.Fatalf("SpeedAnswer = % X, want % X", got, want)
	}
}

func TestSpeedRequestFiresCallback(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleSlave)

	fired := false
	e.OnSpeedRequest(func() { fired = true })

	tr.inject(protocol.BuildSpeedRequest())
	e.Tick()

	if !fired {
		t.Error("OnSpeedRequest callback did not fire")
	}
}

// TestPushCommitsImmediately checks that Push emits SpeedPush and commits
// the new speed and baud without waiting for any acknowledgment.
func TestPushCommitsImmediately(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleMaster)

	if err := e.Push(protocol.Speed8x); err != nil {
		t.Fatalf("Push: %v", err)
	}

	want := []byte{0xF0, 0x00, 0x20, 0x3C, 0x00, 0x00, 0x20, 0x07, 0xF7}
	if got := tr.lastSent(); string(got) != string(want) {
		t.Fatalf("SpeedPush = % X, want % X", got, want)
	}
	if e.CurrentSpeed() != protocol.Speed8x {
		t.Fatalf("CurrentSpeed() = %v, want Speed8x", e.CurrentSpeed())
	}
	if tr.baud != 250000 {
		t.Fatalf("transport baud = %d, want 250000", tr.baud)
	}
}

func TestPushRejectedForSlaveRole(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleSlave)

	err := e.Push(protocol.Speed2x)
	var negErr *NegotiationError
	if !errors.As(err, &negErr) || negErr.Reason != ReasonNotAllowed {
		t.Fatalf("Push on slave role = %v, want ReasonNotAllowed", err)
	}
}

// TestWatchdogRevert checks that a link gone silent for longer than the
// link-lost threshold reverts to Speed1x on its own.
func TestWatchdogRevert(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleSlave)
	e.SetSupported(protocol.Speed4x, true)

	tr.now = 0
	tr.inject(protocol.BuildSpeedPush(protocol.Speed4x))
	e.Tick()
	if e.CurrentSpeed() != protocol.Speed4x {
		t.Fatalf("CurrentSpeed() after push = %v, want Speed4x", e.CurrentSpeed())
	}

	var changed protocol.SpeedMultiplier
	var changedCount int
	e.OnSpeedChanged(func(s protocol.SpeedMultiplier) {
		changed = s
		changedCount++
	})

	tr.now = 250
	e.Tick()
	if e.CurrentSpeed() != protocol.Speed4x {
		t.Fatalf("CurrentSpeed() at t=250 = %v, want still Speed4x", e.CurrentSpeed())
	}

	tr.now = 350
	e.Tick()
	if e.CurrentSpeed() != protocol.Speed1x {
		t.Fatalf("CurrentSpeed() at t=350 = %v, want Speed1x", e.CurrentSpeed())
	}
	if changedCount != 1 || changed != protocol.Speed1x {
		t.Fatalf("OnSpeedChanged fired %d times with %v, want once with Speed1x", changedCount, changed)
	}
	if tr.baud != 31250 {
		t.Fatalf("transport baud = %d, want 31250", tr.baud)
	}
}

func TestActiveSenseSentPeriodically(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleSlave)
	e.SetSupported(protocol.Speed2x, true)
	e.commit(protocol.Speed2x)

	tr.now = 0
	e.lastActiveSenseTxTime = 0
	e.lastRxTime = 0

	tr.now = 260
	e.Tick()

	found := false
	for _, s := range tr.sent {
		if len(s) == 1 && s[0] == protocol.ActiveSensing {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an Active Sensing byte to have been sent")
	}
}

// TestFullSlaveTestSequence walks a slave through negotiate, live speed
// test, and second test end to end, checking every intermediate state.
func TestFullSlaveTestSequence(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleSlave)
	e.SetSupported(protocol.Speed4x, false)
	e.SetSupported(protocol.Speed8x, true)

	tr.inject(protocol.BuildSpeedNegotiate(protocol.Speed8x, protocol.Speed4x))
	e.Tick()

	if !tr.sentCommand(byte(protocol.CmdSpeedAck)) {
		t.Fatal("expected SpeedAck to be sent")
	}
	if e.testState != testAwaitingTest {
		t.Fatalf("testState = %v, want awaiting_test", e.testState)
	}

	tr.inject(protocol.BuildSpeedTest())
	e.Tick()

	if e.CurrentSpeed() != protocol.Speed8x {
		t.Fatalf("CurrentSpeed() after test = %v, want Speed8x", e.CurrentSpeed())
	}
	if tr.baud != 250000 {
		t.Fatalf("baud after test = %d, want 250000", tr.baud)
	}
	if !tr.sentCommand(byte(protocol.CmdSpeedResult)) {
		t.Fatal("expected SpeedResult to be sent")
	}
	if e.testState != testAwaitingTest2 {
		t.Fatalf("testState = %v, want awaiting_test2", e.testState)
	}

	tr.inject(protocol.BuildSpeedTest2())
	e.Tick()

	if !tr.sentCommand(byte(protocol.CmdSpeedResult2)) {
		t.Fatal("expected SpeedResult2 to be sent")
	}
	if e.CurrentSpeed() != protocol.Speed4x {
		t.Fatalf("CurrentSpeed() after test2 = %v, want Speed4x", e.CurrentSpeed())
	}
	if tr.baud != 125000 {
		t.Fatalf("baud after test2 = %d, want 125000", tr.baud)
	}
	if e.testState != testIdle {
		t.Fatalf("testState = %v, want idle", e.testState)
	}
}

func TestSpeedTestBadPatternRevertsTo1x(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleSlave)
	e.SetSupported(protocol.Speed4x, false)
	e.SetSupported(protocol.Speed8x, true)

	tr.inject(protocol.BuildSpeedNegotiate(protocol.Speed8x, protocol.Speed4x))
	e.Tick()

	bad := protocol.BuildSpeedTest()
	bad[7] = 0x00 // corrupt the fixed pattern
	tr.inject(bad)
	e.Tick()

	if e.CurrentSpeed() != protocol.Speed1x {
		t.Fatalf("CurrentSpeed() after bad pattern = %v, want Speed1x", e.CurrentSpeed())
	}
	if e.testState != testIdle {
		t.Fatalf("testState = %v, want idle", e.testState)
	}
}

// TestMalformedFrameRejectedSilently checks that a frame with a corrupted
// manufacturer id is dropped without touching engine state or transmitting
// a response.
func TestMalformedFrameRejectedSilently(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleSlave)

	fired := false
	e.OnSpeedChanged(func(protocol.SpeedMultiplier) { fired = true })

	before := e.CurrentSpeed()
	beforeState := e.testState

	tr.inject([]byte{0xF0, 0x00, 0x20, 0x3D, 0x00, 0x00, 0x20, 0x02, 0xF7})
	e.Tick()

	if e.CurrentSpeed() != before {
		t.Errorf("CurrentSpeed() changed after malformed frame")
	}
	if e.testState != beforeState {
		t.Errorf("testState changed after malformed frame")
	}
	if fired {
		t.Errorf("OnSpeedChanged fired for malformed frame")
	}
	if len(tr.sent) != 0 {
		t.Errorf("engine transmitted %d frames in response to malformed input", len(tr.sent))
	}
}

func TestMasterNegotiateNoAnswerTimesOut(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleMaster)

	ok, err := e.Negotiate(protocol.Speed4x, 5)
	if ok {
		t.Fatal("Negotiate should fail with no peer responding")
	}
	var negErr *NegotiationError
	if !errors.As(err, &negErr) || negErr.Reason != ReasonNoAnswer {
		t.Fatalf("err = %v, want ReasonNoAnswer", err)
	}
}

func TestNegotiateRejectedForSlaveRole(t *testing.T) {
	tr := newFakeTransport()
	e := mustNew(t, tr, contracts.RoleSlave)

	ok, err := e.Negotiate(protocol.Speed2x, 30)
	if ok {
		t.Fatal("Negotiate should be rejected for RoleSlave")
	}
	var negErr *NegotiationError
	if !errors.As(err, &negErr) || negErr.Reason != ReasonNotAllowed {
		t.Fatalf("err = %v, want ReasonNotAllowed", err)
	}
}

// pairedTransport connects two engines back to back: whatever one side
// sends is immediately delivered to the other side's receive buffer, and
// the peer engine is ticked synchronously so the whole negotiation runs to
// completion inside the master's own Negotiate call, the way it would
// with a real, fast peer on the wire.
type pairedTransport struct {
	*fakeTransport
	other *pairedTransport
	peer  *Engine
}

func newPairedTransports() (master, slave *pairedTransport) {
	master = &pairedTransport{fakeTransport: newFakeTransport()}
	slave = &pairedTransport{fakeTransport: newFakeTransport()}
	master.other = slave
	slave.other = master
	return master, slave
}

func (p *pairedTransport) Send(data []byte) error {
	if err := p.fakeTransport.Send(data); err != nil {
		return err
	}
	p.other.inject(data)
	if p.peer != nil {
		p.peer.Tick()
	}
	return nil
}

// TestMasterNegotiateCertifiedNoTest exercises the certified fast-path: no
// live test is required when the peer already certifies the target speed.
func TestMasterNegotiateCertifiedNoTest(t *testing.T) {
	mTr, sTr := newPairedTransports()
	slave := mustNew(t, sTr, contracts.RoleSlave)
	slave.SetSupported(protocol.Speed4x, true)
	master := mustNew(t, mTr, contracts.RoleMaster)
	mTr.peer = slave

	ok, err := master.Negotiate(protocol.Speed4x, 30)
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if !ok {
		t.Fatal("Negotiate should succeed")
	}
	if master.CurrentSpeed() != protocol.Speed4x {
		t.Fatalf("master CurrentSpeed() = %v, want Speed4x", master.CurrentSpeed())
	}
	if slave.CurrentSpeed() != protocol.Speed4x {
		t.Fatalf("slave CurrentSpeed() = %v, want Speed4x", slave.CurrentSpeed())
	}
}

// TestMasterNegotiateUncertifiedProbesHigher exercises the uncertified
// path: the master must probe with the next higher speed before
// committing to the (uncertified) target.
func TestMasterNegotiateUncertifiedProbesHigher(t *testing.T) {
	mTr, sTr := newPairedTransports()
	slave := mustNew(t, sTr, contracts.RoleSlave)
	slave.SetSupported(protocol.Speed4x, false)
	slave.SetSupported(protocol.Speed5x, true)
	master := mustNew(t, mTr, contracts.RoleMaster)
	mTr.peer = slave

	ok, err := master.Negotiate(protocol.Speed4x, 30)
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if !ok {
		t.Fatal("Negotiate should succeed")
	}
	if master.CurrentSpeed() != protocol.Speed4x {
		t.Fatalf("master CurrentSpeed() = %v, want Speed4x", master.CurrentSpeed())
	}
	if slave.CurrentSpeed() != protocol.Speed4x {
		t.Fatalf("slave CurrentSpeed() = %v, want Speed4x", slave.CurrentSpeed())
	}
}

// TestMasterNegotiateTargetUnsupportedFails exercises the case where the
// peer's advertised capabilities lack the requested target speed.
func TestMasterNegotiateTargetUnsupportedFails(t *testing.T) {
	mTr, sTr := newPairedTransports()
	slave := mustNew(t, sTr, contracts.RoleSlave)
	master := mustNew(t, mTr, contracts.RoleMaster)
	mTr.peer = slave

	ok, err := master.Negotiate(protocol.Speed4x, 30)
	if ok {
		t.Fatal("Negotiate should fail when the peer lacks the target speed")
	}
	var negErr *NegotiationError
	if !errors.As(err, &negErr) || negErr.Reason != ReasonSpeedUnsupported {
		t.Fatalf("err = %v, want ReasonSpeedUnsupported", err)
	}
}

// TestMasterNegotiateNoHigherSpeedFails checks that if the target is
// uncertified and the peer has no higher supported speed to probe with,
// negotiation fails outright instead of falling back to some other speed.
func TestMasterNegotiateNoHigherSpeedFails(t *testing.T) {
	mTr, sTr := newPairedTransports()
	slave := mustNew(t, sTr, contracts.RoleSlave)
	slave.SetSupported(protocol.Speed20x, false) // fastest speed, no successor
	master := mustNew(t, mTr, contracts.RoleMaster)
	mTr.peer = slave

	ok, err := master.Negotiate(protocol.Speed20x, 30)
	if ok {
		t.Fatal("Negotiate should fail with no higher speed to probe")
	}
	var negErr *NegotiationError
	if !errors.As(err, &negErr) || negErr.Reason != ReasonSpeedUnsupported {
		t.Fatalf("err = %v, want ReasonSpeedUnsupported", err)
	}
}

// TestMasterNegotiateToBaseSpeedSkipsTest exercises the target == 1x
// special case: no live test is performed regardless of certification.
func TestMasterNegotiateToBaseSpeedSkipsTest(t *testing.T) {
	mTr, sTr := newPairedTransports()
	slave := mustNew(t, sTr, contracts.RoleSlave)
	slave.SetSupported(protocol.Speed8x, true)
	master := mustNew(t, mTr, contracts.RoleMaster)
	mTr.peer = slave
	master.commit(protocol.Speed8x)
	slave.commit(protocol.Speed8x)

	ok, err := master.Negotiate(protocol.Speed1x, 30)
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if !ok {
		t.Fatal("Negotiate should succeed reverting to 1x")
	}
	if master.CurrentSpeed() != protocol.Speed1x || slave.CurrentSpeed() != protocol.Speed1x {
		t.Fatalf("both ends should be at Speed1x: master=%v slave=%v", master.CurrentSpeed(), slave.CurrentSpeed())
	}
}
