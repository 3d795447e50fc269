package turbomidi

import "github.com/leandrodaf/turbomidi/protocol"

// breathingWindowLen is the number of null bytes sent before a live speed
// test to give the slave room to finish any pending transmission.
const breathingWindowLen = 16

// settleDelayMs is the blocking delay after the breathing window and
// before the master commits to the test speed.
const settleDelayMs = 10

// testWindowMs is the fixed wait for SpeedResult/SpeedResult2, independent
// of the caller-supplied Negotiate timeout.
const testWindowMs = 30

// Negotiate drives the master side of the negotiation algorithm to
// completion. It requires a role that may originate (RoleMaster or
// RoleEither) and must not be called re-entrantly: it is the sole mutator
// of engine state until it returns.
//
// timeoutMs of 0 uses the engine's configured default (30ms unless
// overridden with contracts.WithNegotiateTimeout).
func (e *Engine) Negotiate(target protocol.SpeedMultiplier, timeoutMs uint32) (bool, error) {
	if !e.role.MayOriginate() {
		return false, &NegotiationError{Reason: ReasonNotAllowed}
	}
	if timeoutMs == 0 {
		timeoutMs = e.negotiateTimeoutMs
	}

	if err := e.send(protocol.BuildSpeedRequest()); err != nil {
		return false, err
	}

	remoteCaps, ok := e.awaitSpeedAnswer(timeoutMs)
	if !ok {
		return false, &NegotiationError{Reason: ReasonNoAnswer}
	}
	if !remoteCaps.Has(target) {
		return false, &NegotiationError{Reason: ReasonSpeedUnsupported}
	}

	testSpeed := target
	if target != protocol.Speed1x && !remoteCaps.IsCertified(target) {
		next, ok := target.NextHigher()
		if !ok || !remoteCaps.Has(next) {
			return false, &NegotiationError{Reason: ReasonSpeedUnsupported}
		}
		testSpeed = next
	}

	if err := e.send(protocol.BuildSpeedNegotiate(testSpeed, target)); err != nil {
		return false, err
	}
	if !e.awaitAck(timeoutMs) {
		return false, &NegotiationError{Reason: ReasonNoAck}
	}

	if target != protocol.Speed1x && testSpeed != target {
		if !e.performSpeedTest(testSpeed, target) {
			return false, &NegotiationError{Reason: ReasonTestTimeout}
		}
	}

	e.commit(target)
	return true, nil
}

// Push emits SpeedPush(speed) and commits the local bit rate immediately,
// with no acknowledgment. It requires a role that may originate.
func (e *Engine) Push(speed protocol.SpeedMultiplier) error {
	if !e.role.MayOriginate() {
		return &NegotiationError{Reason: ReasonNotAllowed}
	}
	if err := e.send(protocol.BuildSpeedPush(speed)); err != nil {
		return err
	}
	e.commit(speed)
	return nil
}

// performSpeedTest runs the live bit-rate test step of Negotiate: breathing
// window, settle delay, commit to testSpeed, SpeedTest/SpeedTest2
// round-trips. On any failure it reverts to Speed1x before returning
// false.
func (e *Engine) performSpeedTest(testSpeed, target protocol.SpeedMultiplier) bool {
	if err := e.send(make([]byte, breathingWindowLen)); err != nil {
		return false
	}
	e.transport.DelayMs(settleDelayMs)
	e.commit(testSpeed)

	if err := e.send(protocol.BuildSpeedTest()); err != nil {
		e.commit(protocol.Speed1x)
		return false
	}
	if !e.awaitResult(testWindowMs) {
		e.commit(protocol.Speed1x)
		return false
	}

	if err := e.send(protocol.BuildSpeedTest2()); err != nil {
		e.commit(protocol.Speed1x)
		return false
	}
	if !e.awaitResult2(testWindowMs) {
		e.commit(protocol.Speed1x)
		return false
	}

	return true
}

func (e *Engine) awaitSpeedAnswer(timeoutMs uint32) (protocol.CapabilitySet, bool) {
	e.rxAnswer = nil
	start := e.transport.NowMs()
	for e.transport.NowMs()-start < timeoutMs {
		e.pump()
		if e.rxAnswer != nil {
			return *e.rxAnswer, true
		}
		e.transport.DelayMs(1)
	}
	return protocol.CapabilitySet{}, false
}

func (e *Engine) awaitAck(timeoutMs uint32) bool {
	e.rxAck = false
	start := e.transport.NowMs()
	for e.transport.NowMs()-start < timeoutMs {
		e.pump()
		if e.rxAck {
			return true
		}
		e.transport.DelayMs(1)
	}
	return false
}

func (e *Engine) awaitResult(timeoutMs uint32) bool {
	e.rxResult = false
	start := e.transport.NowMs()
	for e.transport.NowMs()-start < timeoutMs {
		e.pump()
		if e.rxResult {
			return true
		}
		e.transport.DelayMs(1)
	}
	return false
}

func (e *Engine) awaitResult2(timeoutMs uint32) bool {
	e.rxResult2 = false
	start := e.transport.NowMs()
	for e.transport.NowMs()-start < timeoutMs {
		e.pump()
		if e.rxResult2 {
			return true
		}
		e.transport.DelayMs(1)
	}
	return false
}
