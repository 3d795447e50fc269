package turbomidi

import "github.com/leandrodaf/turbomidi/protocol"

// dispatch routes a validated frame to its handler. Master-side response
// frames (SpeedAnswer, SpeedAck, SpeedResult, SpeedResult2) only set
// transient fields consumed by negotiate.go's wait loops; slave-side
// command frames (SpeedRequest, SpeedNegotiate, SpeedTest, SpeedTest2) act
// immediately. SpeedPush is handled for every role.
func (e *Engine) dispatch(frame protocol.Frame) {
	switch frame.Command {
	case protocol.CmdSpeedRequest:
		e.handleSpeedRequest()
	case protocol.CmdSpeedAnswer:
		e.handleSpeedAnswer(frame)
	case protocol.CmdSpeedNegotiate:
		e.handleSpeedNegotiate(frame)
	case protocol.CmdSpeedAck:
		e.rxAck = true
	case protocol.CmdSpeedTest:
		e.handleSpeedTest(frame)
	case protocol.CmdSpeedResult:
		e.rxResult = protocol.IsTestPattern(frame.Payload)
	case protocol.CmdSpeedTest2:
		e.handleSpeedTest2()
	case protocol.CmdSpeedResult2:
		e.rxResult2 = true
	case protocol.CmdSpeedPush:
		e.handleSpeedPush(frame)
	}
}

func (e *Engine) handleSpeedRequest() {
	if !e.role.MayAnswer() {
		return
	}
	e.send(protocol.BuildSpeedAnswer(e.localCaps))
	if e.onSpeedRequest != nil {
		e.onSpeedRequest()
	}
}

func (e *Engine) handleSpeedAnswer(frame protocol.Frame) {
	if len(frame.Payload) != 4 {
		return
	}
	var b [4]byte
	copy(b[:], frame.Payload)
	caps := protocol.CapabilitySetFromBytes(b)
	e.rxAnswer = &caps
}

func (e *Engine) handleSpeedNegotiate(frame protocol.Frame) {
	if !e.role.MayAnswer() || len(frame.Payload) != 2 {
		return
	}

	testSpeed, okTest := protocol.SpeedFromID(frame.Payload[0])
	targetSpeed, okTarget := protocol.SpeedFromID(frame.Payload[1])
	if !okTest || !okTarget {
		return
	}
	if !e.localCaps.Has(targetSpeed) {
		return // no NACK is defined; the master will simply time out
	}

	e.send(protocol.BuildSpeedAck())

	noTestNeeded := targetSpeed == protocol.Speed1x ||
		(e.localCaps.IsCertified(targetSpeed) && testSpeed == targetSpeed)
	if noTestNeeded {
		e.commit(targetSpeed)
		e.testState = testIdle
		return
	}

	e.pendingTestSpeed = testSpeed
	e.pendingTargetSpeed = targetSpeed
	e.testState = testAwaitingTest
}

func (e *Engine) handleSpeedTest(frame protocol.Frame) {
	if !e.role.MayAnswer() || e.testState != testAwaitingTest {
		return
	}

	if protocol.IsTestPattern(frame.Payload) {
		e.commit(e.pendingTestSpeed)
		e.send(protocol.BuildSpeedResult())
		e.testState = testAwaitingTest2
		return
	}

	e.commit(protocol.Speed1x)
	e.testState = testIdle
}

func (e *Engine) handleSpeedTest2() {
	if !e.role.MayAnswer() || e.testState != testAwaitingTest2 {
		return
	}
	e.send(protocol.BuildSpeedResult2())
	e.commit(e.pendingTargetSpeed)
	e.testState = testIdle
}

func (e *Engine) handleSpeedPush(frame protocol.Frame) {
	if len(frame.Payload) != 1 {
		return
	}
	speed, ok := protocol.SpeedFromID(frame.Payload[0])
	if !ok || !e.localCaps.Has(speed) {
		return
	}
	e.commit(speed)
}
