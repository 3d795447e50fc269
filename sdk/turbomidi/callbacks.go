package turbomidi

import "github.com/leandrodaf/turbomidi/protocol"

// OnSpeedChanged registers fn to be invoked every time the commit
// procedure changes currentSpeed, including watchdog-triggered reverts.
// Passing nil clears the callback.
func (e *Engine) OnSpeedChanged(fn func(protocol.SpeedMultiplier)) {
	e.onSpeedChanged = fn
}

// OnSpeedRequest registers fn to be invoked when this engine, acting as a
// slave, answers an incoming SpeedRequest. Passing nil clears the
// callback.
func (e *Engine) OnSpeedRequest(fn func()) {
	e.onSpeedRequest = fn
}
