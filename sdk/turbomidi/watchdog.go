package turbomidi

import "github.com/leandrodaf/turbomidi/protocol"

// linkLostMs is how long the link may stay silent before the watchdog
// gives up on it and reverts to the safe floor.
const linkLostMs = 300

// activeSenseIntervalMs is how often the watchdog re-asserts liveness
// while the link is accelerated.
const activeSenseIntervalMs = 250

// runWatchdog implements two independent rules: link-lost revert and
// active-sense re-assertion. Both are only evaluated above Speed1x; the
// base rate follows standard MIDI semantics this engine does not police.
func (e *Engine) runWatchdog() {
	if e.currentSpeed == protocol.Speed1x {
		return
	}

	now := e.transport.NowMs()

	if now-e.lastRxTime > linkLostMs {
		e.logger.Warn("link presumed lost, reverting to 1x",
			e.logger.Field().String("speed", e.currentSpeed.String()),
		)
		e.commit(protocol.Speed1x)
		return
	}

	if now-e.lastActiveSenseTxTime > activeSenseIntervalMs {
		e.SendActiveSense()
	}
}

// SendActiveSense emits the single Active Sensing byte (0xFE). It is a
// no-op at Speed1x.
func (e *Engine) SendActiveSense() {
	if e.currentSpeed == protocol.Speed1x {
		return
	}
	if err := e.send([]byte{protocol.ActiveSensing}); err != nil {
		return
	}
	e.lastActiveSenseTxTime = e.transport.NowMs()
}
