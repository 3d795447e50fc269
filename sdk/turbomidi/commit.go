package turbomidi

import "github.com/leandrodaf/turbomidi/protocol"

// commit is the single operation for changing speed: it records
// currentSpeed, reconfigures the transport's bit rate, and
// notifies the speed-changed callback if one is bound. Every code path
// that changes speed — negotiation success, push, slave test pass/fail,
// and the watchdog revert — goes through this.
func (e *Engine) commit(speed protocol.SpeedMultiplier) {
	e.currentSpeed = speed

	if err := e.transport.SetBaud(speed.Baud()); err != nil {
		e.logger.Error("failed to set baud rate",
			e.logger.Field().String("speed", speed.String()),
			e.logger.Field().Uint32("baud", speed.Baud()),
			e.logger.Field().Error("error", err),
		)
	} else {
		e.logger.Info("speed committed",
			e.logger.Field().String("speed", speed.String()),
			e.logger.Field().Uint32("baud", speed.Baud()),
		)
	}

	if e.onSpeedChanged != nil {
		e.onSpeedChanged(speed)
	}
}
