package turbomidi

import (
	"github.com/leandrodaf/turbomidi/protocol"
	"github.com/leandrodaf/turbomidi/sdk/contracts"
)

// testState is the slave-side speed-test sub-state machine.
type testState int

const (
	testIdle testState = iota
	testAwaitingTest
	testAwaitingTest2
)

func (s testState) String() string {
	switch s {
	case testIdle:
		return "idle"
	case testAwaitingTest:
		return "awaiting_test"
	case testAwaitingTest2:
		return "awaiting_test2"
	default:
		return "unknown"
	}
}

// Engine is the TurboMIDI protocol core: master and slave state machines,
// the negotiation algorithm, speed-change commit, and the active-sense
// watchdog. It is single-threaded cooperative and must not be shared
// across goroutines without external synchronization.
type Engine struct {
	transport contracts.Transport
	role      contracts.DeviceRole
	logger    contracts.Logger

	negotiateTimeoutMs uint32

	localCaps    protocol.CapabilitySet
	currentSpeed protocol.SpeedMultiplier

	lastRxTime            uint32
	lastActiveSenseTxTime uint32

	testState          testState
	pendingTestSpeed   protocol.SpeedMultiplier
	pendingTargetSpeed protocol.SpeedMultiplier

	reasm reassembler

	// Transient master-side wait state, cleared before each await.
	rxAnswer *protocol.CapabilitySet
	rxAck    bool
	rxResult bool
	rxResult2 bool

	onSpeedChanged func(protocol.SpeedMultiplier)
	onSpeedRequest func()
}

// New constructs an Engine bound to transport with the given role. It
// defaults to the safe state: Speed1x, Idle, and local capabilities
// advertising only Speed1x (which is implicitly always certified).
func New(transport contracts.Transport, role contracts.DeviceRole, opts ...contracts.Option) (*Engine, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		transport:          transport,
		role:               role,
		logger:             options.Logger,
		negotiateTimeoutMs: options.NegotiateTimeoutMs,
		currentSpeed:       protocol.Speed1x,
	}

	now := transport.NowMs()
	e.lastRxTime = now
	e.lastActiveSenseTxTime = now

	return e, nil
}

// SetSupported adds a speed to the engine's local capability set. It is
// additive and monotonic: bits are never cleared during normal operation.
func (e *Engine) SetSupported(speed protocol.SpeedMultiplier, certified bool) {
	e.localCaps.Add(speed, certified)
}

// CurrentSpeed reports the engine's currently committed speed.
func (e *Engine) CurrentSpeed() protocol.SpeedMultiplier {
	return e.currentSpeed
}

// Role reports the engine's configured role.
func (e *Engine) Role() contracts.DeviceRole {
	return e.role
}

// Tick reads up to 64 bytes from the transport in a single Recv call,
// dispatches any complete frames, and runs the active-sense watchdog.
// Hosts call it repeatedly; bytes not returned by that read wait for the
// next call.
func (e *Engine) Tick() {
	e.pump()
}

// pump is the single receive-and-watch step shared by Tick and every
// master-side wait loop in negotiate.go, mirroring the source's
// handleIncomingData (drain + dispatch) followed by checkTimeouts.
func (e *Engine) pump() {
	e.drainAndDispatch()
	e.runWatchdog()
}

func (e *Engine) drainAndDispatch() {
	var buf [64]byte
	n, err := e.transport.Recv(buf[:])
	if err != nil {
		e.logger.Warn("transport recv failed", e.logger.Field().Error("error", err))
		return
	}
	if n == 0 {
		return
	}

	now := e.transport.NowMs()
	for i := 0; i < n; i++ {
		b := buf[i]
		e.lastRxTime = now
		if frame, ok := e.reasm.feed(b); ok {
			e.handleFrame(frame)
		}
	}
}

func (e *Engine) send(data []byte) error {
	if err := e.transport.Send(data); err != nil {
		e.logger.Warn("transport send failed", e.logger.Field().Error("error", err))
		return err
	}
	return nil
}

func (e *Engine) handleFrame(raw []byte) {
	frame, err := protocol.Decode(raw)
	if err != nil {
		e.logger.Debug("frame rejected", e.logger.Field().Error("error", err))
		return
	}
	e.dispatch(frame)
}
