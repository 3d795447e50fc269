// Package turbomidi implements the Elektron TurboMIDI speed-negotiation
// engine: SysEx reassembly, the master/slave negotiation state machine, and
// the active-sense watchdog that reverts a stalled link to the safe 31.25
// kbaud floor. The engine is transport-agnostic — see
// github.com/leandrodaf/turbomidi/sdk/contracts for the interface it
// consumes.
package turbomidi
