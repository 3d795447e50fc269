// Package protocol implements the wire-level building blocks of the
// Elektron TurboMIDI speed-negotiation protocol: the speed table, the
// packed capability bitmap, and the SysEx command codec. Nothing in this
// package holds negotiation state — that lives in sdk/turbomidi.
package protocol
