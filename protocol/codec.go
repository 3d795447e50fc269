package protocol

import "fmt"

const (
	// SysExStart marks the beginning of a MIDI System-Exclusive message.
	SysExStart byte = 0xF0
	// SysExEnd marks the end of a MIDI System-Exclusive message.
	SysExEnd byte = 0xF7
	// ActiveSensing is the standard single-byte MIDI liveness message.
	ActiveSensing byte = 0xFE
)

// ManufacturerID is the fixed 5-byte Elektron vendor prefix every
// TurboMIDI command carries after SysExStart.
var ManufacturerID = [5]byte{0x00, 0x20, 0x3C, 0x00, 0x00}

// CommandID identifies a TurboMIDI command within a SysEx frame.
type CommandID byte

const (
	CmdSpeedRequest  CommandID = 0x10
	CmdSpeedAnswer   CommandID = 0x11
	CmdSpeedNegotiate CommandID = 0x12
	CmdSpeedAck      CommandID = 0x13
	CmdSpeedTest     CommandID = 0x14
	CmdSpeedResult   CommandID = 0x15
	CmdSpeedTest2    CommandID = 0x16
	CmdSpeedResult2  CommandID = 0x17
	CmdSpeedPush     CommandID = 0x20
)

// testPattern is the fixed 8-byte payload carried by SpeedTest and
// SpeedResult.
var testPattern = [8]byte{0x55, 0x55, 0x55, 0x55, 0x00, 0x00, 0x00, 0x00}

// payloadLen returns the expected payload length for cmd and whether cmd is
// a recognized command id at all.
func payloadLen(cmd CommandID) (n int, known bool) {
	switch cmd {
	case CmdSpeedRequest, CmdSpeedAck, CmdSpeedTest2, CmdSpeedResult2:
		return 0, true
	case CmdSpeedNegotiate:
		return 2, true
	case CmdSpeedAnswer:
		return 4, true
	case CmdSpeedTest, CmdSpeedResult:
		return 8, true
	case CmdSpeedPush:
		return 1, true
	default:
		return 0, false
	}
}

// String names cmd for logging.
func (c CommandID) String() string {
	switch c {
	case CmdSpeedRequest:
		return "SpeedRequest"
	case CmdSpeedAnswer:
		return "SpeedAnswer"
	case CmdSpeedNegotiate:
		return "SpeedNegotiate"
	case CmdSpeedAck:
		return "SpeedAck"
	case CmdSpeedTest:
		return "SpeedTest"
	case CmdSpeedResult:
		return "SpeedResult"
	case CmdSpeedTest2:
		return "SpeedTest2"
	case CmdSpeedResult2:
		return "SpeedResult2"
	case CmdSpeedPush:
		return "SpeedPush"
	default:
		return fmt.Sprintf("Command(0x%02X)", byte(c))
	}
}

// Frame is a decoded, validated TurboMIDI command.
type Frame struct {
	Command CommandID
	Payload []byte
}

// build assembles F0 <mfg:5> <cmd> <payload> F7.
func build(cmd CommandID, payload []byte) []byte {
	out := make([]byte, 0, 8+len(payload))
	out = append(out, SysExStart)
	out = append(out, ManufacturerID[:]...)
	out = append(out, byte(cmd))
	out = append(out, payload...)
	out = append(out, SysExEnd)
	return out
}

// BuildSpeedRequest builds a Master -> Slave SpeedRequest frame.
func BuildSpeedRequest() []byte {
	return build(CmdSpeedRequest, nil)
}

// BuildSpeedAnswer builds a Slave -> Master SpeedAnswer frame carrying caps.
func BuildSpeedAnswer(caps CapabilitySet) []byte {
	b := caps.Bytes()
	return build(CmdSpeedAnswer, b[:])
}

// BuildSpeedNegotiate builds a Master -> Slave SpeedNegotiate frame.
func BuildSpeedNegotiate(testSpeed, targetSpeed SpeedMultiplier) []byte {
	return build(CmdSpeedNegotiate, []byte{testSpeed.ID(), targetSpeed.ID()})
}

// BuildSpeedAck builds a Slave -> Master SpeedAck frame.
func BuildSpeedAck() []byte {
	return build(CmdSpeedAck, nil)
}

// BuildSpeedTest builds a Master -> Slave SpeedTest frame with the fixed
// test pattern.
func BuildSpeedTest() []byte {
	return build(CmdSpeedTest, testPattern[:])
}

// BuildSpeedResult builds a Slave -> Master SpeedResult frame echoing the
// fixed test pattern.
func BuildSpeedResult() []byte {
	return build(CmdSpeedResult, testPattern[:])
}

// BuildSpeedTest2 builds a Master -> Slave SpeedTest2 frame.
func BuildSpeedTest2() []byte {
	return build(CmdSpeedTest2, nil)
}

// BuildSpeedResult2 builds a Slave -> Master SpeedResult2 frame.
func BuildSpeedResult2() []byte {
	return build(CmdSpeedResult2, nil)
}

// BuildSpeedPush builds a Master -> any SpeedPush frame.
func BuildSpeedPush(speed SpeedMultiplier) []byte {
	return build(CmdSpeedPush, []byte{speed.ID()})
}

// IsTestPattern reports whether payload matches the fixed 8-byte pattern
// carried by SpeedTest/SpeedResult.
func IsTestPattern(payload []byte) bool {
	if len(payload) != len(testPattern) {
		return false
	}
	for i, b := range testPattern {
		if payload[i] != b {
			return false
		}
	}
	return true
}

// Decode validates a candidate SysEx frame and, if it is well-formed,
// returns the parsed Frame. A frame is accepted only if: it starts with
// SysExStart and ends with SysExEnd, bytes 1..5 equal ManufacturerID, byte
// 6 is a recognized command id, and the total length exactly matches that
// command's expected length. Anything else is rejected with
// ErrFrameRejected.
func Decode(data []byte) (Frame, error) {
	const minLen = 8 // F0 + 5 mfg + cmd + F7
	if len(data) < minLen {
		return Frame{}, fmt.Errorf("%w: too short (%d bytes)", ErrFrameRejected, len(data))
	}
	if data[0] != SysExStart {
		return Frame{}, fmt.Errorf("%w: missing SysEx start", ErrFrameRejected)
	}
	if data[len(data)-1] != SysExEnd {
		return Frame{}, fmt.Errorf("%w: missing SysEx end", ErrFrameRejected)
	}
	for i, want := range ManufacturerID {
		if data[1+i] != want {
			return Frame{}, fmt.Errorf("%w: manufacturer id mismatch", ErrFrameRejected)
		}
	}

	cmd := CommandID(data[6])
	wantPayload, known := payloadLen(cmd)
	if !known {
		return Frame{}, fmt.Errorf("%w: unrecognized command 0x%02X", ErrFrameRejected, byte(cmd))
	}

	wantTotal := 8 + wantPayload
	if len(data) != wantTotal {
		return Frame{}, fmt.Errorf("%w: %s expects %d bytes, got %d", ErrFrameRejected, cmd, wantTotal, len(data))
	}

	payload := make([]byte, wantPayload)
	copy(payload, data[7:7+wantPayload])
	return Frame{Command: cmd, Payload: payload}, nil
}
