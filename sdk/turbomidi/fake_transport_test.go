package turbomidi

import "errors"

// fakeTransport is an in-memory contracts.Transport used by the engine
// tests. Time is advanced explicitly by the test, never by wall clock,
// so watchdog and timeout behavior is deterministic.
type fakeTransport struct {
	now  uint32
	baud uint32

	sent [][]byte
	rx   []byte

	failSend bool
	failRecv bool

	delays []uint32
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{baud: 31250}
}

func (f *fakeTransport) Send(data []byte) error {
	if f.failSend {
		return errors.New("fake send failure")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.sent = append(f.sent, cp)
	return nil
}

func (f *fakeTransport) Recv(buf []byte) (int, error) {
	if f.failRecv {
		return 0, errors.New("fake recv failure")
	}
	n := copy(buf, f.rx)
	f.rx = f.rx[n:]
	return n, nil
}

func (f *fakeTransport) NowMs() uint32 {
	return f.now
}

func (f *fakeTransport) SetBaud(rate uint32) error {
	f.baud = rate
	return nil
}

func (f *fakeTransport) DelayMs(ms uint32) {
	f.delays = append(f.delays, ms)
	f.now += ms
}

// inject queues raw bytes to be returned by future Recv calls, simulating
// data arriving on the wire.
func (f *fakeTransport) inject(data []byte) {
	f.rx = append(f.rx, data...)
}

// lastSent returns the most recently sent frame, or nil if none.
func (f *fakeTransport) lastSent() []byte {
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

// sentCommand reports whether any sent frame carries the given command
// byte at offset 6.
func (f *fakeTransport) sentCommand(cmd byte) bool {
	for _, s := range f.sent {
		if len(s) > 6 && s[6] == cmd {
			return true
		}
	}
	return false
}
