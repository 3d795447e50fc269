// Package serialport adapts a physical serial line to contracts.Transport,
// grounded on the native port wrapper pattern from the corpus's tarm/serial
// usage: open once, keep a thin struct around the opened handle, and let a
// platform-specific file own anything the base library cannot express.
//
// TurboMIDI's higher multipliers land on baud rates tarm/serial and the
// POSIX standard termios rates do not carry (206250, 415625, ...), so
// opening is split by platform: on Linux every rate, standard or not, is
// set through a raw termios2/BOTHER ioctl (baud_linux.go); on other
// platforms the port is opened through tarm/serial (baud_other.go).
package serialport

import (
	"fmt"
	"io"
	"time"

	"github.com/leandrodaf/turbomidi/sdk/contracts"
)

// Config describes how to open a serial line for TurboMIDI traffic.
type Config struct {
	// Device is the OS path to the serial device, e.g. "/dev/ttyUSB0" or
	// "COM3".
	Device string

	// InitialBaud is the rate the port is opened at, normally 31250 (the
	// standard MIDI rate) before any speed negotiation has happened.
	InitialBaud uint32

	// ReadTimeoutMs bounds how long Recv blocks waiting for at least one
	// byte. 0 means block indefinitely. On Linux the timeout is applied in
	// 100 ms steps: it is rounded down to a multiple of 100 ms, and any
	// non-zero value below 100 ms becomes 100 ms.
	ReadTimeoutMs uint32
}

// DefaultConfig returns a Config opened at the standard 31250 baud MIDI
// rate with a short read timeout, suitable as a starting point before
// negotiation raises the speed.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:        device,
		InitialBaud:   31250,
		ReadTimeoutMs: 5,
	}
}

// Port is a contracts.Transport backed by a real serial line.
type Port struct {
	cfg   Config
	port  io.ReadWriteCloser
	baud  uint32
	epoch time.Time
}

// Open opens the serial device described by cfg. The returned Port
// satisfies contracts.Transport and can be handed directly to
// turbomidi.New.
func Open(cfg Config) (*Port, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("serialport: device path is required")
	}
	if cfg.InitialBaud == 0 {
		cfg.InitialBaud = 31250
	}

	sp, err := reopenAtBaud(cfg.Device, cfg.InitialBaud, cfg.ReadTimeoutMs)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", cfg.Device, err)
	}

	return &Port{
		cfg:   cfg,
		port:  sp,
		baud:  cfg.InitialBaud,
		epoch: time.Now(),
	}, nil
}

// Close releases the underlying serial handle.
func (p *Port) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

// Send implements contracts.Transport.
func (p *Port) Send(data []byte) error {
	_, err := p.port.Write(data)
	return err
}

// Recv implements contracts.Transport. A read timeout with no data is
// returned as zero bytes and a nil error, the normal "nothing arrived yet"
// outcome; the io.EOF a file read reports in that case is mapped to nil.
func (p *Port) Recv(buf []byte) (int, error) {
	n, err := p.port.Read(buf)
	if n == 0 && err == io.EOF {
		return 0, nil
	}
	return n, err
}

// NowMs implements contracts.Transport with milliseconds since the port
// was opened, wrapping safely at 2^32 the way the engine's timestamp math
// expects.
func (p *Port) NowMs() uint32 {
	return uint32(time.Since(p.epoch).Milliseconds())
}

// DelayMs implements contracts.Transport as a blocking sleep.
func (p *Port) DelayMs(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// SetBaud implements contracts.Transport. It closes the underlying handle
// and reopens it at the new rate through the platform's reopenAtBaud
// (termios2/BOTHER on Linux, tarm/serial elsewhere).
func (p *Port) SetBaud(rate uint32) error {
	if rate == p.baud {
		return nil
	}
	if err := p.port.Close(); err != nil {
		return fmt.Errorf("serialport: close before rebaud: %w", err)
	}

	sp, err := reopenAtBaud(p.cfg.Device, rate, p.cfg.ReadTimeoutMs)
	if err != nil {
		return err
	}

	p.port = sp
	p.baud = rate
	return nil
}

var _ contracts.Transport = (*Port)(nil)
