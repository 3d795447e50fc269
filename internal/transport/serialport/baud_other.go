//go:build !linux
// +build !linux

package serialport

import (
	"io"
	"time"

	"github.com/tarm/serial"
)

// reopenAtBaud falls back to tarm/serial on platforms without a portable
// custom-baud ioctl. It covers the standard rates (31250, 62500, 125000)
// tarm/serial's platform driver already knows; TurboMIDI's fractional
// multipliers above those are only exact on the Linux termios2 path.
func reopenAtBaud(device string, rate uint32, readTimeoutMs uint32) (io.ReadWriteCloser, error) {
	return serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        int(rate),
		ReadTimeout: time.Duration(readTimeoutMs) * time.Millisecond,
	})
}
