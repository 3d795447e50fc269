//go:build linux
// +build linux

package serialport

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// linuxFile wraps the raw file descriptor opened for a custom-baud serial
// line so Port can hold it behind io.ReadWriteCloser like it holds a
// tarm/serial handle on other platforms.
type linuxFile struct {
	f *os.File
}

func (l *linuxFile) Read(p []byte) (int, error)  { return l.f.Read(p) }
func (l *linuxFile) Write(p []byte) (int, error) { return l.f.Write(p) }
func (l *linuxFile) Close() error                { return l.f.Close() }

// reopenAtBaud opens device directly and configures it through a
// termios2/BOTHER ioctl rather than tarm/serial, because TurboMIDI's
// higher multipliers (206250, 415625, ...) are not entries in the fixed
// POSIX baud table tarm/serial is limited to.
func reopenAtBaud(device string, rate uint32, readTimeoutMs uint32) (io.ReadWriteCloser, error) {
	f, err := os.OpenFile(device, os.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}

	fd := int(f.Fd())
	t, err := unix.IoctlGetTermios2(fd, unix.TCGETS2)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("TCGETS2: %w", err)
	}

	t.Cflag &^= unix.CBAUD | unix.CBAUDEX
	t.Cflag |= unix.BOTHER | unix.CS8 | unix.CREAD | unix.CLOCAL
	t.Iflag = 0
	t.Oflag = 0
	t.Lflag = 0
	t.Ispeed = rate
	t.Ospeed = rate

	// VMIN/VTIME in deciseconds; a zero timeout blocks for at least one byte.
	t.Cc[unix.VMIN] = 0
	if readTimeoutMs == 0 {
		t.Cc[unix.VMIN] = 1
		t.Cc[unix.VTIME] = 0
	} else {
		decis := readTimeoutMs / 100
		if decis == 0 {
			decis = 1
		}
		t.Cc[unix.VTIME] = uint8(decis)
	}

	if err := unix.IoctlSetTermios2(fd, unix.TCSETS2, t); err != nil {
		f.Close()
		return nil, fmt.Errorf("TCSETS2 at %d baud: %w", rate, err)
	}

	// Clear O_NONBLOCK now that the line is configured; reads should block
	// up to VTIME instead of returning EAGAIN immediately.
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err == nil {
		unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags&^unix.O_NONBLOCK)
	}

	return &linuxFile{f: f}, nil
}
