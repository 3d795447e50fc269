//go:build !darwin
// +build !darwin

// Command discover is a stub on non-Darwin platforms: CoreMIDI source
// enumeration is macOS-only, so elsewhere the operator is expected to
// already know their serial device path (e.g. from /dev/serial/by-id).
package main

import "fmt"

func main() {
	fmt.Println("device discovery is only available on macOS; pass -device to example/master or example/slave directly")
}
