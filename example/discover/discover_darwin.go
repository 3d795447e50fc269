//go:build darwin
// +build darwin

// Command discover lists CoreMIDI sources visible to macOS, as a
// convenience for finding which device a TurboMIDI peer is exposed as
// before pointing example/master or example/slave at its serial path.
// This has nothing to do with the wire protocol itself: it is purely a
// device-enumeration helper, mirroring the corpus's own CoreMIDI listing
// code.
package main

import (
	"fmt"
	"os"

	"github.com/youpy/go-coremidi"
)

func main() {
	sources, err := coremidi.AllSources()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error listing MIDI sources:", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		fmt.Println("no MIDI sources found")
		return
	}

	for i, source := range sources {
		entity := source.Entity()
		fmt.Printf("[%d] %s (entity: %s, manufacturer: %s)\n", i, source.Name(), entity.Name(), entity.Manufacturer())
	}
}
