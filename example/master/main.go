// Command master demonstrates driving the master side of a TurboMIDI link:
// open a serial port at the standard MIDI rate and negotiate up to the
// speed whose wire ID is given by -target (4x by default).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/leandrodaf/turbomidi/internal/logger"
	"github.com/leandrodaf/turbomidi/internal/transport/serialport"
	"github.com/leandrodaf/turbomidi/protocol"
	"github.com/leandrodaf/turbomidi/sdk/contracts"
	"github.com/leandrodaf/turbomidi/sdk/turbomidi"
)

func main() {
	device := flag.String("device", "/dev/ttyUSB0", "serial device path")
	target := flag.Uint("target", uint(protocol.Speed4x), "target speed multiplier ID to negotiate")
	flag.Parse()

	log := logger.NewZapLogger()
	log.SetLevel(contracts.InfoLevel)

	targetSpeed, ok := protocol.SpeedFromID(uint8(*target))
	if !ok {
		log.Fatal("unknown target speed id", log.Field().Int("id", int(*target)))
	}

	cfg := serialport.DefaultConfig(*device)
	port, err := serialport.Open(*cfg)
	if err != nil {
		log.Fatal("failed to open serial port", log.Field().Error("error", err))
	}
	defer port.Close()

	engine, err := turbomidi.New(port, contracts.RoleMaster,
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithNegotiateTimeout(200),
	)
	if err != nil {
		log.Fatal("failed to construct engine", log.Field().Error("error", err))
	}

	engine.OnSpeedChanged(func(s protocol.SpeedMultiplier) {
		log.Info("speed changed", log.Field().String("speed", s.String()), log.Field().Uint32("baud", s.Baud()))
	})

	fmt.Printf("negotiating up to %s...\n", targetSpeed)
	ok, err = engine.Negotiate(targetSpeed, 0)
	if err != nil {
		log.Error("negotiation failed", log.Field().Error("error", err))
		os.Exit(1)
	}
	if !ok {
		log.Warn("negotiation did not succeed, remaining at current speed")
	}

	for {
		engine.Tick()
		port.DelayMs(1)
	}
}
