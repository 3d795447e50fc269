// Command slave demonstrates the answering side of a TurboMIDI link: open
// a serial port, advertise a fixed set of supported and certified speeds,
// and let the engine's slave-side state machine react to whatever the
// master negotiates.
package main

import (
	"flag"

	"github.com/leandrodaf/turbomidi/internal/logger"
	"github.com/leandrodaf/turbomidi/internal/transport/serialport"
	"github.com/leandrodaf/turbomidi/protocol"
	"github.com/leandrodaf/turbomidi/sdk/contracts"
	"github.com/leandrodaf/turbomidi/sdk/turbomidi"
)

func main() {
	device := flag.String("device", "/dev/ttyUSB1", "serial device path")
	flag.Parse()

	log := logger.NewZapLogger()
	log.SetLevel(contracts.InfoLevel)

	cfg := serialport.DefaultConfig(*device)
	port, err := serialport.Open(*cfg)
	if err != nil {
		log.Fatal("failed to open serial port", log.Field().Error("error", err))
	}
	defer port.Close()

	engine, err := turbomidi.New(port, contracts.RoleSlave,
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
	)
	if err != nil {
		log.Fatal("failed to construct engine", log.Field().Error("error", err))
	}

	engine.SetSupported(protocol.Speed2x, true)
	engine.SetSupported(protocol.Speed4x, true)
	engine.SetSupported(protocol.Speed5x, false)
	engine.SetSupported(protocol.Speed8x, false)

	engine.OnSpeedRequest(func() {
		log.Info("master requested our capabilities")
	})
	engine.OnSpeedChanged(func(s protocol.SpeedMultiplier) {
		log.Info("speed changed", log.Field().String("speed", s.String()), log.Field().Uint32("baud", s.Baud()))
	})

	log.Info("waiting for master to negotiate...")
	for {
		engine.Tick()
		port.DelayMs(1)
	}
}
