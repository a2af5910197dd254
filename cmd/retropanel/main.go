// Command retropanel drives the front panel: three IS31FL3737 display
// boards, the preset LEDs, the TCA8418 keypad and the controller link.
//
// Hardware Setup:
//
//	Panel        Raspberry Pi
//	GND          GND
//	VCC          3.3V
//	SDA          GPIO2 (I2C1 SDA)
//	SCL          GPIO3 (I2C1 SCL)
//	KEY_INT      any free GPIO (optional, keypad.interrupt_line)
//	ENC_A/ENC_B  any free GPIOs (optional, encoder.gpio)
//
// Usage:
//
//	retropanel -config /etc/retropanel.yaml
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flavioheleno/retropanel/bridge"
	"github.com/flavioheleno/retropanel/config"
	"github.com/flavioheleno/retropanel/control"
	"github.com/flavioheleno/retropanel/input"
	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var (
	configPath = flag.String("config", "/etc/retropanel.yaml", "Configuration file")
	i2cBus     = flag.String("i2c", "", "I2C bus name (overrides the configuration)")
	device     = flag.String("serial", "", "Controller serial device (overrides the configuration)")
	wsURL      = flag.String("ws", "", "Controller websocket URL (overrides the configuration)")
	period     = flag.Duration("period", control.DefaultPeriod, "Tick period")
	verbose    = flag.Bool("v", false, "Log every forwarded event")
)

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "retropanel: ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if *i2cBus != "" {
		cfg.I2C.Bus = *i2cBus
	}
	if *device != "" {
		cfg.Bridge.Kind, cfg.Bridge.Device = config.BridgeSerial, *device
	}
	if *wsURL != "" {
		cfg.Bridge.Kind, cfg.Bridge.Device = config.BridgeWebSocket, *wsURL
	}

	if _, err := host.Init(); err != nil {
		logger.Fatalf("Failed to initialize periph.io: %v", err)
	}

	b, err := i2creg.Open(cfg.I2C.Bus)
	if err != nil {
		logger.Fatalf("Failed to open I2C bus: %v", err)
	}
	defer b.Close()

	opts := &control.Opts{Config: cfg, Logger: logger}

	switch cfg.Bridge.Kind {
	case config.BridgeSerial:
		f, err := os.OpenFile(cfg.Bridge.Device, os.O_RDWR, 0)
		if err != nil {
			logger.Fatalf("Failed to open %s: %v", cfg.Bridge.Device, err)
		}
		opts.Bridge = bridge.NewSerial(f, f, &bridge.Opts{Logger: logger})
	case config.BridgeWebSocket:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ws, err := bridge.DialWebSocket(ctx, cfg.Bridge.Device, &bridge.Opts{Logger: logger})
		cancel()
		if err != nil {
			logger.Fatalf("Failed to connect to controller: %v", err)
		}
		opts.Bridge = ws
	default:
		stubOpts := &bridge.Opts{}
		if *verbose {
			stubOpts.Logger = logger
		}
		opts.Bridge = bridge.NewStub(stubOpts)
	}

	if cfg.Keypad.InterruptLine >= 0 {
		chip := cfg.Encoder.GPIO.Chip
		if chip == "" {
			chip = "gpiochip0"
		}
		irq, err := gpiocdev.RequestLine(chip, cfg.Keypad.InterruptLine,
			gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.AsActiveLow)
		if err != nil {
			logger.Fatalf("Failed to request keypad interrupt line: %v", err)
		}
		defer irq.Close()
		opts.KeypadIRQ = func() bool {
			v, err := irq.Value()
			// An unreadable line falls back to polling.
			return err != nil || v == 1
		}
	}

	if cfg.Encoder.GPIO.Chip != "" {
		edges := make(chan control.Edge, 64)
		enc, err := requestEncoder(cfg.Encoder.GPIO, edges, logger)
		if err != nil {
			logger.Fatalf("Failed to request encoder lines: %v", err)
		}
		defer enc.Close()
		opts.Encoder = edges
		opts.EncoderLevels = func() (a, b bool) {
			vals := make([]int, 2)
			if err := enc.Values(vals); err != nil {
				logger.Printf("encoder: reading levels: %v", err)
				return false, false
			}
			return vals[0] == 1, vals[1] == 1
		}
	}

	loop, err := control.New(b, opts)
	if err != nil {
		logger.Fatalf("Failed to start panel: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Printf("running on %s, tick %s", b, *period)
	if err := loop.Run(ctx, *period); err != nil {
		logger.Printf("panel stopped: %v", err)
	}
	if err := loop.Close(); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	logger.Printf("stopped")
}

// requestEncoder watches both encoder lines and forwards every edge. Edges
// that do not fit in the channel are dropped and counted.
func requestEncoder(g config.GPIOConfig, edges chan<- control.Edge, logger *log.Logger) (*gpiocdev.Lines, error) {
	var dropped int
	last := time.Now()
	handler := func(evt gpiocdev.LineEvent) {
		e := control.Edge{Channel: input.ChannelA, Level: evt.Type == gpiocdev.LineEventRisingEdge}
		if evt.Offset == g.B {
			e.Channel = input.ChannelB
		}
		select {
		case edges <- e:
		default:
			dropped++
			if time.Since(last) > time.Second {
				logger.Printf("encoder: %d edges dropped", dropped)
				last = time.Now()
			}
		}
	}
	return gpiocdev.RequestLines(g.Chip, []int{g.A, g.B},
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(handler))
}
