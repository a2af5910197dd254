// Command retropanel-sim runs the panel firmware against emulated chips.
//
// With a window (cgo builds), the keyboard drives the controls:
//
//	1-9          preset buttons (held while the key is down)
//	Left/Right   encoder, one detent per key press
//	Enter        encoder push button
//	F1-F4        mode selector positions
//	Escape       quit
//
// Headless, it plays a short script and writes the display as a PNG:
//
//	retropanel-sim -headless -press 2,6 -text "KIND OF BLUE" -o panel.png
//
// With -stdio the controller link runs over stdin and stdout, so a
// controller can be tested without hardware.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/flavioheleno/retropanel/bridge"
	"github.com/flavioheleno/retropanel/config"
	"github.com/flavioheleno/retropanel/control"
	"github.com/flavioheleno/retropanel/i2csim"
	"github.com/flavioheleno/retropanel/preset"
)

var (
	configPath = flag.String("config", "", "Configuration file (empty for defaults)")
	headless   = flag.Bool("headless", false, "Run without a window and write a snapshot")
	output     = flag.String("o", "panel.png", "Snapshot file written in headless mode")
	scale      = flag.Int("scale", 8, "Pixel scale of the window and snapshot")
	presses    = flag.String("press", "", "Comma separated preset buttons pressed in headless mode")
	text       = flag.String("text", "", "Metadata text shown after start up")
	runFor     = flag.Int("ms", 2000, "Milliseconds simulated in headless mode")
	stdio      = flag.Bool("stdio", false, "Run the controller link over stdin/stdout")
)

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "retropanel-sim: ", log.LstdFlags)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Fatalf("Failed to load configuration: %v", err)
		}
	}

	opts := &control.Opts{Logger: logger}
	if *stdio {
		opts.Bridge = bridge.NewSerial(os.Stdin, os.Stdout, &bridge.Opts{Logger: logger})
	}

	s, err := newSim(cfg, opts)
	if err != nil {
		logger.Fatalf("Failed to start panel: %v", err)
	}
	if *text != "" {
		s.loop.SetMessage(*text)
	}

	if *headless {
		err = runHeadless(s)
	} else {
		err = runWindow(s, *scale)
	}
	if cerr := s.close(); err == nil {
		err = cerr
	}
	if err != nil {
		logger.Fatalf("%v", err)
	}
}

func runHeadless(s *sim) error {
	buttons, err := parseButtons(*presses)
	if err != nil {
		return err
	}
	end := s.now + uint32(*runFor)
	for _, b := range buttons {
		s.pressPreset(b)
		if err := s.advance(100); err != nil {
			return err
		}
		s.releasePreset(b)
		if err := s.advance(100); err != nil {
			return err
		}
	}
	if s.now < end {
		if err := s.advance(end - s.now); err != nil {
			return err
		}
	}

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	caption := fmt.Sprintf("%s  t=%dms", s.loop.Presets().Mode(), s.now)
	if err := i2csim.Snapshot(f, s.composite(), *scale, caption); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func parseButtons(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 0 || n >= preset.NumButtons {
			return nil, fmt.Errorf("invalid preset button %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}
