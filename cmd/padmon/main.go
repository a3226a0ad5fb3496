package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go-drawpad/config"
	"go-drawpad/midi"
	"go-drawpad/pad"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-drawpad/config.json)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		return
	}

	var err error
	switch flag.Arg(0) {
	case "list":
		err = listPorts()
	case "watch":
		err = watch(*configPath)
	case "leds":
		err = testLEDs()
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Pad monitor")
	fmt.Println("")
	fmt.Println("Usage: padmon [-config file] <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list    - List all MIDI ports")
	fmt.Println("  watch   - Print note-ons with the pad they resolve to")
	fmt.Println("  leds    - Light the Launchpad grid diagonal")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, ok := midi.ListPorts(3 * time.Second)
	if !ok {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return nil
	}
	for i, p := range ins {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
	return nil
}

func watch(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	bank := pad.NewBankFromConfig(cfg.Pads)

	fmt.Println("Pads:")
	for _, p := range bank.Pads() {
		aux := ""
		if p.IsAux {
			aux = " (aux)"
		}
		fmt.Printf("  %d: %-12s note %3d%s\n", p.Index, p.Name, p.Note, aux)
	}

	dm := midi.NewDeviceManager(midi.Options{Match: cfg.InputPort, Channel: cfg.Channel, Launchpad: cfg.Launchpad})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go dm.Run(ctx)

	fmt.Println("\nWaiting for devices. Ctrl+C to exit.")
	for ev := range dm.Events() {
		switch ev.Type {
		case midi.DeviceConnected:
			fmt.Printf("[%s] connected %s (%s)\n", time.Now().Format("15:04:05"), ev.ID, ev.Controller.Type())
			go printNotes(ev.Controller, bank)
		case midi.DeviceDisconnected:
			fmt.Printf("[%s] disconnected %s\n", time.Now().Format("15:04:05"), ev.ID)
		}
	}
	return nil
}

func printNotes(c midi.Controller, bank *pad.Bank) {
	for ev := range c.NoteEvents() {
		idx := bank.NoteToPad(ev.Note)
		name := "-"
		if p := bank.Pad(idx); p != nil {
			name = p.Name
		}
		fmt.Printf("  ch %2d  note %3d  vel %3d  -> pad %2d %s\n", ev.Channel+1, ev.Note, ev.Velocity, idx, name)
	}
}

func testLEDs() error {
	fmt.Println("Testing LED control...")

	ins, outs, ok := midi.ListPorts(3 * time.Second)
	if !ok {
		return fmt.Errorf("port scan timed out")
	}

	var lp *midi.LaunchpadController
	for _, in := range ins {
		if !midi.IsLaunchpad(in.String()) {
			continue
		}
		for _, out := range outs {
			if out.String() == in.String() {
				c, err := midi.NewLaunchpadController(in.String(), nil, out, 0)
				if err != nil {
					return err
				}
				lp = c
				break
			}
		}
		if lp != nil {
			break
		}
	}
	if lp == nil {
		fmt.Println("No Launchpad found")
		return nil
	}
	defer lp.Close()

	fmt.Println("Lighting up diagonal (green)...")
	for i := 0; i < midi.GridSize; i++ {
		if err := lp.SetLEDBatch([]midi.LEDUpdate{{Row: i, Col: i, Color: [3]uint8{0, 255, 0}}}); err != nil {
			return err
		}
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()
	fmt.Println("Done!")
	return nil
}
