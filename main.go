package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-drawpad/canvas"
	"go-drawpad/config"
	"go-drawpad/debug"
	"go-drawpad/host"
	"go-drawpad/midi"
	"go-drawpad/mode"
	"go-drawpad/pad"
	"go-drawpad/theme"
	"go-drawpad/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-drawpad/config.json)")
	modeName := flag.String("mode", "", "starting mode, overrides config")
	debugLog := flag.Bool("debug", false, "write ~/.config/go-drawpad/debug.log")
	noMIDI := flag.Bool("nomidi", false, "keyboard pads only, do not open MIDI ports")
	save := flag.Bool("save", false, "write the effective config (with -mode applied) and exit")
	flag.Parse()

	if err := run(*configPath, *modeName, *debugLog, *noMIDI, *save); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, modeName string, debugLog, noMIDI, save bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(configPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if modeName != "" {
		cfg.Mode = modeName
	}
	if save {
		return saveConfig(cfg, configPath)
	}

	if debugLog || cfg.Debug {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	palette := theme.Plasma()
	if cfg.Palette != "" {
		if palette, err = theme.LoadGPL(cfg.Palette); err != nil {
			return fmt.Errorf("load palette: %w", err)
		}
	}
	th := theme.New(palette)

	bank := pad.NewBankFromConfig(cfg.Pads)
	debug.Log("main", "%d pads configured", bank.Len())

	h, err := host.New(bank, canvas.New(cfg.Canvas.Width, cfg.Canvas.Height), mode.All(bank, palette)...)
	if err != nil {
		return err
	}

	if cfg.Mode != "" {
		if err := h.SetModeByName(cfg.Mode); err != nil {
			return fmt.Errorf("%w (have %v)", err, mode.Names())
		}
	}

	// Device manager handles hot-plug
	var deviceMgr *midi.DeviceManager
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if !noMIDI {
		deviceMgr = midi.NewDeviceManager(midi.Options{
			Match:     cfg.InputPort,
			Channel:   cfg.Channel,
			Launchpad: cfg.Launchpad,
		})
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(h, deviceMgr, th, cfg.FPS)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// saveConfig writes cfg to path, or to the default location when path is empty
func saveConfig(cfg *config.Config, path string) error {
	var err error
	if path == "" {
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Println("config saved")
	return nil
}
