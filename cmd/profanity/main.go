// Command profanity is a terminal front end for GemStone IV and DragonRealms,
// normally run behind a Lich proxy.
//
// Usage:
//
//	profanity [flags]
//
// Flags:
//
//	--host        Server host (default: 127.0.0.1)
//	--port        Server port (default: 8000)
//	--char        Character name shown in the terminal title
//	--template    Settings file under --dir (default: default.yaml)
//	--settings    Explicit settings file, overrides --template
//	--layout      Layout to load at startup (default: default)
//	--log         Debug log file (default: ~/.profanity/debug.log)
//	--metrics     HTTP address for transport metrics (disabled by default)
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/strnglp/ProfanityFE/internal/client"
	"github.com/strnglp/ProfanityFE/internal/config"
	"github.com/strnglp/ProfanityFE/internal/store"
	"github.com/strnglp/ProfanityFE/internal/tui"
)

// unpinDelay is how long after startup the server time offset may re-pin.
const unpinDelay = 15 * time.Second

func main() {
	opts := config.DefaultOptions()

	pflag.StringVar(&opts.Host, "host", opts.Host, "Server host")
	pflag.IntVar(&opts.Port, "port", opts.Port, "Server port")
	pflag.StringVar(&opts.Char, "char", opts.Char, "Character name for the terminal title")
	pflag.StringVar(&opts.Template, "template", opts.Template, "Settings file name under --dir")
	pflag.StringVar(&opts.SettingsFile, "settings", opts.SettingsFile, "Settings file path, overrides --template")
	pflag.StringVar(&opts.Dir, "dir", opts.Dir, "Settings and log directory")
	pflag.StringVar(&opts.LogFile, "log", opts.LogFile, "Debug log file")
	pflag.StringVar(&opts.MetricsAddr, "metrics", opts.MetricsAddr, "HTTP address for transport metrics")
	pflag.StringVar(&opts.Layout, "layout", opts.Layout, "Layout to load at startup")
	pflag.StringVar(&opts.DefaultFG, "fg-color", opts.DefaultFG, "Default foreground colour (hex)")
	pflag.StringVar(&opts.DefaultBG, "bg-color", opts.DefaultBG, "Default background colour (hex)")
	pflag.IntVar(&opts.Colors, "colors", opts.Colors, "Colour registers to use (0: detect)")
	pflag.IntVar(&opts.ColorPairs, "color-pairs", opts.ColorPairs, "Colour pairs to use (0: detect)")
	pflag.BoolVar(&opts.NoStatus, "no-status", opts.NoStatus, "Do not set the terminal title")
	pflag.BoolVar(&opts.Links, "links", opts.Links, "Highlight links")
	pflag.BoolVar(&opts.SpeechTimestamps, "speech-ts", opts.SpeechTimestamps, "Timestamp speech, thoughts and familiar lines")
	pflag.BoolVar(&opts.RemoteURL, "remote-url", opts.RemoteURL, "Print LaunchURL links instead of opening a browser")
	pflag.Parse()

	if err := run(opts.Expand()); err != nil {
		fmt.Fprintf(os.Stderr, "profanity: %v\n", err)
		os.Exit(1)
	}
}

func run(opts config.Options) error {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", opts.Dir, err)
	}
	logFile, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("[INFO] Starting, settings %s", opts.SettingsPath())

	settings, err := config.LoadFile(opts.SettingsPath())
	if err != nil {
		return err
	}

	transcript, err := store.NewDBService(":memory:")
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	defer transcript.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ccfg := client.DefaultConfig()
	ccfg.Addr = opts.Addr()
	ccfg.MetricsAddr = opts.MetricsAddr
	conn, err := client.Dial(ctx, ccfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	model, err := tui.New(tui.Config{
		Options:      opts,
		Settings:     settings,
		SettingsPath: opts.SettingsPath(),
		Conn:         conn,
		Store:        transcript,
	})
	if err != nil {
		return err
	}
	defer model.Shutdown()

	unpin := model.Session().UnpinAfter(unpinDelay)
	defer unpin.Stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for range hup {
			log.Println("[INFO] SIGHUP, reloading highlights")
			if !model.Post(tui.ReloadMsg{HighlightsOnly: true}) {
				return
			}
		}
	}()

	conn.Start(ctx, model)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		log.Printf("[ERROR] Program exited: %v", err)
		return fmt.Errorf("running TUI: %w", err)
	}
	log.Println("[INFO] Exiting")
	return nil
}
