package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/narrator/config"
	"github.com/lixenwraith/narrator/constants"
	"github.com/lixenwraith/narrator/core"
	"github.com/lixenwraith/narrator/events"
	"github.com/lixenwraith/narrator/input"
	"github.com/lixenwraith/narrator/observability"
	"github.com/lixenwraith/narrator/service"
	"github.com/lixenwraith/narrator/session"
	"github.com/lixenwraith/narrator/speech"
)

const version = "0.3.0"

var (
	configFlag = flag.String("config", "", "Config file (defaults to $"+config.EnvPath+")")
	keymapFlag = flag.String("keymap", "", "TOML file overriding key bindings")
	debugFlag  = flag.Bool("debug", false, "Write logs to "+logDir+"/"+logFileName)
	seedFlag   = flag.Uint64("seed", 1, "Demo game random seed")
)

func main() {
	// Panic Recovery: ensure terminal is reset even if the host crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "narrator: %v\n", err)
		if logFile != nil {
			logFile.Close()
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig(*configFlag)
	if err != nil {
		return err
	}
	logger := newLogger(log.Writer(), cfg.Log.Level)

	keys, err := loadKeys(*keymapFlag)
	if err != nil {
		return err
	}

	// Services: span export and earcons
	hub := service.NewHub()
	tracing := observability.NewTracingService()
	cues := speech.NewCueService()
	for _, svc := range []service.Service{tracing, cues} {
		if err := hub.Register(svc); err != nil {
			return err
		}
	}
	err = hub.InitAll(map[string][]any{
		tracing.Name(): {tracingConfig(cfg)},
		cues.Name():    {cfg.Speech.Earcons, logger},
	})
	if err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	defer func() {
		if err := hub.StopAll(); err != nil {
			logger.Warn("service shutdown", "error", err)
		}
	}()

	// Speech: transcript on screen and optionally on file, earcons before alerts
	var transcriptOut io.Writer
	if cfg.Speech.Transcript != "" {
		f, err := os.OpenFile(cfg.Speech.Transcript, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open transcript: %w", err)
		}
		defer f.Close()
		transcriptOut = f
	}
	transcript := speech.NewTranscript(transcriptOut, 0)
	speaker := speech.NewCueSpeaker(transcript, cues.Player())

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	core.RegisterTerminal(screen)
	defer func() {
		core.RegisterTerminal(nil)
		screen.Fini()
	}()

	bus := events.NewRouter()
	game := newDemoGame(bus, *seedFlag)

	sess, err := session.New(cfg, session.Deps{
		Source:  game,
		Speaker: speaker,
		Logger:  logger,
		Tracer:  tracing.Tracer(),
	})
	if err != nil {
		return err
	}
	sess.Attach(bus)
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	core.Go(func() { game.run(ctx) })

	loop(screen, sess, game, keys, transcript, cfg.Session.UpdateInterval.Duration)
	return nil
}

// loop multiplexes key events and the session update tick until quit
func loop(screen tcell.Screen, sess *session.Session, game *demoGame, keys *input.KeyTable, transcript *speech.Transcript, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	frame := time.NewTicker(constants.FrameUpdateInterval)
	defer frame.Stop()

	eventChan := make(chan tcell.Event, 100)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	})

	for {
		select {
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				cmd := keys.Lookup(ev)
				if cmd == input.CmdQuit {
					return
				}
				if cmd == input.CmdNone {
					continue
				}
				game.Apply(sess.HandleInput(cmd))
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			sess.SetModalFocus(game.Modal())
			sess.Update()

		case <-frame.C:
			draw(screen, sess, transcript)
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func loadKeys(path string) (*input.KeyTable, error) {
	base := input.DefaultKeyTable()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keymap: %w", err)
	}
	override, err := input.LoadKeyConfig(data)
	if err != nil {
		return nil, fmt.Errorf("keymap %s: %w", path, err)
	}
	return input.MergeKeyTable(base, override), nil
}

func tracingConfig(cfg *config.Config) observability.Config {
	return observability.Config{
		ServiceName:    "narrator",
		ServiceVersion: version,
		Environment:    cfg.Tracing.Environment,
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
		Headers:        cfg.Tracing.Headers,
		Insecure:       cfg.Tracing.Insecure,
	}
}
