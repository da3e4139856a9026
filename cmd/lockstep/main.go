package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/lixenwraith/lockstep/audio"
	"github.com/lixenwraith/lockstep/clock"
	"github.com/lixenwraith/lockstep/config"
	"github.com/lixenwraith/lockstep/input"
	"github.com/lixenwraith/lockstep/network"
	"github.com/lixenwraith/lockstep/recording"
	"github.com/lixenwraith/lockstep/service"
	"github.com/lixenwraith/lockstep/session"
	"github.com/lixenwraith/lockstep/sim"
)

var (
	recordingFlag = flag.String("recording", "", "Append every received command batch to this file")
	replayFlag    = flag.String("replay", "", "Source input from this recording instead of the keyboard")
	compressFlag  = flag.Bool("compress", false, "zstd-compress the recording")
	configFlag    = flag.String("config", config.DefaultPath, "Game configuration file (TOML)")
	connectFlag   = flag.String("connect", "", "Relay URL (ws://host:port/lockstep); loopback when empty")
	headlessFlag  = flag.Bool("headless", false, "Run without a terminal and print the final state hash")
	framesFlag    = flag.Uint64("frames", 600, "Frames to simulate in headless mode")
	debugFlag     = flag.Bool("debug", false, "Write debug log to logs/lockstep.log")
	muteFlag      = flag.Bool("mute", false, "Disable audio cues")
)

// app holds the wired pipeline for either host loop
type app struct {
	cfg     *config.Config
	hub     *service.Hub
	rec     *recording.Service
	audio   *audio.Service
	client  *network.ClientService
	handler *input.Handler
	keys    *input.KeyTable
}

func main() {
	flag.Parse()

	if logFile := setupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	if *recordingFlag != "" && *recordingFlag == *replayFlag {
		fmt.Fprintln(os.Stderr, "--recording and --replay must name different files")
		os.Exit(2)
	}

	a, err := wire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	if *headlessFlag {
		err = a.runHeadless(*framesFlag)
	} else {
		err = a.runTerminal()
	}

	if stopErr := a.hub.StopAll(); stopErr != nil {
		log.Error().Err(stopErr).Msg("shutdown")
		err = errors.Join(err, stopErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "lockstep: %v\n", err)
		os.Exit(1)
	}
}

// wire loads configuration and starts every service
func wire() (*app, error) {
	logger := log.Logger
	cfg := config.Load(*configFlag, logger)
	cfg.ApplyEnv()

	netCfg := network.DefaultConfig()
	if *connectFlag != "" {
		netCfg = network.ClientConfig(*connectFlag)
	}

	a := &app{
		cfg:     cfg,
		hub:     service.NewHub(logger),
		rec:     recording.NewService(logger),
		audio:   audio.NewService(logger),
		client:  network.NewClientService(logger),
		handler: input.NewHandler(cfg.KeyHold(), cfg.MouseSensitivity),
		keys:    cfg.KeyTable(),
	}

	settings := audio.Settings{
		Enabled:      cfg.Audio.Enabled,
		MasterVolume: cfg.Audio.MasterVolume,
		SampleRate:   cfg.Audio.SampleRate,
	}
	registrations := []struct {
		svc  service.Service
		args []any
	}{
		{a.rec, []any{recording.Paths{Recording: *recordingFlag, Replay: *replayFlag, Compress: *compressFlag}}},
		{a.audio, []any{settings, *muteFlag || *headlessFlag}},
		{a.client, []any{netCfg}},
	}
	for _, r := range registrations {
		if err := a.hub.Register(r.svc, r.args...); err != nil {
			return nil, err
		}
	}

	if err := a.hub.InitAll(); err != nil {
		return nil, err
	}
	if err := a.hub.StartAll(); err != nil {
		return nil, err
	}

	if *recordingFlag != "" {
		a.audio.Play(audio.CueRecordStart)
	}
	if a.rec.Replaying() {
		a.audio.Play(audio.CueReplayStart)
	}
	return a, nil
}

// newSession builds the per-tick pipeline on the given clock
func (a *app) newSession(tp clock.TimeProvider) (*session.Session, error) {
	counter := clock.NewFrameCounter(tp, uint64(a.cfg.FPS))

	var replayer network.Receiver
	if a.rec.Replaying() {
		replayer = a.rec.Replayer()
	}

	return session.New(session.Config{
		Time:     tp,
		Counter:  counter,
		Input:    a.handler,
		Client:   a.client.Client(),
		Recorder: a.rec.Recorder(),
		Replayer: replayer,
		Sim:      a.cfg.Simulation(counter.FrameTime()),
		Cameras:  sim.NewCameras(a.cfg.CameraModes()...),
		Notifier: a.audio,
		Log:      log.Logger,
	})
}

// runHeadless advances a simulated clock one frame per tick, so the result
// only depends on the replay file and configuration
func (a *app) runHeadless(frames uint64) error {
	tp := clock.NewManualTimeProvider(time.Unix(0, 0))
	s, err := a.newSession(tp)
	if err != nil {
		return err
	}

	fps := uint64(a.cfg.FPS)
	var last session.Tick
	for i := uint64(0); i <= frames; i++ {
		tp.SeekFrame(i, fps)
		last, err = s.Tick()
		if err != nil {
			return err
		}
		if s.ReplayFinished() {
			break
		}
	}

	st := s.Stats()
	fmt.Printf("frame=%d commands=%d hash=%016x\n", last.Frame, st.Received, last.Hash)
	log.Info().
		Uint64("frame", last.Frame).
		Uint64("commands", st.Received).
		Uint64("hash", last.Hash).
		Msg("headless run complete")
	return nil
}

// runTerminal drives the session from a tcell screen until quit
func (a *app) runTerminal() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	// Panic recovery: restore the terminal before the stack trace
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mLOCKSTEP CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()
	defer screen.Fini()

	s, err := a.newSession(clock.NewMonotonicTimeProvider())
	if err != nil {
		return err
	}

	eventChan := make(chan tcell.Event, 256)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				screen.Fini()
				fmt.Fprintf(os.Stderr, "\r\n\x1b[31mEVENT POLLER CRASHED: %v\x1b[0m\r\n", r)
				fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
				os.Exit(1)
			}
		}()
		defer close(eventChan)
		for {
			// nil after Fini
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	queue := input.NewQueue()
	hud := newHUD(screen, a.rec.Replaying(), *recordingFlag != "", *connectFlag)

	ticker := time.NewTicker(time.Second / time.Duration(a.cfg.FPS))
	defer ticker.Stop()

	var remoteDone <-chan struct{}
	if r := a.client.Remote(); r != nil {
		remoteDone = r.Done()
	}

	for {
		select {
		case ev, ok := <-eventChan:
			if !ok {
				return nil
			}
			if _, resized := ev.(*tcell.EventResize); resized {
				screen.Sync()
				continue
			}
			if iev, ok := input.FromTcell(ev, a.keys); ok {
				queue.Push(iev)
			}

		case <-remoteDone:
			return fmt.Errorf("relay connection lost: %w", a.client.Remote().Err())

		case <-ticker.C:
			a.handler.HandleAll(queue.Drain())
			if a.handler.Quit() {
				return nil
			}
			s.ToggleCamera(a.handler.CameraToggled())

			tick, err := s.Tick()
			if err != nil {
				return err
			}
			hud.draw(s, tick)
		}
	}
}
