package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"

	"video-instrument/background"
	"video-instrument/config"
	"video-instrument/control"
	"video-instrument/debug"
	"video-instrument/display"
	"video-instrument/midi"
	"video-instrument/pattern"
	"video-instrument/scheduler"
	"video-instrument/theme"
	"video-instrument/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		debugLog   = flag.Bool("debug", false, "write a debug log to ~/.config/video-instrument/debug.log")
		configPath = flag.String("config", "", "config file (default ~/.config/video-instrument/config.json)")
		headless   = flag.Bool("headless", false, "render without opening a window")
		noTUI      = flag.Bool("notui", false, "run without the terminal monitor; stop with ctrl+c")
		emulate    = flag.Bool("emulate", false, "drive the instrument from a built-in clock and the space key")
		play       = flag.String("play", "", "replay a Standard MIDI File as input")
		loop       = flag.Bool("loop", false, "loop the -play file")
		record     = flag.String("record", "", "write frames as PNG files to this directory")
		save       = flag.Bool("save", false, "write the effective config and exit")
	)
	flag.Parse()

	if *debugLog {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *headless {
		cfg.Headless = true
	}
	if *record != "" {
		cfg.Record.Dir = *record
	}

	mapping, err := cfg.Mapping()
	if err != nil {
		return err
	}
	lfos, err := cfg.LFOBank()
	if err != nil {
		return err
	}
	saveConfig := func() error {
		cfg.SetMappings(mapping)
		cfg.SetLFOs(lfos)
		return cfg.Save(*configPath)
	}
	if *save {
		return saveConfig()
	}

	palette, err := theme.Load(cfg.Palette)
	if err != nil {
		return fmt.Errorf("load palette: %w", err)
	}
	th := theme.New(palette)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Input side
	store := control.NewStore()
	in := midi.NewInput(0)
	go control.Pump(ctx, in, store)

	deviceMgr := midi.NewDeviceManager(in, cfg.AcceptPort)

	var emulator *midi.Emulator
	if *emulate {
		emulator = midi.NewEmulator(in, cfg.BPM, cfg.Seed)
		go emulator.Run(ctx)
	}
	if *play != "" {
		pb, err := midi.LoadPlayback(*play, in, *loop)
		if err != nil {
			return err
		}
		go pb.Run(ctx)
	}

	// Render side: scheduler -> HUD -> recorder -> window or headless sink
	var (
		win *display.Window
		out scheduler.Presenter
	)
	if cfg.Headless {
		out = display.NewHeadless()
	} else {
		win = display.NewWindow(cfg.Width, cfg.Height, cfg.Scale, "video-instrument")
		out = win
	}
	var rec *display.Recorder
	if cfg.Record.Dir != "" {
		rec, err = display.NewRecorder(out, cfg.Record.Dir, cfg.Record.Every)
		if err != nil {
			return err
		}
		out = rec
	}

	var sched *scheduler.Scheduler
	hud, err := display.NewHUD(out, 12, func() []string {
		st := sched.Stats()
		return []string{
			fmt.Sprintf("%s / %s", st.Pattern, st.Background),
			fmt.Sprintf("%.0f bpm  beat %.1f", st.BPM, st.Beat),
			fmt.Sprintf("frames %d  skipped %d", st.Frames, st.Skipped),
		}
	})
	if err != nil {
		return err
	}
	hud.SetEnabled(cfg.HUD)

	sched = scheduler.New(scheduler.Config{
		FrameRate:     cfg.FrameRate,
		Width:         cfg.Width,
		Height:        cfg.Height,
		BPM:           cfg.BPM,
		Seed:          cfg.Seed,
		TrailMode:     cfg.TrailMode(),
		TrailCapacity: cfg.Trail.Capacity,
		TrailOpacity:  cfg.Trail.Opacity,
		TrailDecay:    cfg.Trail.Decay,
	}, store, hud)

	deck := pattern.NewDeck(pattern.Catalog(cfg.Seed)...)
	if !deck.SelectName(cfg.Pattern) {
		debug.Log("main", "unknown pattern %q, using %s", cfg.Pattern, deck.Active().Name())
	}
	backgrounds := background.DefaultSet()
	if !backgrounds.Select(cfg.Background) {
		debug.Log("main", "unknown background %q, using %s", cfg.Background, backgrounds.Active().Name())
	}
	sched.SetDeck(deck)
	sched.SetBackgrounds(backgrounds)
	sched.SetMapping(mapping)
	sched.SetLFOs(lfos)
	sched.SetPalette(palette.Sample(16))
	sched.SetInput(in)
	sched.OnPatternChange(deviceMgr.ShowPattern)

	controls := &tui.Controls{
		Keys:     tui.DefaultKeyMap(),
		Sched:    sched,
		Emulator: emulator,
		HUD:      hud,
		Save:     saveConfig,
		Quit:     cancel,
	}
	if win != nil {
		win.SetKeyHandler(func(k string) { controls.HandleKey(k) })
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	debug.Log("main", "started %dx%d at %.0f fps", cfg.Width, cfg.Height, cfg.FrameRate)

	go func() {
		sched.Wait()
		cancel()
	}()

	// a lost transport is fatal unless another source drives the input
	go func() {
		err := deviceMgr.Run(ctx)
		if err == nil {
			return
		}
		if emulator != nil || *play != "" {
			debug.Error("main", "midi transport lost: %v", err)
			return
		}
		sched.Fail(fmt.Errorf("midi transport: %w", err))
	}()

	tuiDone := make(chan error, 1)
	if *noTUI {
		close(tuiDone)
	} else {
		m := tui.NewModel(sched, store, mapping, deviceMgr, th, controls)
		m.Patterns = deck.Names()
		m.Backgrounds = background.Names
		p := tea.NewProgram(m, tea.WithAltScreen())
		go func() {
			select {
			case <-ctx.Done():
				p.Quit()
			case <-waitChan(sched):
				p.Send(tui.StoppedMsg{Err: sched.Wait()})
			}
		}()
		go func() {
			_, err := p.Run()
			tuiDone <- err
			cancel()
		}()
	}

	// ebiten needs the main goroutine
	userClosed := false
	if win != nil {
		go func() {
			<-ctx.Done()
			win.Close()
		}()
		if err := win.Run(); err != nil {
			cancel()
			sched.Stop()
			sched.Wait()
			return err
		}
		userClosed = win.UserClosed()
		cancel()
	} else {
		<-ctx.Done()
	}

	sched.Stop()
	renderErr := sched.Wait()
	if rec != nil {
		if err := rec.Close(); err != nil {
			renderErr = errors.Join(renderErr, fmt.Errorf("record: %w", err))
		}
		debug.Log("main", "recorded %d frames, dropped %d", rec.Written(), rec.Dropped())
	}
	tuiErr := <-tuiDone
	debug.Log("main", "stopped after %d frames", sched.Metrics().Frames())

	if userClosed && errors.Is(renderErr, display.ErrSurfaceLost) {
		renderErr = nil
	}
	return errors.Join(renderErr, tuiErr)
}

// waitChan closes once the render loop has exited
func waitChan(s *scheduler.Scheduler) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		s.Wait()
		close(ch)
	}()
	return ch
}
