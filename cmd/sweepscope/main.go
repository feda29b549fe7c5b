package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/unklstewy/sweepscope/internal/feed"
	"github.com/unklstewy/sweepscope/internal/logging"
	"github.com/unklstewy/sweepscope/internal/ui"
	"github.com/unklstewy/sweepscope/pkg/config"
	"github.com/unklstewy/sweepscope/pkg/scope"
)

var (
	// Version information (set by build flags)
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "configs/config.json", "Path to configuration file")
	uiName := flag.String("ui", "", "Frontend: ansi, bubbletea or tview (overrides config)")
	sourceType := flag.String("source", "", "Aircraft source: opensky, airplanes.live or postgres (overrides config)")
	noWeather := flag.Bool("no-weather", false, "Disable the weather layer")
	syncMode := flag.Bool("sync", false, "Fetch data inline on the render loop instead of in the background")
	debug := flag.Bool("debug", false, "Log aircraft dropped by the altitude/speed filter")
	showVersion := flag.Bool("version", false, "Show version information")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sweepscope version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *uiName != "" {
		cfg.Display.UI = *uiName
	}
	if *noWeather {
		cfg.Weather.Enabled = false
	}
	if *debug {
		cfg.Display.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *sourceType, *syncMode); err != nil {
		log.Fatalf("sweepscope: %v", err)
	}
}

// run wires sources, scope and frontend together and blocks until the user
// quits or ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, sourceType string, syncMode bool) error {
	src, err := cfg.ADSB.ActiveSource(sourceType)
	if err != nil {
		return err
	}

	dataSource, err := openAircraftSource(ctx, cfg, src)
	if err != nil {
		return err
	}
	defer dataSource.Close()

	ref := reference(cfg.Reference)
	proj := scope.NewProjection(ref, cfg.Display.Size*2, cfg.Display.Size)

	weather, err := openWeather(cfg.Weather, proj)
	if err != nil {
		return err
	}

	opts := scope.Options{
		Reference:        ref,
		Size:             cfg.Display.Size,
		Steps:            cfg.Display.SweepSteps,
		FrameInterval:    cfg.Display.FrameInterval(),
		AircraftInterval: cfg.ADSB.Interval(),
		WeatherInterval:  cfg.Weather.Interval(),
		ReplaceWeather:   cfg.Weather.Replace,
		Debug:            cfg.Display.Debug,
	}

	var aircraftSource scope.AircraftSource = feed.NewAircraftAdapter(dataSource, ref)
	var weatherSource scope.WeatherSource
	if weather != nil {
		weatherSource = weather
		opts.WeatherLabel = weather.Label()
	}

	uiOpts := ui.Options{
		FrameInterval: opts.FrameInterval,
		Source:        dataSource.Name(),
	}

	var poller *feed.Poller
	if !syncMode {
		poller = feed.NewPoller(aircraftSource, weatherSource, opts.AircraftInterval, opts.WeatherInterval)
		aircraftSource = poller
		weatherSource = poller.WeatherSource()
		uiOpts.PollerStatus = poller.Status

		// The poller paces the fetches; the scope just checks for news every frame
		opts.AircraftInterval = 0
		opts.WeatherInterval = 0
	}

	var ansi *ui.ANSI
	if cfg.Display.UI == config.UIANSI {
		ansi = ui.NewANSI(os.Stdout)
	}

	var presenter scope.Presenter
	if ansi != nil {
		presenter = ansi
	}

	s, err := scope.New(opts, aircraftSource, weatherSource, presenter)
	if err != nil {
		return err
	}

	log.Printf("Scope: %s %.4f, %.4f, %.0f nm, %dx%d, %d steps, %s aircraft, weather %s",
		ref.Name, ref.Position.Latitude, ref.Position.Longitude, ref.RangeNM,
		cfg.Display.Size*2, cfg.Display.Size, opts.Steps, dataSource.Name(), weatherName(opts.WeatherLabel))

	// From here on the terminal belongs to the display
	var logs *ui.LogManager
	var extra []io.Writer
	if cfg.Display.UI == config.UITview {
		logs = ui.NewLogManager(200)
		extra = append(extra, logs)
	}
	logFile := logging.Setup(cfg.Logging, extra...)
	defer logFile.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if poller != nil {
		g.Go(func() error {
			return poller.Run(ctx)
		})
	}

	g.Go(func() error {
		// Quitting the frontend stops everything else
		defer cancel()

		switch cfg.Display.UI {
		case config.UIBubbletea:
			return ui.RunBubbletea(ctx, s, uiOpts)
		case config.UITview:
			return ui.NewApp(s, uiOpts, logs).Run(ctx)
		default:
			ansi.Start()
			defer ansi.Stop()
			return s.Run(ctx)
		}
	})

	err = g.Wait()
	log.Printf("Stopped after %d frames", s.Stats().Frames)
	return err
}

func weatherName(label string) string {
	if label == "" {
		return "off"
	}
	return label
}

// printHelp prints usage information
func printHelp() {
	fmt.Println("sweepscope - Sonar-style terminal radar for live ADS-B traffic")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  sweepscope [options]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        Path to configuration file (default: configs/config.json)")
	fmt.Println("  -ui string")
	fmt.Println("        Frontend: ansi, bubbletea or tview")
	fmt.Println("  -source string")
	fmt.Println("        Aircraft source: opensky, airplanes.live or postgres")
	fmt.Println("  -no-weather")
	fmt.Println("        Disable the weather layer")
	fmt.Println("  -sync")
	fmt.Println("        Fetch data inline on the render loop")
	fmt.Println("  -debug")
	fmt.Println("        Log aircraft dropped by the altitude/speed filter")
	fmt.Println("  -version")
	fmt.Println("        Show version information")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println()
	fmt.Println("ENVIRONMENT:")
	fmt.Println("  SWEEPSCOPE_SOURCE              Enable only this aircraft source type")
	fmt.Println("  SWEEPSCOPE_ADSB_BASE_URL       Override the aircraft API endpoint")
	fmt.Println("  SWEEPSCOPE_OPENSKY_USERNAME    OpenSky account (with _PASSWORD)")
	fmt.Println("  SWEEPSCOPE_DB_PASSWORD         Database password")
	fmt.Println("  SWEEPSCOPE_UI                  Frontend")
	fmt.Println("  SWEEPSCOPE_LOG_FILE            Log file (empty disables logging)")
	fmt.Println()
	fmt.Println("KEYBOARD SHORTCUTS (bubbletea, tview):")
	fmt.Println("    q or ESC       Quit")
	fmt.Println("    c              Clear log panel (tview)")
	fmt.Println("    Ctrl+C         Quit (all frontends)")
	fmt.Println()
	fmt.Println("DISPLAY:")
	fmt.Println("  X / CALLSIGN     Aircraft above 1800 ft and faster than 60 kt")
	fmt.Println("  +                Reference point")
	fmt.Println("  . : ░ ▒ ▓ █      Weather, light to extreme")
}
