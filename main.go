package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/brindlefx/lumentrace/pkg/config"
	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/render"
	"github.com/brindlefx/lumentrace/pkg/scene"
	"github.com/brindlefx/lumentrace/web"
)

// cliConfig holds the flags that override the lumentrace.toml file.
type cliConfig struct {
	ConfigPath string
	ScenePath  string
	Width      int
	Height     int
	Workers    int
	Duration   time.Duration
	WebPort    int
	Dashboard  bool
	Help       bool
}

func main() {
	flags := parseFlags()
	if flags.Help {
		showHelp()
		return
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(&cfg, flags)

	logger := stdoutLogger{}

	loader := scene.JSONLoader{
		SpecularWeightClampMin: cfg.Tracing.SpecularWeightClampMin,
		SpecularWeightClampMax: cfg.Tracing.SpecularWeightClampMax,
	}
	loaded, err := loader.Load(cfg.Scene.Path)
	if err != nil {
		fmt.Printf("Error loading scene: %v\n", err)
		os.Exit(1)
	}

	tracingConfig := cfg.ToTracingConfig()
	backend := render.CPUBackend{NumWorkers: cfg.Rendering.WorkerCount}
	driver := render.NewDriver(loaded.Scene, loaded.Camera, backend, tracingConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if flags.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, flags.Duration)
		defer cancel()
	} else {
		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		ctx = sigCtx
	}

	var dash *dashboard
	if flags.Dashboard {
		dash, err = newDashboard()
		if err != nil {
			fmt.Printf("Warning: could not start terminal dashboard: %v\n", err)
			dash = nil
		} else {
			defer dash.Close()
		}
	}

	var server *web.Server
	if flags.WebPort > 0 {
		server = web.NewServer(flags.WebPort)
		go func() {
			if err := server.Start(); err != nil {
				logger.Printf("web server stopped: %v\n", err)
			}
		}()
	}

	logger.Printf("Starting lumentrace (%dx%d)\n", tracingConfig.Width, tracingConfig.Height)
	startTime := time.Now()

	var lastFrame *image.RGBA
	var lastAvg float64
	err = driver.Run(ctx, func(img *image.RGBA, avg float64) {
		lastFrame = img
		lastAvg = avg
		if server != nil {
			server.Broadcast(img, avg)
		}
		if dash != nil {
			dash.Update(avg, time.Since(startTime))
		}
	})
	if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		fmt.Printf("Render stopped with error: %v\n", err)
		os.Exit(1)
	}

	renderTime := time.Since(startTime)
	fmt.Printf("Render stopped after %v\n", renderTime)
	fmt.Printf("Average samples per pixel: %.2f\n", lastAvg)

	if lastFrame != nil {
		if err := saveFrame(lastFrame); err != nil {
			fmt.Printf("Error saving frame: %v\n", err)
			os.Exit(1)
		}
	}
}

func saveFrame(img *image.RGBA) error {
	outputDir := "output"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("render_%d.png", time.Now().Unix()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	fmt.Printf("Render saved as %s\n", path)
	return nil
}

func parseFlags() cliConfig {
	cfg := cliConfig{}
	flag.StringVar(&cfg.ConfigPath, "config", "lumentrace.toml", "Path to the startup config file")
	flag.StringVar(&cfg.ScenePath, "scene", "", "Scene file path (overrides the config file's scene.path)")
	flag.IntVar(&cfg.Width, "width", 0, "Image width (overrides config, 0 = use config)")
	flag.IntVar(&cfg.Height, "height", 0, "Image height (overrides config, 0 = use config)")
	flag.IntVar(&cfg.Workers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	flag.DurationVar(&cfg.Duration, "duration", 0, "Stop after this long (0 = run until interrupted)")
	flag.IntVar(&cfg.WebPort, "web-port", 0, "Port to serve a live WebSocket preview on (0 = disabled)")
	flag.BoolVar(&cfg.Dashboard, "dashboard", false, "Show a live terminal dashboard")
	flag.BoolVar(&cfg.Help, "help", false, "Show help information")
	flag.Parse()
	return cfg
}

func applyFlagOverrides(cfg *config.Config, flags cliConfig) {
	if flags.ScenePath != "" {
		cfg.Scene.Path = flags.ScenePath
	}
	if flags.Width > 0 {
		cfg.Window.Width = flags.Width
	}
	if flags.Height > 0 {
		cfg.Window.Height = flags.Height
	}
	if flags.Workers > 0 {
		cfg.Rendering.WorkerCount = flags.Workers
	}
}

func showHelp() {
	fmt.Println("lumentrace")
	fmt.Println("Usage: lumentrace [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  lumentrace --scene=scenes/default.json --duration=30s")
	fmt.Println("  lumentrace --web-port=8080 --dashboard")
}

// stdoutLogger implements core.Logger by printing straight to stdout,
// matching the teacher's bare-fmt.Println logging idiom for the CLI.
type stdoutLogger struct{}

func (stdoutLogger) Printf(format string, args ...interface{}) { fmt.Printf(format, args...) }

var _ core.Logger = stdoutLogger{}
