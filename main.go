package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/soundshelf/coverscreen/internal/config"
	"github.com/soundshelf/coverscreen/internal/render"
	"github.com/soundshelf/coverscreen/internal/session"
	"github.com/soundshelf/coverscreen/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional; defaults + env otherwise)")
	envFile := flag.String("env-file", "", "load environment variables from this file (default: ./.env if present)")
	debug := flag.Bool("debug", false, "enable debug logging")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via COVERSCREEN_STDIO_LOG")
	flag.Parse()

	// Best-effort: capture panics in a file even when the console is busy
	// showing the framebuffer.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv("COVERSCREEN_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Println("env file load error:", err)
			os.Exit(2)
		}
	} else {
		_ = godotenv.Load()
	}

	logger := newLogger(*debug)
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	faces := render.LoadFaces(cfg.Fonts.Path, render.FaceSizes{
		Artist: cfg.Fonts.ArtistSize,
		Title:  cfg.Fonts.TitleSize,
		Label:  cfg.Fonts.LabelSize,
	}, logger)
	canvas := render.NewCanvas(cfg.Screen.Width, cfg.Screen.Height, faces)

	// A display that cannot be initialized is the one fatal render error;
	// per-frame failures later are logged and skipped.
	display, err := render.OpenFramebuffer(cfg.Screen.Device, canvas, cfg.Screen.Rotation == 180, logger)
	if err != nil {
		logger.Fatal("display init failed", zap.String("device", cfg.Screen.Device), zap.Error(err))
	}
	defer display.Close()

	tr := transport.New(transport.Options{
		BrokerURL:    cfg.BrokerURL(),
		Username:     cfg.MQTT.Username,
		Password:     cfg.MQTT.Password,
		ClientID:     cfg.MQTT.ClientID,
		TopicBase:    cfg.MQTT.TopicBase,
		RemoteToggle: cfg.Behavior.RemoteToggle,
	}, logger)
	defer tr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("coverscreen starting",
		zap.String("broker", cfg.BrokerURL()),
		zap.String("topic_base", cfg.MQTT.TopicBase))

	sess := session.New(cfg, display, tr, logger)
	if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session ended", zap.Error(err))
	}
	logger.Info("coverscreen stopped")
}

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Println("logger init error:", err)
		os.Exit(2)
	}
	return logger
}
