// Command simulator runs the full display session against an in-memory
// canvas printed to the terminal, fed by a scripted sequence of playback
// events. Useful for checking layout and state transitions without a
// broker or a framebuffer.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/soundshelf/coverscreen/internal/config"
	"github.com/soundshelf/coverscreen/internal/render"
	"github.com/soundshelf/coverscreen/internal/session"
)

func main() {
	fontPath := flag.String("font", "", "TrueType font file (optional)")
	speedup := flag.Duration("activity-timeout", 12*time.Second, "shortened activity timeout for the demo")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Default()
	cfg.Fonts.Path = *fontPath
	cfg.Behavior.ActivityTimeout = config.Duration(*speedup)
	cfg.Behavior.PendingTimeout = config.Duration(3 * time.Second)
	cfg.Behavior.Tick = config.Duration(200 * time.Millisecond)

	faces := render.LoadFaces(cfg.Fonts.Path, render.FaceSizes{
		Artist: cfg.Fonts.ArtistSize,
		Title:  cfg.Fonts.TitleSize,
		Label:  cfg.Fonts.LabelSize,
	}, logger)
	canvas := render.NewCanvas(cfg.Screen.Width, cfg.Screen.Height, faces)
	display := newTermDisplay(canvas)

	tr := newScriptTransport(logger, demoScript(cfg.Screen.CoverSize))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 40*time.Second)
	defer cancel()

	tr.play(ctx)
	_ = session.New(cfg, display, tr, logger).Run(ctx)
}
