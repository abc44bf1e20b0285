// Package main provides the entry point for the Floorplan Mapper application.
package main

import (
	"flag"
	"fmt"
	"os"

	"floorplan-mapper/internal/app"
	"floorplan-mapper/internal/config"
	"floorplan-mapper/internal/logging"
	"floorplan-mapper/internal/version"
	"floorplan-mapper/pkg/geometry"
	"floorplan-mapper/ui/mainwindow"
	"floorplan-mapper/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"go.uber.org/zap"
)

const appID = "io.floorplan.mapper"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("floorplan-mapper", version.String())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, "floorplan-mapper")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Floorplan Mapper", zap.String("version", version.Version), zap.String("commit", version.GitCommit))

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(app.NewFloorplanTheme(cfg.Palette))

	state := app.NewState(app.Options{
		Config:    cfg,
		Logger:    logger,
		StageSize: geometry.NewSize(1024, 768),
	})
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, state, appPrefs, logger)

	if flag.NArg() > 0 {
		path := flag.Arg(0)
		if err := state.LoadLayout(path); err != nil {
			logger.Error("Failed to load layout", zap.String("path", path), zap.Error(err))
		}
	} else {
		win.RestoreLastLayout()
	}

	win.ShowAndRun()
}
