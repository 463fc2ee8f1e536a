package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"ecg-annotator/internal/config"
	"ecg-annotator/internal/controllers"
	"ecg-annotator/internal/logger"
	"ecg-annotator/internal/opencv"
	"ecg-annotator/internal/shutdown"
	"ecg-annotator/internal/thumbnails"
	"ecg-annotator/internal/views"
)

func runGUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	log.Info("Application starting", map[string]interface{}{
		"version":  AppVersion,
		"config":   cfg.Source(),
		"data_dir": cfg.DataDir,
		"store":    cfg.Store.Path,
	})

	session := controllers.NewSession(controllers.Options{
		StorePath:     cfg.Store.Path,
		StoreFormat:   cfg.Store.Format,
		Extensions:    cfg.Scan.Extensions,
		UnlabeledOnly: cfg.Navigation.UnlabeledOnly,
		Autosave:      cfg.Navigation.Autosave,
	}, log.With("session"))

	thumbs, err := thumbnails.NewService(thumbnails.Options{
		MaxSize:  cfg.Display.MaxSize,
		Rotate:   cfg.Display.Rotate,
		CacheTTL: cfg.Display.CacheTTL,
	}, log.With("thumbnails"), opencv.NewDecoder(), thumbnails.ImagingDecoder{})
	if err != nil {
		return err
	}

	fyneApp := app.NewWithID(AppID)
	fyneApp.SetMetadata(&fyne.AppMetadata{ID: AppID, Name: AppName, Version: AppVersion})
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(900, 700))
	window.CenterOnScreen()

	shutdownMgr := shutdown.NewManager(log.With("shutdown"))
	shutdownMgr.Register("thumbnails", func() error {
		thumbs.Flush()
		return nil
	})
	shutdownMgr.Register("session", session.Flush)

	ui := views.NewApp(views.Options{
		Window:     window,
		Session:    session,
		Thumbnails: thumbs,
		Logger:     log.With("views"),
		DataDir:    cfg.DataDir,
		OnDataDirChosen: func(dir string) {
			rememberDataDir(cfg, dir, log)
		},
		OnQuit: fyneApp.Quit,
	})

	shutdownMgr.Listen(func() {
		fyne.Do(fyneApp.Quit)
	})

	ui.ShowStart()
	if open, _ := cmd.Flags().GetBool("open"); open && cfg.DataDir != "" {
		ui.Open(cfg.DataDir)
	}
	window.ShowAndRun()

	shutdownMgr.Shutdown()
	stats := thumbs.Stats()
	log.Info("Application terminated", map[string]interface{}{
		"thumbnail_hits":      stats.Hits,
		"thumbnail_misses":    stats.Misses,
		"thumbnail_fallbacks": stats.Fallbacks,
		"last_save":           session.LastSave(),
	})
	return nil
}

// rememberDataDir stores the chosen directory so the next start preselects it
func rememberDataDir(cfg *config.Config, dir string, log logger.Logger) {
	if cfg.DataDir == dir {
		return
	}
	cfg.DataDir = dir

	path := cfg.Source()
	if path == "" {
		var err error
		if path, err = config.DefaultFilePath(); err != nil {
			log.Warning("Cannot remember data directory", map[string]interface{}{"error": err.Error()})
			return
		}
	}
	if err := cfg.SaveFile(path); err != nil {
		log.Error("Saving config failed", err, map[string]interface{}{"path": path})
		return
	}
	log.Info("Data directory remembered", map[string]interface{}{"path": path, "data_dir": dir})
}
