// Package main provides the entry point for the Qushuiyin desktop app.
package main

import (
	"os"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/liliping230531-pixel/qushuiyin/internal/app"
	"github.com/liliping230531-pixel/qushuiyin/internal/version"
	"github.com/liliping230531-pixel/qushuiyin/ui/mainwindow"
	"github.com/liliping230531-pixel/qushuiyin/ui/prefs"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	if os.Getenv("QSY_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Info().Str("version", version.Version).Msg("starting qushuiyin")

	fyneApp := fyneapp.New()
	fyneApp.Settings().SetTheme(&app.Theme{})

	appState := app.NewState()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)
	win.Resize(windowSize(appPrefs))

	if len(os.Args) > 1 {
		if err := appState.LoadImage(os.Args[1]); err != nil {
			log.Error().Err(err).Str("path", os.Args[1]).Msg("failed to load image from argument")
		}
	}

	setupHotReload(win)

	win.SetOnClosed(func() {
		size := win.Canvas().Size()
		appPrefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		appPrefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
		if err := appPrefs.Save(); err != nil {
			log.Warn().Err(err).Msg("failed to save preferences")
		}
	})

	win.ShowAndRun()
}

func windowSize(p *prefs.Prefs) fyne.Size {
	w := p.FloatWithFallback(prefs.KeyWindowWidth, 1200)
	h := p.FloatWithFallback(prefs.KeyWindowHeight, 800)
	return fyne.NewSize(float32(w), float32(h))
}

// setupHotReload offers a restart when the binary is recompiled under it.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Warn().Msg("hot reload: unable to determine executable path")
		return
	}

	log.Debug().Str("path", reloader.ExecPath()).Msg("hot reload: watching binary")

	reloader.OnNewBinary(func() {
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				log.Info().Msg("hot reload: restarting")
				if err := reloader.Restart(); err != nil {
					log.Error().Err(err).Msg("hot reload: restart failed")
				}
			}, win.Window)
	})
	reloader.Start()
}
