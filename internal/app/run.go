package app

import (
	"fmt"
	"io"
	"os"

	fyneapp "fyne.io/fyne/v2/app"

	"yashubustudio/hccmapper/hcc"
	"yashubustudio/hccmapper/internal/logging"
)

const fyneAppID = "yashubustudio.hccmapper"

// Run loads configuration, builds the pipeline and starts the desktop UI.
func Run(configPath string) error {
	cfg, err := hcc.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logs := newLogBuffer(logLineLimit)
	logger := logging.New(logging.Options{
		Service: "hcc-desktop",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Writer:  io.MultiWriter(os.Stderr, logs),
		NoColor: true,
	})

	rec, err := hcc.NewRecognizer(cfg.NER)
	if err != nil {
		logger.Error().Err(err).Msg("recognizer unavailable, using pattern extraction only")
		rec = nil
	}
	svc := hcc.NewService(cfg, rec, logger)
	defer svc.Close()

	a := fyneapp.NewWithID(fyneAppID)
	u := buildUI(a, svc, logger, logs)
	u.w.ShowAndRun()
	return nil
}
