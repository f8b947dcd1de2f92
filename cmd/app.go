package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/rezmoss/focuscli/internal/applog"
	"github.com/rezmoss/focuscli/internal/clock"
	"github.com/rezmoss/focuscli/internal/journal"
	"github.com/rezmoss/focuscli/internal/settings"
)

// appClock is replaced in tests.
var appClock clock.Clock = clock.Real()

// app bundles what every command needs.
type app struct {
	fs       afero.Fs
	dir      string
	clock    clock.Clock
	logger   *zap.Logger
	store    *settings.Store
	settings settings.Settings
	journal  *journal.Journal

	// settingsErr is set when config.json had to be partly or wholly ignored.
	settingsErr error
}

// openApp prepares the data directory, logger and settings.
func openApp() (*app, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dataDir, err)
	}

	// A .env next to the data files may carry FOCUS_* overrides.
	if err := godotenv.Load(filepath.Join(dataDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	logger, err := applog.New(dataDir, verbose)
	if err != nil {
		return nil, err
	}

	store := settings.NewStore(osFs, dataDir)
	st, err := store.Load()
	var settingsErr error
	switch {
	case errors.Is(err, settings.ErrInvalid):
		logger.Warn("Settings file has invalid values, using defaults for them", zap.String("path", store.Path()), zap.Error(err))
		settingsErr = err
	case err != nil:
		_ = logger.Sync()
		return nil, err
	}

	logger.Info("Application started",
		zap.String("version", version),
		zap.String("dir", dataDir),
		zap.Int("session_minutes", st.SessionDurationMinutes))

	return &app{
		fs:       osFs,
		dir:      dataDir,
		clock:    appClock,
		logger:   logger,
		store:    store,
		settings:    st,
		journal:     journal.New(osFs, dataDir),
		settingsErr: settingsErr,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
