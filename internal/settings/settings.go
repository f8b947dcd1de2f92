// Package settings loads and persists the user's preferences (config.json).
//
// Values are resolved through viper: built-in defaults, then the JSON file,
// then FOCUS_* environment variables. A missing file yields the defaults; a
// corrupt one yields the defaults together with ErrInvalid, and a field with
// an out-of-range value falls back to its own default. Writes go through
// Update, which starts from the file alone so overrides never end up on disk.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// FileName is the settings file inside the data directory.
	FileName = "config.json"

	envPrefix      = "FOCUS"
	dateLayout     = "2006-01-02"
	backupInterval = 3 // days between backup reminders
)

// ErrInvalid marks a settings file that could not be parsed or failed validation.
var ErrInvalid = errors.New("invalid settings")

// Theme names accepted by the UI.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

type Settings struct {
	SessionDurationMinutes int    `json:"session_duration_minutes" mapstructure:"session_duration_minutes" validate:"min=1,max=600"`
	ObstacleLimitMinutes   int    `json:"obstacle_limit_minutes" mapstructure:"obstacle_limit_minutes" validate:"min=1,max=240"`
	LogObstacleDetails     bool   `json:"log_obstacle_details" mapstructure:"log_obstacle_details"`
	StatusIndicatorEnabled bool   `json:"status_indicator_enabled" mapstructure:"status_indicator_enabled"`
	ObstacleSoundEnabled   bool   `json:"obstacle_sound_enabled" mapstructure:"obstacle_sound_enabled"`
	Theme                  string `json:"theme" mapstructure:"theme" validate:"oneof=light dark auto"`
	LastBackupPromptDate   string `json:"last_backup_prompt_date" mapstructure:"last_backup_prompt_date" validate:"omitempty,datetime=2006-01-02"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() Settings {
	return Settings{
		SessionDurationMinutes: 45,
		ObstacleLimitMinutes:   10,
		LogObstacleDetails:     true,
		StatusIndicatorEnabled: true,
		ObstacleSoundEnabled:   true,
		Theme:                  ThemeLight,
		LastBackupPromptDate:   "",
	}
}

// Keys lists the settings keys in file order.
func Keys() []string {
	return []string{
		"session_duration_minutes",
		"obstacle_limit_minutes",
		"log_obstacle_details",
		"status_indicator_enabled",
		"obstacle_sound_enabled",
		"theme",
		"last_backup_prompt_date",
	}
}

func (s Settings) SessionDuration() time.Duration {
	return time.Duration(s.SessionDurationMinutes) * time.Minute
}

func (s Settings) ObstacleLimit() time.Duration {
	return time.Duration(s.ObstacleLimitMinutes) * time.Minute
}

// validate is shared; it caches struct metadata.
var validate = validator.New()

// Validate checks value ranges and enumerations.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Get returns the string form of a single key.
func (s Settings) Get(key string) (string, error) {
	switch key {
	case "session_duration_minutes":
		return strconv.Itoa(s.SessionDurationMinutes), nil
	case "obstacle_limit_minutes":
		return strconv.Itoa(s.ObstacleLimitMinutes), nil
	case "log_obstacle_details":
		return strconv.FormatBool(s.LogObstacleDetails), nil
	case "status_indicator_enabled":
		return strconv.FormatBool(s.StatusIndicatorEnabled), nil
	case "obstacle_sound_enabled":
		return strconv.FormatBool(s.ObstacleSoundEnabled), nil
	case "theme":
		return s.Theme, nil
	case "last_backup_prompt_date":
		return s.LastBackupPromptDate, nil
	}
	return "", fmt.Errorf("unknown settings key %q", key)
}

// Set parses value into key. The result is validated before it is applied.
func (s *Settings) Set(key, value string) error {
	next := *s
	value = strings.TrimSpace(value)
	var err error
	switch key {
	case "session_duration_minutes":
		next.SessionDurationMinutes, err = strconv.Atoi(value)
	case "obstacle_limit_minutes":
		next.ObstacleLimitMinutes, err = strconv.Atoi(value)
	case "log_obstacle_details":
		next.LogObstacleDetails, err = strconv.ParseBool(value)
	case "status_indicator_enabled":
		next.StatusIndicatorEnabled, err = strconv.ParseBool(value)
	case "obstacle_sound_enabled":
		next.ObstacleSoundEnabled, err = strconv.ParseBool(value)
	case "theme":
		next.Theme = strings.ToLower(value)
	case "last_backup_prompt_date":
		next.LastBackupPromptDate = value
	default:
		return fmt.Errorf("unknown settings key %q", key)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

// CheckBackup reports whether the backup reminder is due on today. When no
// valid date has been recorded yet, today is recorded instead and changed is
// true so the caller persists it.
func (s *Settings) CheckBackup(today time.Time) (due, changed bool) {
	if s.LastBackupPromptDate == "" {
		s.MarkBackupPrompted(today)
		return false, true
	}
	last, err := time.Parse(dateLayout, s.LastBackupPromptDate)
	if err != nil {
		s.MarkBackupPrompted(today)
		return false, true
	}
	return daysBetween(last, today) >= backupInterval, false
}

// MarkBackupPrompted records today as the last reminder date.
func (s *Settings) MarkBackupPrompted(today time.Time) {
	s.LastBackupPromptDate = today.Format(dateLayout)
}

// daysBetween counts calendar days from a to b, ignoring clock time and zone.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// Store reads and writes the settings file.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore returns a Store for config.json inside dir.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, path: filepath.Join(dir, FileName)}
}

func (s *Store) Path() string { return s.path }

// Load resolves the settings, FOCUS_* environment overrides included. The
// returned Settings is always usable: fields that fail validation keep their
// default and ErrInvalid is returned alongside.
func (s *Store) Load() (Settings, error) {
	return s.read(true)
}

// Update applies fn to the values stored in the file and writes the result.
// Environment overrides are not part of what is written. A file that cannot
// be parsed is left alone and ErrInvalid is returned.
func (s *Store) Update(fn func(*Settings) error) error {
	st, err := s.read(false)
	if err != nil && !errors.Is(err, errFieldsReset) {
		return err
	}
	if err := fn(&st); err != nil {
		return err
	}
	return s.Save(st)
}

// errFieldsReset wraps ErrInvalid when the file parsed but some fields fell
// back to their defaults.
var errFieldsReset = fmt.Errorf("%w: fields reset to defaults", ErrInvalid)

func (s *Store) read(withEnv bool) (Settings, error) {
	defaults := Defaults()

	v := viper.New()
	v.SetFs(s.fs)
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if withEnv {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	v.SetDefault("session_duration_minutes", defaults.SessionDurationMinutes)
	v.SetDefault("obstacle_limit_minutes", defaults.ObstacleLimitMinutes)
	v.SetDefault("log_obstacle_details", defaults.LogObstacleDetails)
	v.SetDefault("status_indicator_enabled", defaults.StatusIndicatorEnabled)
	v.SetDefault("obstacle_sound_enabled", defaults.ObstacleSoundEnabled)
	v.SetDefault("theme", defaults.Theme)
	v.SetDefault("last_backup_prompt_date", defaults.LastBackupPromptDate)

	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return defaults, fmt.Errorf("stat %s: %w", s.path, err)
	}
	if exists {
		if err := v.ReadInConfig(); err != nil {
			return defaults, fmt.Errorf("%w: read %s: %v", ErrInvalid, s.path, err)
		}
	}

	var st Settings
	if err := v.Unmarshal(&st); err != nil {
		return defaults, fmt.Errorf("%w: decode %s: %v", ErrInvalid, s.path, err)
	}
	if reset := st.resetInvalid(); len(reset) > 0 {
		return st, fmt.Errorf("%w: %s", errFieldsReset, strings.Join(reset, ", "))
	}
	return st, nil
}

// resetInvalid puts every field that fails validation back to its default
// and returns the names of those fields.
func (s *Settings) resetInvalid() []string {
	err := validate.Struct(*s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		*s = Defaults()
		return []string{err.Error()}
	}
	defaults := reflect.ValueOf(Defaults())
	cur := reflect.ValueOf(s).Elem()
	reset := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.StructField()
		cur.FieldByName(name).Set(defaults.FieldByName(name))
		reset = append(reset, name)
	}
	return reset
}

// Save writes the settings atomically (temp file, then rename).
func (s *Store) Save(st Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(st); err != nil {
		f.Close()
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return s.fs.Rename(tmp, s.path)
}
