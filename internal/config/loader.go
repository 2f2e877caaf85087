package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when read from the environment, so
// batch_size is TIVOLI_BATCH_SIZE.
const EnvPrefix = "TIVOLI"

// Keys understood by Load.
const (
	KeySourceDB     = "source_db"
	KeyDestDB       = "dest_db"
	KeyGalleriesDir = "galleries_dir"
	KeyLegacyDB     = "legacy_db"
	KeyBatchSize    = "batch_size"
	KeyJPEGQuality  = "jpeg_quality"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyFontPaths    = "font_paths"
)

// Config captures the settings shared by the tivoli commands.
type Config struct {
	SourceDB     string
	DestDB       string
	GalleriesDir string
	// LegacyDB is where the fixture generator writes a flat legacy copy of
	// its catalog. Empty disables it.
	LegacyDB    string
	BatchSize   int
	JPEGQuality int
	LogLevel    string
	LogFormat   string
	FontPaths   []string
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySourceDB, "../../tivoli/data/tivoli.db")
	v.SetDefault(KeyDestDB, "data/tivoli.db")
	v.SetDefault(KeyGalleriesDir, "galleries")
	v.SetDefault(KeyLegacyDB, "")
	v.SetDefault(KeyBatchSize, 10000)
	v.SetDefault(KeyJPEGQuality, 85)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyFontPaths, []string{
		"/System/Library/Fonts/Helvetica.ttc",
		"/System/Library/Fonts/SFNSText.ttf",
		"/System/Library/Fonts/Geneva.ttf",
	})
}

// New returns a viper instance with defaults registered and environment
// lookup enabled.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the config file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load reads every key from v and validates the result. All invalid keys are
// reported together.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		SourceDB:     strings.TrimSpace(v.GetString(KeySourceDB)),
		DestDB:       strings.TrimSpace(v.GetString(KeyDestDB)),
		GalleriesDir: strings.TrimSpace(v.GetString(KeyGalleriesDir)),
		LegacyDB:     strings.TrimSpace(v.GetString(KeyLegacyDB)),
		LogLevel:     strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFormat:    strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		FontPaths:    splitList(v.GetStringSlice(KeyFontPaths)),
	}

	invalid := make([]string, 0, 4)

	batchSize, err := intValue(v, KeyBatchSize)
	if err != nil || batchSize < 1 {
		invalid = append(invalid, KeyBatchSize)
	} else {
		cfg.BatchSize = batchSize
	}

	quality, err := intValue(v, KeyJPEGQuality)
	if err != nil || quality < 1 || quality > 100 {
		invalid = append(invalid, KeyJPEGQuality)
	} else {
		cfg.JPEGQuality = quality
	}

	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		invalid = append(invalid, KeyLogLevel)
	}
	if !slices.Contains(validLogFormats, cfg.LogFormat) {
		invalid = append(invalid, KeyLogFormat)
	}
	for key, value := range map[string]string{
		KeySourceDB:     cfg.SourceDB,
		KeyDestDB:       cfg.DestDB,
		KeyGalleriesDir: cfg.GalleriesDir,
	} {
		if value == "" {
			invalid = append(invalid, key)
		}
	}

	if len(invalid) > 0 {
		slices.Sort(invalid)
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// intValue reads key strictly: viper's GetInt turns garbage into zero.
func intValue(v *viper.Viper, key string) (int, error) {
	switch raw := v.Get(key).(type) {
	case int:
		return raw, nil
	case int64:
		return int(raw), nil
	case float64:
		if raw != float64(int(raw)) {
			return 0, fmt.Errorf("%s: not an integer", key)
		}
		return int(raw), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	default:
		return v.GetInt(key), nil
	}
}

// splitList accepts both list values and a single comma separated string.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
