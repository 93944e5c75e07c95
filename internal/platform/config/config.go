// internal/platform/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"urlsift/internal/platform/errors"
	"urlsift/internal/platform/logx"
	"urlsift/internal/platform/urlfilter"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "URLSIFT_"

// DefaultConfigFile is picked up from the working directory when no --config is given.
const DefaultConfigFile = "urlsift.yaml"

// UI modes.
const (
	UIModePterm = "pterm"
	UIModeRaw   = "raw"
	UIModeQuiet = "quiet"
)

type Config struct {
	Filter     FilterConfig     `yaml:"filter" json:"filter"`
	Extensions ExtensionsConfig `yaml:"extensions" json:"extensions"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	UI         UIConfig         `yaml:"ui" json:"ui"`
	Log        LogConfig        `yaml:"log" json:"log"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`

	// File es el fichero de configuración efectivamente cargado ("" si ninguno).
	File string `yaml:"-" json:"-"`
}

type FilterConfig struct {
	BatchSize   int      `yaml:"batch_size" json:"batch_size" validate:"min=1"`
	RankWindow  int      `yaml:"rank_window" json:"rank_window" validate:"min=1"`
	MaxShapes   int      `yaml:"max_shapes" json:"max_shapes" validate:"min=1"`
	LongSegment int      `yaml:"long_segment" json:"long_segment" validate:"min=1"`
	Placeholder string   `yaml:"placeholder" json:"placeholder" validate:"required,excludes=/"`
	NoiseParams []string `yaml:"noise_params" json:"noise_params"`
}

type ExtensionsConfig struct {
	Defaults []string `yaml:"defaults" json:"defaults"`
	Store    string   `yaml:"store" json:"store"` // "" = sin persistencia
}

type OutputConfig struct {
	Path    string `yaml:"path" json:"path"`
	Format  string `yaml:"format" json:"format" validate:"oneof=txt json"`
	Summary bool   `yaml:"summary" json:"summary"`
}

type UIConfig struct {
	Mode string `yaml:"mode" json:"mode" validate:"oneof=pterm raw quiet"`
}

type LogConfig struct {
	Level      string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" validate:"min=1"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" validate:"min=0"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile" json:"textfile"`
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	fc := urlfilter.DefaultConfig()

	exts := make([]string, len(urlfilter.DefaultStaticExtensions))
	copy(exts, urlfilter.DefaultStaticExtensions)

	return Config{
		Filter: FilterConfig{
			BatchSize:   fc.BatchSize,
			RankWindow:  fc.RankWindow,
			MaxShapes:   fc.MaxShapes,
			LongSegment: fc.LongSegment,
			Placeholder: fc.Placeholder,
			NoiseParams: fc.NoiseParams,
		},
		Extensions: ExtensionsConfig{
			Defaults: exts,
			Store:    defaultStorePath(),
		},
		Output: OutputConfig{
			Format:  "txt",
			Summary: true,
		},
		UI: UIConfig{
			Mode: UIModePterm,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "urlsift", "extensions.yaml")
	}
	return ".urlsift-extensions.yaml"
}

// RegisterFlags declara los flags que Load entiende sobre fs.
func RegisterFlags(fs *pflag.FlagSet) {
	def := DefaultConfig()

	fs.String("config", "", "config file (yaml or json; default ./"+DefaultConfigFile+" if present)")

	fs.Int("batch-size", def.Filter.BatchSize, "URLs per progress report in the filter stage")
	fs.Int("rank-window", def.Filter.RankWindow, "members per group considered for ranking")
	fs.Int("max-shapes", def.Filter.MaxShapes, "representatives kept per group")
	fs.Int("long-segment", def.Filter.LongSegment, "path segment length treated as an ID")
	fs.String("placeholder", def.Filter.Placeholder, "replacement for ID-like path segments")
	fs.StringSlice("noise", nil, "query keys ignored when comparing URLs (replaces the default list)")

	fs.String("ext-store", def.Extensions.Store, "file persisting the extension set (empty disables persistence)")

	fs.StringP("output", "o", "", "output file (default filtered_urls_<timestamp>.<format>)")
	fs.StringP("format", "f", def.Output.Format, "output format: txt or json")
	fs.Bool("summary", def.Output.Summary, "print a summary table after the run")

	fs.String("ui", def.UI.Mode, "progress display: pterm, raw or quiet")

	fs.String("log-level", def.Log.Level, "log level: debug, info, warn or error")
	fs.String("log-file", "", "write JSON logs to this file (rotated)")
	fs.Int("log-max-size", def.Log.MaxSizeMB, "log file size in MB before rotation")
	fs.Int("log-max-backups", def.Log.MaxBackups, "rotated log files to keep")

	fs.String("metrics-textfile", "", "write prometheus metrics to this file when the process exits")
}

// Load construye la configuración: defaults -> fichero -> env -> flags.
// fs puede ser nil (sin flags).
func Load(fs *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()

	path, explicit := configPath(fs)
	if path != "" {
		if err := loadFromFile(&cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return cfg, errors.Wrapf(errors.ErrInvalidConfig, "config file %s: %v", path, err)
			}
		} else {
			cfg.File = path
		}
	}

	loadFromEnv(&cfg)

	if fs != nil {
		if err := loadFromFlags(&cfg, fs); err != nil {
			return cfg, errors.Wrap(errors.ErrInvalidConfig, err.Error())
		}
	}

	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// configPath resuelve el fichero a cargar. explicit indica si fue pedido
// por flag o env (en cuyo caso su ausencia es un error).
func configPath(fs *pflag.FlagSet) (string, bool) {
	if fs != nil && fs.Changed("config") {
		v, _ := fs.GetString("config")
		return strings.TrimSpace(v), true
	}
	if v := strings.TrimSpace(getenv(EnvPrefix+"CONFIG", "")); v != "" {
		return v, true
	}
	return DefaultConfigFile, false
}

func loadFromFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, cfg)
	default:
		err = yaml.Unmarshal(raw, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	p := EnvPrefix

	cfg.Filter.BatchSize = parseInt(getenv(p+"BATCH_SIZE", ""), cfg.Filter.BatchSize)
	cfg.Filter.RankWindow = parseInt(getenv(p+"RANK_WINDOW", ""), cfg.Filter.RankWindow)
	cfg.Filter.MaxShapes = parseInt(getenv(p+"MAX_SHAPES", ""), cfg.Filter.MaxShapes)
	cfg.Filter.LongSegment = parseInt(getenv(p+"LONG_SEGMENT", ""), cfg.Filter.LongSegment)
	cfg.Filter.Placeholder = getenv(p+"PLACEHOLDER", cfg.Filter.Placeholder)
	if v, ok := os.LookupEnv(p + "NOISE_PARAMS"); ok {
		cfg.Filter.NoiseParams = splitList(v)
	}

	if v, ok := os.LookupEnv(p + "EXTENSIONS"); ok {
		cfg.Extensions.Defaults = urlfilter.SplitExtensions(v)
	}
	cfg.Extensions.Store = getenv(p+"EXT_STORE", cfg.Extensions.Store)

	cfg.Output.Path = getenv(p+"OUTPUT", cfg.Output.Path)
	cfg.Output.Format = getenv(p+"FORMAT", cfg.Output.Format)
	if v, ok := os.LookupEnv(p + "SUMMARY"); ok {
		cfg.Output.Summary = parseBool(v)
	}

	cfg.UI.Mode = getenv(p+"UI", cfg.UI.Mode)

	cfg.Log.Level = getenv(p+"LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getenv(p+"LOG_FILE", cfg.Log.File)
	cfg.Log.MaxSizeMB = parseInt(getenv(p+"LOG_MAX_SIZE_MB", ""), cfg.Log.MaxSizeMB)
	cfg.Log.MaxBackups = parseInt(getenv(p+"LOG_MAX_BACKUPS", ""), cfg.Log.MaxBackups)

	cfg.Metrics.Textfile = getenv(p+"METRICS_TEXTFILE", cfg.Metrics.Textfile)
}

// loadFromFlags aplica sólo los flags fijados explícitamente en la línea de comandos.
func loadFromFlags(cfg *Config, fs *pflag.FlagSet) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	intFlag := func(name string, dst *int) {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		v, err := fs.GetInt(name)
		keep(err)
		if err == nil {
			*dst = v
		}
	}
	stringFlag := func(name string, dst *string) {
		if fs.Lookup(name) == nil || !fs.Changed(name) {
			return
		}
		v, err := fs.GetString(name)
		keep(err)
		if err == nil {
			*dst = v
		}
	}

	intFlag("batch-size", &cfg.Filter.BatchSize)
	intFlag("rank-window", &cfg.Filter.RankWindow)
	intFlag("max-shapes", &cfg.Filter.MaxShapes)
	intFlag("long-segment", &cfg.Filter.LongSegment)
	stringFlag("placeholder", &cfg.Filter.Placeholder)
	if fs.Lookup("noise") != nil && fs.Changed("noise") {
		v, err := fs.GetStringSlice("noise")
		keep(err)
		if err == nil {
			cfg.Filter.NoiseParams = v
		}
	}

	stringFlag("ext-store", &cfg.Extensions.Store)

	stringFlag("output", &cfg.Output.Path)
	stringFlag("format", &cfg.Output.Format)
	if fs.Lookup("summary") != nil && fs.Changed("summary") {
		v, err := fs.GetBool("summary")
		keep(err)
		if err == nil {
			cfg.Output.Summary = v
		}
	}

	stringFlag("ui", &cfg.UI.Mode)

	stringFlag("log-level", &cfg.Log.Level)
	stringFlag("log-file", &cfg.Log.File)
	intFlag("log-max-size", &cfg.Log.MaxSizeMB)
	intFlag("log-max-backups", &cfg.Log.MaxBackups)

	stringFlag("metrics-textfile", &cfg.Metrics.Textfile)

	return firstErr
}

func normalize(c *Config) {
	c.Filter.Placeholder = strings.TrimSpace(c.Filter.Placeholder)
	c.Filter.NoiseParams = normalizeKeys(c.Filter.NoiseParams)

	exts := make([]string, 0, len(c.Extensions.Defaults))
	seen := make(map[string]struct{}, len(c.Extensions.Defaults))
	for _, e := range c.Extensions.Defaults {
		n, ok := urlfilter.NormalizeExtension(e)
		if !ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		exts = append(exts, n)
	}
	c.Extensions.Defaults = exts
	c.Extensions.Store = strings.TrimSpace(c.Extensions.Store)

	c.Output.Path = strings.TrimSpace(c.Output.Path)
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = "txt"
	}

	c.UI.Mode = strings.ToLower(strings.TrimSpace(c.UI.Mode))
	if c.UI.Mode == "" {
		c.UI.Mode = UIModePterm
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch c.Log.Level {
	case "":
		c.Log.Level = "info"
	case "warning":
		c.Log.Level = "warn"
	case "err":
		c.Log.Level = "error"
	}
	c.Log.File = strings.TrimSpace(c.Log.File)

	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)
}

// normalizeKeys pone en minúsculas, recorta y deduplica conservando el orden.
func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Validate comprueba los rangos y enumerados declarados en las etiquetas validate.
func (c Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s (got %v)", field, fe.Param(), fe.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s] (got %q)", field, fe.Param(), fe.Value()))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "excludes":
			msgs = append(msgs, fmt.Sprintf("%s must not contain %q", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return errors.Wrap(errors.ErrInvalidConfig, strings.Join(msgs, "; "))
}

// FilterEngineConfig convierte la sección filter a la configuración del motor.
func (c Config) FilterEngineConfig() urlfilter.Config {
	noise := make([]string, len(c.Filter.NoiseParams))
	copy(noise, c.Filter.NoiseParams)

	return urlfilter.Config{
		BatchSize:   c.Filter.BatchSize,
		RankWindow:  c.Filter.RankWindow,
		MaxShapes:   c.Filter.MaxShapes,
		LongSegment: c.Filter.LongSegment,
		Placeholder: c.Filter.Placeholder,
		NoiseParams: noise,
	}
}

// LogOptions traduce la sección log a opciones de logx.
func (c Config) LogOptions() logx.Options {
	return logx.Options{
		Level:      logx.ParseLevel(c.Log.Level),
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	}
}

// ToYAML serializa la configuración efectiva.
func (c Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func splitList(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
}
