package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del reconciler.
type Config struct {
	Run     RunConfig     `yaml:"run"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// RunConfig son los parámetros de una ejecución. Los flags del CLI los sobreescriben.
type RunConfig struct {
	Currency        string   `yaml:"currency"`
	ExpiryCode      string   `yaml:"expiry_code"`      // DDMMMYY, p.ej. 27JUN25
	Strikes         []string `yaml:"strikes"`          // admite 'd' como separador decimal (2d4)
	DurationSeconds int      `yaml:"duration_seconds"` // t1
	IntervalSeconds int      `yaml:"interval_seconds"` // t2
	OutputFile      string   `yaml:"output_file"`
}

// APIConfig contiene el base URL de Deribit y el rate limit del cliente.
type APIConfig struct {
	DeribitBase string  `yaml:"deribit_base"`
	RatePerSec  float64 `yaml:"rate_per_sec"`
	Burst       int     `yaml:"burst"`
}

// StorageConfig controla dónde se persiste el histórico de runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// Un path vacío arranca solo con defaults y entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// Duration devuelve t1 como time.Duration.
func (c *Config) Duration() time.Duration {
	return time.Duration(c.Run.DurationSeconds) * time.Second
}

// Interval devuelve t2 como time.Duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Run.IntervalSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DERIBIT_BASE_URL"); v != "" {
		cfg.API.DeribitBase = v
	}
	if v := os.Getenv("DERIBIT_RATE_PER_SEC"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config.Load: DERIBIT_RATE_PER_SEC %q: %w", v, err)
		}
		cfg.API.RatePerSec = rate
	}
	if v := os.Getenv("OPTMARK_DB"); v != "" {
		cfg.Storage.DSN = v
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Run.IntervalSeconds <= 0 {
		cfg.Run.IntervalSeconds = 5
	}
	if cfg.Run.DurationSeconds <= 0 {
		cfg.Run.DurationSeconds = 60
	}
	if cfg.Run.OutputFile == "" {
		cfg.Run.OutputFile = "marks.csv"
	}
	if cfg.API.DeribitBase == "" {
		cfg.API.DeribitBase = "https://www.deribit.com/api/v2"
	}
	if cfg.API.RatePerSec <= 0 {
		cfg.API.RatePerSec = 15
	}
	if cfg.API.Burst <= 0 {
		cfg.API.Burst = int(cfg.API.RatePerSec)
		if cfg.API.Burst < 1 {
			cfg.API.Burst = 1
		}
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "optmark.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
