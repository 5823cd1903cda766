package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Failure presentation policies for the page handler.
const (
	OnErrorPlaceholder = "placeholder"
	OnErrorUnavailable = "unavailable"
)

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	Environment     string `mapstructure:"environment"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	IdleTimeout     string `mapstructure:"idle_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds the connection parameters for the devs store.
// Keys live under "db" so the environment variables are DB_HOST, DB_NAME,
// DB_USER and DB_PASS.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"pass"`
	SSLMode  string `mapstructure:"sslmode"`
	Timeout  string `mapstructure:"timeout"`
}

type PageConfig struct {
	Title   string `mapstructure:"title"`
	OnError string `mapstructure:"on_error"`
}

type HealthCheckConfig struct {
	Interval string `mapstructure:"interval"`
}

type MetricsConfig struct {
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"db"`
	Page        PageConfig        `mapstructure:"page"`
	HealthCheck HealthCheckConfig `mapstructure:"health_check"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// Load builds the configuration from defaults, an optional .env file, an
// optional config.yaml and the process environment, in increasing priority.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env file", slog.String("error", err.Error()))
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "sharedappdb")
	v.SetDefault("db.user", "devops")
	v.SetDefault("db.pass", "password")
	v.SetDefault("db.sslmode", "prefer")
	v.SetDefault("db.timeout", "5s")

	v.SetDefault("page.title", "Shared DB app is up and running!")
	v.SetDefault("page.on_error", OnErrorPlaceholder)

	v.SetDefault("health_check.interval", "30s")

	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "devboard")

	v.SetDefault("logging.level", LogLevelInfo)
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(ValidateHostPort),
					),
					validation.Field(&sc.ReadTimeout, validation.Required, validation.By(validateDuration)),
					validation.Field(&sc.WriteTimeout, validation.Required, validation.By(validateDuration)),
					validation.Field(&sc.IdleTimeout, validation.Required, validation.By(validateDuration)),
					validation.Field(&sc.ShutdownTimeout, validation.Required, validation.By(validateDuration)),
				)
			}),
		),
		validation.Field(&c.Database,
			validation.Required,
			validation.By(func(value interface{}) error {
				dc, ok := value.(DatabaseConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a DatabaseConfig")
				}
				return validation.ValidateStruct(&dc,
					validation.Field(&dc.Host, validation.Required, is.Host),
					validation.Field(&dc.Port, validation.Required, validation.Min(1), validation.Max(65535)),
					validation.Field(&dc.Name, validation.Required),
					validation.Field(&dc.User, validation.Required),
					validation.Field(&dc.SSLMode,
						validation.Required,
						validation.In("disable", "allow", "prefer", "require", "verify-ca", "verify-full"),
					),
					validation.Field(&dc.Timeout, validation.Required, validation.By(validateDuration)),
				)
			}),
		),
		validation.Field(&c.Page,
			validation.Required,
			validation.By(func(value interface{}) error {
				pc, ok := value.(PageConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a PageConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.OnError,
						validation.Required,
						validation.In(OnErrorPlaceholder, OnErrorUnavailable),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.HealthCheck,
			validation.Required,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HealthCheckConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HealthCheckConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.Interval,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
		validation.Field(&c.Metrics,
			validation.Required,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MetricsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.Path,
						validation.Required,
						validation.By(validateMetricsPath),
					),
					validation.Field(&mc.Namespace, validation.Required),
				)
			}),
		),
	)
}

// ValidateHostPort accepts "host:port" and ":port" listen addresses.
func ValidateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d < 0 {
		return validation.NewError("validation_negative_duration", "must not be negative")
	}

	return nil
}

func validateMetricsPath(value interface{}) error {
	path, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if !strings.HasPrefix(path, "/") {
		return validation.NewError("validation_invalid_path", "must start with /")
	}

	if path == "/" {
		return validation.NewError("validation_reserved_path", "/ is reserved for the page")
	}

	return nil
}
