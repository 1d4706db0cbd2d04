package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Mode         string        `mapstructure:"mode"`
}

// StorageConfig names the four flat files. The extension of each picks its
// format (.csv or .xlsx).
type StorageConfig struct {
	Dir                string `mapstructure:"dir"`
	PatientsFile       string `mapstructure:"patients_file"`
	ScheduleFile       string `mapstructure:"schedule_file"`
	ExportFile         string `mapstructure:"export_file"`
	CommunicationsFile string `mapstructure:"communications_file"`
}

func (s StorageConfig) PatientsPath() string       { return filepath.Join(s.Dir, s.PatientsFile) }
func (s StorageConfig) SchedulePath() string       { return filepath.Join(s.Dir, s.ScheduleFile) }
func (s StorageConfig) ExportPath() string         { return filepath.Join(s.Dir, s.ExportFile) }
func (s StorageConfig) CommunicationsPath() string { return filepath.Join(s.Dir, s.CommunicationsFile) }

type DoctorConfig struct {
	Name     string `mapstructure:"name"`
	Location string `mapstructure:"location"`
}

// DoctorNames lists the roster in configured order.
func (c ClinicConfig) DoctorNames() []string {
	names := make([]string, 0, len(c.Doctors))
	for _, d := range c.Doctors {
		names = append(names, d.Name)
	}
	return names
}

type ClinicConfig struct {
	Name         string         `mapstructure:"name"`
	Doctors      []DoctorConfig `mapstructure:"doctors"`
	Durations    []int          `mapstructure:"durations"`
	SlotMinutes  int            `mapstructure:"slot_minutes"`
	DayStart     string         `mapstructure:"day_start"`
	SlotsPerDay  int            `mapstructure:"slots_per_day"`
	DaysAhead    int            `mapstructure:"days_ahead"`
	SeedPatients int            `mapstructure:"seed_patients"`
}

type NotificationConfig struct {
	SubjectPrefix string `mapstructure:"subject_prefix"`
	BodyLimit     int    `mapstructure:"body_limit"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	MetricsPath       string `mapstructure:"metrics_path"`
}

type FlashConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Clinic       ClinicConfig       `mapstructure:"clinic"`
	Notification NotificationConfig `mapstructure:"notification"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	Log          LogConfig          `mapstructure:"log"`
	Monitoring   MonitoringConfig   `mapstructure:"monitoring"`
	Flash        FlashConfig        `mapstructure:"flash"`
}

// envOverrides are read with envconfig under the CLINIC_ prefix and win over
// the file.
type envOverrides struct {
	Port     int    `envconfig:"PORT"`
	DataDir  string `envconfig:"DATA_DIR"`
	LogLevel string `envconfig:"LOG_LEVEL"`
	GinMode  string `envconfig:"GIN_MODE"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.mode", "release")

	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.patients_file", "patients.csv")
	v.SetDefault("storage.schedule_file", "doctor_schedules.xlsx")
	v.SetDefault("storage.export_file", "appointments_export.xlsx")
	v.SetDefault("storage.communications_file", "communications_log.csv")

	v.SetDefault("clinic.name", "Clinic")
	v.SetDefault("clinic.doctors", []map[string]interface{}{
		{"name": "Dr. Rao", "location": "Main Clinic"},
		{"name": "Dr. Iyer", "location": "Downtown"},
		{"name": "Dr. Mehta", "location": "Uptown"},
	})
	v.SetDefault("clinic.durations", []int{30, 60})
	v.SetDefault("clinic.slot_minutes", 30)
	v.SetDefault("clinic.day_start", "09:00")
	v.SetDefault("clinic.slots_per_day", 16)
	v.SetDefault("clinic.days_ahead", 7)
	v.SetDefault("clinic.seed_patients", 10)

	v.SetDefault("notification.subject_prefix", "[Clinic]")
	v.SetDefault("notification.body_limit", 4000)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")

	v.SetDefault("flash.ttl", 5*time.Minute)
}

// LoadConfig reads config.yml from the usual places (or CONFIG_FILE), falling
// back to defaults when no file exists.
func LoadConfig() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load reads configuration from file, or searches the default paths when file
// is empty.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("clinic", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	if env.Port != 0 {
		cfg.Server.Port = env.Port
	}
	if env.DataDir != "" {
		cfg.Storage.Dir = env.DataDir
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.GinMode != "" {
		cfg.Server.Mode = env.GinMode
	}
	return nil
}

// Validate rejects settings the seed or booking flow cannot work with.
func (c *Config) Validate() error {
	if len(c.Clinic.Doctors) == 0 {
		return fmt.Errorf("clinic.doctors must list at least one doctor")
	}
	for i, d := range c.Clinic.Doctors {
		if d.Name == "" {
			return fmt.Errorf("clinic.doctors[%d].name is required", i)
		}
	}
	if c.Clinic.SlotMinutes <= 0 || c.Clinic.SlotsPerDay <= 0 || c.Clinic.DaysAhead <= 0 {
		return fmt.Errorf("clinic slot grid must be positive")
	}
	if _, err := time.Parse("15:04", c.Clinic.DayStart); err != nil {
		return fmt.Errorf("clinic.day_start: %w", err)
	}
	if len(c.Clinic.Durations) == 0 {
		return fmt.Errorf("clinic.durations must not be empty")
	}
	if c.Notification.BodyLimit <= 0 {
		return fmt.Errorf("notification.body_limit must be positive")
	}
	return nil
}
