package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. OADOCKET_PIPELINE_MONTHS.
const EnvPrefix = "OADOCKET"

// Config holds all application configuration
type Config struct {
	Pipeline PipelineConfig
	OCR      OCRConfig
	Database DatabaseConfig
	Batch    BatchConfig
	Log      LogConfig
}

// PipelineConfig holds the docketing heuristics
type PipelineConfig struct {
	Months       int
	DeadlineRule string // "months" | "fixed_days"
	FixedDays    int
	TaskLeadDays int
	Classifier   string // "weighted" | "localized" | "either"
	OAThreshold  float64
	Jurisdiction string
	MaxIssues    int
}

// OCRConfig holds text extraction configuration
type OCRConfig struct {
	Pdftotext      string
	Pdftoppm       string
	Tesseract      string
	Lang           string
	DPI            int
	MaxPages       int
	TessdataDir    string
	EnableFallback bool
	TSVConfidence  bool
}

// DatabaseConfig holds database-related configuration. An empty DSN disables persistence.
type DatabaseConfig struct {
	Driver           string // "sqlite" | "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// BatchConfig holds directory batch configuration
type BatchConfig struct {
	Workers     int
	FileTimeout time.Duration
	SkipHidden  bool
}

type LogConfig struct {
	Level  string
	Format string
}

// SetDefaults registers every key with its default so env overrides resolve.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.months", 3)
	v.SetDefault("pipeline.deadline_rule", "months")
	v.SetDefault("pipeline.fixed_days", 90)
	v.SetDefault("pipeline.task_lead_days", 14)
	v.SetDefault("pipeline.classifier", "either")
	v.SetDefault("pipeline.oa_threshold", 0.35)
	v.SetDefault("pipeline.jurisdiction", "TW")
	v.SetDefault("pipeline.max_issues", 5)

	v.SetDefault("ocr.pdftotext", "pdftotext")
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.lang", "eng+chi_tra")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.max_pages", 0)
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.enable_fallback", true)
	v.SetDefault("ocr.tsv_confidence", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("database.statement_timeout", time.Duration(0))

	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.file_timeout", 2*time.Minute)
	v.SetDefault("batch.skip_hidden", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// NewViper returns a viper instance with defaults and env binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads configFile (YAML, optional) into v and builds a Config.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError(CodeConfig, "read config file", err)
		}
	}
	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper copies the resolved keys of v into a Config without validating.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Months:       v.GetInt("pipeline.months"),
			DeadlineRule: strings.ToLower(v.GetString("pipeline.deadline_rule")),
			FixedDays:    v.GetInt("pipeline.fixed_days"),
			TaskLeadDays: v.GetInt("pipeline.task_lead_days"),
			Classifier:   strings.ToLower(v.GetString("pipeline.classifier")),
			OAThreshold:  v.GetFloat64("pipeline.oa_threshold"),
			Jurisdiction: v.GetString("pipeline.jurisdiction"),
			MaxIssues:    v.GetInt("pipeline.max_issues"),
		},
		OCR: OCRConfig{
			Pdftotext:      v.GetString("ocr.pdftotext"),
			Pdftoppm:       v.GetString("ocr.pdftoppm"),
			Tesseract:      v.GetString("ocr.tesseract"),
			Lang:           v.GetString("ocr.lang"),
			DPI:            v.GetInt("ocr.dpi"),
			MaxPages:       v.GetInt("ocr.max_pages"),
			TessdataDir:    v.GetString("ocr.tessdata_dir"),
			EnableFallback: v.GetBool("ocr.enable_fallback"),
			TSVConfidence:  v.GetBool("ocr.tsv_confidence"),
		},
		Database: DatabaseConfig{
			Driver:           strings.ToLower(v.GetString("database.driver")),
			DSN:              v.GetString("database.dsn"),
			MaxConns:         v.GetInt32("database.max_conns"),
			MinConns:         v.GetInt32("database.min_conns"),
			MaxConnLifetime:  v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime:  v.GetDuration("database.max_conn_idle_time"),
			DialTimeout:      v.GetDuration("database.dial_timeout"),
			StatementTimeout: v.GetDuration("database.statement_timeout"),
		},
		Batch: BatchConfig{
			Workers:     v.GetInt("batch.workers"),
			FileTimeout: v.GetDuration("batch.file_timeout"),
			SkipHidden:  v.GetBool("batch.skip_hidden"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return NewAppError(CodeConfig, fmt.Sprintf(format, args...), ErrInvalidInput)
	}
	p := c.Pipeline
	switch p.DeadlineRule {
	case "months":
		if p.Months <= 0 {
			return invalid("pipeline.months must be positive, got %d", p.Months)
		}
	case "fixed_days":
		if p.FixedDays <= 0 {
			return invalid("pipeline.fixed_days must be positive, got %d", p.FixedDays)
		}
	default:
		return invalid("pipeline.deadline_rule must be months or fixed_days, got %q", p.DeadlineRule)
	}
	switch p.Classifier {
	case "weighted", "localized", "either":
	default:
		return invalid("pipeline.classifier must be weighted, localized or either, got %q", p.Classifier)
	}
	if p.TaskLeadDays <= 0 {
		return invalid("pipeline.task_lead_days must be positive, got %d", p.TaskLeadDays)
	}
	if p.OAThreshold <= 0 || p.OAThreshold > 1 {
		return invalid("pipeline.oa_threshold must be in (0,1], got %v", p.OAThreshold)
	}
	if p.MaxIssues <= 0 {
		return invalid("pipeline.max_issues must be positive, got %d", p.MaxIssues)
	}
	if c.Database.DSN != "" && c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return invalid("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Batch.Workers <= 0 {
		return invalid("batch.workers must be positive, got %d", c.Batch.Workers)
	}
	return nil
}
