package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Collect CollectConfig `yaml:"collect" mapstructure:"collect"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Label   LabelConfig   `yaml:"label" mapstructure:"label"`
	Train   TrainConfig   `yaml:"train" mapstructure:"train"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// CollectConfig configures the report collector.
type CollectConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	MinCompanies int     `yaml:"min_companies" mapstructure:"min_companies"`
	FallbackFile string  `yaml:"fallback_file" mapstructure:"fallback_file"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries   int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Concurrency  int     `yaml:"concurrency" mapstructure:"concurrency"`
	MinYear      int     `yaml:"min_year" mapstructure:"min_year"`
	MaxYear      int     `yaml:"max_year" mapstructure:"max_year"`
	MinPDFBytes  int64   `yaml:"min_pdf_bytes" mapstructure:"min_pdf_bytes"`
	PDFDir       string  `yaml:"pdf_dir" mapstructure:"pdf_dir"`
	TextDir      string  `yaml:"text_dir" mapstructure:"text_dir"`
	MetadataPath string  `yaml:"metadata_path" mapstructure:"metadata_path"`
}

// ExtractConfig configures PDF text extraction.
type ExtractConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MaxPages      int    `yaml:"max_pages" mapstructure:"max_pages"`
	MinChars      int    `yaml:"min_chars" mapstructure:"min_chars"`
}

// LabelConfig configures excerpt labeling.
type LabelConfig struct {
	MetadataPath      string `yaml:"metadata_path" mapstructure:"metadata_path"`
	OutputPath        string `yaml:"output_path" mapstructure:"output_path"`
	MaxExcerptChars   int    `yaml:"max_excerpt_chars" mapstructure:"max_excerpt_chars"`
	ExcerptsPerReport int    `yaml:"excerpts_per_report" mapstructure:"excerpts_per_report"`
	ContextLines      int    `yaml:"context_lines" mapstructure:"context_lines"`
	MinWindowChars    int    `yaml:"min_window_chars" mapstructure:"min_window_chars"`
}

// TrainConfig configures classifier training.
type TrainConfig struct {
	DatasetPath    string  `yaml:"dataset_path" mapstructure:"dataset_path"`
	ValidationPath string  `yaml:"validation_path" mapstructure:"validation_path"`
	ModelDir       string  `yaml:"model_dir" mapstructure:"model_dir"`
	BaseModel      string  `yaml:"base_model" mapstructure:"base_model"`
	BatchSize      int     `yaml:"batch_size" mapstructure:"batch_size"`
	Epochs         int     `yaml:"epochs" mapstructure:"epochs"`
	LearningRate   float64 `yaml:"learning_rate" mapstructure:"learning_rate"`
	WeightDecay    float64 `yaml:"weight_decay" mapstructure:"weight_decay"`
	MaxLength      int     `yaml:"max_length" mapstructure:"max_length"`
	Seed           int64   `yaml:"seed" mapstructure:"seed"`
}

// StoreConfig configures the run ledger backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the classification server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	ModelDir       string   `yaml:"model_dir" mapstructure:"model_dir"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from ./config.yaml, when present, and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from path and environment. An empty path
// searches the working directory for an optional config.yaml; a named file
// must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.SetConfigType("yaml")

	// Environment
	v.SetEnvPrefix("SCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("collect.base_url", "https://www.annualreports.com")
	v.SetDefault("collect.min_companies", 50)
	v.SetDefault("collect.fallback_file", "")
	v.SetDefault("collect.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("collect.timeout_secs", 30)
	v.SetDefault("collect.max_retries", 3)
	v.SetDefault("collect.rate_per_sec", 1.0)
	v.SetDefault("collect.concurrency", 4)
	v.SetDefault("collect.min_year", 2020)
	v.SetDefault("collect.max_year", 2025)
	v.SetDefault("collect.min_pdf_bytes", 1000)
	v.SetDefault("collect.pdf_dir", "data/pdfs")
	v.SetDefault("collect.text_dir", "data/texts")
	v.SetDefault("collect.metadata_path", "data/pdf_metadata.csv")
	v.SetDefault("extract.provider", "native")
	v.SetDefault("extract.pdftotext_path", "pdftotext")
	v.SetDefault("extract.max_pages", 50)
	v.SetDefault("extract.min_chars", 500)
	v.SetDefault("label.metadata_path", "data/pdf_metadata.csv")
	v.SetDefault("label.output_path", "dataset.csv")
	v.SetDefault("label.max_excerpt_chars", 500)
	v.SetDefault("label.excerpts_per_report", 3)
	v.SetDefault("label.context_lines", 3)
	v.SetDefault("label.min_window_chars", 100)
	v.SetDefault("train.dataset_path", "dataset.csv")
	v.SetDefault("train.validation_path", "")
	v.SetDefault("train.model_dir", "./model")
	v.SetDefault("train.batch_size", 16)
	v.SetDefault("train.epochs", 3)
	v.SetDefault("train.learning_rate", 0.05)
	v.SetDefault("train.weight_decay", 0.01)
	v.SetDefault("train.max_length", 512)
	v.SetDefault("train.seed", 42)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "scope.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.model_dir", "./model")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
