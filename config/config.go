package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/pitabwire/lingua/version"
)

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FromFile loads defaults and environment values, then overlays the YAML
// document at path. Keys present in the file win.
func FromFile[T any](path string) (T, error) {
	cfg, err := FromEnv[T]()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

type ConfigurationDefault struct {
	LogLevel      string `envDefault:"info"                      env:"LOG_LEVEL"       yaml:"log_level"`
	LogFormat     string `envDefault:"info"                      env:"LOG_FORMAT"      yaml:"log_format"`
	LogTimeFormat string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT" yaml:"log_time_format"`
	LogColored    bool   `envDefault:"true"                      env:"LOG_COLORED"     yaml:"log_colored"`

	LogShowStackTrace bool `envDefault:"false" env:"LOG_SHOW_STACK_TRACE" yaml:"log_show_stack_trace"`

	OpenTelemetryDisable    bool    `envDefault:"false" env:"OPENTELEMETRY_DISABLE"        yaml:"opentelemetry_disable"`
	OpenTelemetryTraceRatio float64 `envDefault:"0.1"   env:"OPENTELEMETRY_TRACE_ID_RATIO" yaml:"opentelemetry_trace_id_ratio"`

	ServiceName    string `envDefault:"lingua" env:"SERVICE_NAME"    yaml:"service_name"`
	ServiceVersion string `envDefault:""       env:"SERVICE_VERSION" yaml:"service_version"`

	// Worker pool settings
	WorkerPoolCPUFactorForWorkerCount int    `envDefault:"10"  env:"WORKER_POOL_CPU_FACTOR_FOR_WORKER_COUNT" yaml:"worker_pool_cpu_factor_for_worker_count"`
	WorkerPoolCapacity                int    `envDefault:"100" env:"WORKER_POOL_CAPACITY"                    yaml:"worker_pool_capacity"`
	WorkerPoolCount                   int    `envDefault:"100" env:"WORKER_POOL_COUNT"                       yaml:"worker_pool_count"`
	WorkerPoolExpiryDuration          string `envDefault:"1s"  env:"WORKER_POOL_EXPIRY_DURATION"             yaml:"worker_pool_expiry_duration"`

	// Localization settings
	LocalizationDefaultLanguage  string `envDefault:""         env:"LOCALIZATION_DEFAULT_LANGUAGE"  yaml:"localization_default_language"`
	LocalizationFallbackLanguage string `envDefault:""         env:"LOCALIZATION_FALLBACK_LANGUAGE" yaml:"localization_fallback_language"`
	LocalizationBasePath         string `envDefault:""         env:"LOCALIZATION_BASE_PATH"         yaml:"localization_base_path"`
	LocalizationProviderURL      string `envDefault:""         env:"LOCALIZATION_PROVIDER_URL"      yaml:"localization_provider_url"`
	LocalizationProviderFormat   string `envDefault:"blob"     env:"LOCALIZATION_PROVIDER_FORMAT"   yaml:"localization_provider_format"`
	LocalizationProviderTimeout  string `envDefault:"5s"       env:"LOCALIZATION_PROVIDER_TIMEOUT"  yaml:"localization_provider_timeout"`
	LocalizationBundlePrefix     string `envDefault:"messages" env:"LOCALIZATION_BUNDLE_PREFIX"     yaml:"localization_bundle_prefix"`
	LocalizationSQLDriver        string `envDefault:"sqlite"   env:"LOCALIZATION_SQL_DRIVER"        yaml:"localization_sql_driver"`
	LocalizationCacheCapacity    int    `envDefault:"4096"     env:"LOCALIZATION_CACHE_CAPACITY"    yaml:"localization_cache_capacity"`
	LocalizationRemoteCacheURL   string `envDefault:""         env:"LOCALIZATION_REMOTE_CACHE_URL"  yaml:"localization_remote_cache_url"`
	LocalizationRemoteCacheTTL   string `envDefault:"10m"      env:"LOCALIZATION_REMOTE_CACHE_TTL"  yaml:"localization_remote_cache_ttl"`
	LocalizationObjectFormat     string `envDefault:"json"     env:"LOCALIZATION_OBJECT_FORMAT"     yaml:"localization_object_format"`
	LocalizationChangesTopicURL  string `envDefault:""         env:"LOCALIZATION_CHANGES_TOPIC_URL" yaml:"localization_changes_topic_url"`
}

type ConfigurationService interface {
	Name() string
	Version() string
}

var _ ConfigurationService = new(ConfigurationDefault)

func (c *ConfigurationDefault) Name() string {
	return c.ServiceName
}

// Version returns the configured service version, or the build version.
func (c *ConfigurationDefault) Version() string {
	if c.ServiceVersion != "" {
		return c.ServiceVersion
	}
	return version.Current()
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingFormat() string
	LoggingTimeFormat() string
	LoggingShowStackTrace() bool
	LoggingColored() bool
	LoggingLevelIsDebug() bool
}

var _ ConfigurationLogLevel = new(ConfigurationDefault)

func (c *ConfigurationDefault) LoggingLevel() string {
	return c.LogLevel
}

func (c *ConfigurationDefault) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *ConfigurationDefault) LoggingFormat() string {
	return c.LogFormat
}

func (c *ConfigurationDefault) LoggingColored() bool {
	return c.LogColored
}

func (c *ConfigurationDefault) LoggingShowStackTrace() bool {
	return c.LogShowStackTrace
}

func (c *ConfigurationDefault) LoggingLevelIsDebug() bool {
	return c.LoggingLevel() == "debug" || c.LoggingLevel() == "trace"
}

type ConfigurationTelemetry interface {
	DisableOpenTelemetry() bool
	SamplingRatio() float64
}

var _ ConfigurationTelemetry = new(ConfigurationDefault)

func (c *ConfigurationDefault) DisableOpenTelemetry() bool {
	return c.OpenTelemetryDisable
}

func (c *ConfigurationDefault) SamplingRatio() float64 {
	return c.OpenTelemetryTraceRatio
}

type ConfigurationWorkerPool interface {
	GetCPUFactor() int
	GetCapacity() int
	GetCount() int
	GetExpiryDuration() time.Duration
}

var _ ConfigurationWorkerPool = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetCPUFactor() int {
	return c.WorkerPoolCPUFactorForWorkerCount
}

func (c *ConfigurationDefault) GetCapacity() int {
	return c.WorkerPoolCapacity
}

func (c *ConfigurationDefault) GetCount() int {
	return c.WorkerPoolCount
}

func (c *ConfigurationDefault) GetExpiryDuration() time.Duration {
	return parseDuration(c.WorkerPoolExpiryDuration, time.Second)
}

// Provider formats understood by ConfigurationLocalization.ProviderFormat.
const (
	ProviderFormatBlob   = "blob"
	ProviderFormatBundle = "bundle"
	ProviderFormatSQL    = "sql"
)

const (
	defaultProviderTimeout = 5 * time.Second
	defaultCacheCapacity   = 4096
	defaultRemoteCacheTTL  = 10 * time.Minute
)

type ConfigurationLocalization interface {
	DefaultLanguage() string
	FallbackLanguage() string
	BasePath() string
	ProviderURL() string
	ProviderFormat() string
	ProviderTimeout() time.Duration
	BundlePrefix() string
	SQLDriver() string
	CacheCapacity() int
	RemoteCacheURL() string
	RemoteCacheTTL() time.Duration
	ObjectFormat() string
	ChangesTopicURL() string
}

var _ ConfigurationLocalization = new(ConfigurationDefault)

func (c *ConfigurationDefault) DefaultLanguage() string {
	return strings.TrimSpace(c.LocalizationDefaultLanguage)
}

func (c *ConfigurationDefault) FallbackLanguage() string {
	return strings.TrimSpace(c.LocalizationFallbackLanguage)
}

func (c *ConfigurationDefault) BasePath() string {
	return c.LocalizationBasePath
}

func (c *ConfigurationDefault) ProviderURL() string {
	return c.LocalizationProviderURL
}

func (c *ConfigurationDefault) ProviderFormat() string {
	format := strings.ToLower(strings.TrimSpace(c.LocalizationProviderFormat))
	if format == "" {
		return ProviderFormatBlob
	}
	return format
}

func (c *ConfigurationDefault) ProviderTimeout() time.Duration {
	return parseDuration(c.LocalizationProviderTimeout, defaultProviderTimeout)
}

func (c *ConfigurationDefault) BundlePrefix() string {
	if c.LocalizationBundlePrefix == "" {
		return "messages"
	}
	return c.LocalizationBundlePrefix
}

func (c *ConfigurationDefault) SQLDriver() string {
	if c.LocalizationSQLDriver == "" {
		return "sqlite"
	}
	return c.LocalizationSQLDriver
}

func (c *ConfigurationDefault) CacheCapacity() int {
	if c.LocalizationCacheCapacity <= 0 {
		return defaultCacheCapacity
	}
	return c.LocalizationCacheCapacity
}

func (c *ConfigurationDefault) RemoteCacheURL() string {
	return c.LocalizationRemoteCacheURL
}

func (c *ConfigurationDefault) RemoteCacheTTL() time.Duration {
	return parseDuration(c.LocalizationRemoteCacheTTL, defaultRemoteCacheTTL)
}

func (c *ConfigurationDefault) ObjectFormat() string {
	return c.LocalizationObjectFormat
}

func (c *ConfigurationDefault) ChangesTopicURL() string {
	return c.LocalizationChangesTopicURL
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value != "" {
		duration, err := time.ParseDuration(value)
		if err == nil && duration > 0 {
			return duration
		}
	}
	return fallback
}
