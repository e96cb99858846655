package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"dealscope/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Retailers RetailersConfig `mapstructure:"retailers"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Deal      DealConfig      `mapstructure:"deal"`
	Sitemap   SitemapConfig   `mapstructure:"sitemap"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ServerConfig governs the HTTP API and static article serving.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	PublicURL       string        `mapstructure:"public_url"`
	StaticDir       string        `mapstructure:"static_dir"`
	SPAIndex        string        `mapstructure:"spa_index"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SchedulerConfig governs collection cadence.
type SchedulerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	AlignToBucket   bool          `mapstructure:"align_to_bucket"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// RetailerConfig covers one storefront price endpoint.
type RetailerConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// RetailersConfig bundles both tracked storefronts.
type RetailersConfig struct {
	Amazon   RetailerConfig `mapstructure:"amazon"`
	Flipkart RetailerConfig `mapstructure:"flipkart"`
}

// AlertingConfig defines alert evaluation and email routing.
type AlertingConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Cooldown        time.Duration `mapstructure:"cooldown"`
	DropBelowLowPct float64       `mapstructure:"drop_below_low_pct"`
	HistoryDepth    int           `mapstructure:"history_depth"`
	Email           EmailConfig   `mapstructure:"email"`
}

// EmailConfig describes the transactional mail API.
type EmailConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	APIBase        string        `mapstructure:"api_base"`
	APIKey         string        `mapstructure:"api_key"`
	FromAddress    string        `mapstructure:"from_address"`
	FromName       string        `mapstructure:"from_name"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DealConfig exposes the verdict band boundaries.
type DealConfig struct {
	GreatAbove  int `mapstructure:"great_above"`
	GoodAbove   int `mapstructure:"good_above"`
	MirageBelow int `mapstructure:"mirage_below"`
}

// SitemapConfig sets sitemap generation behaviour.
type SitemapConfig struct {
	PingEndpoints []string `mapstructure:"ping_endpoints"`
	ChangeFreq    string   `mapstructure:"change_freq"`
	Priority      float64  `mapstructure:"priority"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEALSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dealscope")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.static_dir", "public")
	v.SetDefault("server.spa_index", "public/index.html")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.advisory_lock_key", int64(0x6465616C))
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("retailers.amazon.request_timeout", "10s")
	v.SetDefault("retailers.amazon.user_agent", "dealscope/1.0")
	v.SetDefault("retailers.flipkart.request_timeout", "10s")
	v.SetDefault("retailers.flipkart.user_agent", "dealscope/1.0")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.cooldown", "24h")
	v.SetDefault("alerting.drop_below_low_pct", 10.0)
	v.SetDefault("alerting.history_depth", 30)
	v.SetDefault("alerting.email.enabled", false)
	v.SetDefault("alerting.email.api_base", "https://api.resend.com")
	v.SetDefault("alerting.email.from_address", "alerts@dealscope.app")
	v.SetDefault("alerting.email.from_name", "Dealscope Alerts")
	v.SetDefault("alerting.email.request_timeout", "10s")

	v.SetDefault("deal.great_above", 70)
	v.SetDefault("deal.good_above", 50)
	v.SetDefault("deal.mirage_below", 30)

	v.SetDefault("sitemap.ping_endpoints", []string{
		"https://www.google.com/ping",
		"https://www.bing.com/ping",
	})
	v.SetDefault("sitemap.change_freq", "weekly")
	v.SetDefault("sitemap.priority", 0.7)

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Alerting.Cooldown < 0 {
		return fmt.Errorf("alerting.cooldown cannot be negative")
	}
	if c.Alerting.DropBelowLowPct < 0 || c.Alerting.DropBelowLowPct >= 100 {
		return fmt.Errorf("alerting.drop_below_low_pct must be in [0, 100)")
	}
	if c.Alerting.HistoryDepth <= 0 {
		return fmt.Errorf("alerting.history_depth must be greater than zero")
	}
	if c.Deal.GoodAbove > c.Deal.GreatAbove {
		return fmt.Errorf("deal.good_above cannot exceed deal.great_above")
	}
	if c.Deal.MirageBelow > c.Deal.GoodAbove {
		return fmt.Errorf("deal.mirage_below cannot exceed deal.good_above")
	}
	if c.Alerting.Email.Enabled {
		if c.Alerting.Email.APIKey == "" {
			return fmt.Errorf("alerting.email.api_key is required when email is enabled")
		}
		if c.Alerting.Email.FromAddress == "" {
			return fmt.Errorf("alerting.email.from_address is required when email is enabled")
		}
	}
	if c.Sitemap.Priority < 0 || c.Sitemap.Priority > 1 {
		return fmt.Errorf("sitemap.priority must be within [0, 1]")
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
