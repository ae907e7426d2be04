package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type SystemConfig struct {
	Appid    string `mapstructure:"appid"`
	Location string `mapstructure:"location"`
	Workdir  string `mapstructure:"workdir"`
	Debug    bool   `mapstructure:"debug"`
}

type WebConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Secret string `mapstructure:"secret"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Passwd   string `mapstructure:"passwd"`
	MaxConn  int    `mapstructure:"max_conn"`
	IdleConn int    `mapstructure:"idle_conn"`
	Debug    bool   `mapstructure:"debug"`
}

type LogConfig struct {
	Mode       string `mapstructure:"mode"`
	FileEnable bool   `mapstructure:"file_enable"`
	Filename   string `mapstructure:"filename"`
}

// PaymentConfig selects the single delay source driving the simulated
// biometric charge. "client" arms a local timer; "store" waits for the
// persisted transaction status flip.
type PaymentConfig struct {
	DelaySource string `mapstructure:"delay_source"`
	PendingSecs int    `mapstructure:"pending_secs"`
	StoreSecs   int    `mapstructure:"store_secs"`
	DisplaySecs int    `mapstructure:"display_secs"`
	ExpireSecs  int    `mapstructure:"expire_secs"`
	CashierName string `mapstructure:"cashier_name"`
}

func (p PaymentConfig) PendingDelay() time.Duration { return time.Duration(p.PendingSecs) * time.Second }
func (p PaymentConfig) StoreDelay() time.Duration   { return time.Duration(p.StoreSecs) * time.Second }
func (p PaymentConfig) DisplayDelay() time.Duration { return time.Duration(p.DisplaySecs) * time.Second }
func (p PaymentConfig) ExpireAfter() time.Duration  { return time.Duration(p.ExpireSecs) * time.Second }

type SmtpConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type WebhookConfig struct {
	Enable bool   `mapstructure:"enable"`
	URL    string `mapstructure:"url"`
}

type AppConfig struct {
	System   SystemConfig  `mapstructure:"system"`
	Web      WebConfig     `mapstructure:"web"`
	Database DBConfig      `mapstructure:"database"`
	Logger   LogConfig     `mapstructure:"logger"`
	Payment  PaymentConfig `mapstructure:"payment"`
	Smtp     SmtpConfig    `mapstructure:"smtp"`
	Webhook  WebhookConfig `mapstructure:"webhook"`
}

const (
	DelaySourceClient = "client"
	DelaySourceStore  = "store"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("system.appid", "warungpos")
	v.SetDefault("system.location", "Asia/Jakarta")
	v.SetDefault("system.workdir", "/var/warungpos")
	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 1898)
	v.SetDefault("web.secret", "warungpos-web-secret")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "warungpos")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.max_conn", 100)
	v.SetDefault("database.idle_conn", 10)
	v.SetDefault("logger.mode", "development")
	v.SetDefault("logger.filename", "/var/warungpos/warungpos.log")
	v.SetDefault("payment.delay_source", DelaySourceClient)
	v.SetDefault("payment.pending_secs", 3)
	v.SetDefault("payment.store_secs", 20)
	v.SetDefault("payment.display_secs", 3)
	v.SetDefault("payment.expire_secs", 600)
	v.SetDefault("payment.cashier_name", "Ella Watson")
	v.SetDefault("smtp.port", 587)
}

// LoadConfig reads the YAML configuration file, applying defaults and
// WARUNGPOS_ environment overrides.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("WARUNGPOS")
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Payment.DelaySource != DelaySourceClient && cfg.Payment.DelaySource != DelaySourceStore {
		return nil, fmt.Errorf("payment.delay_source must be %q or %q, got %q",
			DelaySourceClient, DelaySourceStore, cfg.Payment.DelaySource)
	}
	return &cfg, nil
}
