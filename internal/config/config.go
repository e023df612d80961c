package config

import (
	"os"
	"strings"

	"aurora-pvlogd/internal/errors"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel     = "info"
	defaultSerialBaud   = 19200
	defaultBrokerPort   = 1883
	defaultStatsPeriod  = 30
	defaultReportPeriod = 300
	defaultNTPServer    = "pool.ntp.org"
	defaultListenAddr   = ":8080"
	defaultHistoryDB    = "/var/lib/pvlogd/history.db"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// Device link
	SerialPort      string `mapstructure:"serial_port"`
	SerialBaud      int    `mapstructure:"serial_baud"`
	InverterAddress int    `mapstructure:"inverter_address"`

	// Broker
	BrokerHost     string `mapstructure:"broker_host"`
	BrokerPort     int    `mapstructure:"broker_port"`
	BrokerUser     string `mapstructure:"broker_user"`
	BrokerPassword string `mapstructure:"broker_password"`
	TopicRoot      string `mapstructure:"topic_root"`

	// Remote report
	ReportURL      string `mapstructure:"report_url"`
	ReportAPIKey   string `mapstructure:"report_api_key"`
	ReportSystemID string `mapstructure:"report_system_id"`

	// Schedule
	StatsPeriod  int `mapstructure:"stats_period"`
	ReportPeriod int `mapstructure:"report_period"`

	// Clock
	ClockOffset int    `mapstructure:"clock_offset"`
	NTPServer   string `mapstructure:"ntp_server"`

	// Local history
	History   bool   `mapstructure:"history"`
	HistoryDB string `mapstructure:"history_db"`

	// Status endpoint
	ListenAddr string `mapstructure:"listen_addr"`
}

// Load reads configuration from the TOML file, environment (PVLOGD_ prefix)
// and command-line flags, in increasing order of precedence. An explicit
// config path can be given via PVLOGD_CONFIG.
func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("serial_baud", defaultSerialBaud)
	v.SetDefault("inverter_address", 2)
	v.SetDefault("broker_port", defaultBrokerPort)
	v.SetDefault("stats_period", defaultStatsPeriod)
	v.SetDefault("report_period", defaultReportPeriod)
	v.SetDefault("ntp_server", defaultNTPServer)
	v.SetDefault("listen_addr", defaultListenAddr)
	v.SetDefault("history_db", defaultHistoryDB)

	fs := pflag.NewFlagSet("pvlogd", pflag.ContinueOnError)
	fs.String("log-level", "", "Log level (debug, info, warning, error)")
	fs.String("serial-port", "", "Inverter serial port")
	fs.String("broker-host", "", "MQTT broker host")
	fs.Int("stats-period", 0, "Stats cadence in seconds")
	fs.Int("report-period", 0, "Report cadence in seconds")
	fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else if path := os.Getenv("PVLOGD_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pvlogd")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PVLOGD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	fs.Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		v.Set(strings.ReplaceAll(f.Name, "-", "_"), f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.LogLevel {
	case "debug", "info", "warning", "warn", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.StatsPeriod <= 0 {
		return errFactory.WithData(errors.ErrInvalidPeriod, c.StatsPeriod)
	}
	if c.ReportPeriod <= 0 {
		return errFactory.WithData(errors.ErrInvalidPeriod, c.ReportPeriod)
	}

	return nil
}
