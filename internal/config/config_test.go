package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"aurora-pvlogd/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "pvlogd.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
log_level = "debug"
serial_port = "/dev/ttyUSB0"
inverter_address = 3
broker_host = "broker.local"
broker_port = 1884
topic_root = "aurora"
report_api_key = "key"
report_system_id = "sid"
stats_period = 15
report_period = 600
clock_offset = 3600
history = true
history_db = "/tmp/history.db"
`)
	t.Setenv("PVLOGD_CONFIG", configPath)

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"pvlogd"}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
	assert.Equal(t, 3, cfg.InverterAddress)
	assert.Equal(t, "broker.local", cfg.BrokerHost)
	assert.Equal(t, 1884, cfg.BrokerPort)
	assert.Equal(t, "aurora", cfg.TopicRoot)
	assert.Equal(t, 15, cfg.StatsPeriod)
	assert.Equal(t, 600, cfg.ReportPeriod)
	assert.Equal(t, 3600, cfg.ClockOffset)
	assert.True(t, cfg.History)
	assert.Equal(t, "/tmp/history.db", cfg.HistoryDB)
}

func TestLoadDefaults(t *testing.T) {
	configPath := writeConfig(t, `
topic_root = "aurora"
`)
	t.Setenv("PVLOGD_CONFIG", configPath)

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"pvlogd"}

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, 19200, cfg.SerialBaud)
	assert.Equal(t, 2, cfg.InverterAddress)
	assert.Equal(t, 1883, cfg.BrokerPort)
	assert.Equal(t, 30, cfg.StatsPeriod)
	assert.Equal(t, 300, cfg.ReportPeriod)
	assert.Equal(t, "pool.ntp.org", cfg.NTPServer)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.False(t, cfg.History)
}

func TestLoadInvalidFormat(t *testing.T) {
	configPath := writeConfig(t, "This is not a valid TOML file\n")
	t.Setenv("PVLOGD_CONFIG", configPath)

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"pvlogd"}

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	configPath := writeConfig(t, `
log_level = "noisy"
`)
	t.Setenv("PVLOGD_CONFIG", configPath)

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"pvlogd"}

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid log level")
}

func TestLoadInvalidPeriod(t *testing.T) {
	configPath := writeConfig(t, `
stats_period = 0
`)
	t.Setenv("PVLOGD_CONFIG", configPath)

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"pvlogd"}

	_, err := config.Load()
	require.Error(t, err)
}

func TestFlagsOverrideFile(t *testing.T) {
	configPath := writeConfig(t, `
log_level = "info"
stats_period = 30
`)
	t.Setenv("PVLOGD_CONFIG", configPath)

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"pvlogd", "--log-level", "debug", "--stats-period", "10"}

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10, cfg.StatsPeriod)
}
