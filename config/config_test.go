package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webitel/live-relay-service/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("", []string{"--live.username=alice", "--live.url=ws://bridge/feed"})
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.False(t, cfg.GRPC.Enabled)
	assert.Equal(t, "alice", cfg.Live.Username)
	assert.Equal(t, config.SourceWS, cfg.Live.Source)
	assert.True(t, cfg.Live.Reconnect)
	assert.Equal(t, time.Second, cfg.Live.MinBackoff)
	assert.Equal(t, 50, cfg.Hub.BufferSize)
	assert.Equal(t, 256, cfg.Hub.MailboxSize)
	assert.EqualValues(t, 5, cfg.Live.BreakerFailures)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, config.ExporterOTLP, cfg.Tracing.Exporter)
	assert.Equal(t, "localhost:4317", cfg.Tracing.Endpoint)
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	t.Setenv("LIVE_RELAY_LIVE_USERNAME", "bob")
	t.Setenv("LIVE_RELAY_LIVE_URL", "ws://bridge/feed")
	t.Setenv("LIVE_RELAY_HUB_BUFFER_SIZE", "10")

	cfg, err := config.LoadConfig("", []string{"--hub.buffer_size=20"})
	require.NoError(t, err)

	assert.Equal(t, "bob", cfg.Live.Username)
	assert.Equal(t, 20, cfg.Hub.BufferSize, "explicit flags win over env")
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
live:
  username: carol
  source: amqp
amqp:
  url: amqp://rabbit:5672/
hub:
  buffer_size: 5
  mailbox_size: 5
log:
  level: debug
`), 0o600))

	cfg, err := config.LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "carol", cfg.Live.Username)
	assert.Equal(t, config.SourceAMQP, cfg.Live.Source)
	assert.Equal(t, "amqp://rabbit:5672/", cfg.AMQP.URL)
	assert.Equal(t, 5, cfg.Hub.BufferSize)
	assert.Equal(t, 5, cfg.Hub.MailboxSize)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Live: config.LiveConfig{
				Username:   "alice",
				Source:     config.SourceWS,
				URL:        "ws://bridge",
				MinBackoff: time.Second,
				MaxBackoff: time.Minute,
			},
			Hub: config.HubConfig{BufferSize: 50, MailboxSize: 50},
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*config.Config){
		"missing username": func(c *config.Config) { c.Live.Username = "" },
		"unknown source":   func(c *config.Config) { c.Live.Source = "kafka" },
		"ws without url":   func(c *config.Config) { c.Live.URL = "" },
		"amqp without url": func(c *config.Config) { c.Live.Source = config.SourceAMQP },
		"zero buffer":      func(c *config.Config) { c.Hub.BufferSize = 0 },
		"small mailbox":    func(c *config.Config) { c.Hub.MailboxSize = 10 },
		"inverted backoff": func(c *config.Config) { c.Live.MaxBackoff = time.Millisecond },
		"unknown exporter": func(c *config.Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "zipkin"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.ErrorIs(t, c.Validate(), config.ErrInvalidConfig)
		})
	}
}

func TestLevelFallsBackToInfo(t *testing.T) {
	c := &config.Config{Log: config.LogConfig{Level: "loud"}}
	assert.Equal(t, slog.LevelInfo, c.Level())
}

func TestWatchReloadsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	write := func(level string) {
		require.NoError(t, os.WriteFile(path, []byte("live:\n  username: alice\n  url: ws://bridge\nlog:\n  level: "+level+"\n"), 0o600))
	}
	write("info")

	cfg, err := config.LoadConfig(path, nil)
	require.NoError(t, err)

	levels := make(chan string, 8)
	cfg.Watch(func(next *config.Config, err error) {
		if err == nil {
			levels <- next.Log.Level
		}
	})

	write("debug")

	require.Eventually(t, func() bool {
		select {
		case l := <-levels:
			return l == "debug"
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}
