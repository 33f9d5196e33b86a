package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const baseConfigYAML = `
telegram:
  token: "123:abc"
database:
  host: localhost
  port: "5432"
  user: bot
  password: secret
  name: botdb
bot:
  owner_username: "@iwebix"
calculator:
  coupon_code: QUIZ5
`

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, baseConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "iwebix", cfg.Bot.OwnerUsername, "leading @ is stripped")
	assert.Equal(t, 5, cfg.Calculator.CouponPercent, "percent defaults when a code is set")
	assert.Equal(t, 4, cfg.Database.MaxConnections)
	assert.Equal(t, "longpoll", cfg.Telegram.RunMode)
	assert.Same(t, &cfg.Config, cfg.CoreConfig())
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing owner", `
telegram:
  token: "123:abc"
`},
		{"missing token", `
bot:
  owner_username: iwebix
`},
		{"percent out of range", `
telegram:
  token: "123:abc"
bot:
  owner_username: iwebix
calculator:
  coupon_percent: 150
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
