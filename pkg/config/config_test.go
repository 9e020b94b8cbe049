package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
mongodb:
  uri: mongodb://localhost:27017
auth:
  jwt_secret: s3cret
  token_ttl: 2h
orders:
  enforce_transitions: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "mercadito", cfg.MongoDB.Database)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTTL)
	assert.True(t, cfg.Orders.EnforceTransitions)
	assert.Equal(t, time.Minute, cfg.Orders.SummaryCacheTTL)
}

func TestLoadFailsFastWithoutSecret(t *testing.T) {
	path := writeConfig(t, `
mongodb:
  uri: mongodb://localhost:27017
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadFailsFastWithoutMongoURI(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: s3cret
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongodb.uri")
}

func TestValidateMailRequiresFrom(t *testing.T) {
	cfg := &Config{
		MongoDB: MongoDBConfig{URI: "mongodb://localhost:27017"},
		Auth:    AuthConfig{JWTSecret: "s3cret", TokenTTL: time.Hour},
		Mail:    MailConfig{Host: "smtp.example.com"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail.from")
}
