package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"WORDPRESS_URL", "WP_URL", "WORDPRESS_USERNAME", "WP_USERNAME",
		"WORDPRESS_APPLICATION_PASSWORD", "WORDPRESS_APP_PASSWORD", "WP_APPLICATION_PASSWORD",
		"APPLICATION_PASSWORD", "DATABASE_URL", "NETLIFY_DATABASE_URL", "EXPORTS_DIR", "MEDIA_DIR",
		"REIMPORT_POSTS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 100, cfg.WordPress.PerPage)
	require.Equal(t, int64(500), cfg.WordPress.PageDelayMs)
	require.Equal(t, "exports", cfg.Paths.ExportDir)
	require.Equal(t, "media", cfg.Paths.MediaDir)
	require.Equal(t, "local", cfg.FileStore.Type)
	require.Equal(t, SanitizerRegex, cfg.Import.Sanitizer)
	require.False(t, cfg.Import.Reimport)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"wordpress":{"url":"https://file.example/"},"import":{"sanitizer":"tree"}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://file.example", cfg.WordPress.URL)
	require.Equal(t, SanitizerTree, cfg.Import.Sanitizer)

	t.Setenv("WP_URL", "https://env.example")
	t.Setenv("WORDPRESS_APP_PASSWORD", "abcd efgh")
	t.Setenv("REIMPORT_POSTS", "1")
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://env.example", cfg.WordPress.URL)
	require.Equal(t, "abcd efgh", cfg.WordPress.AppPassword)
	require.True(t, cfg.Import.Reimport)
}

func TestRequireWordPress(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.RequireWordPress(true)
	require.ErrorIs(t, err, appErr.ErrMissingConfig)
	require.Contains(t, err.Error(), "WORDPRESS_URL")
	require.Contains(t, err.Error(), "WORDPRESS_APPLICATION_PASSWORD")

	cfg.WordPress.URL = "https://example.org"
	require.NoError(t, cfg.RequireWordPress(false))
	require.Error(t, cfg.RequireWordPress(true))
	cfg.WordPress.AppPassword = "secret"
	require.NoError(t, cfg.RequireWordPress(true))
}

func TestRequireDatabase(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	require.ErrorIs(t, cfg.RequireDatabase(), appErr.ErrMissingConfig)

	t.Setenv("NETLIFY_DATABASE_URL", "postgres://u:p@localhost/db")
	cfg, err = Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.RequireDatabase())
}

func TestLoadRejectsUnknownSanitizer(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"import":{"sanitizer":"bleach"}}`), 0o644))
	_, err := Load(path)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestSiteDomainAndAuthorEmail(t *testing.T) {
	cfg := &Config{WordPress: WordPressConfig{URL: "https://www.example.org/blog"}}
	require.Equal(t, "example.org", cfg.SiteDomain())
	require.Equal(t, "blog@example.org", cfg.AuthorEmail())

	cfg.Import.DefaultAuthorEmail = "editor@example.org"
	require.Equal(t, "editor@example.org", cfg.AuthorEmail())

	require.Equal(t, "localhost", (&Config{}).SiteDomain())
}
