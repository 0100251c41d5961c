package scribe

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validViper() *viper.Viper {
	v := viper.New()
	v.Set("site.base_url", "https://example.com")
	v.Set("site.sitemap_path", "/sitemap.xml")
	v.Set("crawler.output_dir", "output")
	v.Set("crawler.concurrency", 5)
	v.Set("crawler.request_timeout", "30s")
	v.Set("crawler.user_agent", "sitescribe/1.0")
	v.Set("generator.max_depth", 3)
	v.Set("generator.max_pages", 500)
	return v
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(validViper())
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", cfg.BaseURL)
	assert.Equal(t, "/sitemap.xml", cfg.SitemapPath)
	assert.Equal(t, 5, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 500, cfg.GeneratorMaxPages)
	assert.False(t, cfg.DatabaseEnabled)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(v *viper.Viper)
		wantErr string
	}{
		{
			name:    "RelativeBaseURL",
			mutate:  func(v *viper.Viper) { v.Set("site.base_url", "example.com/docs") },
			wantErr: "site.base_url",
		},
		{
			name:    "FTPBaseURL",
			mutate:  func(v *viper.Viper) { v.Set("site.base_url", "ftp://example.com") },
			wantErr: "site.base_url",
		},
		{
			name:    "ZeroConcurrency",
			mutate:  func(v *viper.Viper) { v.Set("crawler.concurrency", 0) },
			wantErr: "crawler.concurrency",
		},
		{
			name:    "ZeroTimeout",
			mutate:  func(v *viper.Viper) { v.Set("crawler.request_timeout", "0s") },
			wantErr: "crawler.request_timeout",
		},
		{
			name:    "EmptyOutputDir",
			mutate:  func(v *viper.Viper) { v.Set("crawler.output_dir", "") },
			wantErr: "crawler.output_dir",
		},
		{
			name:    "NegativeHostQPS",
			mutate:  func(v *viper.Viper) { v.Set("crawler.host_qps", -1.0) },
			wantErr: "crawler.host_qps",
		},
		{
			name:    "DatabaseEnabledWithoutDSN",
			mutate:  func(v *viper.Viper) { v.Set("database.enabled", true) },
			wantErr: "database.dsn",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v := validViper()
			tc.mutate(v)
			_, err := LoadConfig(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
