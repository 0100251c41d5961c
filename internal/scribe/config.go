package scribe

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config captures every configuration knob that influences a mirror run.
// All values originate from Viper so the pipeline can be configured via a
// file, env vars, or CLI flags.
type Config struct {
	BaseURL        string
	SitemapPath    string
	OutputDir      string
	Concurrency    int
	RequestTimeout time.Duration
	UserAgent      string
	HostQPS        float64

	GeneratorMaxDepth   int
	GeneratorMaxPages   int
	GeneratorCommand    []string
	GeneratorOutputFile string

	APIAddr         string
	DatabaseEnabled bool
	DatabaseDSN     string
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		BaseURL:             v.GetString("site.base_url"),
		SitemapPath:         v.GetString("site.sitemap_path"),
		OutputDir:           v.GetString("crawler.output_dir"),
		Concurrency:         v.GetInt("crawler.concurrency"),
		RequestTimeout:      v.GetDuration("crawler.request_timeout"),
		UserAgent:           v.GetString("crawler.user_agent"),
		HostQPS:             v.GetFloat64("crawler.host_qps"),
		GeneratorMaxDepth:   v.GetInt("generator.max_depth"),
		GeneratorMaxPages:   v.GetInt("generator.max_pages"),
		GeneratorCommand:    v.GetStringSlice("generator.command"),
		GeneratorOutputFile: v.GetString("generator.output_file"),
		APIAddr:             v.GetString("api.addr"),
		DatabaseEnabled:     v.GetBool("database.enabled"),
		DatabaseDSN:         v.GetString("database.dsn"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("site.base_url must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if c.SitemapPath == "" {
		return fmt.Errorf("site.sitemap_path must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("crawler.output_dir must be set")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be > 0")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.HostQPS < 0 {
		return fmt.Errorf("crawler.host_qps must be >= 0")
	}
	if c.GeneratorMaxDepth < 0 {
		return fmt.Errorf("generator.max_depth must be >= 0")
	}
	if c.GeneratorMaxPages <= 0 {
		return fmt.Errorf("generator.max_pages must be > 0")
	}
	if c.DatabaseEnabled && c.DatabaseDSN == "" {
		return fmt.Errorf("database.dsn must be set when database.enabled is true")
	}
	return nil
}
