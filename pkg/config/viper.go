// Package config is responsible for initializing the application's
// configuration. It uses the Viper library to read settings from a config
// file and environment variables, providing a unified configuration system.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitConfig initializes the application's configuration using Viper. It
// sets up default values, defines configuration search paths, and enables
// reading from environment variables. Designed to be called once at
// application startup.
func InitConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/sitescribe/")
	viper.AddConfigPath("$HOME/.sitescribe")

	viper.SetDefault("site.base_url", "")
	viper.SetDefault("site.sitemap_path", "/sitemap.xml")

	viper.SetDefault("crawler.output_dir", "output")
	viper.SetDefault("crawler.concurrency", 5)
	viper.SetDefault("crawler.request_timeout", "30s")
	viper.SetDefault("crawler.user_agent", "Sitescribe/1.0 (+https://github.com/sitescribe/sitescribe)")
	viper.SetDefault("crawler.host_qps", 0.0)

	viper.SetDefault("generator.max_depth", 3)
	viper.SetDefault("generator.max_pages", 500)
	viper.SetDefault("generator.command", []string{})
	viper.SetDefault("generator.output_file", "")

	viper.SetDefault("api.addr", "")
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.dsn", "")

	viper.SetDefault("logging.development", false)

	viper.SetEnvPrefix("SITESCRIBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal: defaults and env vars still apply.
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}
