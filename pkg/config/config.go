// Package config holds the postcheck CLI settings, read from TOML through
// viper.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

var configDir string
var configFilePath string

// getConfigDir returns the platform config directory
func getConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "postcheck"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "postcheck"), nil
}

// Init loads defaults, then /etc/postcheck/config.toml, then the user
// config. POSTCHECK_* environment variables override all of them.
func Init(configPath string) error {
	var err error
	if configPath != "" {
		configDir = filepath.Dir(configPath)
		configFilePath = configPath
	} else {
		configDir, err = getConfigDir()
		if err != nil {
			return err
		}
		configFilePath = filepath.Join(configDir, "config.toml")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	viper.SetConfigType("toml")
	setDefaults()

	viper.SetEnvPrefix("postcheck")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key", "POSTCHECK_LLM_API_KEY", "LLM_API_KEY", "OPENAI_API_KEY")

	if runtime.GOOS != "windows" {
		sysConfig := "/etc/postcheck/config.toml"
		if _, err := os.Stat(sysConfig); err == nil {
			viper.SetConfigFile(sysConfig)
			_ = viper.ReadInConfig()
		}
	}

	viper.SetConfigFile(configFilePath)
	if _, err := os.Stat(configFilePath); err == nil {
		return viper.MergeInConfig()
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:8787")
	viper.SetDefault("api.timeout", 30)
	viper.SetDefault("api.key", "")
	viper.SetDefault("output.format", "text")

	viper.SetDefault("analysis.country", "")
	viper.SetDefault("analysis.platform", "")
	viper.SetDefault("analysis.engine", "")

	viper.SetDefault("llm.base_url", "https://api.openai.com/v1")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.timeout", 30)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", filepath.Join(configDir, "postcheck-cli.log"))
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetString returns a string configuration value
func GetString(key string) string {
	value := viper.GetString(key)
	if key == "log.file" {
		return expandPath(value)
	}
	return value
}

// GetInt returns an int configuration value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// Set overrides a value for this process only
func Set(key string, value interface{}) {
	viper.Set(key, value)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	return configDir
}

// GetConfigFile returns the user config file path
func GetConfigFile() string {
	return configFilePath
}
