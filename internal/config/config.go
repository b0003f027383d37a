package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/michaelbrown/codepad/internal/judge"
	"github.com/michaelbrown/codepad/internal/logging"
	"github.com/michaelbrown/codepad/internal/sandbox"
)

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type SandboxConfig struct {
	Mode           sandbox.Mode `mapstructure:"mode"`
	sandbox.Policy `mapstructure:",squash"`
}

type Config struct {
	Server  ServerConfig   `mapstructure:"server"`
	Storage StorageConfig  `mapstructure:"storage"`
	Judge   judge.Config   `mapstructure:"judge"`
	Sandbox SandboxConfig  `mapstructure:"sandbox"`
	Log     logging.Config `mapstructure:"log"`
}

// Load reads codepad.yaml from the working directory or $HOME/.codepad, or
// from path when one is given. A missing default config file is not an
// error; every key has a default and CODEPAD_* variables override them
// (CODEPAD_JUDGE_BASE_URL sets judge.base_url).
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("codepad")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.codepad")
	}

	v.SetEnvPrefix("codepad")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Expand environment variables in the judge API key
	cfg.Judge.APIKey = expandEnv(cfg.Judge.APIKey)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	policy := sandbox.DefaultPolicy()

	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.db_path", filepath.Join(os.Getenv("HOME"), ".codepad", "codepad.db"))

	v.SetDefault("judge.base_url", "http://localhost:2358")
	v.SetDefault("judge.api_key", "")
	v.SetDefault("judge.auth_header", "X-Auth-Token")
	v.SetDefault("judge.poll_interval", "1500ms")
	v.SetDefault("judge.timeout", "60s")

	v.SetDefault("sandbox.mode", string(sandbox.ModeEmbedded))
	v.SetDefault("sandbox.max_memory", policy.MaxMemory)
	v.SetDefault("sandbox.max_timeout", policy.MaxTimeout.String())
	v.SetDefault("sandbox.max_output", policy.MaxOutput)
	v.SetDefault("sandbox.max_concurrent", policy.MaxConcurrent)
	v.SetDefault("sandbox.network", policy.Network)
	v.SetDefault("sandbox.image", policy.Image)
	v.SetDefault("sandbox.images", policy.Images)

	v.SetDefault("log.development", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stderr")
}

// expandEnv resolves a value of the form ${VAR}; anything else is returned as is.
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
}
