package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formbuilder/pkg/layout"
)

const (
	configName = "formbuilder"
	configType = "yaml"
	envPrefix  = "FORMBUILDER"

	keyViewport     = "viewport"
	keyRenderer     = "renderer"
	keyOutput       = "output"
	keyLogLevel     = "log.level"
	keyThemeName    = "theme.name"
	keyThemeVariant = "theme.variant"
	keyThemeTokens  = "theme.tokens"
	keyThemeAssets  = "theme.assets"

	defaultLogLevel = "info"
)

// loadConfig layers defaults, the optional config file and FORMBUILDER_*
// environment variables into v. A missing default config file is not an
// error; a missing explicit one is.
func loadConfig(v *viper.Viper, path string) error {
	v.SetDefault(keyViewport, string(layout.Large))
	v.SetDefault(keyRenderer, "html")
	v.SetDefault(keyOutput, "pretty")
	v.SetDefault(keyLogLevel, defaultLogLevel)
	v.SetDefault(keyThemeName, "")
	v.SetDefault(keyThemeVariant, "")
	v.SetDefault(keyThemeAssets, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return err
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	// BindPFlag only fails on a nil flag.
	_ = v.BindPFlag(key, flag)
}
