// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"packjs-cli/internal/cueutil"
	"packjs-cli/internal/issue"

	"github.com/go-ini/ini"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the project config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// LegacyConfigFile is read when the project has no config.toml.
	LegacyConfigFile = "config.ini"
)

var (
	// ErrConfigPath is returned when an explicitly requested config file does not exist.
	ErrConfigPath = errors.New("invalid path for configuration file")
	// ErrConfigParse is returned when the config file cannot be decoded or fails validation.
	ErrConfigParse = errors.New("could not parse the config file")
)

//go:embed config_schema.cue
var configSchema string

// FlagKeys maps command-line flag names to the config keys they override.
var FlagKeys = map[string]string{
	"internal-name":      KeyInternalName,
	"external-name":      KeyExternalName,
	"main-file":          KeyMainFile,
	"output-file":        KeyOutputFile,
	"package-start-file": KeyPackageStartFile,
	"package-end-file":   KeyPackageEndFile,
	"ignore":             KeyIgnore,
}

// DefaultPath returns the config file used for projectDir when none is given
// explicitly: config.toml, or config.ini when only that one exists.
func DefaultPath(projectDir string) string {
	path := filepath.Join(projectDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(path) {
		return path
	}
	legacy := filepath.Join(projectDir, LegacyConfigFile)
	if fileExists(legacy) {
		return legacy
	}
	return path
}

// loadWithOptions resolves the configuration with the precedence
// flag > config file > default.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig(opts.ProjectDir)
	v.SetDefault(KeyInternalName, defaults.InternalName)
	v.SetDefault(KeyExternalName, defaults.ExternalName)
	v.SetDefault(KeyMainFile, defaults.MainFile)
	v.SetDefault(KeyOutputFile, defaults.OutputFile)
	v.SetDefault(KeyPackageStartFile, defaults.PackageStartFile)
	v.SetDefault(KeyPackageEndFile, defaults.PackageEndFile)
	v.SetDefault(KeyIgnore, defaults.Ignore)

	res := &Result{Skipped: opts.NoConfigFile}

	switch {
	case opts.NoConfigFile:
		// -x wins over -c: no file is consulted at all.
		res.Path = DefaultPath(opts.ProjectDir)
	case opts.ConfigFilePath != "":
		abs, err := filepath.Abs(opts.ConfigFilePath)
		if err != nil || !fileExists(abs) {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Omit -c to use config.toml in the project directory").
				WithIssue(issue.ConfigNotFoundId).
				Wrap(ErrConfigPath).
				BuildError()
		}
		res.Path = abs
		res.Found = true
	default:
		res.Path = DefaultPath(opts.ProjectDir)
		res.Found = fileExists(res.Path)
	}

	if res.Found {
		if err := loadFileIntoViper(v, res.Path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(res.Path).
				WithSuggestion("Check the file syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Pass -x to ignore the config file").
				WithIssue(issue.ConfigParseErrorId).
				Wrap(fmt.Errorf("%w: %w", ErrConfigParse, err)).
				BuildError()
		}
	}

	if err := bindFlags(v, opts.Flags); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Ignore == nil {
		cfg.Ignore = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion("Names must match [A-Za-z_$][A-Za-z0-9_$]*").
			WithSuggestion("File names must be plain names without directories").
			WithIssue(issue.ConfigParseErrorId).
			Wrap(err).
			BuildError()
	}

	res.Config = &cfg
	return res, nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	for name, key := range FlagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// loadFileIntoViper decodes the config file, validates it against the
// #Config schema and merges its contents into Viper.
func loadFileIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := decode(path, data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if err := cueutil.ValidateFile(configSchema, "#Config", data, configMap, path); err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// decode picks the decoder from the file extension. TOML is the default.
func decode(path string, data []byte) (map[string]any, error) {
	configMap := map[string]any{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(data, &configMap); err != nil {
			return nil, err
		}
	case ".ini":
		m, err := decodeINI(data)
		if err != nil {
			return nil, err
		}
		configMap = m
	default:
		if err := toml.Unmarshal(data, &configMap); err != nil {
			return nil, err
		}
	}

	if configMap == nil {
		configMap = map[string]any{}
	}
	return configMap, nil
}

// decodeINI reads the ini dialect of older projects. Sections are
// flattened in file order and a key repeated later wins. Keys ending in "[]"
// collect their values into a list.
func decodeINI(data []byte) (map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, data)
	if err != nil {
		return nil, err
	}

	configMap := map[string]any{}
	for _, section := range f.Sections() {
		for _, key := range section.Keys() {
			values := key.ValueWithShadows()
			if name, ok := strings.CutSuffix(key.Name(), "[]"); ok {
				list, _ := configMap[name].([]any)
				for _, v := range values {
					list = append(list, v)
				}
				configMap[name] = list
				continue
			}
			value := ""
			if len(values) > 0 {
				value = values[len(values)-1]
			}
			configMap[key.Name()] = value
		}
	}
	return configMap, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// Write stores cfg as commented TOML at path. It refuses to replace an
// existing file unless force is set.
func Write(path string, cfg *Config, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s: %w", path, os.ErrExist)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
