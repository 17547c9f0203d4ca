// Configuration loading for the etable CLI.
package cli

import (
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/etable/internal/console"
	"github.com/mesh-intelligence/etable/internal/paths"
	"github.com/mesh-intelligence/etable/internal/textfile"
	"github.com/mesh-intelligence/etable/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// Config keys.
const (
	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyDelimiter      = "delimiter"
	cfgKeyEncoding       = "encoding"
	cfgKeyDefaultRows    = "default_rows"
	cfgKeyDefaultColumns = "default_columns"
	cfgKeyPrompt         = "prompt"
)

// settings is the resolved configuration of one invocation.
type settings struct {
	ConfigDir string
	DataDir   string
	Backend   string
	Prompt    string
	Text      textfile.Options
}

// newViper returns a Viper instance with every default set.
func newViper() *viper.Viper {
	def := textfile.DefaultOptions()

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyDelimiter, string(def.Delimiter))
	v.SetDefault(cfgKeyEncoding, def.Encoding)
	v.SetDefault(cfgKeyDefaultRows, def.DefaultRows)
	v.SetDefault(cfgKeyDefaultColumns, def.DefaultColumns)
	v.SetDefault(cfgKeyPrompt, console.DefaultPrompt)
	return v
}

// loadConfig reads config.yaml from configDir. A missing file is not an
// error; the defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := newViper()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// loadSettings resolves directories and reads the configuration they point
// to.
func (a *app) loadSettings() (settings, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return settings{}, err
	}

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}

	text, err := textOptions(v)
	if err != nil {
		return settings{}, err
	}

	return settings{
		ConfigDir: configDir,
		DataDir:   dataDir,
		Backend:   v.GetString(cfgKeyBackend),
		Prompt:    v.GetString(cfgKeyPrompt),
		Text:      text,
	}, nil
}

// textOptions builds and validates the file format options.
func textOptions(v *viper.Viper) (textfile.Options, error) {
	delim := v.GetString(cfgKeyDelimiter)
	if utf8.RuneCountInString(delim) != 1 {
		return textfile.Options{}, fmt.Errorf("config %s: want a single character, got %q", cfgKeyDelimiter, delim)
	}
	r, _ := utf8.DecodeRuneInString(delim)

	opts := textfile.Options{
		Delimiter:      r,
		Encoding:       v.GetString(cfgKeyEncoding),
		DefaultRows:    v.GetInt(cfgKeyDefaultRows),
		DefaultColumns: v.GetInt(cfgKeyDefaultColumns),
	}
	if err := opts.Validate(); err != nil {
		return textfile.Options{}, fmt.Errorf("config: %w", err)
	}
	return opts, nil
}

// storeConfig is the sheet store configuration of this invocation.
func (s settings) storeConfig() types.Config {
	return types.Config{Backend: s.Backend, DataDir: s.DataDir}
}

// configPath is the config.yaml location.
func (s settings) configPath() string {
	return filepath.Join(s.ConfigDir, configFileExt)
}
