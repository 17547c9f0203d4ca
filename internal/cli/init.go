package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/etable/pkg/store"
)

// configFile is the structure written to config.yaml.
type configFile struct {
	Backend        string `yaml:"backend"`
	DataDir        string `yaml:"data_dir,omitempty"`
	Delimiter      string `yaml:"delimiter"`
	Encoding       string `yaml:"encoding"`
	DefaultRows    int    `yaml:"default_rows"`
	DefaultColumns int    `yaml:"default_columns"`
	Prompt         string `yaml:"prompt"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and the sheet store",
		Long:  "Create the configuration directory with a default config.yaml, then initialize the sheet store backend.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	s := a.settings

	if err := os.MkdirAll(s.ConfigDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}
	written, err := writeConfigIfMissing(s)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}
	if written {
		a.logger.Info("wrote default config", "path", s.configPath())
	}

	st, err := store.Open(s.storeConfig(), a.logger)
	if err != nil {
		return sysError(fmt.Errorf("initialize storage: %w", err))
	}
	if err := st.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "etable initialized (config: %s, data: %s, backend: %s)\n", s.ConfigDir, s.DataDir, s.Backend)
	return nil
}

// writeConfigIfMissing writes the effective settings to config.yaml unless
// the file already exists.
func writeConfigIfMissing(s settings) (bool, error) {
	path := s.configPath()
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:        s.Backend,
		DataDir:        s.DataDir,
		Delimiter:      string(s.Text.Delimiter),
		Encoding:       s.Text.Encoding,
		DefaultRows:    s.Text.DefaultRows,
		DefaultColumns: s.Text.DefaultColumns,
		Prompt:         s.Prompt,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}
