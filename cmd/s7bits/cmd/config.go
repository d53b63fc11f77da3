package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spacemeshos/s7bits/config"
)

func newConfigCmd(cfg *config.Config, vip *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd.Flags(), cfg, vip); err != nil {
				return err
			}
			spew.Fdump(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func setFlags(cmd *cobra.Command, cfg *config.Config, vip *viper.Viper) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&cfg.ConfigFile, "config",
		cfg.ConfigFile, "Path to configuration file")

	flags.StringVar(&cfg.HomeDir, "homedir",
		cfg.HomeDir, "The directory that contains the configuration file and area images")

	flags.StringVar(&cfg.LogLevel, "log-level",
		cfg.LogLevel, "log level (debug, info, warn, error)")

	flags.StringVar(&cfg.Transport, "transport",
		cfg.Transport, "How to reach the area: s7 (PLC over ISO-on-TCP) or file (area images in --datadir)")

	flags.StringVar(&cfg.DataDir, "datadir",
		cfg.DataDir, "Directory of area images for the file transport")

	flags.IntVar(&cfg.Rack, "rack",
		cfg.Rack, "PLC rack")

	flags.IntVar(&cfg.Slot, "slot",
		cfg.Slot, "PLC slot")

	flags.IntVar(&cfg.Port, "port",
		cfg.Port, "PLC ISO-on-TCP port")

	flags.DurationVar(&cfg.Timeout, "timeout",
		cfg.Timeout, "PLC connect and request timeout")

	flags.DurationVar(&cfg.IdleTimeout, "idle-timeout",
		cfg.IdleTimeout, "Close the PLC connection after this much inactivity")

	flags.StringVar(&cfg.Area, "area",
		cfg.Area, "Memory area: PE, PA, MK or DB<n>")

	flags.StringVar(&cfg.Order, "order",
		cfg.Order, "Intra-byte bit numbering: lsb (bit 0 = 0x01) or msb (bit 0 = 0x80)")

	flags.StringVar(&cfg.MaxSpan, "max-span",
		cfg.MaxSpan, "Largest byte range a single request may touch, e.g. 222 or 4K (0 = no limit)")

	if err := vip.BindPFlags(flags); err != nil {
		panic(err)
	}
}

// loadConfig merges the configuration file into cfg. Flags set on the
// command line take precedence over the file.
func loadConfig(flags *pflag.FlagSet, cfg *config.Config, vip *viper.Viper) error {
	homeDir := smutil.GetCanonicalPath(vip.GetString("homedir"))

	// A non-default home directory moves the default config file and data
	// directory along with it.
	fileLocation := smutil.GetCanonicalPath(vip.GetString("config"))
	required := flags.Changed("config")
	if !required && homeDir != config.DefaultHomeDir {
		fileLocation = filepath.Join(homeDir, config.DefaultConfigFileName)
	}
	if err := loadConfigFile(fileLocation, required, vip); err != nil {
		return err
	}

	if err := vip.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ConfigFile = fileLocation
	cfg.HomeDir = homeDir
	if homeDir != config.DefaultHomeDir && cfg.DataDir == config.DefaultDataDir {
		cfg.DataDir = filepath.Join(homeDir, config.DefaultDataDirName)
	}
	cfg.DataDir = smutil.GetCanonicalPath(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// loadConfigFile reads fileLocation if present. A missing file is only an
// error when it was asked for explicitly.
func loadConfigFile(fileLocation string, required bool, vip *viper.Viper) error {
	if fileLocation == "" {
		return nil
	}

	if _, err := os.Stat(fileLocation); os.IsNotExist(err) {
		if !required {
			return nil
		}
		return fmt.Errorf("config file %v not found", fileLocation)
	}

	vip.SetConfigFile(fileLocation)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
