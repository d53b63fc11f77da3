package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spacemeshos/s7bits/config"
)

var (
	// Version is the version of the binary.
	Version = "0.0.0"

	// Commit is the commit hash of the binary.
	Commit = ""
)

// Execute runs the root command until completion or interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. Every call returns independent
// commands with their own config and flag state.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	vip := viper.New()

	rootCmd := &cobra.Command{
		Use:   "s7bits",
		Short: "Read or write single bits on Siemens PLCs",
		Long: `s7bits reads and writes arbitrary bit spans of a PLC memory area
(process inputs PE, process outputs PA, merkers MK or a data block DBn),
even though the PLC only exchanges whole bytes. Writes only touch the
requested bits; the surrounding bits of the first and last byte are
preserved.`,
		Version:      fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage: true,
	}

	setFlags(rootCmd, cfg, vip)

	rootCmd.AddCommand(
		newReadCmd(cfg, vip),
		newWriteCmd(cfg, vip),
		newDumpCmd(cfg, vip),
		newConfigCmd(cfg, vip),
	)
	return rootCmd
}
