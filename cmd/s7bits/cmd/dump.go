package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spacemeshos/s7bits/config"
)

func newDumpCmd(cfg *config.Config, vip *viper.Viper) *cobra.Command {
	var (
		offset uint64
		length int
		output string
	)

	dumpCmd := &cobra.Command{
		Use:   "dump [host]",
		Short: "Save a byte range of an area to a file",
		Long: `Dump fetches --length bytes from --offset of the configured area and
writes them to --output. The file is replaced atomically. A dump taken
from offset 0 can be used as an area image by the file transport.`,
		Example: "  s7bits dump --area DB1 --length 64 -o ~/.s7bits/data/db1.bin 192.168.0.1",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if length <= 0 {
				return errors.New("--length must be at least 1")
			}
			if output == "" {
				return errors.New("--output is required")
			}
			if err := loadConfig(cmd.Flags(), cfg, vip); err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			s, err := openSession(cfg, hostArg(args), logger)
			if err != nil {
				return err
			}
			defer s.Close()

			area := s.codec.Area()
			b, err := s.transport.Fetch(cmd.Context(), area, offset, length)
			if err != nil {
				return fmt.Errorf("failed to fetch %v: %w", area, err)
			}
			if err := atomic.WriteFile(output, bytes.NewReader(b)); err != nil {
				return fmt.Errorf("failed to write %v: %w", output, err)
			}

			logger.Info("dump completed",
				zap.Stringer("area", area),
				zap.Uint64("offset", offset),
				zap.String("size", bytefmt.ByteSize(uint64(len(b)))),
				zap.String("output", output),
			)
			return nil
		},
	}

	flags := dumpCmd.Flags()
	flags.Uint64Var(&offset, "offset", 0, "First byte to dump")
	flags.IntVar(&length, "length", 0, "Number of bytes to dump")
	flags.StringVarP(&output, "output", "o", "", "File to write")
	return dumpCmd
}
