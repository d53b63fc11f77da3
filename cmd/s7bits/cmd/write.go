package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spacemeshos/s7bits/config"
)

func newWriteCmd(cfg *config.Config, vip *viper.Viper) *cobra.Command {
	var (
		address uint64
		number  uint64
		data    string
	)

	writeCmd := &cobra.Command{
		Use:   "write [host]",
		Short: "Write a span of bits",
		Long: `Write the bits given with -d starting at bit address -a. The first
character of -d goes to address a. Bits outside the span, including the
other bits of the first and last byte, are left unchanged. When -n is
given it must equal the number of bits in -d.`,
		Example: "  s7bits write -a 1 -d 1 192.168.0.1\n  s7bits write --area DB1 -a 12 -n 4 -d 1001 192.168.0.1",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if cmd.Flags().Changed("number") {
				err = s.codec.WriteBitsN(cmd.Context(), address, number, data)
			} else {
				err = s.codec.WriteBits(cmd.Context(), address, data)
			}
			if err != nil {
				logger.Error("write failed",
					zap.Uint64("address", address),
					zap.String("data", data),
					zap.Error(err),
				)
				return err
			}

			green := color.New(color.FgGreen, color.Bold).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s has been written correctly from address %d\n", green("[+] "), data, address)
			return nil
		},
	}

	flags := writeCmd.Flags()
	flags.Uint64VarP(&address, "address", "a", 0, "Bit address from which data will be written")
	flags.Uint64VarP(&number, "number", "n", 0, "Number of bits to write, must match the length of -d")
	flags.StringVarP(&data, "data", "d", "", "Data in binary to write (e.g. 1001)")
	if err := writeCmd.MarkFlagRequired("data"); err != nil {
		panic(err)
	}
	return writeCmd
}
