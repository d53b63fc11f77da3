package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spacemeshos/s7bits/bitstream"
	"github.com/spacemeshos/s7bits/config"
)

func newReadCmd(cfg *config.Config, vip *viper.Viper) *cobra.Command {
	var (
		address uint64
		number  uint64
		table   bool
	)

	readCmd := &cobra.Command{
		Use:   "read [host]",
		Short: "Read a span of bits",
		Long: `Read -n bits starting at bit address -a. Bit address a is bit a%8 of
byte a/8 of the configured area.`,
		Example: "  s7bits read -a 4 -n 14 192.168.0.1\n  s7bits read --area DB1 -a 0 -n 8 --table 192.168.0.1",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if number == 0 {
				return errors.New("-n parameter misused or absent")
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

			bits, err := s.codec.ReadBits(cmd.Context(), address, number)
			if err != nil {
				logger.Error("read failed",
					zap.Uint64("address", address),
					zap.Uint64("number", number),
					zap.Error(err),
				)
				return err
			}

			if table {
				printTable(cmd.OutOrStdout(), address, bits)
			} else {
				printOutputs(cmd.OutOrStdout(), address, bits)
			}
			return nil
		},
	}

	flags := readCmd.Flags()
	flags.Uint64VarP(&address, "address", "a", 0, "Bit address from which data will be read")
	flags.Uint64VarP(&number, "number", "n", 0, "Number of bits to read")
	flags.BoolVar(&table, "table", false, "Print the bits as a table")
	return readCmd
}

func printOutputs(w io.Writer, address uint64, bits bitstream.Bits) {
	fmt.Fprintln(w, "===Outputs===")
	for i, bit := range bits {
		fmt.Fprintf(w, "Output %d: %v\n", address+uint64(i), bit)
	}
}

func printTable(w io.Writer, address uint64, bits bitstream.Bits) {
	data := make([][]string, 0, len(bits))
	for i, bit := range bits {
		addr := address + uint64(i)
		data = append(data, []string{
			strconv.FormatUint(addr, 10),
			fmt.Sprintf("%d.%d", addr/8, addr%8),
			bit.String(),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"address", "byte.bit", "value"})
	table.SetBorder(true)
	table.AppendBulk(data)
	table.Render()
}
