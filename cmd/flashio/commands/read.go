package commands

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// read --addr A --len N [--out f] [--hex]: dump a region.
func readCmd() *cobra.Command {
	var addr, length, out string
	var asHex bool
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Dump a region to stdout, a file, or as hex",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAddress(addr)
			if err != nil {
				return err
			}
			n, err := parseSize(length)
			if err != nil {
				return err
			}
			data, err := appCtx.Flash.Dump(passphrase, a, n)
			if err != nil {
				return err
			}
			switch {
			case out != "":
				return os.WriteFile(out, data, 0o644)
			case asHex:
				fmt.Fprint(cmd.OutOrStdout(), hex.Dump(data))
				return nil
			default:
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "start address (even)")
	cmd.Flags().StringVar(&length, "len", "", "number of bytes")
	cmd.Flags().StringVar(&out, "out", "", "output file")
	cmd.Flags().BoolVar(&asHex, "hex", false, "print a hex dump")
	_ = cmd.MarkFlagRequired("addr")
	_ = cmd.MarkFlagRequired("len")
	return cmd
}
