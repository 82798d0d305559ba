package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"flashio/internal/domain"
)

// write --addr A [--in f]: erase the region and program the payload into it.
func writeCmd() *cobra.Command {
	var addr, in string
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Erase a region and program a file (or stdin) into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAddress(addr)
			if err != nil {
				return err
			}
			data, err := readInput(in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return fmt.Errorf("nothing to write")
			}
			n, err := appCtx.Flash.Program(passphrase, a, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes at %s\n", n, a)
			if n%2 == 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "padded with %#02x at %s\n", appCtx.Config.PadByte, a+domain.Address(n))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "start address (even)")
	cmd.Flags().StringVar(&in, "in", "", "input file (default stdin)")
	_ = cmd.MarkFlagRequired("addr")
	return cmd
}
