package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func eraseCmd() *cobra.Command {
	var addr, size string
	cmd := &cobra.Command{
		Use:   "erase",
		Short: "Erase the erase units covering a region",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAddress(addr)
			if err != nil {
				return err
			}
			n, err := parseSize(size)
			if err != nil {
				return err
			}
			if err := appCtx.Flash.Erase(passphrase, a, n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "erased %d bytes at %s (whole erase units)\n", n, a)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "start address (even)")
	cmd.Flags().StringVar(&size, "size", "", "number of bytes")
	_ = cmd.MarkFlagRequired("addr")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}
