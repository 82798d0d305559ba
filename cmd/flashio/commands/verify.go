package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func verifyCmd() *cobra.Command {
	var addr, in string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare a region with a file (or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseAddress(addr)
			if err != nil {
				return err
			}
			want, err := readInput(in, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if len(want) == 0 {
				return fmt.Errorf("nothing to verify")
			}
			if err := appCtx.Flash.Verify(passphrase, a, want); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "verified %d bytes at %s\n", len(want), a)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "start address (even)")
	cmd.Flags().StringVar(&in, "in", "", "expected contents (default stdin)")
	_ = cmd.MarkFlagRequired("addr")
	return cmd
}
