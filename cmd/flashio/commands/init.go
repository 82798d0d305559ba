package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an erased image for the configured bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := appCtx.Flash.Init(passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Image created at %s (%d bytes at %s).\nFingerprint: %s\n",
				appCtx.Config.Image, meta.Geometry.Size, meta.Geometry.Base, meta.Fingerprint())
			return nil
		},
	}
}
