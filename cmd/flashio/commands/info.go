package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print image geometry and digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := appCtx.Flash.Info()
			if err != nil {
				return err
			}
			g := meta.Geometry
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Image:      %s\n", appCtx.Config.Image)
			fmt.Fprintf(w, "Bank:       %s..%#08x (%d bytes)\n", g.Base, g.End(), g.Size)
			fmt.Fprintf(w, "Erase unit: %d bytes x %d\n", g.EraseUnit, g.Units())
			fmt.Fprintf(w, "Sealed:     %t\n", meta.Sealed)
			fmt.Fprintf(w, "Digest:     %s\n", meta.Digest)
			return nil
		},
	}
}
