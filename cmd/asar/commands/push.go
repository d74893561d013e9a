package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/asar"
)

func newPushCmd(a *app) *cobra.Command {
	var tags []string
	cmd := &cobra.Command{
		Use:   "push <file> <ref>",
		Short: "Convert a theme and push it to an OCI registry",
		Long: `Push converts a theme stylesheet and pushes the archive to ref, which must
include a tag (e.g. ghcr.io/acme/themes/midnight:1.2.0). The archive is also
written to the configured destinations.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.newClient(ctx, true)
			if err != nil {
				return err
			}
			res, desc, err := c.PushFile(ctx, args[0], args[1], asar.PushWithTags(tags...))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s@%s\n", res.Name, args[1], desc.Digest)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "additional tags to apply")
	return cmd
}
