package commands

import (
	"github.com/spf13/cobra"

	"github.com/meigma/asar/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API over HTTP",
		Long: `Serve accepts theme uploads on POST /convert and responds with the archive.
Archives are also delivered to the configured S3 bucket and registry
namespace, but not written to the output directory.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := a.newClient(ctx, false)
			if err != nil {
				return err
			}
			cfg := a.cfg.Server
			s := server.New(c,
				server.WithLogger(a.logger),
				server.WithMaxUploadBytes(cfg.MaxUploadBytes),
				server.WithAllowedOrigins(cfg.AllowedOrigins...),
			)
			return s.ListenAndServe(ctx, cfg.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().Int64("max-upload-bytes", 0, "largest accepted upload")
	mustBind(a.v, cmd.Flags(), map[string]string{
		"server.addr":             "addr",
		"server.max_upload_bytes": "max-upload-bytes",
	})
	return cmd
}
