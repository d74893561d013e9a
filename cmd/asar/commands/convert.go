package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/asar"
	asarhttp "github.com/meigma/asar/http"
)

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file|dir|url>...",
		Short: "Convert theme stylesheets into archives",
		Long: `Convert reads each BetterDiscord theme, builds a Replugged theme archive
named after the theme id, and delivers it to every configured destination.

Directories are searched recursively for *.theme.css files; paths listed in
the directory's .asarignore are skipped. http and https URLs are downloaded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.newClient(ctx, true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			for _, arg := range args {
				results, err := convertArg(cmd, c, arg)
				if err != nil {
					return err
				}
				for _, res := range results {
					fmt.Fprintf(out, "%s -> %s (%s)\n", res.Source, res.Name, res.Digest)
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("concurrency", 0, "themes converted at once when converting a directory")
	mustBind(a.v, cmd.Flags(), map[string]string{"convert.concurrency": "concurrency"})
	return cmd
}

func convertArg(cmd *cobra.Command, c *asar.Client, arg string) ([]*asar.Result, error) {
	ctx := cmd.Context()
	if asarhttp.IsURL(arg) {
		res, err := c.ConvertURL(ctx, arg)
		if err != nil {
			return nil, err
		}
		return []*asar.Result{res}, nil
	}

	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return c.ConvertDir(ctx, arg)
	}
	res, err := c.ConvertFile(ctx, arg)
	if err != nil {
		return nil, err
	}
	return []*asar.Result{res}, nil
}
