package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	asarcore "github.com/meigma/asar/core"
)

func newInspectCmd(_ *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List the entries of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			hdr, dataStart, err := asarcore.ParseHeader(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				raw, err := hdr.MarshalJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(raw))
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tOFFSET\tSIZE")
			for _, f := range hdr.Files {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", f.Name, dataStart+f.Offset, f.Size)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw header JSON")
	return cmd
}
