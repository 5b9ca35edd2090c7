package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/portfolio/internal/effort"
	"github.com/spf13/cobra"
)

func newConvertCmd(app *App) *cobra.Command {
	from, to := newUnitFlag(effort.Weeks), newUnitFlag(effort.Days)

	cmd := &cobra.Command{
		Use:   "convert <value>",
		Short: "Convert effort between weeks, days and hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[0], err)
			}
			fu, tu := from.unit, to.unit
			out, err := app.Converter.Convert(v, fu, tu)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n",
				strconv.FormatFloat(v, 'f', -1, 64), fu,
				strconv.FormatFloat(out, 'f', -1, 64), tu)
			return nil
		},
	}

	cmd.Flags().Var(&from, "from", "Source unit")
	cmd.Flags().Var(&to, "to", "Target unit")
	return cmd
}
