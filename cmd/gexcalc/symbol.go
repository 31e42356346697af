package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/gexcalc/internal/chain"
)

func symbolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbol SYMBOL...",
		Short: "Decode OCC option symbols",
		Long: `Decode OCC-style option symbols into root, expiration, type and strike.

Examples:
  gexcalc symbol SPXW240119C04700000 SPX240216P04612500`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SYMBOL\tROOT\tEXPIRATION\tTYPE\tSTRIKE")

			var bad int
			for _, raw := range args {
				sym, err := chain.ParseSymbol(raw)
				if err != nil {
					logger.Error(err.Error())
					bad++
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					raw, sym.Root, sym.Expiration.Format(dateLayout), sym.Type, sym.Strike.StringFixed(3))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if bad > 0 {
				return fmt.Errorf("%d of %d symbols could not be decoded", bad, len(args))
			}
			return nil
		},
	}
}
