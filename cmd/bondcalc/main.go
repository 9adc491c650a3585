// Command bondcalc values a bond described in a YAML file and prints its schedule.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/report"
	"github.com/Finanzas-e-Ingenieria-Economica-202501/finecorp/internal/valuation"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "bondcalc",
	Short:        "Bond schedule and yield calculator",
	SilenceUsage: true,
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Print the payment schedule and summary of a bond",
	Long: `Reads a bond from a YAML file and prints its payment schedule, cash flows,
duration, convexity and the TCEA / TREA yields. Percentages are written as
percent (7.5 means 7.5%).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		precision, _ := cmd.Flags().GetInt32("precision")
		graceFlag, _ := cmd.Flags().GetString("total-grace")
		asJSON, _ := cmd.Flags().GetBool("json")

		policy, err := valuation.ParseTotalGracePolicy(graceFlag)
		if err != nil {
			return err
		}
		spec, err := readBondFile(file)
		if err != nil {
			return err
		}

		res, err := valuation.NewCalculator(valuation.Options{Precision: precision, TotalGrace: policy}).Calculate(spec)
		if err != nil {
			return err
		}

		rep := report.Render(spec, res)
		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		_, err = fmt.Fprint(out, rep.Text())
		return err
	},
}

func init() {
	calculateCmd.Flags().StringP("file", "f", "", "YAML bond file")
	calculateCmd.Flags().Int32("precision", valuation.DefaultOptions().Precision, "decimal places kept by divisions and powers")
	calculateCmd.Flags().String("total-grace", string(valuation.WaiveTotalGrace), "interest during total grace: waive or capitalize")
	calculateCmd.Flags().Bool("json", false, "print the rendered report as JSON")
	calculateCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(calculateCmd)
}
