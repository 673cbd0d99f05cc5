package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/handcalc/internal/expr"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an arithmetic expression",
	Long: `Evaluate an expression the way the calculator does.

Digits, + - * /, parentheses and unary signs are accepted. Spaces are
ignored. Results are printed as "<expression> = <value>".

Examples:
  handcalc eval 7+3
  handcalc eval "2 * (3 + 4)"`,
	Args:          cobra.MinimumNArgs(1),
	SilenceErrors: true,
	RunE:          runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	text := strings.ReplaceAll(strings.Join(args, ""), " ", "")

	out, err := expr.Evaluate(text)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), expr.Describe(err))
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
