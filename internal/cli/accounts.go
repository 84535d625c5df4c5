package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carson-networks/banking-core/internal/operator/actions"
)

func init() {
	rootCmd.AddCommand(accountsCmd)
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the session owner's accounts",
	Args:  cobra.NoArgs,
	RunE:  runAccounts,
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	app, err := newClientApp()
	if err != nil {
		return err
	}
	defer app.Close()

	action := &actions.ListAccounts{}
	if err := app.operator.Process(cmd.Context(), action); err != nil {
		return err
	}
	dump(cmd, action.Result)

	out := cmd.OutOrStdout()
	if action.Result.Offline {
		fmt.Fprintln(out, "Backend unreachable, showing saved accounts.")
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tTYPE\tBALANCE\tRATE\tACTIVE")
	for _, account := range action.Result.Accounts {
		rate := "-"
		if r, ok := account.AnnualRate(); ok {
			rate = r.String() + "%"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\t%t\n",
			account.ID, account.AccountNumber, account.Type, account.Balance.StringFixed(2), account.Currency, rate, account.Active)
	}
	return w.Flush()
}
