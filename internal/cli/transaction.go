package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carson-networks/banking-core/internal/operator/actions"
)

var transactionSecondary string

func init() {
	rootCmd.AddCommand(transactionCmd)

	transactionCmd.Flags().StringVar(&transactionSecondary, "secondary", "", "Storage key to try when the ID is not found")
}

var transactionCmd = &cobra.Command{
	Use:   "transaction [ID]",
	Short: "Look a transaction up by its ID, its storage key, or both",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTransaction,
}

func runTransaction(cmd *cobra.Command, args []string) error {
	var primary string
	if len(args) == 1 {
		primary = args[0]
	}
	if primary == "" && transactionSecondary == "" {
		return errors.New("an ID or --secondary is required")
	}

	app, err := newClientApp()
	if err != nil {
		return err
	}
	defer app.Close()

	action := &actions.ResolveTransaction{PrimaryID: primary, SecondaryID: transactionSecondary}
	if err := app.operator.Process(cmd.Context(), action); err != nil {
		return err
	}
	dump(cmd, action.Result)

	txn := action.Result
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%s\n", txn.ID)
	fmt.Fprintf(w, "Storage key\t%s\n", txn.SecondaryID)
	fmt.Fprintf(w, "Status\t%s\n", txn.Status)
	fmt.Fprintf(w, "Amount\t%s %s\n", txn.Amount.StringFixed(2), txn.Currency)
	fmt.Fprintf(w, "From\t%s\n", txn.SourceAccountID)
	fmt.Fprintf(w, "To\t%s\n", txn.DestinationAccountNumber)
	fmt.Fprintf(w, "Reference\t%s\n", txn.ReferenceNumber)
	fmt.Fprintf(w, "Created\t%s\n", txn.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if txn.CompletedAt != nil {
		fmt.Fprintf(w, "Completed\t%s\n", txn.CompletedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return w.Flush()
}
