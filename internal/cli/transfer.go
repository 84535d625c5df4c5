package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/carson-networks/banking-core/internal/authorization"
	"github.com/carson-networks/banking-core/internal/backend"
	"github.com/carson-networks/banking-core/internal/operator/actions"
	"github.com/carson-networks/banking-core/internal/service"
)

const cancelWord = "cancel"

var (
	transferFrom        string
	transferTo          string
	transferAmount      string
	transferDescription string
)

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.Flags().StringVar(&transferFrom, "from", "", "Source account ID or number")
	transferCmd.Flags().StringVar(&transferTo, "to", "", "Destination account number")
	transferCmd.Flags().StringVar(&transferAmount, "amount", "", "Amount to send")
	transferCmd.Flags().StringVar(&transferDescription, "description", "", "Free text shown to both parties")
	_ = transferCmd.MarkFlagRequired("from")
	_ = transferCmd.MarkFlagRequired("to")
	_ = transferCmd.MarkFlagRequired("amount")
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Send money, answering an OTP challenge when the bank asks for one",
	Long: `Submits a transfer. When the bank requires step-up authentication the
command prompts for the code on stdin. Type "cancel" to abandon the transfer.`,
	Args: cobra.NoArgs,
	RunE: runTransfer,
}

func runTransfer(cmd *cobra.Command, _ []string) error {
	amount, err := decimal.NewFromString(transferAmount)
	if err != nil {
		return fmt.Errorf("--amount: %w", err)
	}

	app, err := newClientApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	initiate := &actions.InitiateTransfer{Input: service.TransferInput{
		FromAccountID:   transferFrom,
		ToAccountNumber: transferTo,
		Amount:          amount,
		Description:     transferDescription,
	}}
	if err := app.operator.Process(ctx, initiate); err != nil {
		return err
	}
	result := initiate.Result
	dump(cmd, result)

	input := bufio.NewReader(cmd.InOrStdin())
	for result.State == authorization.StateOTPRequired {
		if result.Reason != authorization.ReasonNone {
			fmt.Fprintf(out, "%s (%s)\n", result.Message, result.Reason)
		}
		fmt.Fprintf(out, "%s\nCode (or %q): ", result.Challenge.ChallengeMessage, cancelWord)

		code, readErr := input.ReadString('\n')
		code = strings.TrimSpace(code)
		if readErr != nil && (code == "" || !errors.Is(readErr, io.EOF)) {
			cancel := &actions.CancelChallenge{TransactionID: result.TransactionID}
			_ = app.operator.Process(ctx, cancel)
			return fmt.Errorf("read code: %w", readErr)
		}

		if strings.EqualFold(code, cancelWord) {
			cancel := &actions.CancelChallenge{TransactionID: result.TransactionID}
			if err := app.operator.Process(ctx, cancel); err != nil {
				return err
			}
			result = cancel.Result
			break
		}

		verify := &actions.VerifyOTP{TransactionID: result.TransactionID, Code: code}
		err := app.operator.Process(ctx, verify)
		dump(cmd, verify.Result)
		if err != nil {
			if !backend.IsTransport(err) {
				return err
			}
			fmt.Fprintf(out, "The bank could not be reached, try the code again: %v\n", err)
		}
		result = verify.Result
	}

	return reportTransfer(cmd, result)
}

func reportTransfer(cmd *cobra.Command, result authorization.TransitionResult) error {
	out := cmd.OutOrStdout()

	switch result.State {
	case authorization.StateCompleted:
		txn := result.Transaction
		if txn == nil {
			fmt.Fprintf(out, "Transfer %s completed.\n", result.TransactionID)
			return nil
		}
		fmt.Fprintf(out, "Transfer %s completed: %s %s to %s, reference %s.\n",
			txn.ID, txn.Amount.StringFixed(2), txn.Currency, txn.DestinationAccountNumber, txn.ReferenceNumber)
		return nil
	case authorization.StateCancelled:
		fmt.Fprintf(out, "Transfer %s cancelled.\n", result.TransactionID)
		return nil
	default:
		return fmt.Errorf("transfer %s: %s: %s", strings.ToLower(result.State.String()), result.Reason, result.Message)
	}
}
