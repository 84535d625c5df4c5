package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/carson-networks/banking-core/internal/calculator"
	"github.com/carson-networks/banking-core/internal/operator/actions"
)

var (
	projectAccount string
	projectBalance string
	projectRate    string
	projectMonths  int

	paymentAccount   string
	paymentPrincipal string
	paymentRate      string
	paymentTerm      int
	paymentSchedule  bool
)

func init() {
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(paymentCmd)

	projectCmd.Flags().StringVar(&projectAccount, "account", "", "Saving account ID or number to project")
	projectCmd.Flags().StringVar(&projectBalance, "balance", "", "Starting balance when no account is given")
	projectCmd.Flags().StringVar(&projectRate, "rate", "", "Annual rate in percent when no account is given")
	projectCmd.Flags().IntVar(&projectMonths, "months", 12, "Number of months to project")

	paymentCmd.Flags().StringVar(&paymentAccount, "account", "", "Mortgage account ID or number")
	paymentCmd.Flags().StringVar(&paymentPrincipal, "principal", "", "Outstanding principal when no account is given")
	paymentCmd.Flags().StringVar(&paymentRate, "rate", "", "Annual rate in percent when no account is given")
	paymentCmd.Flags().IntVar(&paymentTerm, "term", 0, "Term in years, defaults to the policy term")
	paymentCmd.Flags().BoolVar(&paymentSchedule, "schedule", false, "Print the full amortization schedule")
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project a saving balance with monthly compounding",
	Args:  cobra.NoArgs,
	RunE:  runProject,
}

var paymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Compute the fixed monthly payment of a mortgage",
	Args:  cobra.NoArgs,
	RunE:  runPayment,
}

func runProject(cmd *cobra.Command, _ []string) error {
	var (
		entries []calculator.ProjectionEntry
		err     error
	)
	if projectAccount != "" {
		app, err := newClientApp()
		if err != nil {
			return err
		}
		defer app.Close()

		action := &actions.ProjectSavings{AccountID: projectAccount, Months: projectMonths}
		if err := app.operator.Process(cmd.Context(), action); err != nil {
			return err
		}
		dump(cmd, action.Account)
		entries = action.Result
	} else {
		balance, rate, parseErr := parsePair("--balance", projectBalance, "--rate", projectRate)
		if parseErr != nil {
			return parseErr
		}
		entries, err = calculator.Project(balance, rate, projectMonths)
		if err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "MONTH\tINTEREST\tCUMULATIVE\tBALANCE\t")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", e.Month,
			e.MonthlyInterest.StringFixed(2), e.CumulativeInterest.StringFixed(2), e.EndingBalance.StringFixed(2))
	}
	return w.Flush()
}

func runPayment(cmd *cobra.Command, _ []string) error {
	term := paymentTerm
	if term == 0 {
		term = env.Policy.AmortizationTermYears
	}

	var principal, rate decimal.Decimal
	if paymentAccount != "" {
		if paymentTerm != 0 {
			return errors.New("--term applies only with --principal and --rate; accounts use the policy term")
		}
		app, err := newClientApp()
		if err != nil {
			return err
		}
		defer app.Close()

		action := &actions.MortgagePayment{AccountID: paymentAccount}
		if err := app.operator.Process(cmd.Context(), action); err != nil {
			return err
		}
		dump(cmd, action.Account)
		if !action.OK {
			fmt.Fprintf(cmd.OutOrStdout(), "No payment for account %s.\n", action.Account.AccountNumber)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Monthly payment: %s %s over %d years\n",
			action.Result.StringFixed(0), action.Account.Currency, term)
		if !paymentSchedule {
			return nil
		}
		principal = action.Account.OutstandingPrincipal()
		rate, _ = action.Account.AnnualRate()
	} else {
		var err error
		principal, rate, err = parsePair("--principal", paymentPrincipal, "--rate", paymentRate)
		if err != nil {
			return err
		}
		payment, err := calculator.MonthlyPayment(principal, rate, term)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Monthly payment: %s over %d years\n", payment.StringFixed(0), term)
		if !paymentSchedule {
			return nil
		}
	}

	rows, err := calculator.Schedule(principal, rate, term)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "MONTH\tPAYMENT\tINTEREST\tPRINCIPAL\tREMAINING\t")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n", r.Month,
			r.Payment.StringFixed(2), r.Interest.StringFixed(2), r.Principal.StringFixed(2), r.RemainingBalance.StringFixed(2))
	}
	return w.Flush()
}

func parsePair(firstName, first, secondName, second string) (decimal.Decimal, decimal.Decimal, error) {
	if first == "" || second == "" {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("either --account or both %s and %s are required", firstName, secondName)
	}
	a, err := decimal.NewFromString(first)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%s: %w", firstName, err)
	}
	b, err := decimal.NewFromString(second)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%s: %w", secondName, err)
	}
	return a, b, nil
}
