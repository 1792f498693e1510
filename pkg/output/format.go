// Package output provides utilities for formatting and displaying payoff results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/debt-payoff/internal/optimizer"
	"github.com/iwvelando/debt-payoff/internal/payoff"
	"github.com/iwvelando/debt-payoff/pkg/constants"
	"github.com/iwvelando/debt-payoff/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Render writes result in the named output format.
func Render(w io.Writer, outputFormat string, result *payoff.Result) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, result)
	case constants.OutputFormatCSV:
		return CsvFormat(w, result)
	case constants.OutputFormatJSON:
		return JSONFormat(w, result)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, result *payoff.Result) error {
	p := message.NewPrinter(language.English)
	ew := &errWriter{w: w}

	ew.printf("--- Payoff plan: %s strategy, budget %s ---\n", result.Strategy, format.Currency(result.Budget))
	ew.write(p.Sprintf("Status: %s after %d months", result.Status, result.MonthsSimulated))
	if result.MonthsSimulated > 0 {
		ew.printf(" (%s to %s)", result.StartMonth, result.EndMonth)
	}
	ew.printf("\n")
	if s := result.Shortfall; s != nil {
		ew.printf("Shortfall in %s: minimums of %s exceed the budget of %s\n",
			s.Month, format.Currency(s.Required), format.Currency(s.Available))
	}
	for _, warning := range result.Warnings {
		ew.printf("Warning: %s\n", warning.Message)
	}

	ew.printf("\nDate       | Loan | Kind | Principal | Interest | Payment | Balance | Budget Left | Total Balance\n")
	ew.printf("____       | ____ | ____ | _________ | ________ | _______ | _______ | ___________ | _____________\n")
	for _, r := range result.Ledger {
		ew.printf("%s | %s | %s | %s | %s | %s | %s | %s | %s\n",
			r.Date, r.LoanName, r.Kind,
			format.Currency(r.PrincipalPart),
			format.Currency(r.InterestPart),
			format.Currency(r.PaymentTotal),
			format.Currency(r.BalanceAfter),
			format.Currency(r.BudgetRemainingAfter),
			format.Currency(r.TotalBalanceAfter),
		)
	}

	ew.printf("\nLoan | Starting Balance | Principal Paid | Interest Paid | Total Paid | Months | Paid Off\n")
	ew.printf("____ | ________________ | ______________ | _____________ | __________ | ______ | ________\n")
	for _, s := range result.Summaries {
		payoffMonth := "-"
		if s.PayoffMonth != nil {
			payoffMonth = s.PayoffMonth.String()
		}
		ew.printf("%s | %s | %s | %s | %s | %d | %s\n",
			s.LoanName,
			format.Currency(s.StartingBalance),
			format.Currency(s.PrincipalPaid),
			format.Currency(s.InterestPaid),
			format.Currency(s.TotalPaid),
			s.PaymentMonths,
			payoffMonth,
		)
	}
	ew.printf("Total | | %s | %s | %s | |\n",
		format.Currency(result.Totals.PrincipalPaid),
		format.Currency(result.Totals.InterestPaid),
		format.Currency(result.Totals.TotalPaid),
	)
	return ew.err
}

var csvHeader = []string{
	"date", "kind", "loan_id", "loan_name",
	"principal", "interest", "payment",
	"balance_after", "budget_remaining_after", "total_balance_after",
}

// CsvFormat outputs the ledger in comma-separated value format.
func CsvFormat(w io.Writer, result *payoff.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range result.Ledger {
		err := cw.Write([]string{
			r.Date.String(),
			string(r.Kind),
			strconv.FormatInt(r.LoanID, 10),
			r.LoanName,
			r.PrincipalPart.StringFixed(constants.CurrencyPlaces),
			r.InterestPart.StringFixed(constants.CurrencyPlaces),
			r.PaymentTotal.StringFixed(constants.CurrencyPlaces),
			r.BalanceAfter.StringFixed(constants.CurrencyPlaces),
			r.BudgetRemainingAfter.StringFixed(constants.CurrencyPlaces),
			r.TotalBalanceAfter.StringFixed(constants.CurrencyPlaces),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONFormat writes v as indented JSON.
func JSONFormat(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderComparison writes a strategy comparison in the named output format.
func RenderComparison(w io.Writer, outputFormat string, comparison *payoff.Comparison) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return prettyComparison(w, comparison)
	case constants.OutputFormatCSV:
		return csvComparison(w, comparison)
	case constants.OutputFormatJSON:
		return JSONFormat(w, comparison)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

func prettyComparison(w io.Writer, comparison *payoff.Comparison) error {
	p := message.NewPrinter(language.English)
	ew := &errWriter{w: w}

	ew.printf("--- Strategy comparison ---\n")
	ew.printf("Strategy | Status | Months | Interest Paid | Total Paid | Extra Interest | Extra Months\n")
	ew.printf("________ | ______ | ______ | _____________ | __________ | ______________ | ____________\n")
	for _, o := range comparison.Outcomes {
		ew.write(p.Sprintf("%s | %s | %d | %s | %s | %s | %d\n",
			o.Strategy, o.Status, o.MonthsSimulated,
			format.Currency(o.InterestPaid),
			format.Currency(o.TotalPaid),
			format.Currency(o.InterestOverBest),
			o.MonthsOverBest,
		))
	}
	if comparison.Best != nil {
		ew.printf("Best strategy: %s\n", *comparison.Best)
	} else {
		ew.printf("No strategy pays off every loan with this budget\n")
	}
	return ew.err
}

func csvComparison(w io.Writer, comparison *payoff.Comparison) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"strategy", "status", "months", "interest_paid", "total_paid", "interest_over_best", "months_over_best"}); err != nil {
		return err
	}
	for _, o := range comparison.Outcomes {
		err := cw.Write([]string{
			o.Strategy.String(),
			string(o.Status),
			strconv.Itoa(o.MonthsSimulated),
			o.InterestPaid.StringFixed(constants.CurrencyPlaces),
			o.TotalPaid.StringFixed(constants.CurrencyPlaces),
			o.InterestOverBest.StringFixed(constants.CurrencyPlaces),
			strconv.Itoa(o.MonthsOverBest),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderBudgetSearch writes a minimum budget search summary in the named
// output format.
func RenderBudgetSearch(w io.Writer, outputFormat string, summary *optimizer.Summary) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		p := message.NewPrinter(language.English)
		ew := &errWriter{w: w}
		ew.printf("--- Minimum budget: %s strategy, %d month target ---\n", summary.Strategy, summary.TargetMonths)
		ew.printf("Configured budget: %s\n", format.Currency(summary.Original))
		ew.printf("Minimum budget: %s\n", format.Currency(summary.Value))
		ew.write(p.Sprintf("Paid off in %d months with %s interest after %d iterations\n",
			summary.MonthsSimulated, format.Currency(summary.InterestPaid), summary.Iterations))
		for _, note := range summary.Notes {
			ew.printf("Note: %s\n", note)
		}
		return ew.err
	case constants.OutputFormatCSV:
		cw := csv.NewWriter(w)
		rows := [][]string{
			{"strategy", "target_months", "original_budget", "minimum_budget", "months", "interest_paid", "iterations", "converged"},
			{
				summary.Strategy.String(),
				strconv.Itoa(summary.TargetMonths),
				summary.Original.StringFixed(constants.CurrencyPlaces),
				summary.Value.StringFixed(constants.CurrencyPlaces),
				strconv.Itoa(summary.MonthsSimulated),
				summary.InterestPaid.StringFixed(constants.CurrencyPlaces),
				strconv.Itoa(summary.Iterations),
				strconv.FormatBool(summary.Converged),
			},
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	case constants.OutputFormatJSON:
		return JSONFormat(w, summary)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// errWriter keeps the first write error so a table can be printed without
// checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(f string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, f, args...)
}

func (ew *errWriter) write(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}
