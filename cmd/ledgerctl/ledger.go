package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rangeFlags struct {
	since string
	until string
	limit int
}

func (r *rangeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.since, "since", "", "Only groups created at or after this date")
	cmd.Flags().StringVar(&r.until, "until", "", "Only groups created before this date")
	cmd.Flags().IntVar(&r.limit, "limit", 0, "Maximum number of groups (0 for all)")
}

func (r *rangeFlags) parse() (since, until *time.Time, err error) {
	if since, err = parseDay(r.since); err != nil {
		return nil, nil, err
	}
	if until, err = parseDay(r.until); err != nil {
		return nil, nil, err
	}
	return since, until, nil
}

func checkCmd(opts *rootOptions) *cobra.Command {
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the double-entry invariants of the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			since, until, err := rf.parse()
			if err != nil {
				return err
			}
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			uc, err := a.ledgerUC()
			if err != nil {
				return err
			}
			report, err := uc.CheckLedger(cmd.Context(), models.CheckFilter{Since: since, Until: until, Limit: rf.limit})
			if err != nil {
				return err
			}

			format, _ := parseFormat(opts.output)
			if err := render(cmd.OutOrStdout(), format, report, func(w io.Writer) { writeCheckReport(w, report) }); err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("%d ledger violations found", len(report.Violations))
			}
			a.log.WithField("groups", report.GroupsChecked).Info("Ledger is consistent")
			return nil
		},
	}
	rf.bind(cmd)
	return cmd
}

func writeCheckReport(w io.Writer, report *models.CheckReport) {
	fmt.Fprintf(w, "Groups checked: %d\n", report.GroupsChecked)
	if report.OK() {
		fmt.Fprintln(w, "Violations:     none")
		return
	}
	fmt.Fprintf(w, "Violations:     %d\n", len(report.Violations))
	for _, v := range report.Violations {
		fmt.Fprintf(w, "  %s  %-28s %s\n", v.TransactionGroup, v.Rule, v.Detail)
	}
}

func splitFeesCmd(opts *rootOptions) *cobra.Command {
	var (
		rf     rangeFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "split-fees",
		Short: "Move legacy fee columns into separate fee transactions",
		Long: `Scans contribution groups that still carry fees in the legacy columns and
creates a separate CREDIT/DEBIT pair for each fee, zeroing the column.
Groups are processed one SQL transaction at a time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			since, until, err := rf.parse()
			if err != nil {
				return err
			}
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			uc, err := a.ledgerUC()
			if err != nil {
				return err
			}
			report, err := uc.SplitLegacyFees(cmd.Context(), models.SplitFilter{Since: since, Until: until, Limit: rf.limit, DryRun: dryRun})
			if err != nil {
				return err
			}

			a.log.WithFields(logrus.Fields{
				"scanned": report.GroupsScanned,
				"split":   report.GroupsSplit,
				"failed":  len(report.Failed),
				"dry_run": report.DryRun,
			}).Info("Legacy fee split finished")

			format, _ := parseFormat(opts.output)
			return render(cmd.OutOrStdout(), format, report, func(w io.Writer) { writeSplitReport(w, report) })
		},
	}
	rf.bind(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be split without writing")
	return cmd
}

func writeSplitReport(w io.Writer, report *models.SplitReport) {
	if report.DryRun {
		fmt.Fprintln(w, "Dry run, nothing written")
	}
	fmt.Fprintf(w, "Groups scanned: %d\n", report.GroupsScanned)
	fmt.Fprintf(w, "Groups split:   %d\n", report.GroupsSplit)
	fmt.Fprintf(w, "Pairs created:  %d\n", report.PairsCreated)
	fmt.Fprintf(w, "Skipped:        %d\n", report.Skipped)

	kinds := make([]string, 0, len(report.ByKind))
	for k := range report.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-24s %d\n", k, report.ByKind[k])
	}
	for _, f := range report.Failed {
		fmt.Fprintf(w, "Failed: %s\n", f)
	}
}

func settlementCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Invoice and settle host debts to the platform",
	}
	cmd.AddCommand(settlementInvoiceCmd(opts))
	cmd.AddCommand(settlementSettleCmd(opts))
	cmd.AddCommand(settlementRunCmd(opts))
	return cmd
}

func settlementInvoiceCmd(opts *rootOptions) *cobra.Command {
	var (
		hostID int64
		until  string
	)

	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Invoice the owed settlements of one host",
		RunE: func(cmd *cobra.Command, args []string) error {
			if hostID <= 0 {
				return fmt.Errorf("--host is required")
			}
			untilAt := time.Now().UTC()
			t, err := parseDay(until)
			if err != nil {
				return err
			}
			if t != nil {
				untilAt = *t
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			uc, err := a.ledgerUC()
			if err != nil {
				return err
			}
			invoice, err := uc.InvoiceHostSettlements(cmd.Context(), hostID, untilAt)
			if err != nil {
				return err
			}
			return writeInvoices(cmd, opts, []*models.SettlementInvoice{invoice})
		},
	}
	cmd.Flags().Int64Var(&hostID, "host", 0, "Host collective id")
	cmd.Flags().StringVar(&until, "until", "", "Only debts created before this date (default now)")
	return cmd
}

func settlementSettleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "settle [invoice-id]",
		Short: "Mark the settlements of an invoice as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invoiceID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid invoice id %q: %w", args[0], err)
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			uc, err := a.ledgerUC()
			if err != nil {
				return err
			}
			invoice, err := uc.MarkInvoiceSettled(cmd.Context(), invoiceID)
			if err != nil {
				return err
			}
			a.log.WithField("invoice_id", invoice.InvoiceID).Info("Invoice settled")
			return writeInvoices(cmd, opts, []*models.SettlementInvoice{invoice})
		},
	}
}

func settlementRunCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Invoice every host with owed settlements, like the monthly cron",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			uc, err := a.ledgerUC()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			invoices, err := uc.RunMonthlySettlement(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			a.log.WithField("invoices", len(invoices)).Info("Settlement run finished")
			return writeInvoices(cmd, opts, invoices)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Give up after this long")
	return cmd
}

func writeInvoices(cmd *cobra.Command, opts *rootOptions, invoices []*models.SettlementInvoice) error {
	format, _ := parseFormat(opts.output)
	return render(cmd.OutOrStdout(), format, invoices, func(w io.Writer) {
		if len(invoices) == 0 {
			fmt.Fprintln(w, "No invoices")
			return
		}
		for _, inv := range invoices {
			fmt.Fprintf(w, "%s  host=%d  debts=%d\n", inv.InvoiceID, inv.HostCollectiveID, inv.Debts)
			currencies := make([]string, 0, len(inv.Totals))
			for c := range inv.Totals {
				currencies = append(currencies, c)
			}
			sort.Strings(currencies)
			for _, c := range currencies {
				fmt.Fprintf(w, "  %s %d\n", c, inv.Totals[c])
			}
		}
	})
}
