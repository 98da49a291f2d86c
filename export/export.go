/*
Package export generates the portfolio report workbook.

PURPOSE:
  Produces the three-sheet spreadsheet attached to portfolio report emails
  and downloadable from the admin surface. The column layout is a fixed
  contract:

  "User Details"  label/value rows: name, email, WhatsApp, then bank details,
                  plus a Report Details section naming the date range
  "Investments"   Inv. ID | Type | Plan Details | Date | Status | Amount |
                  Monthly Payout, a blank row, then a TOTAL footer summing
                  Amount and Monthly Payout
  "Withdrawals"   Date | ID | Amount | Fee | Payout | Status

  Dates render en-GB (dd/mm/yyyy). Monetary cells carry raw numbers, not
  formatted strings, so the workbook stays computable.

An optional date range filters both record sheets by creation date; the
range is echoed on the User Details sheet ("All Time" when absent).
*/
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ablelink/invest-engine/calendar"
	"github.com/ablelink/invest-engine/invest"
)

const dateLayout = "02/01/2006"

// DateRange bounds a report. The zero value means "All Time".
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// Label is the human-readable range echoed in the workbook and email body.
func (r DateRange) Label() string {
	if r.IsZero() {
		return "All Time"
	}
	return r.Start.Format(dateLayout) + " to " + r.End.Format(dateLayout)
}

// contains treats the range as date-only inclusive; a zero range admits all.
func (r DateRange) contains(t time.Time) bool {
	if r.IsZero() {
		return true
	}
	d := calendar.DateOnly(t)
	return !d.Before(calendar.DateOnly(r.Start)) && !d.After(calendar.DateOnly(r.End))
}

// Workbook renders the full report and returns the xlsx bytes.
func Workbook(user invest.UserProfile, investments []invest.Investment, withdrawals []invest.Withdrawal, rng DateRange) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := userDetailsSheet(f, user, rng); err != nil {
		return nil, err
	}
	if err := investmentsSheet(f, investments, rng); err != nil {
		return nil, err
	}
	if err := withdrawalsSheet(f, withdrawals, rng); err != nil {
		return nil, err
	}

	// The default sheet was replaced by User Details; nothing to delete.
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func userDetailsSheet(f *excelize.File, user invest.UserProfile, rng DateRange) error {
	const sheet = "User Details"
	// Rename the default sheet rather than creating a fourth.
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"User Details"},
		{"Full Name", user.FullName},
		{"Email Address", user.Email},
		{"WhatsApp Number", user.WhatsAppNumber},
		{},
		{"User Bank Details"},
		{"Bank Name", user.BankName},
		{"Account Name", user.AccountName},
		{"Account Number", user.AccountNumber},
		{},
		{"Report Details"},
		{"Date Range", rng.Label()},
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	return setWidths(f, sheet, 20, 40)
}

func investmentsSheet(f *excelize.File, investments []invest.Investment, rng DateRange) error {
	const sheet = "Investments"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Inv. ID", "Type", "Plan Details", "Date", "Status", "Amount", "Monthly Payout"},
	}

	var totalAmount, totalPayout float64
	for _, inv := range investments {
		if !rng.contains(inv.CreatedAt) {
			continue
		}
		amount, _ := inv.Amount.Float64()
		payout, _ := invest.MonthlyPayout(inv).Float64()
		totalAmount += amount
		totalPayout += payout
		rows = append(rows, []interface{}{
			inv.DisplayID,
			invest.PlanName(inv.Type),
			inv.Type,
			inv.CreatedAt.Format(dateLayout),
			string(inv.Status.Normalize()),
			amount,
			payout,
		})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"TOTAL", "", "", "", "", totalAmount, totalPayout})

	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	return setWidths(f, sheet, 30, 15, 30, 12, 12, 15, 15)
}

func withdrawalsSheet(f *excelize.File, withdrawals []invest.Withdrawal, rng DateRange) error {
	const sheet = "Withdrawals"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Date", "ID", "Amount", "Fee", "Payout", "Status"},
	}
	for _, w := range withdrawals {
		if !rng.contains(w.CreatedAt) {
			continue
		}
		amount, _ := w.Amount.Float64()
		fee, _ := w.ManagementFee.Float64()
		payout, _ := w.PayoutAmount.Float64()
		rows = append(rows, []interface{}{
			w.CreatedAt.Format(dateLayout),
			w.DisplayID,
			amount,
			fee,
			payout,
			string(w.Status),
		})
	}

	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	return setWidths(f, sheet, 12, 10, 15, 15, 15, 12)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func setWidths(f *excelize.File, sheet string, widths ...float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}
