package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

// ContentTypeXLSX is served with every workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

type sheet struct {
	f    *excelize.File
	name string
	bold int
	row  int
}

func newWorkbook(first string) (*excelize.File, *sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(defaultSheet, first); err != nil {
		f.Close()
		return nil, nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, &sheet{f: f, name: first, bold: bold}, nil
}

func (s *sheet) next(name string) (*sheet, error) {
	if _, err := s.f.NewSheet(name); err != nil {
		return nil, err
	}
	return &sheet{f: s.f, name: name, bold: s.bold}, nil
}

// append writes values on the next row and returns its number.
func (s *sheet) append(values ...any) (int, error) {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return 0, err
	}
	return s.row, s.f.SetSheetRow(s.name, cell, &values)
}

func (s *sheet) header(values ...any) error {
	row, err := s.append(values...)
	if err != nil {
		return err
	}
	return s.boldRow(row, len(values))
}

func (s *sheet) boldRow(row, cols int) error {
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(cols, row)
	return s.f.SetCellStyle(s.name, from, to, s.bold)
}

func (s *sheet) skip() {
	s.row++
}

func (s *sheet) widths(cols int) error {
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	return s.f.SetColWidth(s.name, "A", last, 22)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// PaymentsWorkbook lists the payments of one period with a collected total.
func PaymentsWorkbook(period string, payments []models.Payment) (*excelize.File, error) {
	f, ws, err := newWorkbook("Payments " + period)
	if err != nil {
		return nil, err
	}
	err = func() error {
		if err := ws.header("User", "Month", "Amount (Rs.)", "Status", "Transaction ID", "Paid Date"); err != nil {
			return err
		}
		for _, p := range payments {
			paid := "N/A"
			if p.PaidAt != nil {
				paid = p.PaidAt.Format("2006-01-02 15:04")
			}
			if _, err := ws.append(p.FullName, p.Period, money(p.Amount), p.Status.Label(), orNA(p.TransactionID), paid); err != nil {
				return err
			}
		}
		ws.skip()
		row, err := ws.append("Total Collected:", "", money(models.SummarizePayments(payments).Collected))
		if err != nil {
			return err
		}
		if err := ws.boldRow(row, 3); err != nil {
			return err
		}
		return ws.widths(6)
	}()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("payments workbook: %w", err)
	}
	return f, nil
}

// GroceriesWorkbook lists the grocery ledger of one period with its total.
func GroceriesWorkbook(period string, items []models.GroceryItem) (*excelize.File, error) {
	f, ws, err := newWorkbook("Groceries " + period)
	if err != nil {
		return nil, err
	}
	err = func() error {
		if err := ws.header("Item Name", "Category", "Quantity", "Price (Rs.)", "Purchase Date"); err != nil {
			return err
		}
		for _, it := range items {
			if _, err := ws.append(it.Name, it.Category.Label(), it.Quantity, money(it.Price), it.PurchaseDate.Format(models.DateLayout)); err != nil {
				return err
			}
		}
		ws.skip()
		row, err := ws.append("Total Grocery Expenses:", "", "", money(models.GroceryTotal(items)))
		if err != nil {
			return err
		}
		if err := ws.boldRow(row, 4); err != nil {
			return err
		}
		return ws.widths(5)
	}()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("groceries workbook: %w", err)
	}
	return f, nil
}

// MonthlyWorkbook has a summary sheet followed by payments and, when there
// are any, groceries.
func MonthlyWorkbook(r MonthlyReport) (*excelize.File, error) {
	f, summary, err := newWorkbook("Summary")
	if err != nil {
		return nil, err
	}
	err = func() error {
		row, err := summary.append("Mess Management Report - " + r.Period)
		if err != nil {
			return err
		}
		if err := summary.boldRow(row, 1); err != nil {
			return err
		}
		summary.skip()
		rows := [][]any{
			{"Payment Summary"},
			{"Total Collected:", money(r.Summary.Collected)},
			{"Pending Payments:", r.Summary.Pending},
			{"Total Users:", r.Summary.Count},
			nil,
			{"Expense Summary"},
			{"Grocery Expenses:", money(r.GroceryTotal)},
			{"Fixed Expenses:", money(r.FixedTotal)},
			{"Total Expenses:", money(r.Expenses)},
			nil,
			{"Balance:", money(r.Balance())},
		}
		for _, values := range rows {
			if values == nil {
				summary.skip()
				continue
			}
			if _, err := summary.append(values...); err != nil {
				return err
			}
		}
		if err := summary.widths(2); err != nil {
			return err
		}

		ps, err := summary.next("Payments")
		if err != nil {
			return err
		}
		if err := ps.header("User", "Amount (Rs.)", "Status", "Transaction ID"); err != nil {
			return err
		}
		for _, p := range r.Payments {
			if _, err := ps.append(p.FullName, money(p.Amount), p.Status.Label(), orNA(p.TransactionID)); err != nil {
				return err
			}
		}
		ps.skip()
		row, err = ps.append("Total Collected:", money(r.Summary.Collected))
		if err != nil {
			return err
		}
		if err := ps.boldRow(row, 2); err != nil {
			return err
		}
		if err := ps.widths(4); err != nil {
			return err
		}

		if len(r.Groceries) == 0 {
			return nil
		}
		gs, err := summary.next("Groceries")
		if err != nil {
			return err
		}
		if err := gs.header("Item", "Category", "Quantity", "Price (Rs.)"); err != nil {
			return err
		}
		for _, it := range r.Groceries {
			if _, err := gs.append(it.Name, it.Category.Label(), it.Quantity, money(it.Price)); err != nil {
				return err
			}
		}
		gs.skip()
		row, err = gs.append("Total:", "", "", money(r.GroceryTotal))
		if err != nil {
			return err
		}
		if err := gs.boldRow(row, 4); err != nil {
			return err
		}
		return gs.widths(4)
	}()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("monthly workbook: %w", err)
	}
	return f, nil
}

// WriteWorkbook streams f to w and releases it.
func WriteWorkbook(w io.Writer, f *excelize.File) error {
	defer f.Close()
	return f.Write(w)
}
