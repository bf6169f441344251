package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

// ContentTypePDF is served with every PDF.
const ContentTypePDF = "application/pdf"

// Core fonts only cover cp1252, so amounts use "Rs." instead of the rupee sign.
func rupees(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(2)
}

type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(title string) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor("Mess Management", true)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()
	return &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *document) heading(text string, size float64) {
	d.pdf.SetFont("Helvetica", "B", size)
	d.pdf.CellFormat(0, size*0.6, d.tr(text), "", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *document) pair(label, value string) {
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.CellFormat(60, 7, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 11)
	d.pdf.CellFormat(0, 7, d.tr(value), "", 1, "L", false, 0, "")
}

func (d *document) table(widths []float64, header []string, rows [][]string) {
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.SetFillColor(230, 232, 250)
	for i, h := range header {
		d.pdf.CellFormat(widths[i], 7, d.tr(h), "1", 0, "L", true, 0, "")
	}
	d.pdf.Ln(-1)
	d.pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		for i, cell := range row {
			d.pdf.CellFormat(widths[i], 7, d.tr(cell), "1", 0, "L", false, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(4)
}

func (d *document) write(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// MonthlyReportPDF renders the period summary with payment and grocery tables.
func MonthlyReportPDF(w io.Writer, messName string, r MonthlyReport) error {
	d := newDocument("Monthly Report " + r.Period)
	d.heading(messName, 18)
	d.heading("Monthly Report - "+r.Period, 14)

	d.pair("Total Collected:", rupees(r.Summary.Collected))
	d.pair("Pending Payments:", fmt.Sprint(r.Summary.Pending))
	d.pair("Total Users:", fmt.Sprint(r.Summary.Count))
	d.pair("Grocery Expenses:", rupees(r.GroceryTotal))
	d.pair("Fixed Expenses:", rupees(r.FixedTotal))
	d.pair("Total Expenses:", rupees(r.Expenses))
	d.pair("Balance:", rupees(r.Balance()))
	d.pdf.Ln(4)

	if r.Fixed != nil {
		d.heading("Fixed Expenses", 12)
		d.table([]float64{90, 60}, []string{"Expense", "Amount"}, [][]string{
			{"Kitchen Rent", rupees(r.Fixed.KitchenRent)},
			{"Maid Salary", rupees(r.Fixed.MaidSalary)},
			{"Gas Cylinder", rupees(r.Fixed.GasCylinder)},
			{"Other Expenses", rupees(r.Fixed.OtherExpenses)},
			{"Total", rupees(r.Fixed.TotalFixed)},
		})
	}

	d.heading("Payments", 12)
	rows := make([][]string, 0, len(r.Payments))
	for _, p := range r.Payments {
		rows = append(rows, []string{p.FullName, rupees(p.Amount), p.Status.Label(), orNA(p.TransactionID)})
	}
	d.table([]float64{55, 35, 30, 54}, []string{"User", "Amount", "Status", "Transaction ID"}, rows)

	if len(r.Groceries) > 0 {
		d.heading("Groceries", 12)
		rows = rows[:0]
		for _, it := range r.Groceries {
			rows = append(rows, []string{it.Name, it.Category.Label(), it.Quantity, rupees(it.Price), it.PurchaseDate.Format(models.DateLayout)})
		}
		d.table([]float64{50, 30, 30, 30, 34}, []string{"Item", "Category", "Quantity", "Price", "Date"}, rows)
	}
	return d.write(w)
}

// ReceiptPDF renders a member's receipt for one payment.
func ReceiptPDF(w io.Writer, s models.MessSettings, acct models.Account, p models.Payment, issued time.Time) error {
	d := newDocument("Payment Receipt " + p.Period)
	d.heading(s.MessName, 18)
	if s.Address != "" {
		d.pdf.SetFont("Helvetica", "", 10)
		d.pdf.MultiCell(0, 5, d.tr(s.Address), "", "L", false)
		d.pdf.Ln(2)
	}
	d.heading("Payment Receipt", 14)

	d.pair("Receipt No:", fmt.Sprintf("%s-%06d", p.Period, p.ID))
	d.pair("Issued:", issued.Format("2006-01-02 15:04"))
	d.pair("Member:", acct.FullName())
	d.pair("Username:", acct.Username)
	if acct.Profile != nil && acct.Profile.RoomNo != "" {
		d.pair("Room:", acct.Profile.RoomNo)
	}
	d.pair("Month:", p.Period)
	d.pair("Amount:", rupees(p.Amount))
	d.pair("Status:", p.Status.Label())
	d.pair("Transaction ID:", orNA(p.TransactionID))
	paid := "N/A"
	if p.PaidAt != nil {
		paid = p.PaidAt.Format("2006-01-02 15:04")
	}
	d.pair("Paid Date:", paid)
	if s.AdminUPIID != "" {
		d.pair("Paid To (UPI):", s.AdminUPIID)
	}

	d.pdf.Ln(8)
	d.pdf.SetFont("Helvetica", "I", 9)
	d.pdf.MultiCell(0, 5, d.tr("This is a computer generated receipt and does not require a signature."), "", "L", false)
	return d.write(w)
}
