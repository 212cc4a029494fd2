package employee

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

var csvHeader = []string{
	"ID", "Name", "Email", "Mobile", "Role", "Status",
	"Street", "City", "State", "Zip Code", "Country",
	"Bank Name", "Account Number", "IFSC Code", "Branch Name", "Created At",
}

// WriteCSV writes one header row followed by one row per employee. Missing
// address or bank details become empty cells.
func WriteCSV(w io.Writer, employees []Employee) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range employees {
		var a Address
		if e.Address != nil {
			a = *e.Address
		}
		var b BankDetails
		if e.BankDetails != nil {
			b = *e.BankDetails
		}

		record := []string{
			e.ID, e.Name, e.Email, e.Mobile, string(e.Role), string(e.Status),
			a.Street, a.City, a.State, a.ZipCode, a.Country,
			b.BankName, b.AccountNumber, b.IFSCCode, b.BranchName,
			e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteProfilePDF renders a one-page profile sheet for e. The account number
// is masked except for its last four characters.
func WriteProfilePDF(w io.Writer, e Employee, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Employee Profile", true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Employee Profile", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+generatedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	section := func(title string, rows [][2]string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 9, title, "B", 1, "L", false, 0, "")
		pdf.Ln(2)
		for _, row := range rows {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(50, 7, row[0]+":", "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			pdf.CellFormat(0, 7, tr(row[1]), "", 1, "L", false, 0, "")
		}
		pdf.Ln(5)
	}

	section("Basic Details", [][2]string{
		{"Name", e.Name},
		{"Email", e.Email},
		{"Mobile", e.Mobile},
		{"Role", string(e.Role)},
		{"Status", string(e.Status)},
	})

	if e.Address != nil {
		section("Address", [][2]string{
			{"Street", e.Address.Street},
			{"City", e.Address.City},
			{"State", e.Address.State},
			{"Zip Code", e.Address.ZipCode},
			{"Country", e.Address.Country},
		})
	} else {
		section("Address", [][2]string{{"Address", "Not provided"}})
	}

	if e.BankDetails != nil {
		section("Bank Details", [][2]string{
			{"Bank Name", e.BankDetails.BankName},
			{"Account Number", MaskAccountNumber(e.BankDetails.AccountNumber)},
			{"IFSC Code", e.BankDetails.IFSCCode},
			{"Branch Name", e.BankDetails.BranchName},
		})
	} else {
		section("Bank Details", [][2]string{{"Bank Details", "Not provided"}})
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render profile pdf: %w", err)
	}
	return nil
}

// MaskAccountNumber keeps the last four characters visible.
func MaskAccountNumber(account string) string {
	n := utf8.RuneCountInString(account)
	if n <= 4 {
		return account
	}
	runes := []rune(account)
	return strings.Repeat("*", n-4) + string(runes[n-4:])
}
