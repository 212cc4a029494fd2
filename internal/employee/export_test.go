package employee

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"employee-service/internal/auth"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
	employees := []Employee{
		{
			ID: "id-1", Name: "Ravi, Jr.", Email: "ravi@x.com", Mobile: "9123456780",
			Role: auth.RoleEmployee, Status: auth.StatusActive, CreatedAt: created,
			Address:     &Address{Street: "12 MG Road", City: "Pune", State: "MH", ZipCode: "411001", Country: "India"},
			BankDetails: &BankDetails{BankName: "SBI", AccountNumber: "123456789012", IFSCCode: "SBIN0000123", BranchName: "Camp"},
		},
		{ID: "id-2", Name: "Meera", Email: "meera@x.com", Role: auth.RoleManager, Status: auth.StatusInactive, CreatedAt: created},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, employees))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, csvHeader, records[0])
	require.Equal(t, "Ravi, Jr.", records[1][1])
	require.Equal(t, "123456789012", records[1][12])
	require.Equal(t, "2026-01-12T08:00:00Z", records[1][15])
	require.Equal(t, []string{"", "", "", "", ""}, records[2][6:11])
}

func TestMaskAccountNumber(t *testing.T) {
	require.Equal(t, "********9012", MaskAccountNumber("123456789012"))
	require.Equal(t, "1234", MaskAccountNumber("1234"))
	require.Equal(t, "", MaskAccountNumber(""))
}

func TestWriteProfilePDFWithoutDetails(t *testing.T) {
	var buf bytes.Buffer
	err := WriteProfilePDF(&buf, Employee{ID: "id-2", Name: "Zoë", Email: "z@x.com"}, time.Now())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
