package reports

import (
	"fmt"
	"io"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/xuri/excelize/v2"
)

const outstandingSheet = "Outstanding"

var outstandingHeadings = []string{
	"TransactionNumber", "Type", "PaymentMethod", "CustomerId", "SupplierId",
	"TotalPrice", "PaidTotal", "Remaining", "CreatedAt", "DaysOutstanding", "NextDueDate",
}

func cellName(col int, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// NewOutstandingWorkbook lays the rows out one per transaction under a header row.
func NewOutstandingWorkbook(rows []models.OutstandingBalance) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", outstandingSheet); err != nil {
		return nil, err
	}

	for i, h := range outstandingHeadings {
		if err := f.SetCellValue(outstandingSheet, cellName(i+1, 1), h); err != nil {
			return nil, err
		}
	}

	for i, r := range rows {
		rowNo := i + 2
		nextDue := ""
		if r.NextDueDate != nil {
			nextDue = r.NextDueDate.Format("2006-01-02")
		}
		values := []interface{}{
			r.TransactionNumber,
			string(r.TransactionType),
			string(r.PaymentMethod),
			r.CustomerId,
			r.SupplierId,
			r.TotalPrice.InexactFloat64(),
			r.PaidTotal.InexactFloat64(),
			r.Remaining.InexactFloat64(),
			r.CreatedAt.Format("2006-01-02"),
			r.DaysOutstanding,
			nextDue,
		}
		for col, v := range values {
			if err := f.SetCellValue(outstandingSheet, cellName(col+1, rowNo), v); err != nil {
				return nil, fmt.Errorf("row %d: %w", rowNo, err)
			}
		}
	}
	return f, nil
}

// WriteOutstandingReport streams the workbook as xlsx.
func WriteOutstandingReport(w io.Writer, rows []models.OutstandingBalance) error {
	f, err := NewOutstandingWorkbook(rows)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
