package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImportColumnCount is the number of positional columns in an import row
const ImportColumnCount = 13

// ImportRow is one spreadsheet row, in column order:
// dealer number, name, DBA, street, box, city, state, zip, county,
// phone, fax, email, salesman code.
type ImportRow struct {
	DealerNumber   string
	DealershipName string
	DBA            string
	Address        Address
	Contact        Contact
	SalesmanCode   string
}

// ParseImportRow maps positional cells onto an ImportRow. Missing trailing
// cells are treated as empty and extra cells are ignored.
func ParseImportRow(cells []string) ImportRow {
	var padded [ImportColumnCount]string
	for i := 0; i < ImportColumnCount && i < len(cells); i++ {
		padded[i] = strings.TrimSpace(cells[i])
	}
	cell := func(i int) string { return padded[i] }

	return ImportRow{
		DealerNumber:   cell(0),
		DealershipName: cell(1),
		DBA:            cell(2),
		Address: Address{
			StreetAddress: cell(3),
			BoxNumber:     cell(4),
			City:          cell(5),
			State:         cell(6),
			ZipCode:       cell(7),
			County:        cell(8),
		},
		Contact: Contact{
			MainPhone: cell(9),
			FaxNumber: cell(10),
			MainEmail: cell(11),
		},
		SalesmanCode: cell(12),
	}
}

// ImportResult describes one import run
type ImportResult struct {
	RunID         uuid.UUID `json:"runId"`
	Source        string    `json:"source"`
	RowsProcessed int       `json:"rowsProcessed"`
	Skipped       int       `json:"skipped"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Error         string    `json:"error,omitempty"`
}
