package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptySheet is returned for a sheet with a header row only, or no
	// rows at all. Fatal for the whole batch.
	ErrEmptySheet = errors.New("deduction sheet has no data rows")
)

// ErrMissingColumns indicates the header row lacks one or more required columns
type ErrMissingColumns struct {
	Columns []string
}

func (e ErrMissingColumns) Error() string {
	return "deduction sheet is missing required columns: " + strings.Join(e.Columns, ", ")
}

// Row is one payroll deduction line: who paid, how much, and the payroll
// attributes carried through onto the customer record. Amounts are in minor
// units.
type Row struct {
	StaffID  string
	Amount   int64
	Grade    string
	Step     string
	Command  string
	GrossPay int64
	NetPay   int64
}

// Column aliases, matched against normalized header cells (lowercased,
// whitespace and underscores stripped). Payroll offices are not consistent
// about naming.
var (
	staffIDAliases  = []string{"staffid", "staffno", "servicenumber", "externalid", "payrollid"}
	amountAliases   = []string{"amount", "deduction", "amountdeducted", "monthlydeduction"}
	gradeAliases    = []string{"grade", "gradelevel"}
	stepAliases     = []string{"step"}
	commandAliases  = []string{"command", "station", "location"}
	grossPayAliases = []string{"grosspay", "gross"}
	netPayAliases   = []string{"netpay", "net"}
)

type columnIndex map[string]int

// Parse decodes a deduction sheet into rows. The header row is located by
// scanning for a line that carries both required columns (staff id and
// amount); anything above it is ignored as preamble. A sheet without data
// rows below the header is rejected.
func Parse(r io.Reader) ([]Row, error) {
	utf8r, err := newUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptySheet
	}

	cols, headerIdx, err := locateHeader(records)
	if err != nil {
		return nil, err
	}

	dataRows := records[headerIdx+1:]
	rows := make([]Row, 0, len(dataRows))

	for i, record := range dataRows {
		rowNum := headerIdx + i + 2 // 1-based line number for error messages

		if isBlank(record) {
			continue
		}

		staffID := strings.TrimSpace(cellValue(record, cols, staffIDAliases))
		if staffID == "" {
			return nil, fmt.Errorf("row %d: missing staff id", rowNum)
		}

		amount, err := parseAmount(cellValue(record, cols, amountAliases))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		row := Row{
			StaffID: staffID,
			Amount:  amount,
			Grade:   strings.TrimSpace(cellValue(record, cols, gradeAliases)),
			Step:    strings.TrimSpace(cellValue(record, cols, stepAliases)),
			Command: strings.TrimSpace(cellValue(record, cols, commandAliases)),
		}

		// Optional pay figures; a blank or malformed cell reads as zero
		// rather than failing the batch.
		if gross, err := parseAmount(cellValue(record, cols, grossPayAliases)); err == nil {
			row.GrossPay = gross
		}
		if net, err := parseAmount(cellValue(record, cols, netPayAliases)); err == nil {
			row.NetPay = net
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	return rows, nil
}

// locateHeader scans for the first row carrying both required columns.
func locateHeader(records [][]string) (columnIndex, int, error) {
	for rowIdx, record := range records {
		cols := make(columnIndex)
		for i, cell := range record {
			if name := normalizeHeader(cell); name != "" {
				cols[name] = i
			}
		}

		if hasColumn(cols, staffIDAliases) && hasColumn(cols, amountAliases) {
			return cols, rowIdx, nil
		}
	}

	var missing []string
	if !hasColumn(headerOf(records[0]), staffIDAliases) {
		missing = append(missing, "staff id")
	}
	if !hasColumn(headerOf(records[0]), amountAliases) {
		missing = append(missing, "amount")
	}
	return nil, 0, ErrMissingColumns{Columns: missing}
}

func headerOf(record []string) columnIndex {
	cols := make(columnIndex)
	for i, cell := range record {
		if name := normalizeHeader(cell); name != "" {
			cols[name] = i
		}
	}
	return cols
}

func normalizeHeader(cell string) string {
	name := strings.ToLower(strings.TrimSpace(cell))
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, "-", "")
	return name
}

func hasColumn(cols columnIndex, aliases []string) bool {
	for _, alias := range aliases {
		if _, ok := cols[alias]; ok {
			return true
		}
	}
	return false
}

func cellValue(record []string, cols columnIndex, aliases []string) string {
	for _, alias := range aliases {
		if idx, ok := cols[alias]; ok && idx < len(record) {
			return record[idx]
		}
	}
	return ""
}

// parseAmount converts a sheet cell to minor units, accepting thousands
// separators and a currency sign. Values are rounded half away from zero to
// the nearest minor unit.
func parseAmount(cell string) (int64, error) {
	cleaned := strings.TrimSpace(cell)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "₦")
	cleaned = strings.TrimPrefix(cleaned, "$")
	if cleaned == "" {
		return 0, errors.New("missing amount")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", cell)
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
