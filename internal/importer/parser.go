package importer

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one parsed ledger line ready for de-duplication and insertion.
type Row struct {
	LineNumber   int
	ExternalID   string
	Date         string // YYYY-MM-DD
	Description  string
	Amount       decimal.Decimal // signed; negative = expense
	CategoryName string
}

// ParseResult carries the parsed rows plus per-row errors; a bad row never
// aborts the whole file.
type ParseResult struct {
	Rows   []Row
	Errors []string
}

// header aliases accepted for each column (Brazilian and English exports)
var (
	dateHeaders        = []string{"data", "date"}
	descriptionHeaders = []string{"descricao", "descrição", "description", "historico", "histórico", "memo"}
	amountHeaders      = []string{"valor", "amount", "value"}
	categoryHeaders    = []string{"categoria", "category"}
	externalIDHeaders  = []string{"id", "identificador", "external_id", "provider_id"}
)

// ParseCSV parses a semicolon-delimited ledger export. The first record is
// treated as a header and mapped by known aliases; date, description, and
// amount are required columns.
func ParseCSV(content string) (*ParseResult, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %v", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must contain a header and at least one row")
	}

	header := records[0]
	dateIdx := findColumn(header, dateHeaders)
	descIdx := findColumn(header, descriptionHeaders)
	amountIdx := findColumn(header, amountHeaders)
	categoryIdx := findColumn(header, categoryHeaders)
	externalIDIdx := findColumn(header, externalIDHeaders)

	if dateIdx < 0 || descIdx < 0 || amountIdx < 0 {
		return nil, fmt.Errorf("CSV header must contain date, description and amount columns")
	}

	result := &ParseResult{}
	for i, record := range records[1:] {
		lineNumber := i + 2

		if isBlankRecord(record) {
			continue
		}
		maxIdx := dateIdx
		if descIdx > maxIdx {
			maxIdx = descIdx
		}
		if amountIdx > maxIdx {
			maxIdx = amountIdx
		}
		if len(record) <= maxIdx {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: too few columns", lineNumber))
			continue
		}

		date, err := ParseDate(record[dateIdx])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNumber, err))
			continue
		}

		amount, err := ParseAmount(record[amountIdx])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", lineNumber, err))
			continue
		}

		description := strings.TrimSpace(record[descIdx])
		if description == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: empty description", lineNumber))
			continue
		}

		row := Row{
			LineNumber:  lineNumber,
			Date:        date,
			Description: description,
			Amount:      amount,
		}
		if categoryIdx >= 0 && len(record) > categoryIdx {
			row.CategoryName = strings.TrimSpace(record[categoryIdx])
		}
		if externalIDIdx >= 0 && len(record) > externalIDIdx {
			row.ExternalID = strings.TrimSpace(record[externalIDIdx])
		}

		result.Rows = append(result.Rows, row)
	}

	return result, nil
}

// ParseAmount converts a formatted amount into a decimal, auto-detecting
// Brazilian ("1.234,56") vs US ("1,234.56") conventions:
//   - both separators present: the rightmost one is the decimal separator
//   - single comma with 1-2 fractional digits: comma is the decimal separator
//   - single dot with 1-2 fractional digits: dot is the decimal separator
//   - anything else: separators are thousands marks
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// Brazilian: dot thousands, comma decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// US: comma thousands, dot decimal
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas > 0:
		frac := len(s) - strings.LastIndex(s, ",") - 1
		if commas == 1 && frac >= 1 && frac <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case dots > 0:
		frac := len(s) - strings.LastIndex(s, ".") - 1
		if dots == 1 && frac >= 1 && frac <= 2 {
			// already decimal
		} else {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// spreadsheet serial dates count days from 1899-12-30 (the legacy epoch that
// absorbs the 1900 leap-year bug)
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate accepts ISO (2006-01-02), Brazilian (02/01/2006), and legacy
// spreadsheet serial dates, returning YYYY-MM-DD.
func ParseDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}

	for _, layout := range []string{"2006-01-02", "02/01/2006", "02-01-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	if serial, err := strconv.Atoi(s); err == nil && serial >= 20000 && serial <= 80000 {
		return serialEpoch.AddDate(0, 0, serial).Format("2006-01-02"), nil
	}

	return "", fmt.Errorf("invalid date %q", raw)
}

func findColumn(header []string, aliases []string) int {
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, alias := range aliases {
			if name == alias {
				return i
			}
		}
	}
	return -1
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
