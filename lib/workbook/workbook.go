package workbook

import (
	"errors"
	"fmt"
	"itdashboard-robot/lib/reconcile"
	"itdashboard-robot/lib/textutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const AgenciesSheet = "Agencies"

// excel refuses longer sheet names
const maxSheetName = 31

var agencyColumns = []string{"Agency", "Spending"}

var ErrSheetNotFound = errors.New("sheet not found")

type AgencyRow struct {
	Name     string
	Spending string
}

// Workbook is the robot's output spreadsheet: an Agencies sheet followed by
// one investments sheet per scraped agency.
type Workbook struct {
	path string
	file *excelize.File
}

// Create starts a new workbook at path (written on Save) whose default sheet
// is renamed to Agencies.
func Create(path string) (*Workbook, error) {
	file := excelize.NewFile()
	first := file.GetSheetName(0)
	err := file.SetSheetName(first, AgenciesSheet)
	if err != nil {
		file.Close()
		return nil, err
	}
	wb := &Workbook{path: path, file: file}
	err = wb.writeRow(AgenciesSheet, 1, agencyColumns)
	if err != nil {
		file.Close()
		return nil, err
	}
	return wb, nil
}

func Open(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{path: path, file: file}, nil
}

func (w *Workbook) Path() string {
	return w.path
}

func (w *Workbook) Save() error {
	err := os.MkdirAll(filepath.Dir(w.path), 0777)
	if err != nil {
		return err
	}
	return w.file.SaveAs(w.path)
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) writeRow(sheet string, row int, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.file.SetSheetRow(sheet, cell, &cells)
}

func (w *Workbook) hasSheet(name string) bool {
	idx, err := w.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// replaceRows ensures sheet exists and replaces its contents with header
// followed by rows.
func (w *Workbook) replaceRows(sheet string, header []string, rows [][]string) error {
	if !w.hasSheet(sheet) {
		_, err := w.file.NewSheet(sheet)
		if err != nil {
			return err
		}
	}
	existing, err := w.file.GetRows(sheet)
	if err != nil {
		return err
	}
	for row := len(existing); row >= 1; row-- {
		err = w.file.RemoveRow(sheet, row)
		if err != nil {
			return err
		}
	}

	err = w.writeRow(sheet, 1, header)
	if err != nil {
		return err
	}
	for i, values := range rows {
		err = w.writeRow(sheet, i+2, values)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteAgencies replaces the rows below the Agencies header.
func (w *Workbook) WriteAgencies(agencies []AgencyRow) error {
	rows := make([][]string, len(agencies))
	for i, agency := range agencies {
		rows[i] = []string{agency.Name, agency.Spending}
	}
	return w.replaceRows(AgenciesSheet, agencyColumns, rows)
}

func (w *Workbook) ReadAgencies() ([]AgencyRow, error) {
	rows, err := w.readSheet(AgenciesSheet)
	if err != nil {
		return nil, err
	}
	var agencies []AgencyRow
	for _, row := range rows {
		agency := AgencyRow{Name: row["Agency"], Spending: row["Spending"]}
		if agency.Name == "" {
			continue
		}
		agencies = append(agencies, agency)
	}
	return agencies, nil
}

// SheetName turns an agency name into a valid, unique-enough sheet name.
func SheetName(agency string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return ' '
		}
		return r
	}, agency)
	name = strings.Trim(textutil.Normalize(name), "'")
	if name == "" {
		name = "Agency"
	}
	runes := []rune(name)
	if len(runes) > maxSheetName {
		name = strings.TrimSpace(string(runes[:maxSheetName]))
	}
	return name
}

// WriteInvestments writes records into the sheet for agency, replacing any
// previous contents, and returns the sheet name used.
func (w *Workbook) WriteInvestments(agency string, records []reconcile.TabularRecord) (string, error) {
	sheet := SheetName(agency)
	if sheet == AgenciesSheet {
		return "", fmt.Errorf("agency %q collides with the %s sheet", agency, AgenciesSheet)
	}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = record.Row()
	}
	err := w.replaceRows(sheet, reconcile.Columns, rows)
	if err != nil {
		return "", err
	}
	return sheet, nil
}

// ReadInvestments reads an investments sheet back, columns are matched by
// header name so reordered sheets still read correctly.
func (w *Workbook) ReadInvestments(sheet string) ([]reconcile.TabularRecord, error) {
	rows, err := w.readSheet(sheet)
	if err != nil {
		return nil, err
	}
	var records []reconcile.TabularRecord
	for _, row := range rows {
		cells := make([]string, len(reconcile.Columns))
		for i, column := range reconcile.Columns {
			cells[i] = row[column]
		}
		record := reconcile.RecordFromRow(cells)
		if record == (reconcile.TabularRecord{}) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// InvestmentSheets lists every sheet except Agencies, in workbook order.
func (w *Workbook) InvestmentSheets() []string {
	var sheets []string
	for _, name := range w.file.GetSheetList() {
		if name == AgenciesSheet {
			continue
		}
		sheets = append(sheets, name)
	}
	return sheets
}

// readSheet returns the rows below the header keyed by header cell.
func (w *Workbook) readSheet(sheet string) ([]map[string]string, error) {
	if !w.hasSheet(sheet) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		values := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(row) {
				values[column] = row[i]
			}
		}
		out = append(out, values)
	}
	return out, nil
}
