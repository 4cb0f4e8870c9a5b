package dataprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when the uploaded bytes are neither an
// OOXML (.xlsx) nor a legacy OLE (.xls) workbook.
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Workbook is a format-independent view of a spreadsheet: ordered sheet names
// plus row access. The backend is chosen by sniffing the container magic, so
// callers handle both export generations without caring which one they got.
type Workbook struct {
	backend workbookBackend
}

type workbookBackend interface {
	SheetNames() []string
	Rows(sheet string) ([][]string, error)
	Close() error
}

// OpenWorkbook reads r fully and opens it as a spreadsheet. sourceName is
// only used in error messages; format detection relies on magic bytes, not
// the file extension.
func OpenWorkbook(r io.Reader, sourceName string) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", sourceName, err)
	}

	switch {
	case bytes.HasPrefix(data, zipMagic):
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xlsx workbook %s: %w", sourceName, err)
		}
		return &Workbook{backend: &xlsxBackend{file: f}}, nil

	case bytes.HasPrefix(data, oleMagic):
		wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("open xls workbook %s: %w", sourceName, err)
		}
		return &Workbook{backend: &xlsBackend{book: wb}}, nil

	default:
		return nil, fmt.Errorf("%s: %w", sourceName, ErrUnsupportedFormat)
	}
}

// SheetNames returns the workbook's sheet names in file order.
func (w *Workbook) SheetNames() []string { return w.backend.SheetNames() }

// Rows returns every row of the named sheet as formatted cell strings.
// Trailing empty cells may be absent, so rows have ragged widths.
func (w *Workbook) Rows(sheet string) ([][]string, error) { return w.backend.Rows(sheet) }

// Close releases backend resources. Safe to call once after any Open success.
func (w *Workbook) Close() error { return w.backend.Close() }

type xlsxBackend struct {
	file *excelize.File
}

func (b *xlsxBackend) SheetNames() []string { return b.file.GetSheetList() }

func (b *xlsxBackend) Rows(sheet string) ([][]string, error) {
	rows, err := b.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func (b *xlsxBackend) Close() error { return b.file.Close() }

type xlsBackend struct {
	book *xls.WorkBook
}

func (b *xlsBackend) SheetNames() []string {
	names := make([]string, 0, b.book.NumSheets())
	for i := 0; i < b.book.NumSheets(); i++ {
		if sheet := b.book.GetSheet(i); sheet != nil {
			names = append(names, sheet.Name)
		}
	}
	return names
}

func (b *xlsBackend) Rows(sheet string) ([][]string, error) {
	for i := 0; i < b.book.NumSheets(); i++ {
		ws := b.book.GetSheet(i)
		if ws == nil || ws.Name != sheet {
			continue
		}
		rows := make([][]string, 0, int(ws.MaxRow)+1)
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			// LastCol is an exclusive bound in the BIFF row record.
			cells := make([]string, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells[c] = row.Col(c)
			}
			rows = append(rows, cells)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("read sheet %q: sheet not present", sheet)
}

func (b *xlsBackend) Close() error { return nil }
