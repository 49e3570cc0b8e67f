package excel

import "cardiorisk/domain/dataset"

// ExcelData is a file's header row and its cells keyed by header
type ExcelData struct {
	Headers []string
	Rows    []dataset.RawRow
}
