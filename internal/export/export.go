// Package export serializes analysis results to JSON, CSV, and XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/qpaper/qmapper/internal/match"
)

// Format identifies an export serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatXLSX:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q: want json, csv, or xlsx", s)
	}
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

var columns = []string{
	"question_index",
	"question_text",
	"question_type",
	"subject_name",
	"subject_code",
	"year",
	"semester",
	"probable_topic",
	"course_outcome",
	"confidence_score",
	"source",
	"error_message",
}

// Write serializes results in the given format.
func Write(w io.Writer, format Format, results []match.Result) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, results)
	case FormatXLSX:
		return WriteXLSX(w, results)
	default:
		return WriteJSON(w, results)
	}
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []match.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteCSV writes results as CSV with a header row.
func WriteCSV(w io.Writer, results []match.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", r.Index, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// WriteXLSX writes results as a single-sheet spreadsheet.
func WriteXLSX(w io.Writer, results []match.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing XLSX header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell: %w", err)
		}
		vals := []any{
			r.Index, r.QuestionText, string(r.QuestionType), r.SubjectName,
			r.SubjectCode, r.Year, r.Semester, r.ProbableTopic,
			r.CourseOutcome, r.Confidence, string(r.Source), r.ErrorMessage,
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("writing XLSX row %d: %w", r.Index, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing XLSX: %w", err)
	}
	return nil
}

func row(r match.Result) []string {
	return []string{
		strconv.Itoa(r.Index),
		r.QuestionText,
		string(r.QuestionType),
		r.SubjectName,
		r.SubjectCode,
		r.Year,
		r.Semester,
		r.ProbableTopic,
		r.CourseOutcome,
		strconv.FormatFloat(r.Confidence, 'f', 2, 64),
		string(r.Source),
		r.ErrorMessage,
	}
}
