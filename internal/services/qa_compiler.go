package services

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/visualenglishpl/backend/internal/models"
)

// ErrSourceUnreadable means the spreadsheet source could not be parsed
// as tabular data at all. Fatal to the compilation call, callers keep
// the previous mapping and log a warning.
var ErrSourceUnreadable = errors.New("spreadsheet source unreadable")

// Column header synonyms, matched case-insensitively. The spreadsheets
// were authored by different people over several years.
var (
	codeHeaders     = []string{"code", "codes", "pattern", "file code"}
	questionHeaders = []string{"question", "questions", "q"}
	answerHeaders   = []string{"answer", "answers", "a"}
)

// headerScanLimit is how many leading rows are searched for a header row
const headerScanLimit = 5

var whitespaceRe = regexp.MustCompile(`\s+`)

// CompileQA parses xlsx bytes into a fresh Q&A mapping. Only the first
// sheet is consumed. Each accepted row inserts three keys: the raw code,
// its whitespace-normalized form and its lowercased form, all mapping to
// the same pair. Rows missing a code, question or answer are skipped
// silently, blank trailing rows are routine in these files.
func CompileQA(data []byte) (*models.QAMapping, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %v: %w", err, ErrSourceUnreadable)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %w", ErrSourceUnreadable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %v: %w", sheets[0], err, ErrSourceUnreadable)
	}

	codeIdx, questionIdx, answerIdx, startRow := locateColumns(rows)

	mapping := models.NewQAMapping()
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		code := strings.TrimSpace(cell(row, codeIdx))
		question := strings.TrimSpace(cell(row, questionIdx))
		answer := strings.TrimSpace(cell(row, answerIdx))
		if code == "" || question == "" || answer == "" {
			continue
		}

		qa := models.QuestionAnswer{Question: question, Answer: answer}
		mapping.Put(code, qa)
		mapping.Put(normalizeWhitespace(code), qa)
		mapping.Put(strings.ToLower(code), qa)
	}

	return mapping, nil
}

// locateColumns searches the leading rows for a header row resolvable to
// code/question/answer via the synonym lists. When no header row is
// found it falls back to positional columns A/B/C with no rows skipped.
func locateColumns(rows [][]string) (codeIdx, questionIdx, answerIdx, startRow int) {
	limit := headerScanLimit
	if len(rows) < limit {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		code, question, answer := -1, -1, -1
		for j, raw := range rows[i] {
			h := strings.ToLower(strings.TrimSpace(raw))
			switch {
			case code == -1 && contains(codeHeaders, h):
				code = j
			case question == -1 && contains(questionHeaders, h):
				question = j
			case answer == -1 && contains(answerHeaders, h):
				answer = j
			}
		}
		if code != -1 && question != -1 && answer != -1 {
			return code, question, answer, i + 1
		}
	}

	return 0, 1, 2, 0
}

// normalizeWhitespace collapses runs of whitespace to single spaces and
// trims the ends
func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
