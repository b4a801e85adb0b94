package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/visualenglishpl/backend/internal/models"
)

// buildWorkbook creates an xlsx document from row data for compiler tests
func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestCompileQA_HeaderRow(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"CODE", "Question", "Answer"},
		{"01 I A", "What is this?", "It is a pencil."},
		{"02 R B", "What colour is the pen?", "It is blue."},
	})

	mapping, err := CompileQA(data)
	require.NoError(t, err)

	qa, ok := mapping.Get("01 I A")
	require.True(t, ok)
	assert.Equal(t, "What is this?", qa.Question)
	assert.Equal(t, "It is a pencil.", qa.Answer)

	qa, ok = mapping.Get("02 R B")
	require.True(t, ok)
	assert.Equal(t, "It is blue.", qa.Answer)
}

func TestCompileQA_HeaderSynonyms(t *testing.T) {
	tests := []struct {
		name   string
		header []any
	}{
		{name: "terse headers", header: []any{"Codes", "Q", "A"}},
		{name: "pattern header", header: []any{"Pattern", "Questions", "Answers"}},
		{name: "file code header", header: []any{"File Code", "question", "answer"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildWorkbook(t, [][]any{
				tt.header,
				{"03 M C", "Where is the book?", "It is on the desk."},
			})

			mapping, err := CompileQA(data)
			require.NoError(t, err)

			qa, ok := mapping.Get("03 M C")
			require.True(t, ok)
			assert.Equal(t, "Where is the book?", qa.Question)
		})
	}
}

func TestCompileQA_HeaderAfterTitleRow(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"VISUAL 1 QUESTIONS"},
		{"code", "question", "answer"},
		{"01 I A", "What is this?", "It is a pencil."},
	})

	mapping, err := CompileQA(data)
	require.NoError(t, err)

	_, ok := mapping.Get("01 I A")
	assert.True(t, ok)
}

func TestCompileQA_PositionalFallback(t *testing.T) {
	// No recognizable header row, columns A/B/C are consumed directly
	data := buildWorkbook(t, [][]any{
		{"01 I A", "What is this?", "It is a pencil."},
		{"02 R B", "What colour is the pen?", "It is blue."},
	})

	mapping, err := CompileQA(data)
	require.NoError(t, err)

	// Raw and whitespace-normalized forms coincide here, so each row
	// contributes two distinct keys
	assert.Equal(t, 4, mapping.Len())
	_, ok := mapping.Get("01 I A")
	assert.True(t, ok)
	_, ok = mapping.Get("02 R B")
	assert.True(t, ok)
}

func TestCompileQA_KeyVariants(t *testing.T) {
	// Every accepted row inserts raw, whitespace-normalized and
	// lowercased keys mapping to the same pair
	data := buildWorkbook(t, [][]any{
		{"code", "question", "answer"},
		{"01  I   A", "What is this?", "It is a pencil."},
	})

	mapping, err := CompileQA(data)
	require.NoError(t, err)

	expected := models.QuestionAnswer{Question: "What is this?", Answer: "It is a pencil."}

	raw, ok := mapping.Get("01  I   A")
	require.True(t, ok)
	assert.Equal(t, expected, raw)

	normalized, ok := mapping.Get("01 I A")
	require.True(t, ok)
	assert.Equal(t, expected, normalized)

	lowered, ok := mapping.Get("01  i   a")
	require.True(t, ok)
	assert.Equal(t, expected, lowered)
}

func TestCompileQA_SkipsIncompleteRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"code", "question", "answer"},
		{"01 I A", "What is this?", "It is a pencil."},
		{"02 R B", "", "It is blue."},
		{"", "Where is the book?", "It is on the desk."},
		{"04 K D", "Can you swim?", ""},
		{},
	})

	mapping, err := CompileQA(data)
	require.NoError(t, err)

	_, ok := mapping.Get("01 I A")
	assert.True(t, ok)
	_, ok = mapping.Get("02 R B")
	assert.False(t, ok)
	_, ok = mapping.Get("04 K D")
	assert.False(t, ok)
}

func TestCompileQA_InsertionOrderPreserved(t *testing.T) {
	// Partial matching scans keys in insertion order, so the mapping
	// must report keys in the order rows were read
	data := buildWorkbook(t, [][]any{
		{"code", "question", "answer"},
		{"03 M C", "Where is the book?", "It is on the desk."},
		{"01 I A", "What is this?", "It is a pencil."},
	})

	mapping, err := CompileQA(data)
	require.NoError(t, err)

	keys := mapping.Keys()
	require.Len(t, keys, 4)
	assert.Equal(t, "03 M C", keys[0])
	assert.Equal(t, "01 I A", keys[2])
}

func TestCompileQA_Unreadable(t *testing.T) {
	_, err := CompileQA([]byte("this is not a workbook"))
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}
