package excel

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeWorkbook(t *testing.T, header []string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, name := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, name))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestReadTargetColumnsProjection(t *testing.T) {
	// 识别列+无关列混排，表头大小写/空白不敏感
	path := writeWorkbook(t,
		[]string{"Name", "irrelevant", "google_id", " rating "},
		[][]interface{}{
			{"Cafe A", "junk", "g1", 4.5},
			{"Cafe B", "junk", "g2", "nan"},
		},
	)
	rows, err := ReadTargetColumns(path, testLogger())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Cafe A", rows[0]["name"])
	assert.Equal(t, "g1", rows[0]["google_id"])
	assert.Equal(t, "4.5", rows[0]["rating"])
	assert.Equal(t, "nan", rows[1]["rating"])
	_, hasJunk := rows[0]["irrelevant"]
	assert.False(t, hasJunk, "无关列不应进入原始行")
	_, hasPhone := rows[0]["phone"]
	assert.False(t, hasPhone, "缺失列不写key，由归一化兜底")
}

func TestReadTargetColumnsEmptySheet(t *testing.T) {
	path := writeWorkbook(t, nil, nil)
	rows, err := ReadTargetColumns(path, testLogger())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadTargetColumnsMissingFile(t *testing.T) {
	_, err := ReadTargetColumns(filepath.Join(t.TempDir(), "absent.xlsx"), testLogger())
	assert.Error(t, err)
}
