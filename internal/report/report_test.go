package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luastrip/internal/aggregate"
	"luastrip/internal/model"
	"luastrip/internal/verify"
)

// sampleResult 是测试辅助函数，构造一个带目录汇总的运行结果。
func sampleResult(t *testing.T, mode string) model.ScanResult {
	t.Helper()

	files := []model.FileSummary{
		{
			Path:    "core/engine.lua",
			Dialect: "lua",
			Counts:  model.LineCounts{Physical: 1500, Total: 1234, Code: 1000, Annotation: 234, Forbidden: 3},
			Rewrite: &model.RewriteStats{LinesBefore: 1500, LinesAfter: 1240, Changed: true, Written: true},
		},
		{
			Path:    "main.lua",
			Dialect: "lua",
			Counts:  model.LineCounts{Physical: 4, Total: 4, Code: 4},
			Rewrite: &model.RewriteStats{LinesBefore: 4, LinesAfter: 4},
		},
	}
	folders, total := aggregate.Aggregate(files)

	return model.ScanResult{
		RunID:       "run-1",
		Mode:        mode,
		ScannedPath: "/work/game",
		Files:       files,
		Folders:     folders,
		Total:       total,
		Errors: []model.ScanError{
			{Path: "bad.lua", Kind: model.ErrorKindRead, Error: "read bad.lua: invalid"},
		},
	}
}

func TestPrintTableAnalyze(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, sampleResult(t, "analyze")))

	output := buf.String()
	assert.Contains(t, output, "run-1")
	assert.Contains(t, output, "/work/game")
	assert.Contains(t, output, "1,238")
	assert.Contains(t, output, "core/")
	assert.Contains(t, output, "root/")
	assert.Contains(t, output, "engine.lua")
	assert.Contains(t, output, "19.0%")
	assert.Contains(t, output, "ERROR FILE")
	assert.Contains(t, output, "read bad.lua: invalid")
	assert.NotContains(t, output, "BEFORE")
}

// TestPrintTableStripColumns 验证改写模式下展示改写前后行数与写回状态。
func TestPrintTableStripColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, sampleResult(t, "strip")))

	output := buf.String()
	assert.Contains(t, output, "BEFORE")
	assert.Contains(t, output, "1,500")
	assert.Contains(t, output, "1,240")
	assert.Contains(t, output, "written")
}

func TestPrintFindings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintFindings(&buf, nil))
	assert.Contains(t, buf.String(), "no forbidden content found")

	buf.Reset()
	require.NoError(t, PrintFindings(&buf, []verify.Finding{
		{Path: "gui/main.lua", Line: 3, Column: 5, Pattern: "print("},
	}))
	assert.Contains(t, buf.String(), "gui/main.lua")
	assert.Contains(t, buf.String(), "print(")
	assert.Contains(t, buf.String(), "1 findings")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, sampleResult(t, "analyze")))

	var decoded model.ScanResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, int64(1238), decoded.Total.Total)
	require.Len(t, decoded.Folders, 2)
	assert.Equal(t, "core", decoded.Folders[0].Folder)
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.json")
	require.NoError(t, WriteJSONFile(path, sampleResult(t, "strip")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"lines_after": 1240`)

	// 覆盖已有报告，目录中不残留临时文件。
	require.NoError(t, WriteJSONFile(path, sampleResult(t, "analyze")))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "result.json", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
