// Package report 提供 luastrip 的输出能力。
// 当前实现支持 table 控制台格式和 JSON 格式（含文件导出）。
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"luastrip/internal/aggregate"
	"luastrip/internal/model"
	"luastrip/internal/verify"
)

// tableWriter 包装 tabwriter，记录第一次写入错误，后续写入直接跳过。
type tableWriter struct {
	tw  *tabwriter.Writer
	err error
}

func newTableWriter(writer io.Writer) *tableWriter {
	return &tableWriter{tw: tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)}
}

func (w *tableWriter) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.tw, format, args...)
}

func (w *tableWriter) flush() error {
	if w.err != nil {
		return w.err
	}
	return w.tw.Flush()
}

func number(value int64) string {
	return humanize.Comma(value)
}

func percent(counts model.LineCounts) string {
	return fmt.Sprintf("%.1f%%", counts.AnnotationPercent())
}

// PrintTable 使用表格展示运行结果：总计、目录汇总、文件明细和错误。
// strip / dry-run 模式下文件明细额外展示改写前后的行数。
func PrintTable(writer io.Writer, result model.ScanResult) error {
	w := newTableWriter(writer)
	rewriting := result.Mode != "" && result.Mode != "analyze"

	w.printf("RUN ID\t%s\n", result.RunID)
	w.printf("MODE\t%s\n", result.Mode)
	w.printf("SCANNED PATH\t%s\n\n", result.ScannedPath)

	total := result.Total
	w.printf("FILES\tTOTAL\tCODE\tANNOTATION\tANN%%\tCOMMENT\tLICENSE\tBLANK\tFORBIDDEN\n")
	w.printf(
		"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		number(total.Files),
		number(total.Total),
		number(total.Code),
		number(total.Annotation),
		percent(total.LineCounts),
		number(total.Comment),
		number(total.License),
		number(total.Blank),
		number(total.Forbidden),
	)

	if len(result.Folders) > 0 {
		w.printf("\nFOLDER\tFILES\tTOTAL\tCODE\tANNOTATION\tANN%%\n")
		for _, item := range result.Folders {
			w.printf(
				"%s/\t%s\t%s\t%s\t%s\t%s\n",
				item.Folder,
				number(item.Files),
				number(item.Counts.Total),
				number(item.Counts.Code),
				number(item.Counts.Annotation),
				percent(item.Counts),
			)
		}
	}

	if len(result.Files) > 0 {
		if rewriting {
			w.printf("\nFILE\tFOLDER\tTOTAL\tCODE\tANNOTATION\tANN%%\tFORBIDDEN\tBEFORE\tAFTER\tCHANGED\n")
		} else {
			w.printf("\nFILE\tFOLDER\tTOTAL\tCODE\tANNOTATION\tANN%%\tFORBIDDEN\n")
		}
		for _, item := range result.Files {
			w.printf(
				"%s\t%s/\t%s\t%s\t%s\t%s\t%s",
				filepath.Base(item.Path),
				aggregate.FolderOf(item.Path),
				number(item.Counts.Total),
				number(item.Counts.Code),
				number(item.Counts.Annotation),
				percent(item.Counts),
				number(item.Counts.Forbidden),
			)
			if rewriting && item.Rewrite != nil {
				w.printf(
					"\t%s\t%s\t%s",
					number(int64(item.Rewrite.LinesBefore)),
					number(int64(item.Rewrite.LinesAfter)),
					changedLabel(*item.Rewrite),
				)
			}
			w.printf("\n")
		}
	}

	if len(result.Errors) > 0 {
		w.printf("\nERROR FILE\tKIND\tMESSAGE\n")
		for _, item := range result.Errors {
			w.printf("%s\t%s\t%s\n", item.Path, item.Kind, item.Error)
		}
	}

	return w.flush()
}

func changedLabel(stats model.RewriteStats) string {
	switch {
	case stats.Written:
		return "written"
	case stats.Changed:
		return "pending"
	default:
		return "-"
	}
}

// PrintFindings 展示 verify 的命中结果。
func PrintFindings(writer io.Writer, findings []verify.Finding) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintln(writer, "no forbidden content found")
		return err
	}

	w := newTableWriter(writer)
	w.printf("FILE\tLINE\tCOLUMN\tPATTERN\n")
	for _, item := range findings {
		w.printf("%s\t%d\t%d\t%s\n", item.Path, item.Line, item.Column, item.Pattern)
	}
	w.printf("\n%s findings\n", number(int64(len(findings))))
	return w.flush()
}

// encodeResult 把运行结果编码为缩进 JSON，末尾带换行。
func encodeResult(result model.ScanResult) ([]byte, error) {
	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(content, '\n'), nil
}

// PrintJSON 把运行结果写到 writer，供管道或重定向使用。
func PrintJSON(writer io.Writer, result model.ScanResult) error {
	content, err := encodeResult(result)
	if err != nil {
		return err
	}
	if _, err := writer.Write(content); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteJSONFile 把运行结果导出到 path，缺失的上级目录会被创建。
// 内容先写入同目录下的临时文件再重命名，中途失败不会留下半截报告。
func WriteJSONFile(path string, result model.ScanResult) error {
	content, err := encodeResult(result)
	if err != nil {
		return err
	}

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	temp, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tempPath := temp.Name()
	defer os.Remove(tempPath)

	if _, err := temp.Write(content); err != nil {
		_ = temp.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	if err := temp.Chmod(0o644); err != nil {
		_ = temp.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
