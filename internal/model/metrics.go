// Package model 定义 luastrip 的核心数据模型。
// 这些结构会被分类器、扫描器、输出层和命令层共同使用。
package model

// LineCounts 表示一组按类别统计的行数。
//
// 注意：
// - Physical 是物理行数（每行计 1）
// - Total 是有效行数 = Code + Annotation，排序与报告都以它为准
// - License 不计入 Comment，它们在重写后会被保留
// - Forbidden 是禁用调用语句占用的全部行
type LineCounts struct {
	Physical   int64 `json:"physical"`
	Total      int64 `json:"total"`
	Code       int64 `json:"code"`
	Annotation int64 `json:"annotation"`
	Comment    int64 `json:"comment"`
	License    int64 `json:"license"`
	Blank      int64 `json:"blank"`
	Forbidden  int64 `json:"forbidden"`
}

// Add 将另一个统计结果叠加到当前对象。
func (m *LineCounts) Add(other LineCounts) {
	m.Physical += other.Physical
	m.Total += other.Total
	m.Code += other.Code
	m.Annotation += other.Annotation
	m.Comment += other.Comment
	m.License += other.License
	m.Blank += other.Blank
	m.Forbidden += other.Forbidden
}

// AnnotationPercent 返回注解行占有效行的百分比，Total 为 0 时返回 0。
func (m LineCounts) AnnotationPercent() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Annotation) / float64(m.Total) * 100
}

// RewriteStats 记录 strip 模式下单文件的改写结果。
type RewriteStats struct {
	LinesBefore int  `json:"lines_before"`
	LinesAfter  int  `json:"lines_after"`
	Changed     bool `json:"changed"`
	Written     bool `json:"written"`
}

// FileSummary 表示单文件分类结果，创建后不再修改。
type FileSummary struct {
	Path     string     `json:"path"`
	Dialect  string     `json:"dialect"`
	Encoding string     `json:"encoding"`
	Counts   LineCounts `json:"counts"`
	// UnclosedStatementAt 为未闭合禁用调用的起始行号，0 表示没有。
	UnclosedStatementAt int           `json:"unclosed_statement_at,omitempty"`
	Rewrite             *RewriteStats `json:"rewrite,omitempty"`
}

// FolderTotals 表示某个目录下文件的汇总。
type FolderTotals struct {
	Folder string     `json:"folder"`
	Files  int64      `json:"files"`
	Counts LineCounts `json:"counts"`
}

// GrandTotal 表示项目级总计信息。
// 在 LineCounts 基础上额外增加 Files 字段，
// 用于表达"本次运行统计到了多少个有效文件"。
type GrandTotal struct {
	Files int64 `json:"files"`
	LineCounts
}

// AddFile 累加一个文件的统计值到总计中。
func (m *GrandTotal) AddFile(other LineCounts) {
	m.Files++
	m.LineCounts.Add(other)
}

// 错误类别。
const (
	ErrorKindRead  = "read"
	ErrorKindWrite = "write"
)

// ScanError 记录单文件处理失败信息。
// 设计为"错误不阻断整批运行"，失败文件不计入任何统计。
type ScanError struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// ScanResult 是一次 analyze/strip 运行的完整输出模型。
type ScanResult struct {
	RunID       string         `json:"run_id"`
	Mode        string         `json:"mode"`
	ScannedPath string         `json:"scanned_path"`
	Files       []FileSummary  `json:"files"`
	Folders     []FolderTotals `json:"folders"`
	Total       GrandTotal     `json:"total"`
	Errors      []ScanError    `json:"errors"`
}

// HasErrorKind 判断结果中是否存在指定类别的错误。
func (r ScanResult) HasErrorKind(kind string) bool {
	for _, item := range r.Errors {
		if item.Kind == kind {
			return true
		}
	}
	return false
}
