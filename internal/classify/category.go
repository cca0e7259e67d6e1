// Package classify 实现逐行分类器。
//
// 分类器只做单次前向扫描：每一行的类别只由该行文本和扫描到该行时的状态
// （是否处于块注释、是否处于未闭合的禁用调用、括号深度）决定，不向后看。
//
// 已知近似：分类器不识别字符串字面量，也不做括号配对以外的语法分析。
// 例如出现在字符串里的 "--" 或 "--[[" 同样会被当作注释标记处理。
// 这是刻意保留的行为，改成真正的解析器会改变已有输入的输出。
package classify

import "fmt"

// Category 表示一行源码的语义类别。
type Category int

const (
	Blank Category = iota
	FullLineComment
	BlockCommentOpen
	BlockCommentBody
	BlockCommentCloseSameLine
	Annotation
	InlineAnnotation
	LicenseHeader
	ForbiddenStatement
	ForbiddenStatementContinuation
	Code
)

var categoryNames = [...]string{
	Blank:                          "blank",
	FullLineComment:                "comment",
	BlockCommentOpen:               "block_open",
	BlockCommentBody:               "block_body",
	BlockCommentCloseSameLine:      "block_close",
	Annotation:                     "annotation",
	InlineAnnotation:               "inline_annotation",
	LicenseHeader:                  "license",
	ForbiddenStatement:             "forbidden",
	ForbiddenStatementContinuation: "forbidden_continuation",
	Code:                           "code",
}

// String 返回类别的稳定名称，用于日志与 JSON。
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// MarshalText 让类别在 JSON 中以名称输出。
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// IsForbidden 判断类别是否属于禁用调用语句。
func (c Category) IsForbidden() bool {
	return c == ForbiddenStatement || c == ForbiddenStatementContinuation
}
