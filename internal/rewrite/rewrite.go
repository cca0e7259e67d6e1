// Package rewrite 根据分类结果生成改写后的文件内容。
// 改写是分类结果的纯函数：不重新扫描文本，也不依赖任何外部状态。
package rewrite

import (
	"strings"

	"luastrip/internal/classify"
)

// Action 描述某一行在改写中的处理方式。
type Action string

const (
	// Kept 原样保留。
	Kept Action = "kept"
	// Trimmed 保留，仅去掉行尾空白。
	Trimmed Action = "trimmed"
	// Stripped 去掉注释部分，保留前面的代码。
	Stripped Action = "stripped"
	// Dropped 整行删除。
	Dropped Action = "dropped"
)

// Decision 是单行的改写决策，用于调试日志。
type Decision struct {
	Index    int               `json:"index"`
	Category classify.Category `json:"category"`
	Action   Action            `json:"action"`
}

// Result 是改写输出。
type Result struct {
	Lines     []string
	Decisions []Decision
}

// Changed 判断改写结果是否与原始行序列不同。
func (r Result) Changed(original []string) bool {
	if len(r.Lines) != len(original) {
		return true
	}
	for idx := range r.Lines {
		if r.Lines[idx] != original[idx] {
			return true
		}
	}
	return false
}

// Rewrite 按类别规则生成输出行。
//
// | 类别                         | 输出                         |
// | Blank / 普通注释 / 块注释     | 删除                         |
// | 许可证头 / 注解 / 行内注解     | 原样保留                     |
// | 禁用调用（含续行）            | 删除                         |
// | 单行块注释                   | 保留注释前的代码，空则删除     |
// | Code                         | 去掉行尾空白；有行内注释则去掉 |
// | Code（URL 保护）             | 原样保留                     |
func Rewrite(records []classify.Record) Result {
	result := Result{
		Lines:     make([]string, 0, len(records)),
		Decisions: make([]Decision, 0, len(records)),
	}

	for _, record := range records {
		line, action := decide(record)
		result.Decisions = append(result.Decisions, Decision{
			Index:    record.Index,
			Category: record.Category,
			Action:   action,
		})
		if action != Dropped {
			result.Lines = append(result.Lines, line)
		}
	}

	result.Lines = trimBlankEdges(result.Lines)
	return result
}

func decide(record classify.Record) (string, Action) {
	switch record.Category {
	case classify.LicenseHeader, classify.Annotation, classify.InlineAnnotation:
		return record.Text, Kept
	case classify.BlockCommentCloseSameLine:
		code := record.CodeText()
		if code == "" {
			return "", Dropped
		}
		return code, Stripped
	case classify.Code:
		if record.URLGuarded {
			return record.Text, Kept
		}
		code := record.CodeText()
		if code == "" {
			return "", Dropped
		}
		if record.CommentAt >= 0 {
			return code, Stripped
		}
		if code == record.Text {
			return code, Kept
		}
		return code, Trimmed
	default:
		return "", Dropped
	}
}

// trimBlankEdges 去掉首尾的空白行，中间的行不处理。
func trimBlankEdges(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

// Render 把输出行拼成文件内容：每行以换行结尾，空输出得到空文件。
func Render(lines []string) []byte {
	if len(lines) == 0 {
		return []byte{}
	}
	var builder strings.Builder
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteByte('\n')
	}
	return []byte(builder.String())
}
