package classify

import (
	"strings"
	"unicode"
)

// Record 是一行源码的分类结果。
type Record struct {
	// Index 从 1 开始。
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
	// CommentAt 是可删除注释文本的起始字节偏移，-1 表示没有。
	// Code 行为行内注释标记位置；单行块注释为首个行注释标记位置；
	// 多行块注释的结束行为 0，即整行都属于注释。
	CommentAt int `json:"comment_at"`
	// URLGuarded 表示该 Code 行含注释标记但同时含 URL，整行原样保留。
	URLGuarded bool `json:"url_guarded,omitempty"`
	// Depth 是禁用调用处理完本行后的括号深度，仅对禁用调用类别有意义。
	Depth int `json:"depth,omitempty"`
}

// CodeText 返回注释之前的代码部分（去掉行尾空白）。
// 空白的判定与空行识别一致，采用 unicode.IsSpace。
func (r Record) CodeText() string {
	if r.CommentAt < 0 {
		return strings.TrimRightFunc(r.Text, unicode.IsSpace)
	}
	return strings.TrimRightFunc(r.Text[:r.CommentAt], unicode.IsSpace)
}

// State 是单个文件扫描过程中的可变状态，不能跨文件复用。
type State struct {
	InBlockComment       bool `json:"in_block_comment"`
	InForbiddenStatement bool `json:"in_forbidden_statement"`
	// ParenDepth 只在 InForbiddenStatement 为 true 时有意义。
	ParenDepth int `json:"paren_depth"`
	// StatementStart 是当前禁用调用的起始行号。
	StatementStart int `json:"statement_start,omitempty"`
	// CodeSeen 表示已经输出过代码，此后不再识别许可证头。
	CodeSeen bool `json:"code_seen"`
}

// Classifier 逐行推进状态机。零值不可用，请通过 NewClassifier 创建。
type Classifier struct {
	rules *Rules
	state State
	next  int
}

// NewClassifier 为一个文件创建新的分类器。
func NewClassifier(rules *Rules) *Classifier {
	return &Classifier{rules: rules, next: 1}
}

// State 返回当前状态的快照。
func (c *Classifier) State() State {
	return c.state
}

// Unclosed 报告到目前为止是否有未闭合的禁用调用，以及它的起始行号。
// 文件结束时仍未闭合的语句会一直删除到文件末尾。
func (c *Classifier) Unclosed() (int, bool) {
	if !c.state.InForbiddenStatement {
		return 0, false
	}
	return c.state.StatementStart, true
}

// Classify 对整个文件做一次前向扫描。
func Classify(rules *Rules, lines []string) []Record {
	classifier := NewClassifier(rules)
	records := make([]Record, 0, len(lines))
	for _, line := range lines {
		records = append(records, classifier.Next(line))
	}
	return records
}

// Next 分类下一行。规则按优先级依次判定，命中即返回，不会失败。
func (c *Classifier) Next(text string) Record {
	record := Record{
		Index:     c.next,
		Text:      text,
		CommentAt: -1,
	}
	c.next++

	record.Category = c.categorize(&record)
	return record
}

func (c *Classifier) categorize(record *Record) Category {
	rules := c.rules
	text := record.Text
	trimmed := strings.TrimSpace(text)

	if trimmed == "" {
		return Blank
	}

	// 块注释入口。注解块永远不进入块注释状态。
	if !c.state.InBlockComment {
		if open := strings.Index(text, rules.blockOpen); open >= 0 {
			if rules.isAnnotationBlock(trimmed) {
				return Annotation
			}
			// 起始符以行注释标记开头，所以 marker <= open。
			marker := strings.Index(text, rules.lineComment)
			code := text[:marker]
			afterOpen := open + len(rules.blockOpen)
			if closeIdx := strings.Index(text[afterOpen:], rules.blockClose); closeIdx >= 0 {
				// 注释在本行闭合，行尾已不在注释状态，禁用调用优先。
				// 括号计数使用去掉注释区间之后的文本，闭合符之后的代码同样参与。
				countable := code
				if marker == open {
					countable = code + rules.stripLineComment(text[afterOpen+closeIdx+len(rules.blockClose):])
				}
				if category, ok := c.forbiddenLine(record, countable); ok {
					return category
				}
				record.CommentAt = marker
				if strings.TrimSpace(code) != "" {
					c.state.CodeSeen = true
				}
				return BlockCommentCloseSameLine
			}
			c.forbiddenLine(record, code)
			c.state.InBlockComment = true
			return BlockCommentOpen
		}
	}

	if c.state.InBlockComment {
		if closeIdx := strings.Index(text, rules.blockClose); closeIdx >= 0 {
			c.state.InBlockComment = false
			record.CommentAt = 0
			// 块注释位于禁用调用中间时，闭合符之后的括号仍属于该调用。
			if c.state.InForbiddenStatement {
				c.forbiddenLine(record, rules.stripLineComment(text[closeIdx+len(rules.blockClose):]))
			}
			return BlockCommentCloseSameLine
		}
		return BlockCommentBody
	}

	if strings.HasPrefix(trimmed, rules.sigil) {
		return Annotation
	}

	if strings.HasPrefix(trimmed, rules.lineComment) {
		if !c.state.CodeSeen && rules.license.MatchString(trimmed) {
			return LicenseHeader
		}
		return FullLineComment
	}

	if category, ok := c.forbiddenLine(record, text); ok {
		return category
	}

	c.state.CodeSeen = true
	pos := strings.Index(text, rules.lineComment)
	if pos < 0 {
		return Code
	}
	if strings.HasPrefix(text[pos:], rules.sigil) {
		return InlineAnnotation
	}
	if rules.url.MatchString(text) {
		record.URLGuarded = true
		return Code
	}
	record.CommentAt = pos
	return Code
}

// forbiddenLine 处理禁用调用的起始行与续行。text 是参与匹配和括号计数的文本。
func (c *Classifier) forbiddenLine(record *Record, text string) (Category, bool) {
	if c.state.InForbiddenStatement {
		c.advanceDepth(text)
		record.Depth = c.state.ParenDepth
		return ForbiddenStatementContinuation, true
	}
	if c.rules.forbidden == nil || !c.rules.forbidden.MatchString(text) {
		return Code, false
	}

	c.state.InForbiddenStatement = true
	c.state.ParenDepth = 0
	c.state.StatementStart = record.Index
	c.advanceDepth(text)
	record.Depth = c.state.ParenDepth
	return ForbiddenStatement, true
}

// advanceDepth 累加本行的括号差值，深度回到 0 及以下即视为语句结束。
func (c *Classifier) advanceDepth(text string) {
	c.state.ParenDepth += strings.Count(text, "(") - strings.Count(text, ")")
	if c.state.ParenDepth <= 0 {
		c.state.InForbiddenStatement = false
		c.state.ParenDepth = 0
		c.state.StatementStart = 0
	}
}
