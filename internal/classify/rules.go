package classify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"luastrip/internal/dialect"
)

const (
	// DefaultLicensePattern 匹配文件顶部的版权/许可证注释（在去掉前导空白后的行上匹配）。
	DefaultLicensePattern = `(?i)^--.*(copyright|license)`
	// DefaultURLPattern 匹配 URL scheme，命中时整行原样保留。
	DefaultURLPattern = `(?i)https?://`
)

// DefaultForbiddenCalls 是默认禁止出现在发布产物中的调试函数。
var DefaultForbiddenCalls = []string{"debug_log", "warn_log", "print"}

// RuleSpec 是分类规则的未编译形式，直接对应配置文件中的 rules 节。
type RuleSpec struct {
	LineComment     string   `mapstructure:"line_comment" yaml:"line_comment" json:"line_comment"`
	BlockOpen       string   `mapstructure:"block_open" yaml:"block_open" json:"block_open"`
	BlockClose      string   `mapstructure:"block_close" yaml:"block_close" json:"block_close"`
	AnnotationSigil string   `mapstructure:"annotation_sigil" yaml:"annotation_sigil" json:"annotation_sigil"`
	LicensePattern  string   `mapstructure:"license_pattern" yaml:"license_pattern" json:"license_pattern"`
	URLPattern      string   `mapstructure:"url_pattern" yaml:"url_pattern" json:"url_pattern"`
	ForbiddenCalls  []string `mapstructure:"forbidden_calls" yaml:"forbidden_calls" json:"forbidden_calls"`
}

// SpecForDialect 用方言标记和默认模式构造规则。
func SpecForDialect(d dialect.Dialect) RuleSpec {
	return RuleSpec{
		LineComment:     d.LineComment,
		BlockOpen:       d.BlockOpen,
		BlockClose:      d.BlockClose,
		AnnotationSigil: d.AnnotationSigil,
		LicensePattern:  DefaultLicensePattern,
		URLPattern:      DefaultURLPattern,
		ForbiddenCalls:  append([]string(nil), DefaultForbiddenCalls...),
	}
}

// Merge 用 override 中的非空字段覆盖 s，返回新值。
func (s RuleSpec) Merge(override RuleSpec) RuleSpec {
	pick := func(base string, value string) string {
		if strings.TrimSpace(value) != "" {
			return value
		}
		return base
	}

	merged := RuleSpec{
		LineComment:     pick(s.LineComment, override.LineComment),
		BlockOpen:       pick(s.BlockOpen, override.BlockOpen),
		BlockClose:      pick(s.BlockClose, override.BlockClose),
		AnnotationSigil: pick(s.AnnotationSigil, override.AnnotationSigil),
		LicensePattern:  pick(s.LicensePattern, override.LicensePattern),
		URLPattern:      pick(s.URLPattern, override.URLPattern),
		ForbiddenCalls:  s.ForbiddenCalls,
	}
	if override.ForbiddenCalls != nil {
		merged.ForbiddenCalls = override.ForbiddenCalls
	}
	return merged
}

// Rules 是编译后的分类规则，构造后只读，可在多个 goroutine 间共享。
type Rules struct {
	lineComment string
	blockOpen   string
	blockClose  string
	sigil       string
	license     *regexp.Regexp
	url         *regexp.Regexp
	// forbidden 为 nil 表示没有配置禁用调用。
	forbidden *regexp.Regexp
}

// NewRules 校验并编译规则。所有错误都在这里暴露，分类阶段不会失败。
func NewRules(spec RuleSpec) (*Rules, error) {
	markers := map[string]string{
		"line_comment":     spec.LineComment,
		"block_open":       spec.BlockOpen,
		"block_close":      spec.BlockClose,
		"annotation_sigil": spec.AnnotationSigil,
	}
	for name, value := range markers {
		if value == "" {
			return nil, fmt.Errorf("rule %s is empty", name)
		}
	}
	if !strings.HasPrefix(spec.BlockOpen, spec.LineComment) {
		return nil, errors.New("block_open must start with line_comment")
	}

	license, err := regexp.Compile(spec.LicensePattern)
	if err != nil {
		return nil, fmt.Errorf("compile license_pattern: %w", err)
	}
	url, err := regexp.Compile(spec.URLPattern)
	if err != nil {
		return nil, fmt.Errorf("compile url_pattern: %w", err)
	}

	rules := &Rules{
		lineComment: spec.LineComment,
		blockOpen:   spec.BlockOpen,
		blockClose:  spec.BlockClose,
		sigil:       spec.AnnotationSigil,
		license:     license,
		url:         url,
	}

	names := make([]string, 0, len(spec.ForbiddenCalls))
	for _, name := range spec.ForbiddenCalls {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, regexp.QuoteMeta(name))
	}
	if len(names) > 0 {
		pattern := `(?i)^\s*(?:` + strings.Join(names, "|") + `)\s*\(`
		rules.forbidden, err = regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile forbidden_calls: %w", err)
		}
	}

	return rules, nil
}

// MustRules 是 NewRules 的 panic 版本，仅用于内置默认值与测试。
func MustRules(spec RuleSpec) *Rules {
	rules, err := NewRules(spec)
	if err != nil {
		panic(err)
	}
	return rules
}

// LuaRules 返回 Lua 方言的默认规则。
func LuaRules() *Rules {
	return MustRules(SpecForDialect(dialect.Lua()))
}

// isAnnotationBlock 判断含块注释起始符的行是否实际是注解：
// 行本身以注解前缀开头，或起始符之后紧跟注解前缀。
func (r *Rules) isAnnotationBlock(trimmed string) bool {
	if strings.HasPrefix(trimmed, r.sigil) {
		return true
	}
	if !strings.HasPrefix(trimmed, r.blockOpen) {
		return false
	}
	inner := strings.TrimLeft(trimmed[len(r.blockOpen):], " \t")
	return strings.HasPrefix(inner, r.sigil)
}

// stripLineComment 去掉文本中第一个行注释标记及其之后的内容。
func (r *Rules) stripLineComment(text string) string {
	if pos := strings.Index(text, r.lineComment); pos >= 0 {
		return text[:pos]
	}
	return text
}
