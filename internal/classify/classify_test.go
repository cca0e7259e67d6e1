package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luastrip/internal/dialect"
)

// categoriesOf 是测试辅助函数，返回每行的类别序列。
func categoriesOf(t *testing.T, lines ...string) []Category {
	t.Helper()

	records := Classify(LuaRules(), lines)
	require.Len(t, records, len(lines))

	result := make([]Category, 0, len(records))
	for idx, record := range records {
		require.Equal(t, idx+1, record.Index)
		result = append(result, record.Category)
	}
	return result
}

func TestClassifySingleLines(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Category
	}{
		{"blank", "   \t", Blank},
		{"full line comment", "  -- just a comment", FullLineComment},
		{"annotation", "---@param x number", Annotation},
		{"indented annotation", "    ---@return boolean", Annotation},
		{"diagnostic annotation", "---@diagnostic disable-next-line: undefined-global", Annotation},
		{"plain code", "local x = 1", Code},
		{"inline comment", "local x = 1 -- count", Code},
		{"inline annotation", "local x = 1 ---@type integer", InlineAnnotation},
		{"url guard", "foo() -- see http://example.com", Code},
		{"forbidden single line", "print(\"hello\")", ForbiddenStatement},
		{"forbidden case insensitive", "  DEBUG_LOG (\"x\")", ForbiddenStatement},
		{"forbidden needs call", "local print_x = 1", Code},
		{"forbidden exact name", "printer(1)", Code},
		{"same line block", "local limit = 10 --[[ max ]]", BlockCommentCloseSameLine},
		{"annotation block", "--[[---@class Foo]]", Annotation},
		{"license at top", "-- Copyright (c) 2024 Example", LicenseHeader},
		{"license keyword", "-- SPDX-License-Identifier: MIT", LicenseHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []Category{tt.want}, categoriesOf(t, tt.line))
		})
	}
}

// TestClassifyInlineCommentOffset 验证行内注释起点直接记录在结果里。
func TestClassifyInlineCommentOffset(t *testing.T) {
	records := Classify(LuaRules(), []string{"local x = 1 -- count"})

	require.Len(t, records, 1)
	assert.Equal(t, 12, records[0].CommentAt)
	assert.False(t, records[0].URLGuarded)
	assert.Equal(t, "local x = 1", records[0].CodeText())
}

// TestClassifyURLGuard 验证含 URL 的注释行被标记为保护。
func TestClassifyURLGuard(t *testing.T) {
	records := Classify(LuaRules(), []string{"foo() -- see http://example.com"})

	require.Len(t, records, 1)
	assert.True(t, records[0].URLGuarded)
	assert.Equal(t, -1, records[0].CommentAt)
}

// TestClassifyMultiLineForbidden 验证跨行禁用调用与括号深度。
func TestClassifyMultiLineForbidden(t *testing.T) {
	records := Classify(LuaRules(), []string{
		"debug_log(a,",
		"  b)",
		"local after = 1",
	})

	require.Len(t, records, 3)
	assert.Equal(t, ForbiddenStatement, records[0].Category)
	assert.Equal(t, 1, records[0].Depth)
	assert.Equal(t, ForbiddenStatementContinuation, records[1].Category)
	assert.Equal(t, 0, records[1].Depth)
	assert.Equal(t, Code, records[2].Category)
}

// TestClassifyForbiddenInterleaved 验证语句内部的空行和注释仍按注释处理，不影响深度。
func TestClassifyForbiddenInterleaved(t *testing.T) {
	got := categoriesOf(t,
		"warn_log(string.format(\"%s\",",
		"",
		"  -- explain (",
		"  value))",
		"return value",
	)

	assert.Equal(t, []Category{
		ForbiddenStatement,
		Blank,
		FullLineComment,
		ForbiddenStatementContinuation,
		Code,
	}, got)
}

// TestClassifyForbiddenOverBalanced 验证深度小于 0 时同样视为闭合。
func TestClassifyForbiddenOverBalanced(t *testing.T) {
	got := categoriesOf(t, "print(a))", "x = 1")
	assert.Equal(t, []Category{ForbiddenStatement, Code}, got)
}

// TestClassifyUnclosedForbidden 验证未闭合语句吞掉直到文件末尾的所有行。
func TestClassifyUnclosedForbidden(t *testing.T) {
	classifier := NewClassifier(LuaRules())
	lines := []string{"local a = 1", "print(", "  \"a\"", "local z = 1", "return z"}

	var got []Category
	for _, line := range lines {
		got = append(got, classifier.Next(line).Category)
	}

	assert.Equal(t, []Category{
		Code,
		ForbiddenStatement,
		ForbiddenStatementContinuation,
		ForbiddenStatementContinuation,
		ForbiddenStatementContinuation,
	}, got)

	start, open := classifier.Unclosed()
	assert.True(t, open)
	assert.Equal(t, 2, start)
	assert.Equal(t, 1, classifier.State().ParenDepth)
}

// TestClassifyBlockComment 验证多行块注释的进入、内部与结束。
func TestClassifyBlockComment(t *testing.T) {
	records := Classify(LuaRules(), []string{"--[[", "  body one", "", "  body two", "]]", "local x = 1"})

	got := make([]Category, 0, len(records))
	for _, record := range records {
		got = append(got, record.Category)
	}
	assert.Equal(t, []Category{
		BlockCommentOpen,
		BlockCommentBody,
		Blank,
		BlockCommentBody,
		BlockCommentCloseSameLine,
		Code,
	}, got)
	assert.Equal(t, 0, records[4].CommentAt)
	assert.Equal(t, "", records[4].CodeText())
}

// TestClassifyCloserBeforeOpener 验证起始符之前的 ]] 不会被当作闭合。
func TestClassifyCloserBeforeOpener(t *testing.T) {
	got := categoriesOf(t, "local v = t[a[1]] --[[ start", "still comment", "end ]]", "return v")
	assert.Equal(t, []Category{
		BlockCommentOpen,
		BlockCommentBody,
		BlockCommentCloseSameLine,
		Code,
	}, got)
}

// TestClassifyAnnotationBlockDoesNotOpen 验证注解块不会进入块注释状态。
func TestClassifyAnnotationBlockDoesNotOpen(t *testing.T) {
	got := categoriesOf(t, "--[[ ---@type string", "local y = 2")
	assert.Equal(t, []Category{Annotation, Code}, got)
}

// TestClassifySameLineBlockKeepsCodeBeforeFirstMarker 验证单行块注释只保留第一个注释标记之前的代码。
func TestClassifySameLineBlockKeepsCodeBeforeFirstMarker(t *testing.T) {
	records := Classify(LuaRules(), []string{"a = 1 -- b --[[ c ]]"})

	require.Len(t, records, 1)
	assert.Equal(t, BlockCommentCloseSameLine, records[0].Category)
	assert.Equal(t, "a = 1", records[0].CodeText())
}

// TestClassifySameLineBlockOnForbiddenCall 验证单行块注释前面是禁用调用时整行按禁用调用处理。
func TestClassifySameLineBlockOnForbiddenCall(t *testing.T) {
	got := categoriesOf(t,
		"print(x) --[[ trace ]]",
		"debug_log(a, --[[ first ]]",
		"  b)",
		"return x",
	)
	assert.Equal(t, []Category{
		ForbiddenStatement,
		ForbiddenStatement,
		ForbiddenStatementContinuation,
		Code,
	}, got)
}

// TestClassifyBlockOpenInsideForbidden 验证禁用调用中间穿插块注释时，注释之后的续行仍被识别。
func TestClassifyBlockOpenInsideForbidden(t *testing.T) {
	got := categoriesOf(t, "debug_log(a, --[[", "note", "]]", "  b)", "return a")
	assert.Equal(t, []Category{
		BlockCommentOpen,
		BlockCommentBody,
		BlockCommentCloseSameLine,
		ForbiddenStatementContinuation,
		Code,
	}, got)
}

// TestClassifyForbiddenCountsParensAfterBlockComment 验证块注释之后的右括号同样参与计数，
// 语句闭合后的代码行不会被当作续行删除。
func TestClassifyForbiddenCountsParensAfterBlockComment(t *testing.T) {
	records := Classify(LuaRules(), []string{"print(a, --[[ note ]] b)", "local x = 1", "return x"})

	require.Len(t, records, 3)
	assert.Equal(t, ForbiddenStatement, records[0].Category)
	assert.Equal(t, 0, records[0].Depth)
	assert.Equal(t, Code, records[1].Category)
	assert.Equal(t, Code, records[2].Category)

	got := categoriesOf(t, "debug_log(a, --[[", "note", "]] b)", "local x = 1")
	assert.Equal(t, []Category{
		BlockCommentOpen,
		BlockCommentBody,
		BlockCommentCloseSameLine,
		Code,
	}, got)

	got = categoriesOf(t, "warn_log(a,", "  --[[ x ]] b) -- done (", "local y = 2")
	assert.Equal(t, []Category{
		ForbiddenStatement,
		ForbiddenStatementContinuation,
		Code,
	}, got)
}

// TestRecordCodeTextTrimsUnicodeSpace 验证行尾的各类空白都会被去掉。
func TestRecordCodeTextTrimsUnicodeSpace(t *testing.T) {
	assert.Equal(t, "x = 1", Record{Text: "x = 1 \v\f\u00a0", CommentAt: -1}.CodeText())
	assert.Equal(t, "x = 1", Record{Text: "x = 1\u00a0-- c", CommentAt: 7}.CodeText())
}

// TestClassifyLicenseOnlyAtTop 验证代码出现之后不再识别许可证头。
func TestClassifyLicenseOnlyAtTop(t *testing.T) {
	got := categoriesOf(t,
		"-- Copyright (c) 2024 Example",
		"---@meta",
		"-- Licensed under the MIT license",
		"local M = {}",
		"-- license: see LICENSE",
	)
	assert.Equal(t, []Category{
		LicenseHeader,
		Annotation,
		LicenseHeader,
		Code,
		FullLineComment,
	}, got)
}

// TestClassifyLicenseAfterSameLineBlockCode 验证单行块注释前的代码同样终止许可证头识别。
func TestClassifyLicenseAfterSameLineBlockCode(t *testing.T) {
	got := categoriesOf(t, "x = 1 --[[ c ]]", "-- copyright 2024")
	assert.Equal(t, []Category{BlockCommentCloseSameLine, FullLineComment}, got)
}

// TestClassifyCommentMarkerInString 记录已知近似：字符串中的注释标记同样被视为注释。
func TestClassifyCommentMarkerInString(t *testing.T) {
	records := Classify(LuaRules(), []string{`local sep = "--"`})

	require.Len(t, records, 1)
	assert.Equal(t, Code, records[0].Category)
	assert.Equal(t, `local sep = "`, records[0].CodeText())
}

// TestClassifyStatePerFile 验证不同分类器之间不共享状态。
func TestClassifyStatePerFile(t *testing.T) {
	rules := LuaRules()

	first := NewClassifier(rules)
	first.Next("--[[")
	require.True(t, first.State().InBlockComment)

	second := NewClassifier(rules)
	assert.Equal(t, Code, second.Next("local x = 1").Category)
	assert.Equal(t, 2, second.Next("y = 2").Index)
}

func TestNewRulesValidation(t *testing.T) {
	base := SpecForDialect(dialect.Lua())

	_, err := NewRules(base)
	require.NoError(t, err)

	broken := base
	broken.LicensePattern = "("
	_, err = NewRules(broken)
	require.Error(t, err)

	broken = base
	broken.BlockClose = ""
	_, err = NewRules(broken)
	require.Error(t, err)

	broken = base
	broken.BlockOpen = "[["
	_, err = NewRules(broken)
	require.Error(t, err)
}

// TestRulesWithoutForbiddenCalls 验证清空禁用调用后 print 行按普通代码处理。
func TestRulesWithoutForbiddenCalls(t *testing.T) {
	spec := SpecForDialect(dialect.Lua())
	spec.ForbiddenCalls = []string{}

	rules, err := NewRules(spec)
	require.NoError(t, err)

	records := Classify(rules, []string{"print(1)"})
	assert.Equal(t, Code, records[0].Category)
}

// TestRuleSpecMerge 验证覆盖只替换非空字段。
func TestRuleSpecMerge(t *testing.T) {
	base := SpecForDialect(dialect.Lua())

	merged := base.Merge(RuleSpec{URLPattern: `://`, ForbiddenCalls: []string{"log"}})
	assert.Equal(t, "--", merged.LineComment)
	assert.Equal(t, `://`, merged.URLPattern)
	assert.Equal(t, []string{"log"}, merged.ForbiddenCalls)

	unchanged := base.Merge(RuleSpec{})
	assert.Equal(t, base, unchanged)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "annotation", Annotation.String())
	assert.Equal(t, "category(99)", Category(99).String())

	text, err := ForbiddenStatementContinuation.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "forbidden_continuation", string(text))
	assert.True(t, ForbiddenStatementContinuation.IsForbidden())
	assert.False(t, Code.IsForbidden())
}
