package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"luastrip/internal/model"
)

// TestSummarizeCounts 验证各类别计数以及 Total = Code + Annotation。
func TestSummarizeCounts(t *testing.T) {
	records := Classify(LuaRules(), []string{
		"-- Copyright (c) 2024 Example",
		"",
		"---@class Favorite",
		"local Favorite = {} -- the class",
		"--[[",
		"  body",
		"]]",
		"local limit = 10 --[[ max ]]",
		"--[[ only a comment ]]",
		"debug_log(\"x\",",
		"  1)",
		"local s = \"a\" ---@type string",
		"-- plain",
	})

	assert.Equal(t, model.LineCounts{
		Physical:   13,
		Total:      4,
		Code:       3,
		Annotation: 1,
		Comment:    5,
		License:    1,
		Blank:      1,
		Forbidden:  2,
	}, Summarize(records))
}

// TestSummarizeEmpty 验证空文件得到零值。
func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, model.LineCounts{}, Summarize(nil))
}
