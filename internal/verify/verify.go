// Package verify 在改写之后扫描产物，确认禁用内容已经全部移除。
package verify

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"luastrip/internal/selector"
)

// DefaultPatterns 是默认禁止出现在产物中的子串。
var DefaultPatterns = []string{
	"DEV_MODE",
	"DEBUG",
	"ENABLE_TEST_FEATURES",
	"TEST_",
	"EXPERIMENTAL",
	"LOG_LEVEL",
	"print(",
	"warn_log",
	"debug_log",
}

// DefaultExtensions 是默认参与扫描的文件后缀。
var DefaultExtensions = []string{".lua", ".json"}

// ErrForbiddenContent 表示扫描发现了禁用内容。
var ErrForbiddenContent = errors.New("forbidden content found")

// Options 控制扫描范围。
type Options struct {
	Patterns   []string
	Extensions []string
	// Selection 是文件选择规则，与改写时使用的规则一致；其中的 Extensions 会被上面的字段覆盖。
	Selection selector.Options
}

// Finding 是一次命中。Line 与 Column 从 1 开始，Column 为字节偏移。
type Finding struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Pattern string `json:"pattern"`
}

// Scan 按 Selection 选择 root 下的文件并返回全部命中，按文件遍历顺序和行号排列。
// root 是单个文件时直接扫描该文件，不检查后缀。
func Scan(root string, options Options) ([]Finding, error) {
	if len(options.Patterns) == 0 {
		options.Patterns = DefaultPatterns
	}
	if len(options.Extensions) == 0 {
		options.Extensions = DefaultExtensions
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}
	if !info.IsDir() {
		return scanFile(root, filepath.Base(root), options.Patterns)
	}

	selection := options.Selection
	selection.Extensions = options.Extensions

	findings := make([]Finding, 0)
	walkErr := selector.Walk(root, selection, func(target selector.Target) error {
		found, scanErr := scanFile(target.AbsolutePath, target.DisplayPath, options.Patterns)
		if scanErr != nil {
			return scanErr
		}
		findings = append(findings, found...)
		return nil
	})
	return findings, walkErr
}

// Check 扫描并在有命中时返回包装了 ErrForbiddenContent 的错误。
func Check(root string, options Options) ([]Finding, error) {
	findings, err := Scan(root, options)
	if err != nil {
		return findings, err
	}
	if len(findings) > 0 {
		return findings, fmt.Errorf("%w: %d occurrence(s)", ErrForbiddenContent, len(findings))
	}
	return findings, nil
}

func scanFile(absolutePath string, displayPath string, patterns []string) ([]Finding, error) {
	content, err := os.ReadFile(absolutePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", displayPath, err)
	}

	var findings []Finding
	lineScanner := bufio.NewScanner(bytes.NewReader(content))
	lineScanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)

	lineNumber := 0
	for lineScanner.Scan() {
		lineNumber++
		line := lineScanner.Text()
		for _, pattern := range patterns {
			if pattern == "" {
				continue
			}
			offset := 0
			for {
				idx := strings.Index(line[offset:], pattern)
				if idx < 0 {
					break
				}
				findings = append(findings, Finding{
					Path:    displayPath,
					Line:    lineNumber,
					Column:  offset + idx + 1,
					Pattern: pattern,
				})
				offset += idx + len(pattern)
			}
		}
	}
	if err := lineScanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", displayPath, err)
	}
	return findings, nil
}
