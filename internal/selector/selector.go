// Package selector 根据扫描根目录和排除规则挑选待处理文件。
package selector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
	ignore "github.com/sabhiram/go-gitignore"

	"luastrip/internal/dialect"
)

// IgnoredDirs 是遍历时始终跳过的目录（扫描根目录本身除外）。
var IgnoredDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	".vscode":      true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".luarocks":    true,
	"lua_modules":  true,
}

var testDirNames = map[string]bool{
	"test":  true,
	"tests": true,
	"spec":  true,
	"specs": true,
}

var testFileMarkers = []string{"test_", "_test", "spec_", "_spec"}

// Options 控制文件选择。
type Options struct {
	Registry *dialect.Registry
	// Dialect 为目标方言名称，只有后缀属于该方言的文件会被选中。
	Dialect string
	// Exclude 使用 .gitignore 语法，相对扫描根目录匹配。
	Exclude []string
	// Include 为 doublestar glob，为空表示不过滤。
	Include []string
	// ExcludeTests 跳过测试目录和测试文件。
	ExcludeTests bool
	// UseGitignore 读取扫描根目录下的 .gitignore。
	UseGitignore bool
	// Extensions 非空时按后缀选择文件，取代方言匹配；不属于任何方言的文件 Dialect 为零值。
	Extensions []string
}

// Target 表示一个待处理文件。
type Target struct {
	AbsolutePath string
	// DisplayPath 是相对扫描根目录的 / 分隔路径。
	DisplayPath string
	Dialect     dialect.Dialect
}

// ErrUnsupportedFile 表示单文件模式下文件不属于目标方言。
var ErrUnsupportedFile = errors.New("unsupported file")

// Walk 遍历 root 并对每个选中的文件调用 visit。visit 返回错误会中止遍历。
func Walk(root string, options Options, visit func(Target) error) error {
	if options.Registry == nil {
		options.Registry = dialect.NewRegistry()
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat path: %w", err)
	}

	if !info.IsDir() {
		target, ok := options.match(root, filepath.Base(root))
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(root))
		}
		return visit(target)
	}

	matcher, err := options.ignoreMatcher(root)
	if err != nil {
		return err
	}

	for _, pattern := range options.Include {
		if _, matchErr := doublestar.Match(pattern, ""); matchErr != nil {
			return fmt.Errorf("invalid include pattern %q: %w", pattern, matchErr)
		}
	}

	return filepath.WalkDir(root, func(current string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if current == root {
			return nil
		}

		relativePath, relErr := filepath.Rel(root, current)
		if relErr != nil {
			return relErr
		}
		relativePath = filepath.ToSlash(relativePath)

		if entry.IsDir() {
			if IgnoredDirs[entry.Name()] {
				return filepath.SkipDir
			}
			if options.ExcludeTests && testDirNames[strings.ToLower(entry.Name())] {
				return filepath.SkipDir
			}
			if matcher != nil && matcher.MatchesPath(relativePath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher != nil && matcher.MatchesPath(relativePath) {
			return nil
		}
		if options.ExcludeTests && isTestFile(entry.Name()) {
			return nil
		}
		if !options.included(relativePath) {
			return nil
		}

		target, ok := options.match(current, relativePath)
		if !ok {
			return nil
		}
		return visit(target)
	})
}

// Select 收集 Walk 选中的全部文件，顺序为词法遍历顺序。
func Select(root string, options Options) ([]Target, error) {
	targets := make([]Target, 0)
	err := Walk(root, options, func(target Target) error {
		targets = append(targets, target)
		return nil
	})
	return targets, err
}

func (o Options) match(absolutePath string, displayPath string) (Target, bool) {
	if len(o.Extensions) > 0 {
		if !hasExtension(absolutePath, o.Extensions) {
			return Target{}, false
		}
		item, _ := o.Registry.ForFile(absolutePath)
		return Target{
			AbsolutePath: absolutePath,
			DisplayPath:  displayPath,
			Dialect:      item,
		}, true
	}

	item, ok := o.Registry.ForFile(absolutePath)
	if !ok {
		return Target{}, false
	}
	if o.Dialect != "" && !strings.EqualFold(item.Name, o.Dialect) {
		return Target{}, false
	}
	return Target{
		AbsolutePath: absolutePath,
		DisplayPath:  displayPath,
		Dialect:      item,
	}, true
}

func (o Options) included(relativePath string) bool {
	if len(o.Include) == 0 {
		return true
	}
	for _, pattern := range o.Include {
		if ok, _ := doublestar.Match(pattern, relativePath); ok {
			return true
		}
	}
	return false
}

// ignoreMatcher 合并 .gitignore 与配置中的排除规则。
func (o Options) ignoreMatcher(root string) (*ignore.GitIgnore, error) {
	lines := make([]string, 0, len(o.Exclude))

	if o.UseGitignore {
		content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
		switch {
		case err == nil:
			lines = append(lines, strings.Split(string(content), "\n")...)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read .gitignore: %w", err)
		}
	}

	for _, pattern := range o.Exclude {
		if strings.TrimSpace(pattern) != "" {
			lines = append(lines, pattern)
		}
	}

	if len(lines) == 0 {
		return nil, nil
	}
	return ignore.CompileIgnoreLines(lines...), nil
}

// isTestFile 判断文件名是否带测试标记。
func isTestFile(name string) bool {
	lower := strings.ToLower(strings.TrimSuffix(name, path.Ext(name)))
	for _, marker := range testFileMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func hasExtension(name string, extensions []string) bool {
	ext := filepath.Ext(name)
	for _, item := range extensions {
		if strings.EqualFold(item, ext) {
			return true
		}
	}
	return false
}
