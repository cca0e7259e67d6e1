// Package dialect 管理脚本方言的注释标记与文件后缀。
// 分类器本身不关心具体语言，只依赖这里给出的标记集合。
package dialect

import (
	"path/filepath"
	"sort"
	"strings"
)

// Dialect 描述一种脚本方言的行级标记。
type Dialect struct {
	Name            string   `json:"name" yaml:"name"`
	Extensions      []string `json:"extensions" yaml:"extensions"`
	LineComment     string   `json:"line_comment" yaml:"line_comment"`
	BlockOpen       string   `json:"block_open" yaml:"block_open"`
	BlockClose      string   `json:"block_close" yaml:"block_close"`
	AnnotationSigil string   `json:"annotation_sigil" yaml:"annotation_sigil"`
}

// Registry 管理方言注册与后缀映射。
type Registry struct {
	dialects     []Dialect
	dialectByExt map[string]Dialect
}

// NewRegistry 创建并注册所有内置方言。
func NewRegistry() *Registry {
	dialects := []Dialect{
		Lua(),
	}

	registry := &Registry{
		dialects:     dialects,
		dialectByExt: make(map[string]Dialect),
	}

	for _, item := range dialects {
		for _, ext := range item.Extensions {
			registry.dialectByExt[strings.ToLower(ext)] = item
		}
	}

	return registry
}

// ForFile 根据文件后缀查找方言。
func (r *Registry) ForFile(path string) (Dialect, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	item, ok := r.dialectByExt[ext]
	return item, ok
}

// Lookup 按名称（大小写不敏感）查找方言。
func (r *Registry) Lookup(name string) (Dialect, bool) {
	for _, item := range r.dialects {
		if strings.EqualFold(item.Name, strings.TrimSpace(name)) {
			return item, true
		}
	}
	return Dialect{}, false
}

// Dialects 返回已注册方言清单，按名称排序，后缀列表为副本。
func (r *Registry) Dialects() []Dialect {
	result := make([]Dialect, 0, len(r.dialects))
	for _, item := range r.dialects {
		extensions := append([]string(nil), item.Extensions...)
		sort.Strings(extensions)
		item.Extensions = extensions
		result = append(result, item)
	}

	sort.Slice(result, func(i int, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}
