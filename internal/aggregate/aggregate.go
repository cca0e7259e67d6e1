// Package aggregate 把单文件统计折叠为目录汇总与总计。
// 聚合器不是并发安全的，只能由单个所有者驱动；每次运行重新计算，不保存任何状态。
package aggregate

import (
	"path"
	"sort"
	"strings"

	"luastrip/internal/model"
)

// RootFolder 是直接位于扫描根目录下的文件所属的目录键。
const RootFolder = "root"

// FolderOf 返回文件相对路径的直接父目录。
func FolderOf(relativePath string) string {
	folder := path.Dir(strings.ReplaceAll(relativePath, "\\", "/"))
	if folder == "." || folder == "/" || folder == "" {
		return RootFolder
	}
	return folder
}

// Aggregate 按父目录分组并计算总计。
// 目录按有效行数降序排列，行数相同时保持首次出现的顺序。
func Aggregate(files []model.FileSummary) ([]model.FolderTotals, model.GrandTotal) {
	var grand model.GrandTotal
	folders := make([]model.FolderTotals, 0)
	position := make(map[string]int)

	for _, item := range files {
		grand.AddFile(item.Counts)

		key := FolderOf(item.Path)
		idx, ok := position[key]
		if !ok {
			idx = len(folders)
			position[key] = idx
			folders = append(folders, model.FolderTotals{Folder: key})
		}
		folders[idx].Files++
		folders[idx].Counts.Add(item.Counts)
	}

	sort.SliceStable(folders, func(i int, j int) bool {
		return folders[i].Counts.Total > folders[j].Counts.Total
	})

	return folders, grand
}

// SortFiles 把文件按有效行数降序稳定排序（原地）。
func SortFiles(files []model.FileSummary) {
	sort.SliceStable(files, func(i int, j int) bool {
		return files[i].Counts.Total > files[j].Counts.Total
	})
}
