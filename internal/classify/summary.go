package classify

import "luastrip/internal/model"

// Summarize 把分类结果折叠成按类别的行数。
//
// 统计口径与重写结果保持一致：Total + License 恰好等于重写后保留的行数。
// 单行块注释前面有代码时计为代码，否则计为注释。
func Summarize(records []Record) model.LineCounts {
	var counts model.LineCounts

	for _, record := range records {
		counts.Physical++

		switch record.Category {
		case Blank:
			counts.Blank++
		case FullLineComment, BlockCommentOpen, BlockCommentBody:
			counts.Comment++
		case BlockCommentCloseSameLine, Code:
			if record.CodeText() != "" {
				counts.Code++
			} else {
				counts.Comment++
			}
		case InlineAnnotation:
			counts.Code++
		case Annotation:
			counts.Annotation++
		case LicenseHeader:
			counts.License++
		case ForbiddenStatement, ForbiddenStatementContinuation:
			counts.Forbidden++
		}
	}

	counts.Total = counts.Code + counts.Annotation
	return counts
}
