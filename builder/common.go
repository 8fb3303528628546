package builder

import (
	"regexp"
	"strings"
)

var (
	IgnoreColumnHandlerRe = regexp.MustCompile("^([^.,]+\\.)?(\\d+|'[^']+'|\"[^\"]+\"|`[^`]+`(\\.`[^`]+`.*)?|\\*)$|(\\b[\\w]+\\.\\`[^`]+\\`)|\\(")
)

// ColumnNameHandler 为列名添加反引号，用于防止关键字冲突
// 某些情况不需要处理: 纯数字, 已带引号的字符串, 通配符*, 函数表达式
func ColumnNameHandler(field string) string {
	if field == "" {
		return ""
	}
	if IgnoreColumnHandlerRe.MatchString(field) {
		return field
	}
	fields := strings.Split(field, ".")
	lastIndex := len(fields) - 1
	if lastIndex < 0 || fields[lastIndex] == "" {
		return field
	}
	fields[lastIndex] = "`" + fields[lastIndex] + "`"
	return strings.Join(fields, ".")
}

// placeholders 生成 n 个以逗号分隔的 ? 占位符
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// quoteAll 批量处理列名
func quoteAll(columns []string) []string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = ColumnNameHandler(c)
	}
	return quoted
}
