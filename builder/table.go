package builder

import (
	"bytes"
	"strconv"
	"strings"
)

type table struct {
	Name string
}

func (t table) GetName() string {
	return t.Name
}

// SqlBuilder 单表语句构造器, 参数全部使用 ? 占位符按出现顺序收集。
// 子句顺序固定: WHERE, GROUP BY, ORDER BY, LIMIT
type SqlBuilder struct {
	Table      *table
	FieldParam []string

	WhereParam  []Condition
	LimitParam  int
	OffsetParam int
	paged       bool // 设置了 Offset 之后总是输出 LIMIT offset, n

	OrderParam []Fd
	GroupParam []Fd
}

// Select 设置查询的字段列表
// fields 可以是 string 或 Fd 类型
func (s *SqlBuilder) Select(fields ...any) *SqlBuilder {
	for _, fd := range fields {
		switch val := fd.(type) {
		case string:
			s.FieldParam = append(s.FieldParam, val)
		case Fd:
			s.FieldParam = append(s.FieldParam, val.String())
		}
	}
	return s
}

// Field 获取字段
func (s *SqlBuilder) Field(field string) Fd {
	return NewField(field)
}

func (s *SqlBuilder) Where(conds ...Condition) *SqlBuilder {
	s.WhereParam = append(s.WhereParam, conds...)
	return s
}

func (s *SqlBuilder) Group(group ...Fd) *SqlBuilder {
	s.GroupParam = append(s.GroupParam, group...)
	return s
}

func (s *SqlBuilder) Order(field ...Fd) *SqlBuilder {
	s.OrderParam = append(s.OrderParam, field...)
	return s
}

func (s *SqlBuilder) Limit(limit int) *SqlBuilder {
	s.LimitParam = limit
	return s
}

// Offset 设置查询的偏移量（用于分页）
func (s *SqlBuilder) Offset(offset int) *SqlBuilder {
	s.OffsetParam = offset
	s.paged = true
	return s
}

// Page 分页, 页码从 1 开始, 不做范围校验
func (s *SqlBuilder) Page(page, size int) *SqlBuilder {
	return s.Offset((page - 1) * size).Limit(size)
}

func (s *SqlBuilder) First() *SqlBuilder {
	s.LimitParam = 1
	return s
}

func (s *SqlBuilder) getSelect() string {
	if len(s.FieldParam) > 0 {
		return "SELECT " + strings.Join(s.FieldParam, ", ")
	}
	return "SELECT *"
}

func (s *SqlBuilder) getTable() string {
	return ColumnNameHandler(s.Table.GetName())
}

func (s *SqlBuilder) getWhere() (string, []any) {
	if len(s.WhereParam) == 0 {
		return "", nil
	}
	sl, args := Conjoin(s.WhereParam...)
	return " WHERE " + sl, args
}

func (s *SqlBuilder) getGroupBy() string {
	if len(s.GroupParam) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s.GroupParam))
	for _, g := range s.GroupParam {
		parts = append(parts, g.String())
	}
	return " GROUP BY " + strings.Join(parts, ", ")
}

func (s *SqlBuilder) getOrderBy() string {
	if len(s.OrderParam) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s.OrderParam))
	for _, op := range s.OrderParam {
		parts = append(parts, op.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (s *SqlBuilder) getLimit() string {
	if s.LimitParam <= 0 {
		return ""
	}
	var bf bytes.Buffer
	bf.WriteString(" LIMIT ")
	if s.paged {
		// MySQL LIMIT 语法: LIMIT offset, limit
		bf.WriteString(strconv.Itoa(s.OffsetParam))
		bf.WriteString(", ")
	}
	bf.WriteString(strconv.Itoa(s.LimitParam))
	return bf.String()
}

// Query 构建查询语句
func (s *SqlBuilder) Query() (string, []any) {
	bf := bytes.Buffer{}
	bf.WriteString(s.getSelect())
	bf.WriteString(" FROM ")
	bf.WriteString(s.getTable())
	where, args := s.getWhere()
	bf.WriteString(where)
	bf.WriteString(s.getGroupBy())
	bf.WriteString(s.getOrderBy())
	bf.WriteString(s.getLimit())
	return bf.String(), args
}

// Count 统计满足 WHERE 的行数, 有 GROUP BY 时统计分组数
// ORDER BY 和 LIMIT 不参与统计
func (s *SqlBuilder) Count() (string, []any) {
	where, args := s.getWhere()
	if len(s.GroupParam) == 0 {
		return "SELECT count(1) FROM " + s.getTable() + where, args
	}
	bf := bytes.Buffer{}
	bf.WriteString("SELECT count(1) FROM (SELECT 1 FROM ")
	bf.WriteString(s.getTable())
	bf.WriteString(where)
	bf.WriteString(s.getGroupBy())
	bf.WriteString(") AS grouped")
	return bf.String(), args
}

// InsertRow 构建单行插入 SQL：INSERT INTO table (`a`, `b`) VALUES (?, ?)
// columns 和 values 按位置一一对应
func (s *SqlBuilder) InsertRow(columns []string, values []any) (string, []any) {
	if s.Table == nil || s.Table.GetName() == "" || len(columns) != len(values) {
		return "", nil
	}
	var bf bytes.Buffer
	bf.WriteString("INSERT INTO ")
	bf.WriteString(s.getTable())
	bf.WriteString(" (")
	bf.WriteString(strings.Join(quoteAll(columns), ", "))
	bf.WriteString(") VALUES (")
	bf.WriteString(placeholders(len(values)))
	bf.WriteString(")")
	args := make([]any, len(values))
	copy(args, values)
	return bf.String(), args
}

// UpdateRow 构建更新 SQL：UPDATE table SET `a` = ?, `b` = ? WHERE ...
// SET 子句保持 columns 的顺序, SET 参数在 WHERE 参数之前
func (s *SqlBuilder) UpdateRow(columns []string, values []any) (string, []any) {
	if s.Table == nil || s.Table.GetName() == "" || len(columns) == 0 || len(columns) != len(values) {
		return "", nil
	}
	setParts := make([]string, 0, len(columns))
	for _, c := range columns {
		setParts = append(setParts, ColumnNameHandler(c)+" = ?")
	}
	where, whereArgs := s.getWhere()

	var bf bytes.Buffer
	bf.WriteString("UPDATE ")
	bf.WriteString(s.getTable())
	bf.WriteString(" SET ")
	bf.WriteString(strings.Join(setParts, ", "))
	bf.WriteString(where)

	args := make([]any, 0, len(values)+len(whereArgs))
	args = append(args, values...)
	args = append(args, whereArgs...)
	return bf.String(), args
}
