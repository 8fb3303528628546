package builder

import (
	"bytes"
)

// NewField 将字符串变为 Fd 类型, 列名会加上反引号
func NewField(field string) Fd {
	fd := &Fd{field: field}
	fd.ColumnNameHandler()
	fd.s = fd.field
	return *fd
}

// Fd 一个列或表达式, 用于 SELECT / GROUP BY / ORDER BY
type Fd struct {
	field string
	s     string
	as    string
}

func (f Fd) Field() string {
	return f.field
}

func (f Fd) String() string {
	return f.s
}

// As 设置别名: expr AS `label`
func (f Fd) As(label string) Fd {
	f.as = label
	bf := bytes.Buffer{}
	bf.WriteString(f.s)
	bf.WriteString(" AS ")
	bf.WriteString(ColumnNameHandler(f.as))
	f.s = bf.String()
	return f
}

func (f *Fd) ColumnNameHandler() {
	if f.field != "" {
		f.field = ColumnNameHandler(f.field)
	}
}

func (f Fd) Desc() Fd {
	if f.s != "" {
		f.s = f.s + " DESC"
	}
	return f
}

func (f Fd) Asc() Fd {
	if f.s != "" {
		f.s = f.s + " ASC"
	}
	return f
}

func (f Fd) Eq(value any) Condition {
	return Eq(f.String(), value)
}

func (f Fd) NotEq(value any) Condition {
	return NotEq(f.String(), value)
}

func (f Fd) Lte(value any) Condition {
	return Lte(f.String(), value)
}

func (f Fd) Lt(value any) Condition {
	return Lt(f.String(), value)
}

func (f Fd) Gte(value any) Condition {
	return Gte(f.String(), value)
}

func (f Fd) Gt(value any) Condition {
	return Gt(f.String(), value)
}

func (f Fd) Like(value string) Condition {
	return Like(f.String(), value)
}

func (f Fd) IsNull() Condition {
	return Eq(f.String(), nil)
}

func (f Fd) IsNotNull() Condition {
	return NotEq(f.String(), nil)
}

func (f Fd) Count() Fd {
	return Count(f)
}

func (f Fd) Sum() Fd {
	return Sum(f)
}

func (f Fd) Avg() Fd {
	return Avg(f)
}

func (f Fd) Max() Fd {
	return Max(f)
}

func (f Fd) Min() Fd {
	return Min(f)
}
