package builder

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrNullOperator 空值只能和 =, !=, <> 组合
var ErrNullOperator = errors.New("builder: null value only supports =, != and <> operators")

// Condition 是 WHERE 子句中的一个比较项, 构造后不可变。
// 普通条件渲染为 "<field> <operator> ?"，raw 条件原样输出。
type Condition struct {
	field    string
	operator string
	value    any
	raw      string
	args     []any
	isRaw    bool
}

// NewCondition 创建比较条件, operator 默认为 "="。
// value 为 nil 时 "=" 改写为 "IS", "!=" 和 "<>" 改写为 "IS NOT",
// 其他运算符与 nil 组合返回 ErrNullOperator。
func NewCondition(field string, value any, operator ...string) (Condition, error) {
	op := "="
	if len(operator) > 0 && operator[0] != "" {
		op = operator[0]
	}
	if value == nil {
		switch op {
		case "=":
			op = "IS"
		case "!=", "<>":
			op = "IS NOT"
		default:
			return Condition{}, errors.Wrapf(ErrNullOperator, "field %s operator %s", field, op)
		}
	}
	return Condition{field: field, operator: op, value: value}, nil
}

// MustCondition 同 NewCondition, 出错直接 panic
func MustCondition(field string, value any, operator ...string) Condition {
	c, err := NewCondition(field, value, operator...)
	if err != nil {
		panic(err)
	}
	return c
}

// Raw 手写的条件, 原样拼接到 WHERE 中, args 按顺序绑定到其中的 ? 占位符
func Raw(sql string, args ...any) Condition {
	return Condition{raw: sql, args: args, isRaw: true}
}

func Eq(field string, value any) Condition {
	return MustCondition(field, value, "=")
}

func NotEq(field string, value any) Condition {
	return MustCondition(field, value, "!=")
}

func Neq(field string, value any) Condition {
	return MustCondition(field, value, "<>")
}

// Gt, Gte, Lt, Lte, Like 经过 MustCondition 构造, value 为 nil 时 panic (ErrNullOperator)。
// 值可能为 nil 时使用 NewCondition 并处理返回的错误
func Gt(field string, value any) Condition {
	return MustCondition(field, value, ">")
}

func Gte(field string, value any) Condition {
	return MustCondition(field, value, ">=")
}

func Lt(field string, value any) Condition {
	return MustCondition(field, value, "<")
}

func Lte(field string, value any) Condition {
	return MustCondition(field, value, "<=")
}

func Like(field string, value any) Condition {
	return MustCondition(field, value, "LIKE")
}

func (c Condition) Field() string {
	return c.field
}

func (c Condition) Operator() string {
	return c.operator
}

// Value 比较的值, raw 条件返回 nil
func (c Condition) Value() any {
	return c.value
}

func (c Condition) IsRaw() bool {
	return c.isRaw
}

// IsNull 比较值为 nil 的非 raw 条件
func (c Condition) IsNull() bool {
	return !c.isRaw && c.value == nil
}

// Render 渲染为 SQL 片段
func (c Condition) Render() string {
	if c.isRaw {
		return c.raw
	}
	var bf strings.Builder
	bf.WriteString(c.field)
	bf.WriteString(" ")
	bf.WriteString(c.operator)
	bf.WriteString(" ?")
	return bf.String()
}

func (c Condition) String() string {
	return c.Render()
}

// Params 需要绑定的参数, 值为 nil 的条件不参与绑定
func (c Condition) Params() []any {
	if c.isRaw {
		return c.args
	}
	if c.value == nil {
		return nil
	}
	return []any{c.value}
}

// clause 拼接语句时使用的片段, nil 值条件不绑定参数, 占位符替换成 NULL
func (c Condition) clause() string {
	if c.IsNull() {
		return c.field + " " + c.operator + " NULL"
	}
	return c.Render()
}

// Conjoin 用 AND 按顺序连接条件, 返回 SQL 片段和参数
func Conjoin(conds ...Condition) (string, []any) {
	if len(conds) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	for _, c := range conds {
		parts = append(parts, c.clause())
		args = append(args, c.Params()...)
	}
	return strings.Join(parts, " AND "), args
}
