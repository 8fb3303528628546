package orm

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/preceeder/go.db.orm/builder"
)

// Direction 排序方向
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// DefaultOrderColumn 没有指定排序列时使用
const DefaultOrderColumn = "id"

type queryOptions struct {
	page       int
	paged      bool
	conditions []builder.Condition
	ordered    bool
	direction  Direction
	orderBy    string
	groupBy    []string
	aggregates map[string]string
}

// QueryOption 查询的可选参数: 分页、附加条件、排序、分组和聚合
type QueryOption func(*queryOptions)

// WithPage 按 RecordsPerPage 分页, 页码从 1 开始, 小于 1 按第 1 页
func WithPage(page int) QueryOption {
	return func(o *queryOptions) {
		if page < 1 {
			page = 1
		}
		o.page = page
		o.paged = true
	}
}

// WithConditions 附加的 AND 条件, 排在约束条件之后
func WithConditions(conds ...builder.Condition) QueryOption {
	return func(o *queryOptions) {
		o.conditions = append(o.conditions, conds...)
	}
}

// OrderBy column 为空时使用 id
func OrderBy(column string, direction Direction) QueryOption {
	return func(o *queryOptions) {
		o.ordered = true
		o.orderBy = column
		o.direction = direction
	}
}

// GroupBy 分组列, 为空时不输出 GROUP BY
func GroupBy(columns ...string) QueryOption {
	return func(o *queryOptions) {
		o.groupBy = append(o.groupBy, columns...)
	}
}

// Aggregate 列名 -> 聚合函数名, 查询列表中该列替换为 FUNC(col) AS col
func Aggregate(columns map[string]string) QueryOption {
	return func(o *queryOptions) {
		if o.aggregates == nil {
			o.aggregates = make(map[string]string, len(columns))
		}
		for k, v := range columns {
			o.aggregates[k] = v
		}
	}
}

func collectOptions(opts []QueryOption) *queryOptions {
	o := &queryOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// columnEq 由 schema 或关系中的列名生成的条件, 列名加反引号
func columnEq(column string, value any) builder.Condition {
	return builder.NewField(column).Eq(value)
}

// orderField ORDER BY 只接受 ASC 和 DESC
func orderField(column string, direction Direction) (builder.Fd, error) {
	if column == "" {
		column = DefaultOrderColumn
	}
	fd := builder.NewField(column)
	switch Direction(strings.ToUpper(string(direction))) {
	case Asc:
		return fd.Asc(), nil
	case Desc:
		return fd.Desc(), nil
	}
	return builder.Fd{}, errors.Wrapf(ErrInvalidDirection, "%q", direction)
}

// selectList 有聚合时按 schema 列生成查询列表, 否则 SELECT *
func selectList(schema *Schema, aggregates map[string]string) ([]any, error) {
	if len(aggregates) == 0 {
		return nil, nil
	}
	fields := make([]any, 0, len(schema.AllColumns()))
	for _, column := range schema.AllColumns() {
		fn, ok := aggregates[column]
		if !ok {
			fields = append(fields, builder.NewField(column))
			continue
		}
		fd, err := builder.Aggregate(fn, column)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fd.As(column))
	}
	return fields, nil
}

// shape 把分组、聚合、排序应用到 builder 上
func (o *queryOptions) shape(b *builder.SqlBuilder, schema *Schema) error {
	fields, err := selectList(schema, o.aggregates)
	if err != nil {
		return err
	}
	b.Select(fields...)
	for _, column := range o.groupBy {
		b.Group(builder.NewField(column))
	}
	if o.ordered {
		fd, err := orderField(o.orderBy, o.direction)
		if err != nil {
			return err
		}
		b.Order(fd)
	}
	return nil
}

// clampPage 页码限制在 [1, totalPages]
func clampPage(page int, total int64, perPage int) int {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}
