package orm

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/preceeder/go.db.orm/builder"
)

// DefaultRecordsPerPage 分页查询每页的行数
const DefaultRecordsPerPage = 10

// Repository 一种模型的查询入口, 绑定 schema 和执行器。
// 执行器可以是 *sqlx.DB 或 *sqlx.Tx, 由调用方创建和关闭。
// 所有方法都是同步的, 每次调用是一次或几次阻塞的数据库往返
type Repository[T Model] struct {
	db             sqlx.ExtContext
	schema         *Schema
	newModel       func(*Record) T
	RecordsPerPage int
}

// NewRepository newModel 把一行数据包装成具体的模型类型
func NewRepository[T Model](db sqlx.ExtContext, schema *Schema, newModel func(*Record) T) *Repository[T] {
	return &Repository[T]{
		db:             db,
		schema:         schema,
		newModel:       newModel,
		RecordsPerPage: DefaultRecordsPerPage,
	}
}

func (r *Repository[T]) Schema() *Schema {
	return r.schema
}

// New 创建未保存的模型, attributes 为存储格式
func (r *Repository[T]) New(attributes map[string]any) T {
	return r.newModel(NewRecord(r.schema, attributes))
}

func (r *Repository[T]) perPage() int {
	if r.RecordsPerPage < 1 {
		return DefaultRecordsPerPage
	}
	return r.RecordsPerPage
}

func (r *Repository[T]) table() *builder.SqlBuilder {
	return builder.Table(r.schema.Table)
}

// FindByID id 必须是整数类型, 否则视为不存在
func (r *Repository[T]) FindByID(ctx context.Context, id any) (T, bool, error) {
	var zero T
	n, ok := integerID(id)
	if !ok {
		return zero, false, nil
	}
	if err := r.schema.Validate(); err != nil {
		return zero, false, err
	}
	b := r.table().Where(columnEq(r.schema.PK(), n))
	models, err := r.fetch(ctx, b, false)
	if err != nil || len(models) == 0 {
		return zero, false, err
	}
	return models[0], true, nil
}

// FindWhere 条件按顺序 AND 连接, 没有条件时查询所有行。
// 不分页时逐行读取, 分页时一次读取整页
func (r *Repository[T]) FindWhere(ctx context.Context, conds []builder.Condition, opts ...QueryOption) (Result[T], error) {
	o := collectOptions(opts)
	b := r.table().Where(conds...).Where(o.conditions...)
	models, err := r.run(ctx, b, o)
	if err != nil {
		return notFound[T](), err
	}
	return resultOf(models), nil
}

// FindFirstWhere 第一页的第一行
func (r *Repository[T]) FindFirstWhere(ctx context.Context, conds []builder.Condition) (T, bool, error) {
	res, err := r.FindWhere(ctx, conds, WithPage(1))
	if err != nil {
		var zero T
		return zero, false, err
	}
	m, ok := res.First()
	return m, ok, nil
}

// All 所有行, 默认按 id 倒序, 有数据时总是返回 Collection
func (r *Repository[T]) All(ctx context.Context, opts ...QueryOption) (Result[T], error) {
	o := collectOptions(append([]QueryOption{OrderBy(DefaultOrderColumn, Desc)}, opts...))
	models, err := r.run(ctx, r.table().Where(o.conditions...), o)
	if err != nil || len(models) == 0 {
		return notFound[T](), err
	}
	return multiple(models), nil
}

// Count 整张表的行数
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	if err := r.schema.Validate(); err != nil {
		return 0, err
	}
	return r.count(ctx, r.table())
}

// TotalPages ceil(Count / RecordsPerPage)
func (r *Repository[T]) TotalPages(ctx context.Context) (int64, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	per := int64(r.perPage())
	return (total + per - 1) / per, nil
}

// Save 主键为空时 INSERT 并回填主键, 否则按主键 UPDATE 所有列。
// 数据库有默认值且当前为 nil 的列不参与写入
func (r *Repository[T]) Save(ctx context.Context, m T) error {
	rec := m.Base()
	schema := rec.Schema()
	if err := schema.Validate(); err != nil {
		return err
	}
	columns := schema.persistColumns(rec)
	values := rec.values(columns)

	if id, ok := rec.ID(); ok {
		q, args := builder.Table(schema.Table).Where(columnEq(schema.PK(), id)).UpdateRow(columns, values)
		if q == "" {
			return nil
		}
		_, err := r.exec(ctx, q, args)
		return err
	}

	q, args := builder.Table(schema.Table).InsertRow(columns, values)
	rs, err := r.exec(ctx, q, args)
	if err != nil {
		return err
	}
	id, err := rs.LastInsertId()
	if err != nil {
		slog.ErrorContext(ctx, "orm LastInsertId failed", "error", err, "table", schema.Table)
		return errors.Wrapf(err, "last insert id %s", schema.Table)
	}
	rec.setID(id)
	return nil
}

// SaveIfNotExists 按所有列查找相同的行, 找到就返回它, 否则保存 m 并返回 m。
// strict 为 false 时值为 nil 的列不参与匹配; 未保存的主键总是不参与匹配
func (r *Repository[T]) SaveIfNotExists(ctx context.Context, m T, strict bool) (T, error) {
	rec := m.Base()
	schema := rec.Schema()
	pk := schema.PK()
	conds := make([]builder.Condition, 0, len(schema.AllColumns()))
	for _, column := range schema.AllColumns() {
		value := rec.Raw(column)
		if value == nil && (column == pk || !strict) {
			continue
		}
		conds = append(conds, columnEq(column, value))
	}
	if len(conds) > 0 {
		found, ok, err := r.FindFirstWhere(ctx, conds)
		if err != nil {
			return m, err
		}
		if ok {
			return found, nil
		}
	}
	if err := r.Save(ctx, m); err != nil {
		return m, err
	}
	return m, nil
}

// run 应用分组、排序和分页后执行查询
func (r *Repository[T]) run(ctx context.Context, b *builder.SqlBuilder, o *queryOptions) ([]T, error) {
	if err := r.schema.Validate(); err != nil {
		return nil, err
	}
	if err := o.shape(b, r.schema); err != nil {
		return nil, err
	}
	if o.paged {
		if err := r.paginate(ctx, b, o.page); err != nil {
			return nil, err
		}
	}
	return r.fetch(ctx, b, o.paged)
}

// paginate 页码按满足同样条件的行数限制范围, 再生成 LIMIT offset, n
func (r *Repository[T]) paginate(ctx context.Context, b *builder.SqlBuilder, page int) error {
	total, err := r.count(ctx, b)
	if err != nil {
		return err
	}
	per := r.perPage()
	b.Page(clampPage(page, total, per), per)
	return nil
}

func (r *Repository[T]) count(ctx context.Context, b *builder.SqlBuilder) (int64, error) {
	q, args := b.Count()
	q = r.db.Rebind(q)
	slog.DebugContext(ctx, "orm count", "sql", q, "data", args)
	var n int64
	if err := r.db.QueryRowxContext(ctx, q, args...).Scan(&n); err != nil {
		slog.ErrorContext(ctx, "orm count failed", "error", err, "sql", q, "data", args)
		return 0, errors.Wrapf(err, "count %s", r.schema.Table)
	}
	return n, nil
}

// fetch 执行查询并把每一行还原为模型。
// bulk 为 false 时边读边还原, 结果集在还原期间一直占用连接;
// bulk 为 true 时 (分页, 行数有上限) 先一次读完并关闭结果集, 释放连接后再还原
func (r *Repository[T]) fetch(ctx context.Context, b *builder.SqlBuilder, bulk bool) ([]T, error) {
	q, args := b.Query()
	q = r.db.Rebind(q)
	slog.DebugContext(ctx, "orm query", "sql", q, "data", args)
	rows, err := r.db.QueryxContext(ctx, q, args...)
	if err != nil {
		slog.ErrorContext(ctx, "orm Query failed", "error", err, "sql", q, "data", args)
		return nil, errors.Wrapf(err, "query %s", r.schema.Table)
	}
	if bulk {
		maps, err := scanMaps(rows)
		if err != nil {
			slog.ErrorContext(ctx, "orm scan failed", "error", err, "sql", q, "data", args)
			return nil, errors.Wrapf(err, "scan %s", r.schema.Table)
		}
		models := make([]T, 0, len(maps))
		for _, row := range maps {
			models = append(models, r.newModel(NewRecord(r.schema, row)))
		}
		return models, nil
	}
	defer rows.Close()

	var models []T
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			slog.ErrorContext(ctx, "orm MapScan failed", "error", err, "sql", q)
			return nil, errors.Wrapf(err, "scan %s", r.schema.Table)
		}
		models = append(models, r.newModel(NewRecord(r.schema, row)))
	}
	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "orm rows failed", "error", err, "sql", q)
		return nil, errors.Wrapf(err, "read %s", r.schema.Table)
	}
	return models, nil
}

// scanMaps 读完整个结果集后关闭, 列名只取一次
func scanMaps(rows *sqlx.Rows) ([]map[string]any, error) {
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, rows.Close()
}

func (r *Repository[T]) exec(ctx context.Context, q string, args []any) (sql.Result, error) {
	q = r.db.Rebind(q)
	slog.DebugContext(ctx, "orm exec", "sql", q, "data", args)
	rs, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		slog.ErrorContext(ctx, "orm exec failed", "error", err, "sql", q, "data", args)
		return nil, errors.Wrapf(err, "exec %s", r.schema.Table)
	}
	return rs, nil
}
