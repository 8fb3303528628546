package orm

import (
	"context"

	"github.com/pkg/errors"

	"github.com/preceeder/go.db.orm/builder"
)

// FindParent 通过子表一行的外键值查找父表的行。
// 有附加条件时, 外键约束条件排在最前面, 再 AND 上附加条件;
// 没有附加条件时按主键查找
func FindParent[P Model](ctx context.Context, parents *Repository[P], binding RelationBinding, conds ...builder.Condition) (Result[P], error) {
	rel := binding.Relation
	if err := checkRelation(rel, rel.Parent, parents.Schema()); err != nil {
		return notFound[P](), err
	}
	if len(conds) > 0 || rel.PrimaryKeyColumn != parents.Schema().PK() {
		constraint := columnEq(rel.PrimaryKeyColumn, binding.ForeignKeyValue)
		return parents.FindWhere(ctx, append([]builder.Condition{constraint}, conds...))
	}
	id, ok := foreignKeyID(binding.ForeignKeyValue)
	if !ok {
		return notFound[P](), nil
	}
	m, found, err := parents.FindByID(ctx, id)
	if err != nil || !found {
		return notFound[P](), err
	}
	return single(m), nil
}

// FindChildren 查找父表一行的所有子表行: WHERE <外键列> = <父表主键值>,
// 再依次拼接附加条件、GROUP BY、ORDER BY、LIMIT。
// 没有数据时返回空的 Collection, 一行时返回单个模型
func FindChildren[C Model](ctx context.Context, children *Repository[C], binding RelationBinding, opts ...QueryOption) (Result[C], error) {
	rel := binding.Relation
	if err := checkRelation(rel, rel.Child, children.Schema()); err != nil {
		return multiple[C](nil), err
	}
	o := collectOptions(opts)
	b := children.table().
		Where(columnEq(rel.ForeignKeyColumn, binding.PrimaryKeyValue)).
		Where(o.conditions...)
	models, err := children.run(ctx, b, o)
	if err != nil {
		return multiple[C](nil), err
	}
	if len(models) == 1 {
		return single(models[0]), nil
	}
	return multiple(models), nil
}

// checkRelation 关系本身有效, 且目标 schema 和仓库的表一致
func checkRelation(rel RelationSchema, target, repo *Schema) error {
	if err := rel.Validate(); err != nil {
		return err
	}
	if repo == nil {
		return ErrInvalidRelation
	}
	if target.Table != repo.Table {
		return errors.Wrapf(ErrInvalidRelation, "relation targets %s, repository serves %s", target.Table, repo.Table)
	}
	return nil
}

// foreignKeyID 外键值可能是整数, 也可能是驱动返回的数字文本
func foreignKeyID(value any) (int64, bool) {
	switch value.(type) {
	case string, []byte:
		return toInt64(value)
	}
	return integerID(value)
}
