package orm

import (
	"strings"
)

// RelationSchema 两种模型之间的外键关系, 定义一次后不再修改。
// Child 持有外键列 ForeignKeyColumn, 指向 Parent 的 PrimaryKeyColumn。
//
// 构造时不报错: 缺少表名的 schema 记为 nil, 空的列名记为 "",
// 导航时 Validate 失败返回 ErrInvalidRelation
type RelationSchema struct {
	Child            *Schema
	ForeignKeyColumn string
	Parent           *Schema
	PrimaryKeyColumn string
}

// NewRelation primaryKeyColumn 省略时为 id
func NewRelation(child *Schema, foreignKeyColumn string, parent *Schema, primaryKeyColumn ...string) RelationSchema {
	pk := DefaultPrimaryKey
	if len(primaryKeyColumn) > 0 {
		pk = strings.TrimSpace(primaryKeyColumn[0])
	}
	r := RelationSchema{
		ForeignKeyColumn: strings.TrimSpace(foreignKeyColumn),
		PrimaryKeyColumn: pk,
	}
	if child.Validate() == nil {
		r.Child = child
	}
	if parent.Validate() == nil {
		r.Parent = parent
	}
	return r
}

func (r RelationSchema) Validate() error {
	if r.Child == nil || r.Parent == nil || r.ForeignKeyColumn == "" || r.PrimaryKeyColumn == "" {
		return ErrInvalidRelation
	}
	return nil
}

// FromChild 从子表的一行导航到父表, 取它的外键值
func (r RelationSchema) FromChild(child Model) RelationBinding {
	b := RelationBinding{Relation: r}
	if r.ForeignKeyColumn != "" {
		b.ForeignKeyValue = child.Base().Raw(r.ForeignKeyColumn)
	}
	return b
}

// FromParent 从父表的一行导航到子表, 取它的主键值
func (r RelationSchema) FromParent(parent Model) RelationBinding {
	b := RelationBinding{Relation: r}
	if r.PrimaryKeyColumn != "" {
		b.PrimaryKeyValue = parent.Base().Raw(r.PrimaryKeyColumn)
	}
	return b
}

// RelationBinding 一次导航使用的关系和具体的键值, 每次导航重新构造
type RelationBinding struct {
	Relation        RelationSchema
	ForeignKeyValue any
	PrimaryKeyValue any
}
