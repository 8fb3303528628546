package orm

import (
	"github.com/duke-git/lancet/v2/slice"
)

// DefaultPrimaryKey 主键列默认名称
const DefaultPrimaryKey = "id"

// Schema 描述模型与表的映射关系, 每种模型定义一次, 多个实例共享
type Schema struct {
	Table               string
	Columns             []string // 可读写的列
	ReadOnlyColumns     []string // 只能从 null 写入一次的列
	DatetimeColumns     []string // 时间列, 对外使用展示格式
	DefaultValueColumns []string // 数据库有默认值的列, 为 null 时不参与写入
	PrimaryKey          string   // 默认 id
}

// Model 由每种模型实现, 典型用法是内嵌 *Record 再加上按列的类型化访问方法
//
//	type Order struct{ *orm.Record }
//
//	func (o *Order) Status() string { s, _ := o.Get("status").(string); return s }
type Model interface {
	Base() *Record
}

func (s *Schema) PK() string {
	if s.PrimaryKey == "" {
		return DefaultPrimaryKey
	}
	return s.PrimaryKey
}

// AllColumns 可读写列在前, 只读列在后, 去重
func (s *Schema) AllColumns() []string {
	return slice.Union(s.Columns, s.ReadOnlyColumns)
}

func (s *Schema) Has(column string) bool {
	return slice.Contain(s.Columns, column) || slice.Contain(s.ReadOnlyColumns, column)
}

func (s *Schema) IsWritable(column string) bool {
	return slice.Contain(s.Columns, column)
}

func (s *Schema) IsReadOnly(column string) bool {
	return slice.Contain(s.ReadOnlyColumns, column)
}

func (s *Schema) IsDatetime(column string) bool {
	return slice.Contain(s.DatetimeColumns, column)
}

func (s *Schema) IsDefaultValue(column string) bool {
	return slice.Contain(s.DefaultValueColumns, column)
}

// Validate 没有表名的 schema 无法生成语句
func (s *Schema) Validate() error {
	if s == nil || s.Table == "" {
		return ErrNoSchema
	}
	return nil
}

// persistColumns save 时写入的列: (只读列 - 主键) ∪ 可读写列, 再去掉值为 null 的默认值列
func (s *Schema) persistColumns(r *Record) []string {
	pk := s.PK()
	readOnly := slice.Filter(s.ReadOnlyColumns, func(_ int, c string) bool {
		return c != pk
	})
	columns := slice.Union(readOnly, s.Columns)
	return slice.Filter(columns, func(_ int, c string) bool {
		return !(s.IsDefaultValue(c) && r.data[c] == nil)
	})
}
