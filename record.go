package orm

import (
	"math"
	"strconv"
	"strings"

	"github.com/duke-git/lancet/v2/convertor"
)

// Record 一行数据, 只有 schema 中声明的列可以读写。
// 未声明的列读取返回 nil, 写入被忽略。
type Record struct {
	schema *Schema
	data   map[string]any
}

// NewRecord 所有列初始化为 nil, attributes 按存储格式直接写入, 不经过 Set 的只读校验。
// 不属于 schema 的键被丢弃
func NewRecord(schema *Schema, attributes map[string]any) *Record {
	if schema == nil {
		schema = &Schema{}
	}
	r := &Record{schema: schema, data: make(map[string]any)}
	for _, column := range schema.AllColumns() {
		r.data[column] = nil
	}
	for k, v := range attributes {
		if _, ok := r.data[k]; ok {
			r.data[k] = normalizeValue(v)
		}
	}
	return r
}

// Base 实现 Model
func (r *Record) Base() *Record {
	return r
}

func (r *Record) Schema() *Schema {
	return r.schema
}

// Get 读取列的值, 时间列返回展示格式
func (r *Record) Get(column string) any {
	value, ok := r.data[column]
	if !ok || value == nil {
		return nil
	}
	if r.schema.IsDatetime(column) {
		if s, isString := value.(string); isString {
			if display, err := ToDisplay(s); err == nil {
				return display
			}
		}
	}
	return value
}

// Set 写入列的值, 返回是否写入成功。
// 只读列只有当前值为 nil 时才能写入; 时间列接受展示格式字符串或 time.Time,
// 无法解析时不写入
func (r *Record) Set(column string, value any) bool {
	current, ok := r.data[column]
	if !ok {
		return false
	}
	switch {
	case r.schema.IsReadOnly(column) && current == nil:
	case r.schema.IsWritable(column):
	default:
		return false
	}
	if r.schema.IsDatetime(column) {
		converted, valid := canonicalTemporal(value)
		if !valid {
			return false
		}
		value = converted
	}
	r.data[column] = value
	return true
}

// Raw 存储格式的值
func (r *Record) Raw(column string) any {
	return r.data[column]
}

// ID 主键的值, 为 nil 或 0 时第二个返回值为 false
func (r *Record) ID() (int64, bool) {
	id, ok := toInt64(r.data[r.schema.PK()])
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

func (r *Record) setID(id int64) {
	r.data[r.schema.PK()] = id
}

// Attributes 列名到值的映射 (展示格式), 不传列名时返回所有列
func (r *Record) Attributes(columns ...string) map[string]any {
	if len(columns) == 0 {
		columns = r.schema.AllColumns()
	}
	attrs := make(map[string]any, len(columns))
	for _, c := range columns {
		attrs[c] = r.Get(c)
	}
	return attrs
}

// values 按列顺序取存储格式的值, 用于绑定参数
func (r *Record) values(columns []string) []any {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = r.data[c]
	}
	return values
}

// Int 按整数读取, nil 或无法转换时返回 false
func (r *Record) Int(column string) (int64, bool) {
	return toInt64(r.Raw(column))
}

// Text 按字符串读取, 时间列为展示格式
func (r *Record) Text(column string) (string, bool) {
	value := r.Get(column)
	if value == nil {
		return "", false
	}
	return convertor.ToString(value), true
}

// toInt64 驱动返回的文本按十进制解析, "010" 是 10 而不是八进制
func toInt64(value any) (int64, bool) {
	if n, ok := integerID(value); ok {
		return n, true
	}
	switch v := value.(type) {
	case nil:
		return 0, false
	case []byte:
		value = string(v)
	}
	if s, ok := value.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n, err == nil
	}
	n, err := convertor.ToInt(value)
	return n, err == nil
}

// integerID 只接受整数类型的 id, 其他类型视为不存在
func integerID(id any) (int64, bool) {
	switch v := id.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return uintID(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return uintID(v)
	}
	return 0, false
}

func uintID(v uint64) (int64, bool) {
	if v > math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}
