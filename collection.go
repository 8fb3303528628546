package orm

import (
	"iter"
)

// Collection 有序的模型集合, 支持下标访问、游标遍历和分页。
//
// 游标遍历 (Rewind/Valid/Current/Next) 不可重入: 每个 Collection 只记录一个游标位置,
// 在同一个实例上嵌套或并发遍历属于调用方错误。需要嵌套遍历时使用 All()。
type Collection[T Model] struct {
	items  []T
	cursor int
}

func NewCollection[T Model](items ...T) *Collection[T] {
	c := &Collection[T]{items: make([]T, 0, len(items))}
	c.items = append(c.items, items...)
	return c
}

func (c *Collection[T]) Len() int {
	return len(c.items)
}

func (c *Collection[T]) Count() int {
	return len(c.items)
}

func (c *Collection[T]) Exists(i int) bool {
	return i >= 0 && i < len(c.items)
}

// Get 下标从 0 开始
func (c *Collection[T]) Get(i int) (T, bool) {
	if !c.Exists(i) {
		var zero T
		return zero, false
	}
	return c.items[i], true
}

// Set 替换已有下标的元素, 下标等于长度时追加
func (c *Collection[T]) Set(i int, v T) bool {
	switch {
	case c.Exists(i):
		c.items[i] = v
	case i == len(c.items):
		c.items = append(c.items, v)
	default:
		return false
	}
	return true
}

func (c *Collection[T]) Append(v ...T) {
	c.items = append(c.items, v...)
}

// Remove 删除元素, 后面的元素下标前移
func (c *Collection[T]) Remove(i int) bool {
	if !c.Exists(i) {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	if c.cursor > i {
		c.cursor--
	}
	return true
}

// Items 返回元素的副本
func (c *Collection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// All 不使用内部游标的遍历, 可以嵌套
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range c.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

func (c *Collection[T]) Rewind() {
	c.cursor = 0
}

func (c *Collection[T]) Valid() bool {
	return c.Exists(c.cursor)
}

func (c *Collection[T]) Key() int {
	return c.cursor
}

func (c *Collection[T]) Current() T {
	v, _ := c.Get(c.cursor)
	return v
}

func (c *Collection[T]) Next() {
	c.cursor++
}

// Seek 移动游标到指定位置
func (c *Collection[T]) Seek(i int) bool {
	if !c.Exists(i) {
		return false
	}
	c.cursor = i
	return true
}

// First 游标移到第一个元素
func (c *Collection[T]) First() (T, bool) {
	c.Seek(0)
	return c.Get(0)
}

// Last 游标移到最后一个元素
func (c *Collection[T]) Last() (T, bool) {
	c.Seek(len(c.items) - 1)
	return c.Get(len(c.items) - 1)
}

// TotalPages 每页 length 个元素时的总页数
func (c *Collection[T]) TotalPages(length int) int {
	if length < 1 {
		return 0
	}
	return (len(c.items) + length - 1) / length
}

// GetPage 页码从 1 开始, 小于 1 按第 1 页, 超过总页数按最后一页。
// 游标定位到页的起点后向后读取 length 个元素, 返回新的 Collection
func (c *Collection[T]) GetPage(number, length int) *Collection[T] {
	total := c.TotalPages(length)
	if total == 0 {
		return NewCollection[T]()
	}
	if number > total {
		number = total
	}
	if number < 1 {
		number = 1
	}
	offset := (number - 1) * length
	page := make([]T, 0, length)
	for c.Seek(offset); c.Valid() && c.Key() <= offset+length-1; c.Next() {
		page = append(page, c.Current())
	}
	return NewCollection(page...)
}

// AttributesToArray 每个元素的列名到值的映射, 列以第一个元素的 schema 为准
func (c *Collection[T]) AttributesToArray() []map[string]any {
	if len(c.items) == 0 {
		return []map[string]any{}
	}
	columns := c.items[0].Base().Schema().AllColumns()
	out := make([]map[string]any, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item.Base().Attributes(columns...))
	}
	return out
}
