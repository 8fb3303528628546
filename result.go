package orm

// Shape 查询结果的形态
type Shape int

const (
	NotFound Shape = iota // 没有数据
	Single                // 一行, 不包装
	Multiple              // Collection, 子表查询没有数据时也是空的 Collection
)

func (s Shape) String() string {
	switch s {
	case Single:
		return "single"
	case Multiple:
		return "multiple"
	}
	return "not found"
}

// Result 查询返回单个模型、Collection 或者不存在
type Result[T Model] struct {
	shape Shape
	one   T
	many  *Collection[T]
}

func notFound[T Model]() Result[T] {
	return Result[T]{shape: NotFound}
}

func single[T Model](m T) Result[T] {
	return Result[T]{shape: Single, one: m}
}

func multiple[T Model](models []T) Result[T] {
	return Result[T]{shape: Multiple, many: NewCollection(models...)}
}

// resultOf 0 行不存在, 1 行单个模型, 多行 Collection
func resultOf[T Model](models []T) Result[T] {
	switch len(models) {
	case 0:
		return notFound[T]()
	case 1:
		return single(models[0])
	}
	return multiple(models)
}

func (r Result[T]) Shape() Shape {
	return r.shape
}

func (r Result[T]) Found() bool {
	return r.shape != NotFound
}

// One 结果为单个模型时返回
func (r Result[T]) One() (T, bool) {
	return r.one, r.shape == Single
}

// Many 结果为 Collection 时返回
func (r Result[T]) Many() (*Collection[T], bool) {
	return r.many, r.shape == Multiple
}

// First 单个模型本身, 或 Collection 的第一个元素
func (r Result[T]) First() (T, bool) {
	switch r.shape {
	case Single:
		return r.one, true
	case Multiple:
		return r.many.Get(0)
	}
	var zero T
	return zero, false
}

// Collection 统一成 Collection, 不存在时为空
func (r Result[T]) Collection() *Collection[T] {
	switch r.shape {
	case Single:
		return NewCollection(r.one)
	case Multiple:
		return r.many
	}
	return NewCollection[T]()
}

func (r Result[T]) Len() int {
	switch r.shape {
	case Single:
		return 1
	case Multiple:
		return r.many.Len()
	}
	return 0
}
