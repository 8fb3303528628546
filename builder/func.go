package builder

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownAggregate 不支持的聚合函数
var ErrUnknownAggregate = errors.New("builder: unknown aggregate function")

// aggregate 生成 FUNC(field), field 可以是 string 或 Fd
func aggregate(name string, field any) Fd {
	var inner string
	switch v := field.(type) {
	case Fd:
		inner = v.String()
	case string:
		inner = ColumnNameHandler(v)
	default:
		inner = fmt.Sprint(v)
	}
	return Fd{s: name + "(" + inner + ")"}
}

// Sum
// field 字段名 或 Fd
func Sum(field any) Fd {
	return aggregate("SUM", field)
}

func Count(field any) Fd {
	return aggregate("COUNT", field)
}

func Avg(field any) Fd {
	return aggregate("AVG", field)
}

func Min(field any) Fd {
	return aggregate("MIN", field)
}

func Max(field any) Fd {
	return aggregate("MAX", field)
}

// Aggregate 按函数名生成聚合表达式, 名称不区分大小写
// 支持 SUM, COUNT, AVG, MIN, MAX
func Aggregate(name string, field any) (Fd, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SUM":
		return Sum(field), nil
	case "COUNT":
		return Count(field), nil
	case "AVG":
		return Avg(field), nil
	case "MIN":
		return Min(field), nil
	case "MAX":
		return Max(field), nil
	}
	return Fd{}, errors.Wrapf(ErrUnknownAggregate, "%q", name)
}
