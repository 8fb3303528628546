package orm

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// 存储格式 YYYY-MM-DD[ HH:MM:SS], 展示格式 DD/MM/YYYY[ HH:MM:SS]
const (
	CanonicalDateTimeLayout = time.DateTime
	CanonicalDateLayout     = time.DateOnly
	DisplayDateTimeLayout   = "02/01/2006 15:04:05"
	DisplayDateLayout       = "02/01/2006"
)

// convert 按 from 的两种格式解析, 输出为 to 中对应的格式, 有时间部分就保留时间部分
func convert(value string, from, to [2]string) (string, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(from[0], value); err == nil {
		return t.Format(to[0]), nil
	}
	t, err := time.Parse(from[1], value)
	if err != nil {
		return "", errors.Errorf("orm: %q does not match %s or %s", value, from[0], from[1])
	}
	return t.Format(to[1]), nil
}

var (
	canonicalLayouts = [2]string{CanonicalDateTimeLayout, CanonicalDateLayout}
	displayLayouts   = [2]string{DisplayDateTimeLayout, DisplayDateLayout}
)

// ToDisplay 2024-03-01 10:00:00 -> 01/03/2024 10:00:00
func ToDisplay(canonical string) (string, error) {
	return convert(canonical, canonicalLayouts, displayLayouts)
}

// ToCanonical 01/03/2024 10:00:00 -> 2024-03-01 10:00:00
func ToCanonical(display string) (string, error) {
	return convert(display, displayLayouts, canonicalLayouts)
}

// DateTime 时间列, 数据库里是存储格式, json 里是展示格式
type DateTime time.Time

func (g *DateTime) Scan(src interface{}) error {
	var source string
	switch v := src.(type) {
	case nil:
		*g = DateTime(time.Time{})
		return nil
	case string:
		source = v
	case []byte:
		source = string(v)
	case time.Time:
		*g = DateTime(v)
		return nil
	default:
		return errors.Errorf("orm: incompatible type %T for DateTime", src)
	}
	v, err := time.Parse(CanonicalDateTimeLayout, source)
	if err != nil {
		v, err = time.Parse(CanonicalDateLayout, source)
		if err != nil {
			return errors.Wrap(err, "orm: scan DateTime")
		}
	}
	*g = DateTime(v)
	return nil
}

func (g DateTime) Value() (driver.Value, error) {
	if g.Datetime().IsZero() {
		return nil, nil
	}
	return g.Canonical(), nil
}

func (g DateTime) Datetime() time.Time {
	return time.Time(g)
}

func (g DateTime) Canonical() string {
	return g.Datetime().Format(CanonicalDateTimeLayout)
}

func (g DateTime) Display() string {
	return g.Datetime().Format(DisplayDateTimeLayout)
}

// MarshalJSON 实现：格式化为展示格式
func (g DateTime) MarshalJSON() ([]byte, error) {
	if g.Datetime().IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + g.Display() + `"`), nil
}

// UnmarshalJSON 实现：从展示格式解析时间
func (g *DateTime) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == "null" || str == "" {
		*g = DateTime(time.Time{})
		return nil
	}
	canonical, err := ToCanonical(str)
	if err != nil {
		return err
	}
	return g.Scan(canonical)
}

// canonicalTemporal 时间列写入时的转换: 展示格式字符串, time.Time 或 DateTime
func canonicalTemporal(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case string:
		c, err := ToCanonical(v)
		if err != nil {
			return nil, false
		}
		return c, true
	case time.Time:
		return v.Format(CanonicalDateTimeLayout), true
	case DateTime:
		return v.Canonical(), true
	}
	return nil, false
}

// normalizeValue 驱动返回的值统一处理, []byte 转 string, time.Time 转存储格式
func normalizeValue(value any) any {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(CanonicalDateTimeLayout)
	}
	return value
}
