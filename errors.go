package orm

import (
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/preceeder/go.db.orm/builder"
)

var (
	ErrNullOperator      = builder.ErrNullOperator
	ErrUnknownAggregate  = builder.ErrUnknownAggregate
	ErrInvalidDirection  = errors.New("orm: order direction must be ASC or DESC")
	ErrInvalidRelation   = errors.New("orm: relation is missing a model schema or key column")
	ErrNoSchema          = errors.New("orm: schema has no table")
	ErrUnsupportedDriver = errors.New("orm: unsupported driver")
)

// mysql 唯一键冲突
const mysqlDuplicateEntry = 1062

// IsDuplicateKey 判断是否为 mysql 唯一键冲突 (1062), 包装过的错误也可以识别
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return false
}
