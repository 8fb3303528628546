package orm

import (
	"log/slog"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Client 持有连接池, 连接的生命周期由调用方管理。
// 查询引擎只依赖 sqlx.ExtContext, Client.DB() 或者 *sqlx.Tx 都可以直接传给 NewRepository
type Client struct {
	Config Config
	Db     *sqlx.DB
}

// NewClient 按配置连接数据库, 内部已经 ping 过了
func NewClient(config Config) (*Client, error) {
	config = config.withDefaults()
	dsn, err := config.DSN()
	if err != nil {
		return nil, err
	}
	slog.Info("connect database", "driver", config.Driver, "host", config.Host, "port", config.Port, "db", config.Database, "path", config.Path)
	db, err := sqlx.Connect(config.Driver, dsn)
	if err != nil {
		slog.Error("connect database failed", "driver", config.Driver, "error", err)
		return nil, errors.Wrapf(err, "connect %s", config.Driver)
	}
	if config.Driver == DriverSQLite && config.Path == ":memory:" {
		// 每个连接都是独立的内存库, 只能保留一个, 并且不能被回收
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(config.MaxOpenCons)
		db.SetMaxIdleConns(config.MaxIdleCons)
	}
	return &Client{Config: config, Db: db}, nil
}

// MustNewClient 连接失败直接 panic
func MustNewClient(config Config) *Client {
	c, err := NewClient(config)
	if err != nil {
		panic(err)
	}
	return c
}

// DB 查询引擎使用的执行器
func (s *Client) DB() *sqlx.DB {
	return s.Db
}

func (s *Client) Close() error {
	err := s.Db.Close()
	if err != nil {
		slog.Error("close database failed", "error", err.Error())
		return errors.Wrap(err, "close database")
	}
	slog.Info("close database", "driver", s.Config.Driver, "db", s.Config.Database, "path", s.Config.Path)
	return nil
}
