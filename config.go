package orm

import (
	"net"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite" // 文件型嵌入式数据库, modernc.org/sqlite
)

// Config 数据库连接配置, 配置文件可以是 yaml 或 json
//
//	driver: mysql
//	host: 127.0.0.1
//	port: "3306"
//	user: root
//	password: xxxxxx
//	db: shop
//
// sqlite 只需要 driver 和 path
type Config struct {
	Driver      string `json:"driver" yaml:"driver"` // mysql | sqlite, 默认 mysql
	Host        string `json:"host" yaml:"host"`
	Port        string `json:"port" yaml:"port"`
	Password    string `json:"password" yaml:"password"`
	User        string `json:"user" yaml:"user"`
	Database    string `json:"db" yaml:"db"`
	Path        string `json:"path" yaml:"path"` // sqlite 数据文件
	MaxOpenCons int    `json:"maxOpenCons" yaml:"maxOpenCons"`
	MaxIdleCons int    `json:"maxIdleCons" yaml:"maxIdleCons"`
	Params      string `json:"params" yaml:"params"` // 其他配置数据, 放在链接后面的参数中
}

// LoadConfig 读取配置文件, yaml 是 json 的超集, 两种格式都可以
func LoadConfig(path string) (Config, error) {
	var cfg Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Driver == "" {
		c.Driver = DriverMySQL
	}
	c.Driver = strings.ToLower(c.Driver)
	if c.Driver == DriverMySQL {
		if c.Host == "" {
			c.Host = "127.0.0.1"
		}
		if c.Port == "" {
			c.Port = "3306"
		}
	}
	if c.Driver == DriverSQLite && c.Path == "" {
		c.Path = ":memory:"
	}
	return c
}

// DSN 生成驱动需要的连接串
func (c Config) DSN() (string, error) {
	c = c.withDefaults()
	switch c.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, c.Port)
		mc.DBName = c.Database
		dsn := mc.FormatDSN()
		if c.Params != "" {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn = dsn + sep + strings.TrimPrefix(c.Params, "?")
		}
		return dsn, nil
	case DriverSQLite:
		return c.Path, nil
	}
	return "", errors.Wrapf(ErrUnsupportedDriver, "%q", c.Driver)
}
