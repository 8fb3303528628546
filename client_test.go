package orm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMysqlClient(t *testing.T) *Client {
	host := os.Getenv("MYSQL_HOST")
	port := os.Getenv("MYSQL_PORT")
	user := os.Getenv("MYSQL_USER")
	pass := os.Getenv("MYSQL_PASS")
	db := os.Getenv("MYSQL_DB")
	if host == "" || port == "" || user == "" || db == "" {
		t.Skip("skip: MYSQL_HOST/PORT/USER/PASS/DB not set")
	}
	cli, err := NewClient(Config{
		Host:        host,
		Port:        port,
		User:        user,
		Password:    pass,
		Database:    db,
		MaxIdleCons: 2,
		MaxOpenCons: 5,
	})
	require.NoError(t, err)
	return cli
}

func TestMysqlSaveAndFind(t *testing.T) {
	s := newMysqlClient(t)
	defer s.Close()
	ctx := context.Background()

	_, err := s.DB().ExecContext(ctx, `CREATE TEMPORARY TABLE orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		status VARCHAR(16),
		total BIGINT,
		customer_id BIGINT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	orders := NewRepository(s.DB(), orderSchema, newOrder)
	o := orders.New(map[string]any{"status": "open", "total": int64(10), "customer_id": int64(1)})
	require.NoError(t, orders.Save(ctx, o))
	id, ok := o.ID()
	require.True(t, ok)

	found, ok, err := orders.FindByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "open", found.Status())
}

func TestSqliteFileClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")
	cli, err := NewClient(Config{Driver: "SQLite", Path: path, MaxOpenCons: 2})
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cli.Config.Driver)

	_, err = cli.DB().Exec(testDDL[1])
	require.NoError(t, err)
	orders := NewRepository(cli.DB(), orderSchema, newOrder)
	require.NoError(t, orders.Save(context.Background(), orders.New(map[string]any{"status": "open", "total": 3})))
	require.NoError(t, cli.Close())

	again := MustNewClient(Config{Driver: DriverSQLite, Path: path})
	defer again.Close()
	n, err := NewRepository(again.DB(), orderSchema, newOrder).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSqliteMemoryClientKeepsTables(t *testing.T) {
	cli, err := NewClient(Config{Driver: DriverSQLite})
	require.NoError(t, err)
	defer cli.Close()
	ctx := context.Background()

	_, err = cli.DB().ExecContext(ctx, testDDL[1])
	require.NoError(t, err)
	orders := NewRepository(cli.DB(), orderSchema, newOrder)
	require.NoError(t, orders.Save(ctx, orders.New(map[string]any{"status": "open", "total": 3})))
	require.NoError(t, orders.Save(ctx, orders.New(map[string]any{"status": "open", "total": 4})))

	n, err := orders.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, cli.DB().Stats().MaxOpenConnections)
}

func TestConfigDSN(t *testing.T) {
	dsn, err := Config{User: "root", Password: "secret", Database: "shop"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "root:secret@tcp(127.0.0.1:3306)/shop", dsn)

	dsn, err = Config{User: "root", Host: "db", Port: "3307", Database: "shop", Params: "charset=utf8mb4&parseTime=true"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "root@tcp(db:3307)/shop?charset=utf8mb4&parseTime=true", dsn)

	dsn, err = Config{Driver: DriverSQLite}.DSN()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", dsn)

	_, err = Config{Driver: "oracle"}.DSN()
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
	_, err = NewClient(Config{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "db.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("user: root\npassword: secret\ndb: shop\nmaxOpenCons: 8\n"), 0o644))
	cfg, err := LoadConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.Driver)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "3306", cfg.Port)
	assert.Equal(t, "shop", cfg.Database)
	assert.Equal(t, 8, cfg.MaxOpenCons)

	jsonPath := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"driver": "sqlite", "path": "/tmp/shop.db"}`), 0o644))
	cfg, err = LoadConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "/tmp/shop.db", cfg.Path)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.True(t, IsDuplicateKey(dup))
	assert.True(t, IsDuplicateKey(errors.Wrap(dup, "exec orders")))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1064}))
	assert.False(t, IsDuplicateKey(errors.New("other")))
	assert.False(t, IsDuplicateKey(nil))
}
