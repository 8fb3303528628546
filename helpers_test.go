package orm

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var customerSchema = &Schema{
	Table:               "customers",
	Columns:             []string{"name", "email"},
	ReadOnlyColumns:     []string{"id", "created_at"},
	DatetimeColumns:     []string{"created_at"},
	DefaultValueColumns: []string{"created_at"},
}

var orderSchema = &Schema{
	Table:               "orders",
	Columns:             []string{"status", "total", "customer_id"},
	ReadOnlyColumns:     []string{"id", "created_at"},
	DatetimeColumns:     []string{"created_at"},
	DefaultValueColumns: []string{"created_at"},
}

var testDDL = []string{
	`CREATE TABLE customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		email TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		status TEXT,
		total INTEGER,
		customer_id INTEGER,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,
}

type Customer struct{ *Record }

func newCustomer(r *Record) *Customer { return &Customer{r} }

func (c *Customer) Name() string {
	s, _ := c.Text("name")
	return s
}

type Order struct{ *Record }

func newOrder(r *Record) *Order { return &Order{r} }

func (o *Order) Status() string {
	s, _ := o.Text("status")
	return s
}

func (o *Order) Total() int64 {
	n, _ := o.Int("total")
	return n
}

// recorder 记录执行过的语句, 用于检查生成的 SQL
type recorder struct {
	sqlx.ExtContext
	mu         sync.Mutex
	statements []string
}

func (r *recorder) record(q string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, q)
}

func (r *recorder) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	r.record(query)
	return r.ExtContext.ExecContext(ctx, query, args...)
}

func (r *recorder) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	r.record(query)
	return r.ExtContext.QueryxContext(ctx, query, args...)
}

func (r *recorder) QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row {
	r.record(query)
	return r.ExtContext.QueryRowxContext(ctx, query, args...)
}

func (r *recorder) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.statements))
	copy(out, r.statements)
	return out
}

func (r *recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statements) == 0 {
		return ""
	}
	return r.statements[len(r.statements)-1]
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = nil
}

type fixture struct {
	db        *recorder
	orders    *Repository[*Order]
	customers *Repository[*Customer]
}

// newFixture 内存 sqlite, 每个测试一个独立的库
func newFixture(t *testing.T) *fixture {
	t.Helper()
	cli, err := NewClient(Config{Driver: DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })
	for _, ddl := range testDDL {
		_, err := cli.DB().Exec(ddl)
		require.NoError(t, err)
	}
	rec := &recorder{ExtContext: cli.DB()}
	return &fixture{
		db:        rec,
		orders:    NewRepository(rec, orderSchema, newOrder),
		customers: NewRepository(rec, customerSchema, newCustomer),
	}
}

func (f *fixture) addCustomer(t *testing.T, name string) *Customer {
	t.Helper()
	c := f.customers.New(map[string]any{"name": name, "email": name + "@example.com"})
	require.NoError(t, f.customers.Save(context.Background(), c))
	return c
}

func (f *fixture) addOrder(t *testing.T, status string, total int64, customerID any) *Order {
	t.Helper()
	o := f.orders.New(map[string]any{"status": status, "total": total, "customer_id": customerID})
	require.NoError(t, f.orders.Save(context.Background(), o))
	return o
}
