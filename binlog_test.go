package orm

import (
	"testing"
	"time"

	"github.com/go-mysql-org/go-mysql/canal"
	"github.com/go-mysql-org/go-mysql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ordersTable() *schema.Table {
	return &schema.Table{
		Schema: "shop",
		Name:   "orders",
		Columns: []schema.TableColumn{
			{Name: "id", Type: schema.TYPE_NUMBER},
			{Name: "status", Type: schema.TYPE_ENUM, EnumValues: []string{"open", "closed"}},
			{Name: "total", Type: schema.TYPE_NUMBER},
			{Name: "customer_id", Type: schema.TYPE_NUMBER},
			{Name: "created_at", Type: schema.TYPE_DATETIME},
		},
	}
}

func newTestListener(t *testing.T) (*ChangeListener, chan Change) {
	t.Helper()
	l, err := NewChangeListener(BinlogConfig{PoolSize: 4})
	require.NoError(t, err)
	t.Cleanup(l.Close)
	changes := make(chan Change, 8)
	l.Watch("shop", orderSchema, func(c Change) { changes <- c }, Insert, Update)
	return l, changes
}

func receive(t *testing.T, changes chan Change) Change {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no change received")
	}
	return Change{}
}

func TestChangeListenerDefaults(t *testing.T) {
	l, err := NewChangeListener(BinlogConfig{})
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, "binlog_position.txt", l.Config.Position)
	assert.Equal(t, 1000, l.Config.PoolSize)
	assert.Equal(t, "ChangeListener", l.String())
}

func TestChangeListenerInsert(t *testing.T) {
	l, changes := newTestListener(t)
	err := l.OnRow(&canal.RowsEvent{
		Table:  ordersTable(),
		Action: canal.InsertAction,
		Rows:   [][]interface{}{{int64(1), int64(2), int64(30), int64(7), "2024-03-01 10:00:00"}},
	})
	require.NoError(t, err)

	c := receive(t, changes)
	assert.Equal(t, Insert, c.Action)
	assert.Equal(t, "shop.orders", c.Table)
	assert.Nil(t, c.Before)
	require.NotNil(t, c.After)
	assert.Equal(t, "closed", c.After.Get("status"))
	assert.Equal(t, "01/03/2024 10:00:00", c.After.Get("created_at"))
	id, ok := c.After.ID()
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestChangeListenerUpdatePairs(t *testing.T) {
	l, changes := newTestListener(t)
	err := l.OnRow(&canal.RowsEvent{
		Table:  ordersTable(),
		Action: canal.UpdateAction,
		Rows: [][]interface{}{
			{int64(1), int64(1), int64(30), int64(7), nil},
			{int64(1), int64(2), int64(35), int64(7), nil},
		},
	})
	require.NoError(t, err)

	c := receive(t, changes)
	assert.Equal(t, Update, c.Action)
	assert.Equal(t, "open", c.Before.Get("status"))
	assert.Equal(t, "closed", c.After.Get("status"))
	assert.Equal(t, int64(35), c.After.Get("total"))
}

func TestChangeListenerFilters(t *testing.T) {
	l, changes := newTestListener(t)

	// delete 没有注册
	require.NoError(t, l.OnRow(&canal.RowsEvent{
		Table:  ordersTable(),
		Action: canal.DeleteAction,
		Rows:   [][]interface{}{{int64(1), int64(1), int64(30), int64(7), nil}},
	}))

	other := ordersTable()
	other.Name = "customers"
	require.NoError(t, l.OnRow(&canal.RowsEvent{
		Table:  other,
		Action: canal.InsertAction,
		Rows:   [][]interface{}{{int64(1)}},
	}))

	select {
	case c := <-changes:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChangeListenerHandlerPanic(t *testing.T) {
	l, err := NewChangeListener(BinlogConfig{PoolSize: 1})
	require.NoError(t, err)
	defer l.Close()
	done := make(chan struct{}, 2)
	l.Watch("shop", orderSchema, func(c Change) {
		done <- struct{}{}
		panic("boom")
	})
	event := &canal.RowsEvent{
		Table:  ordersTable(),
		Action: canal.InsertAction,
		Rows:   [][]interface{}{{int64(1), int64(1), int64(30), int64(7), nil}},
	}
	require.NoError(t, l.OnRow(event))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}
}

func TestChangeListenerCloseFromOtherGoroutine(t *testing.T) {
	l, err := NewChangeListener(BinlogConfig{PoolSize: 1, Position: t.TempDir() + "/pos.json"})
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Close()
	}()
	assert.Eventually(t, l.isClosed.Load, time.Second, time.Millisecond)
	<-done
}
