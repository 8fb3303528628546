package orm

// 使用

// 1. 调用 Watch(), 配置监听的表和它的 schema, 以及变更怎样处理

// 2. 配置文件的写法
//
//	"binlog": {
//		 "addr": "host:port",
//		 "password": "xxxxxx",
//		 "user": "xxx",
//		 "db": "xxx"
//	}
// 然后直接调用 Run()

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync/atomic"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/go-mysql-org/go-mysql/canal"
	"github.com/go-mysql-org/go-mysql/mysql"
	"github.com/go-mysql-org/go-mysql/schema"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
)

type BinlogConfig struct {
	Addr       string `json:"addr" yaml:"addr"` // "127.0.0.1:13306"
	Password   string `json:"password" yaml:"password"`
	User       string `json:"user" yaml:"user"`
	Db         string `json:"db" yaml:"db"`
	UseHistory bool   `json:"useHistory" yaml:"useHistory"` // 是否从上次结束的位置开始, true 的时候 Position 生效
	Position   string `json:"position" yaml:"position"`     // 同步位置的保存路径, 默认 binlog_position.txt
	PoolSize   int    `json:"poolSize" yaml:"poolSize"`     // 处理变更的协程池大小, 默认 1000
}

type Action string

var (
	Update Action = canal.UpdateAction
	Delete Action = canal.DeleteAction
	Insert Action = canal.InsertAction
)

// Change 一行数据的变更, 还原为监听表的 Record。
// Insert 只有 After, Delete 只有 Before, Update 两个都有
type Change struct {
	Action Action
	Table  string // dbname.tablename
	Before *Record
	After  *Record
}

// ChangeHandler 在协程池中执行, 需要支持并发调用
type ChangeHandler func(Change)

type watchedTable struct {
	schema  *Schema
	actions []Action
	handler ChangeHandler
}

// ChangeListener 监听 mysql binlog, 把行变更还原为模型数据
type ChangeListener struct {
	canal.DummyEventHandler
	Canal    *canal.Canal
	Config   BinlogConfig
	goPool   *ants.Pool
	tables   map[string]watchedTable
	isClosed atomic.Bool // Close 和 pos 协程并发访问
}

func NewChangeListener(config BinlogConfig) (*ChangeListener, error) {
	if config.PoolSize <= 0 {
		config.PoolSize = 1000
	}
	pool, err := ants.NewPool(config.PoolSize, ants.WithNonblocking(true))
	if err != nil {
		slog.Error("create goroutine pool failed", "error", err.Error())
		return nil, errors.Wrap(err, "binlog pool")
	}
	if config.Position == "" {
		config.Position = "binlog_position.txt"
	}
	return &ChangeListener{
		Config: config,
		goPool: pool,
		tables: make(map[string]watchedTable),
	}, nil
}

// Watch 注册监听的表, 必须在 Run 之前调用。
// actions 为空时监听 insert, update, delete
func (h *ChangeListener) Watch(database string, s *Schema, handler ChangeHandler, actions ...Action) {
	if len(actions) == 0 {
		actions = []Action{Insert, Update, Delete}
	}
	h.tables[database+"."+s.Table] = watchedTable{schema: s, actions: actions, handler: handler}
}

// rowsToAttributes 按列名还原每一行, 枚举列的下标转换为枚举值
func rowsToAttributes(table *schema.Table, rows [][]interface{}) []map[string]any {
	enums := make(map[int][]string)
	columnNames := make([]string, len(table.Columns))
	for i, v := range table.Columns {
		columnNames[i] = v.Name
		if v.Type == schema.TYPE_ENUM {
			// 枚举下标从 1 开始, 0 是空值
			enums[i] = append([]string{""}, v.EnumValues...)
		}
	}
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		data := make(map[string]any, len(columnNames))
		for j, name := range columnNames {
			if j >= len(row) {
				break
			}
			value := row[j]
			if labels, ok := enums[j]; ok && value != nil {
				if idx, isInt := value.(int64); isInt && idx >= 0 && int(idx) < len(labels) {
					value = labels[idx]
				}
			}
			data[name] = value
		}
		out[i] = data
	}
	return out
}

// changes 把事件中的行转换为变更, update 事件的行是 旧, 新 交替排列
func (w watchedTable) changes(e *canal.RowsEvent) []Change {
	name := e.Table.Schema + "." + e.Table.Name
	rows := rowsToAttributes(e.Table, e.Rows)
	var out []Change
	switch Action(e.Action) {
	case Insert:
		for _, row := range rows {
			out = append(out, Change{Action: Insert, Table: name, After: NewRecord(w.schema, row)})
		}
	case Delete:
		for _, row := range rows {
			out = append(out, Change{Action: Delete, Table: name, Before: NewRecord(w.schema, row)})
		}
	case Update:
		for i := 0; i+1 < len(rows); i += 2 {
			out = append(out, Change{
				Action: Update,
				Table:  name,
				Before: NewRecord(w.schema, rows[i]),
				After:  NewRecord(w.schema, rows[i+1]),
			})
		}
	}
	return out
}

func (h *ChangeListener) OnRow(e *canal.RowsEvent) error {
	w, ok := h.tables[e.Table.Schema+"."+e.Table.Name]
	if !ok {
		return nil
	}
	if !slice.Contain(w.actions, Action(e.Action)) {
		return nil
	}
	changes := w.changes(e)
	if len(changes) == 0 {
		return nil
	}
	// 处理变更由用户自己决定
	err := h.goPool.Submit(func() {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("binlog handler panic", "action", e.Action, "table", e.Table.Name, "error", err, "stack", string(debug.Stack()))
			}
		}()
		for _, c := range changes {
			w.handler(c)
		}
	})
	if err != nil {
		slog.Error("binlog submit failed", "action", e.Action, "table", e.Table.Name, "error", err)
	}
	return nil
}

func (h *ChangeListener) String() string {
	return "ChangeListener"
}

// Run 在调用这个函数之前必须先调用 Watch 设置需要监听的表, 一旦启动就没法再设置了
func (h *ChangeListener) Run() error {
	cfg := canal.NewDefaultConfig()
	cfg.Addr = h.Config.Addr
	cfg.Password = h.Config.Password
	cfg.User = h.Config.User
	cfg.Charset = "utf8mb4"
	cfg.Dump.ExecutionPath = ""
	cfg.Logger = slog.Default()
	for name := range h.tables {
		cfg.IncludeTableRegex = append(cfg.IncludeTableRegex, fmt.Sprintf("^%s$", name))
	}
	slog.Info("binlog config", "addr", h.Config.Addr, "db", h.Config.Db, "tables", cfg.IncludeTableRegex)
	c, err := canal.NewCanal(cfg)
	if err != nil {
		slog.Error("create canal failed", "error", err.Error())
		return errors.Wrap(err, "binlog canal")
	}
	h.Canal = c
	c.SetEventHandler(h)

	slog.Info("start binlog listener", "addr", h.Config.Addr)
	go h.pos()
	return nil
}

// loadPosition 读取上次保存的同步位置
func (h *ChangeListener) loadPosition() (mysql.Position, bool) {
	var pos mysql.Position
	raw, err := os.ReadFile(h.Config.Position)
	if err != nil {
		slog.Error("read binlog position failed", "file", h.Config.Position, "error", err.Error())
		return pos, false
	}
	if err := json.Unmarshal(raw, &pos); err != nil {
		slog.Error("parse binlog position failed", "error", err.Error())
		return pos, false
	}
	return pos, pos.Pos > 0 && pos.Name != ""
}

func (h *ChangeListener) pos() {
	if h.Config.UseHistory {
		if pos, ok := h.loadPosition(); ok {
			if err := h.Canal.RunFrom(pos); err != nil {
				slog.Error("run binlog from history failed", "error", err.Error())
			}
		}
		if h.isClosed.Load() {
			return
		}
	}

	// 没有历史数据的, 就使用最新的位置
	pos, err := h.Canal.GetMasterPos()
	if err != nil {
		slog.Error("get binlog master position failed", "error", err.Error())
		return
	}
	if err := h.Canal.RunFrom(pos); err != nil {
		slog.Error("run binlog failed", "error", err.Error())
	}
}

// Close 停止监听, 保存已同步的位置, 释放协程池
func (h *ChangeListener) Close() {
	h.isClosed.Store(true)
	defer h.goPool.Release()
	if h.Canal == nil {
		return
	}
	h.Canal.Close()
	marshal, err := json.Marshal(h.Canal.SyncedPosition())
	if err != nil || len(marshal) == 0 {
		return
	}
	if err := os.WriteFile(h.Config.Position, marshal, 0o644); err != nil {
		slog.Error("save binlog position failed", "file", h.Config.Position, "error", err.Error())
	}
}
