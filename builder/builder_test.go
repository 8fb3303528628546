package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnNameHandler(t *testing.T) {
	cases := map[string]string{
		"id":            "`id`",
		"o.total":       "o.`total`",
		"`already`":     "`already`",
		"*":             "*",
		"10":            "10",
		"SUM(`total`)":  "SUM(`total`)",
		"":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ColumnNameHandler(in), in)
	}
}

func TestSimpleQuery(t *testing.T) {
	tu := Table("t_user")
	sql, args := tu.Select(tu.Field("id"), tu.Field("name")).
		Where(Eq("id", 1)).
		Limit(10).Offset(20).
		Query()
	assert.Equal(t, "SELECT `id`, `name` FROM `t_user` WHERE id = ? LIMIT 20, 10", sql)
	assert.Equal(t, []any{1}, args)
}

func TestQueryWithoutWhere(t *testing.T) {
	sql, args := Table("t_user").Query()
	assert.Equal(t, "SELECT * FROM `t_user`", sql)
	assert.Empty(t, args)

	sql, _ = Table("t_user").First().Query()
	assert.Equal(t, "SELECT * FROM `t_user` LIMIT 1", sql)
}

func TestClauseOrder(t *testing.T) {
	tu := Table("t_order")
	sql, args := tu.Select(tu.Field("customer_id"), Sum("total").As("total")).
		Where(Eq("customer_id", 7), Gt("total", 0)).
		Group(tu.Field("customer_id")).
		Order(tu.Field("id").Desc()).
		Page(2, 5).
		Query()
	assert.Equal(t,
		"SELECT `customer_id`, SUM(`total`) AS `total` FROM `t_order` WHERE customer_id = ? AND total > ? GROUP BY `customer_id` ORDER BY `id` DESC LIMIT 5, 5",
		sql)
	assert.Equal(t, []any{7, 0}, args)
}

func TestFirstPageKeepsOffset(t *testing.T) {
	sql, _ := Table("t_user").Page(1, 10).Query()
	assert.Equal(t, "SELECT * FROM `t_user` LIMIT 0, 10", sql)
}

func TestCount(t *testing.T) {
	tu := Table("t_user")
	sql, args := tu.Where(Eq("status", 1)).Order(tu.Field("id").Asc()).Limit(3).Count()
	assert.Equal(t, "SELECT count(1) FROM `t_user` WHERE status = ?", sql)
	assert.Equal(t, []any{1}, args)

	tg := Table("t_user")
	sql, args = tg.Where(Eq("status", 1)).Group(tg.Field("city")).Count()
	assert.Equal(t, "SELECT count(1) FROM (SELECT 1 FROM `t_user` WHERE status = ? GROUP BY `city`) AS grouped", sql)
	assert.Equal(t, []any{1}, args)
}
