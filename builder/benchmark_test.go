package builder

import (
	"testing"
)

// BenchmarkSimpleQuery 测试简单查询性能
func BenchmarkSimpleQuery(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tu := Table("t_user")
		sql := tu.Select(tu.Field("id"), tu.Field("name")).
			Where(Eq("id", 1)).
			Limit(10)
		_, _ = sql.Query()
	}
}

// BenchmarkComplexQuery 测试分组分页查询性能
func BenchmarkComplexQuery(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tu := Table("t_order")
		sql := tu.Select(tu.Field("customer_id"), Sum("total").As("total")).
			Where(Eq("customer_id", 7), Gte("total", 18), Eq("deleted_at", nil)).
			Group(tu.Field("customer_id")).
			Order(tu.Field("id").Desc()).
			Page(3, 10)
		_, _ = sql.Query()
	}
}

// BenchmarkInsertRow 测试插入语句构造性能
func BenchmarkInsertRow(b *testing.B) {
	cols := []string{"status", "total", "customer_id"}
	vals := []any{"open", 10, 7}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Table("t_order").InsertRow(cols, vals)
	}
}
