package sql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataql/strata/dialect"
	"github.com/strataql/strata/dialect/sql"
	"github.com/strataql/strata/dialect/sql/expr"
)

func TestSelector(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		query, args := sql.Dialect(dialect.SQLite).
			Select("id", "name").
			From(sql.Table("users")).
			Where(sql.EQ("active", true)).
			Query()
		assert.Equal(t, "select id, name from users where active = ?", query)
		assert.Equal(t, []any{true}, args)
	})
	t.Run("select all", func(t *testing.T) {
		query, args := sql.Dialect(dialect.SQLite).
			Select("*").
			From(sql.Table("users")).
			Query()
		assert.Equal(t, "select * from users", query)
		assert.Nil(t, args)
	})
	t.Run("where chaining is conjunctive", func(t *testing.T) {
		query, args := sql.Dialect(dialect.SQLite).
			Select("id").
			From(sql.Table("users")).
			Where(sql.GTE("age", 18)).
			Where(sql.NEQ("status", "banned")).
			Query()
		assert.Equal(t, "select id from users where (age >= ?) and (status <> ?)", query)
		assert.Equal(t, []any{18, "banned"}, args)
	})
	t.Run("or and not", func(t *testing.T) {
		query, args := sql.Dialect(dialect.SQLite).
			Select("id").
			From(sql.Table("users")).
			Where(sql.Not(sql.Or(sql.EQ("role", "admin"), sql.EQ("role", "mod")))).
			Query()
		assert.Equal(t, "select id from users where not ((role = ?) or (role = ?))", query)
		assert.Equal(t, []any{"admin", "mod"}, args)
	})
	t.Run("joins", func(t *testing.T) {
		users := sql.Table("users").As("u")
		posts := sql.Table("posts").As("p")
		query, args := sql.Dialect(dialect.SQLite).
			Select("u.id", "u.name", "p.title").
			From(users).
			Join(posts).On(users.C("id"), posts.C("user_id")).
			Where(sql.GT(posts.C("views"), 100)).
			Query()
		assert.Equal(t,
			"select u.id, u.name, p.title from users as u join posts as p on u.id = p.user_id where p.views > ?",
			query,
		)
		assert.Equal(t, []any{100}, args)
	})
	t.Run("cross join", func(t *testing.T) {
		query, _ := sql.Dialect(dialect.SQLite).
			Select("id").
			From(sql.Table("a")).
			CrossJoin(sql.Table("b")).
			Query()
		assert.Equal(t, "select id from a cross join b", query)
	})
	t.Run("group by and having", func(t *testing.T) {
		query, args := sql.Dialect(dialect.Postgres).
			Select("department_id").
			SelectExpr(sql.ColumnAs(sql.Count("*"), "headcount")).
			From(sql.Table("t_employee")).
			GroupBy("department_id").
			Having(sql.P(&expr.Binary{Op: expr.OpGT, X: sql.Count("*"), Y: expr.Value(5)})).
			Query()
		assert.Equal(t,
			"select department_id, count(*) as headcount from t_employee "+
				"group by department_id having count(*) > $1",
			query,
		)
		assert.Equal(t, []any{5}, args)
	})
	t.Run("labeled expressions", func(t *testing.T) {
		query, args := sql.Dialect(dialect.SQLite).
			Select("id").
			SelectExpr(sql.ColumnAs(sql.Count("*"), "total"), sql.Lower("name")).
			From(sql.Table("users")).
			GroupBy("id", "name").
			Query()
		assert.Equal(t, "select id, count(*) as total, lower(name) from users group by id, name", query)
		assert.Nil(t, args)
	})
	t.Run("distinct order limit offset", func(t *testing.T) {
		query, args := sql.Dialect(dialect.MySQL).
			Select("name").
			Distinct().
			From(sql.Table("users")).
			OrderBy(sql.Desc("created_at"), "id").
			Offset(20).
			Limit(10).
			Query()
		assert.Equal(t,
			"select distinct name from users order by created_at desc, id limit ?, ?",
			query,
		)
		assert.Equal(t, []any{20, 10}, args)
	})
	t.Run("derived table source", func(t *testing.T) {
		active := sql.Select("id").
			From(sql.Table("users")).
			Where(sql.EQ("active", true)).
			As("active_users")
		query, args := sql.Dialect(dialect.SQLite).
			Select("id").
			From(active).
			Query()
		assert.Equal(t, "select id from (select id from users where active = ?) as active_users", query)
		assert.Equal(t, []any{true}, args)
	})
	t.Run("clone independence", func(t *testing.T) {
		base := sql.Dialect(dialect.SQLite).Select("id").From(sql.Table("users"))
		filtered := base.Clone().Where(sql.EQ("id", 1))

		query, _ := base.Query()
		assert.Equal(t, "select id from users", query)
		query, args := filtered.Query()
		assert.Equal(t, "select id from users where id = ?", query)
		assert.Equal(t, []any{1}, args)
	})
	t.Run("on before join is an error", func(t *testing.T) {
		s := sql.Dialect(dialect.SQLite).
			Select("id").
			From(sql.Table("users")).
			On("a", "b")
		query, args := s.Query()
		assert.Empty(t, query)
		assert.Nil(t, args)
		require.Error(t, s.Err())
		assert.Contains(t, s.Err().Error(), "On called before Join")
	})
	t.Run("neutral dialect rejects pagination", func(t *testing.T) {
		s := sql.Select("id").From(sql.Table("users")).Limit(10)
		query, _ := s.Query()
		assert.Empty(t, query)
		assert.True(t, sql.IsUnsupported(s.Err()))
	})
}

func TestPredicates(t *testing.T) {
	base := func() *sql.Selector {
		return sql.Dialect(dialect.SQLite).Select("id").From(sql.Table("users"))
	}
	tests := []struct {
		name  string
		p     *sql.Predicate
		query string
		args  []any
	}{
		{"eq", sql.EQ("name", "a"), "select id from users where name = ?", []any{"a"}},
		{"neq", sql.NEQ("name", "a"), "select id from users where name <> ?", []any{"a"}},
		{"gt", sql.GT("age", 1), "select id from users where age > ?", []any{1}},
		{"gte", sql.GTE("age", 1), "select id from users where age >= ?", []any{1}},
		{"lt", sql.LT("age", 1), "select id from users where age < ?", []any{1}},
		{"lte", sql.LTE("age", 1), "select id from users where age <= ?", []any{1}},
		{"like", sql.Like("name", "jo%"), "select id from users where name like ?", []any{"jo%"}},
		{"not like", sql.NotLike("name", "jo%"), "select id from users where name not like ?", []any{"jo%"}},
		{
			"contains escapes metacharacters",
			sql.Contains("name", "50%_a"),
			"select id from users where name like ?",
			[]any{`%50\%\_a%`},
		},
		{"has prefix", sql.HasPrefix("email", "admin"), "select id from users where email like ?", []any{"admin%"}},
		{"has suffix", sql.HasSuffix("email", ".org"), "select id from users where email like ?", []any{"%.org"}},
		{
			"equal fold",
			sql.EqualFold("name", "John"),
			"select id from users where lower(name) = ?",
			[]any{"john"},
		},
		{
			"contains fold",
			sql.ContainsFold("name", "John"),
			"select id from users where lower(name) like ?",
			[]any{"%john%"},
		},
		{"is null", sql.IsNull("deleted_at"), "select id from users where deleted_at is null", nil},
		{"not null", sql.NotNull("email"), "select id from users where email is not null", nil},
		{"between", sql.Between("age", 18, 65), "select id from users where age between ? and ?", []any{18, 65}},
		{"in", sql.In("status", "active", "pending"), "select id from users where status in (?, ?)", []any{"active", "pending"}},
		{"not in", sql.NotIn("status", "banned"), "select id from users where status not in (?)", []any{"banned"}},
		// Membership in the empty set can never hold; its negation always does.
		{"empty in", sql.In("status"), "select id from users where ? = ?", []any{1, 0}},
		{"empty not in", sql.NotIn("status"), "select id from users where not (? = ?)", []any{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base().Where(tt.p)
			query, args := s.Query()
			require.NoError(t, s.Err())
			assert.Equal(t, tt.query, query)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestSubqueryPredicates(t *testing.T) {
	t.Run("in select", func(t *testing.T) {
		sub := sql.Select("user_id").From(sql.Table("bans"))
		s := sql.Dialect(dialect.SQLite).
			Select("id").
			From(sql.Table("users")).
			Where(sql.Not(sql.InSelect("id", sub)))
		query, args := s.Query()
		require.NoError(t, s.Err())
		assert.Equal(t, "select id from users where not (id in (select user_id from bans))", query)
		assert.Nil(t, args)
	})
	t.Run("exists", func(t *testing.T) {
		sub := sql.Select("id").
			From(sql.Table("posts")).
			Where(sql.ColumnsEQ("posts.user_id", "users.id"))
		s := sql.Dialect(dialect.SQLite).
			Select("id").
			From(sql.Table("users")).
			Where(sql.Exists(sub))
		query, _ := s.Query()
		require.NoError(t, s.Err())
		assert.Equal(t,
			"select id from users where exists (select id from posts where posts.user_id = users.id)",
			query,
		)
	})
	t.Run("not exists", func(t *testing.T) {
		sub := sql.Select("id").From(sql.Table("posts"))
		s := sql.Dialect(dialect.SQLite).
			Select("id").
			From(sql.Table("users")).
			Where(sql.NotExists(sub))
		query, _ := s.Query()
		require.NoError(t, s.Err())
		assert.Equal(t, "select id from users where not exists (select id from posts)", query)
	})
}

func TestUnionSelector(t *testing.T) {
	t.Run("chain with shared ordering", func(t *testing.T) {
		a := sql.Dialect(dialect.Postgres).Select("id").From(sql.Table("a"))
		b := sql.Select("id").From(sql.Table("b"))
		c := sql.Select("id").From(sql.Table("c"))

		u := a.Union(b).UnionAll(c).OrderBy("id").Limit(5)
		query, args := u.Query()
		require.NoError(t, u.Err())
		assert.Equal(t,
			"select id from a union select id from b union all select id from c order by id limit $1",
			query,
		)
		assert.Equal(t, []any{5}, args)
	})
	t.Run("operands cannot paginate", func(t *testing.T) {
		a := sql.Dialect(dialect.SQLite).Select("id").From(sql.Table("a")).Limit(10)
		b := sql.Select("id").From(sql.Table("b"))

		u := a.Union(b)
		query, args := u.Query()
		assert.Empty(t, query)
		assert.Nil(t, args)
		require.Error(t, u.Err())
		assert.Contains(t, u.Err().Error(), "union operands cannot carry order or pagination")
	})
	t.Run("operands cannot order", func(t *testing.T) {
		a := sql.Dialect(dialect.SQLite).Select("id").From(sql.Table("a"))
		b := sql.Select("id").From(sql.Table("b")).OrderBy("id")

		u := a.Union(b)
		_, _ = u.Query()
		require.Error(t, u.Err())
	})
}

func TestInsertBuilder(t *testing.T) {
	t.Run("single row with returning", func(t *testing.T) {
		i := sql.Dialect(dialect.SQLite).
			Insert("users").
			Columns("name", "age").
			Values("a", 1).
			Returning("id")
		query, args := i.Query()
		require.NoError(t, i.Err())
		assert.Equal(t, "insert into users (name, age) values (?, ?) returning id", query)
		assert.Equal(t, []any{"a", 1}, args)
	})
	t.Run("default values", func(t *testing.T) {
		i := sql.Dialect(dialect.Postgres).Insert("logs").Default()
		query, args := i.Query()
		require.NoError(t, i.Err())
		assert.Equal(t, "insert into logs default values", query)
		assert.Nil(t, args)
	})
	t.Run("bulk", func(t *testing.T) {
		i := sql.Dialect(dialect.MySQL).
			Insert("users").
			Columns("name", "age").
			Values("a", 1).
			Values("b", 2)
		query, args := i.Query()
		require.NoError(t, i.Err())
		assert.Equal(t, "insert into users (name, age) values (?, ?), (?, ?)", query)
		assert.Equal(t, []any{"a", 1, "b", 2}, args)
	})
	t.Run("bulk across dialects", func(t *testing.T) {
		build := func(d string) *sql.InsertBuilder {
			return sql.Dialect(d).
				Insert("users").
				Columns("name", "age").
				Values("a", 1).
				Values("b", 2)
		}

		i := build(dialect.SQLite)
		query, args := i.Query()
		require.NoError(t, i.Err())
		assert.Equal(t, "insert into users (name, age) values (?, ?), (?, ?)", query)
		assert.Equal(t, []any{"a", 1, "b", 2}, args)

		i = build(dialect.Postgres)
		query, args = i.Query()
		require.NoError(t, i.Err())
		assert.Equal(t, "insert into users (name, age) values ($1, $2), ($3, $4)", query)
		assert.Equal(t, []any{"a", 1, "b", 2}, args)
	})
	t.Run("bulk with returning is an error", func(t *testing.T) {
		i := sql.Dialect(dialect.Postgres).
			Insert("users").
			Columns("name").
			Values("a").
			Values("b").
			Returning("id")
		query, _ := i.Query()
		assert.Empty(t, query)
		require.Error(t, i.Err())
		assert.Contains(t, i.Err().Error(), "returning is not supported on bulk inserts")
	})
	t.Run("row arity mismatch", func(t *testing.T) {
		i := sql.Dialect(dialect.SQLite).
			Insert("users").
			Columns("name", "age").
			Values("a")
		query, _ := i.Query()
		assert.Empty(t, query)
		require.Error(t, i.Err())
		assert.Contains(t, i.Err().Error(), "1 values for 2 columns")
	})
	t.Run("from select", func(t *testing.T) {
		i := sql.Dialect(dialect.SQLite).
			Insert("archive").
			Columns("id", "name").
			FromSelect(sql.Select("id", "name").From(sql.Table("users")).Where(sql.LT("last_seen", 2020)))
		query, args := i.Query()
		require.NoError(t, i.Err())
		assert.Equal(t, "insert into archive (id, name) select id, name from users where last_seen < ?", query)
		assert.Equal(t, []any{2020}, args)
	})
	t.Run("on duplicate key update", func(t *testing.T) {
		i := sql.Dialect(dialect.MySQL).
			Insert("users").
			Columns("name", "visits").
			Values("a", 1).
			OnDuplicateUpdate("visits", 2)
		query, args := i.Query()
		require.NoError(t, i.Err())
		assert.Equal(t,
			"insert into users (name, visits) values (?, ?) on duplicate key update visits = ?",
			query,
		)
		assert.Equal(t, []any{"a", 1, 2}, args)
	})
}

func TestUpdateBuilder(t *testing.T) {
	t.Run("set and where", func(t *testing.T) {
		u := sql.Dialect(dialect.SQLite).
			Update("users").
			Set("name", "john").
			Set("age", 31).
			Where(sql.EQ("id", 7))
		query, args := u.Query()
		require.NoError(t, u.Err())
		assert.Equal(t, "update users set name = ?, age = ? where id = ?", query)
		assert.Equal(t, []any{"john", 31, 7}, args)
	})
	t.Run("aliased predicates are unqualified", func(t *testing.T) {
		// Predicates built against an aliased selector still work here:
		// update takes no table aliases.
		u := sql.Dialect(dialect.Postgres).
			Update("users").
			Set("active", false).
			Where(sql.EQ("u.id", 7))
		query, args := u.Query()
		require.NoError(t, u.Err())
		assert.Equal(t, "update users set active = $1 where id = $2", query)
		assert.Equal(t, []any{false, 7}, args)
	})
	t.Run("no set is an error", func(t *testing.T) {
		u := sql.Dialect(dialect.SQLite).Update("users").Where(sql.EQ("id", 7))
		query, _ := u.Query()
		assert.Empty(t, query)
		require.Error(t, u.Err())
		assert.Contains(t, u.Err().Error(), "update requires at least one Set")
	})
}

func TestDeleteBuilder(t *testing.T) {
	t.Run("where", func(t *testing.T) {
		d := sql.Dialect(dialect.SQLite).
			Delete("users").
			Where(sql.Or(sql.EQ("status", "banned"), sql.IsNull("email")))
		query, args := d.Query()
		require.NoError(t, d.Err())
		assert.Equal(t, "delete from users where (status = ?) or (email is null)", query)
		assert.Equal(t, []any{"banned"}, args)
	})
	t.Run("no predicate deletes all", func(t *testing.T) {
		d := sql.Dialect(dialect.SQLite).Delete("sessions")
		query, args := d.Query()
		require.NoError(t, d.Err())
		assert.Equal(t, "delete from sessions", query)
		assert.Nil(t, args)
	})
	t.Run("aliased predicates are unqualified", func(t *testing.T) {
		d := sql.Dialect(dialect.SQLite).
			Delete("users").
			Where(sql.EQ("u.id", 7))
		query, _ := d.Query()
		require.NoError(t, d.Err())
		assert.Equal(t, "delete from users where id = ?", query)
	})
}

func TestFieldPredicates(t *testing.T) {
	apply := func(ps ...func(*sql.Selector)) (string, []any) {
		s := sql.Dialect(dialect.SQLite).Select("id").From(sql.Table("users"))
		for _, p := range ps {
			p(s)
		}
		return s.Query()
	}

	query, args := apply(sql.FieldEQ("name", "a"))
	assert.Equal(t, "select id from users where users.name = ?", query)
	assert.Equal(t, []any{"a"}, args)

	query, args = apply(sql.FieldIn("status", "active", "pending"))
	assert.Equal(t, "select id from users where users.status in (?, ?)", query)
	assert.Equal(t, []any{"active", "pending"}, args)

	query, args = apply(sql.FieldNotIn("id", 1, 2))
	assert.Equal(t, "select id from users where users.id not in (?, ?)", query)
	assert.Equal(t, []any{1, 2}, args)

	query, _ = apply(sql.FieldIsNull("deleted_at"), sql.FieldGT("age", 18))
	assert.Equal(t, "select id from users where (users.deleted_at is null) and (users.age > ?)", query)

	query, args = apply(sql.FieldContainsFold("name", "John"))
	assert.Equal(t, "select id from users where lower(users.name) like ?", query)
	assert.Equal(t, []any{"%john%"}, args)
}

type userPredicate func(*sql.Selector)

func TestTypedFields(t *testing.T) {
	var (
		name   = sql.StringField[userPredicate]("name")
		age    = sql.IntField[userPredicate]("age")
		status = sql.EnumField[userPredicate, string]("status")
	)
	s := sql.Dialect(dialect.SQLite).Select("id").From(sql.Table("users"))
	name.Contains("jo")(s)
	age.GTE(18)(s)
	status.In("active", "pending")(s)

	query, args := s.Query()
	require.NoError(t, s.Err())
	assert.Equal(t,
		"select id from users where ((users.name like ?) and (users.age >= ?)) "+
			"and (users.status in (?, ?))",
		query,
	)
	assert.Equal(t, []any{"%jo%", 18, "active", "pending"}, args)
}
