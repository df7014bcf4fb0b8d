package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuilder(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder("users")
	require.NoError(t, err)
	assert.Equal(t, "users", b.Table())

	_, err = NewBuilder("users; DROP TABLE users")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestBuildSelect(t *testing.T) {
	t.Parallel()

	t.Run("Wildcard", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM users", b.BuildSelect())
		assert.Empty(t, b.Params())
	})

	t.Run("SingleEquality", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		require.NoError(t, b.Where("id", "=", 5))
		assert.Equal(t, "SELECT * FROM users WHERE id = :id_0", b.BuildSelect())
		assert.Equal(t, map[string]any{"id_0": 5}, b.Params())
	})

	t.Run("Columns", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		require.NoError(t, b.Select("id", "name", "email"))
		assert.Equal(t, "SELECT id, name, email FROM users", b.BuildSelect())

		// A second Select overwrites, it does not append.
		require.NoError(t, b.Select("id"))
		assert.Equal(t, "SELECT id FROM users", b.BuildSelect())
	})

	t.Run("FullClauseOrder", func(t *testing.T) {
		b, err := NewBuilder("orders")
		require.NoError(t, err)
		require.NoError(t, b.Select("orders.id", "users.name"))
		require.NoError(t, b.Join("users", "orders.user_id = users.id", "left"))
		require.NoError(t, b.Where("status", "=", "open"))
		require.NoError(t, b.Where("total", ">", 100))
		require.NoError(t, b.GroupBy("users.name"))
		require.NoError(t, b.OrderBy("orders.id", "desc"))
		require.NoError(t, b.Limit(10))
		require.NoError(t, b.Offset(20))
		assert.Equal(t,
			"SELECT orders.id, users.name FROM orders "+
				"LEFT JOIN users ON orders.user_id = users.id "+
				"WHERE status = :status_0 AND total > :total_1 "+
				"GROUP BY users.name ORDER BY orders.id DESC LIMIT 10 OFFSET 20",
			b.BuildSelect())
		assert.Equal(t, map[string]any{"status_0": "open", "total_1": 100}, b.Params())
	})

	t.Run("QualifiedColumnPlaceholder", func(t *testing.T) {
		b, err := NewBuilder("orders")
		require.NoError(t, err)
		require.NoError(t, b.Where("users.id", "=", 7))
		assert.Equal(t, "SELECT * FROM orders WHERE users.id = :users_id_0", b.BuildSelect())
		assert.Equal(t, map[string]any{"users_id_0": 7}, b.Params())
	})
}

func TestWhere(t *testing.T) {
	t.Parallel()

	t.Run("NullOperators", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		require.NoError(t, b.Where("deleted_at", "is null", nil))
		require.NoError(t, b.Where("email", "IS NOT NULL", nil))
		assert.Equal(t, "SELECT * FROM users WHERE deleted_at IS NULL AND email IS NOT NULL", b.BuildSelect())
		assert.Empty(t, b.Params(), "null checks bind no parameters")
	})

	t.Run("OperatorNormalization", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		require.NoError(t, b.Where("name", "like", "a%"))
		assert.Equal(t, "SELECT * FROM users WHERE name LIKE :name_0", b.BuildSelect())
	})

	t.Run("DisallowedOperator", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		err = b.Where("id", "= 1 OR 1", 1)
		require.Error(t, err)
		assert.True(t, IsInvalidArgument(err))

		// A failed call leaves the builder untouched.
		assert.Equal(t, "SELECT * FROM users", b.BuildSelect())
		assert.Empty(t, b.Params())
	})

	t.Run("In", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		require.NoError(t, b.Where("id", "IN", []any{1, 2, 3}))
		assert.Equal(t, "SELECT * FROM users WHERE id IN (:id_0, :id_1, :id_2)", b.BuildSelect())
		assert.Equal(t, map[string]any{"id_0": 1, "id_1": 2, "id_2": 3}, b.Params())
	})

	t.Run("NotIn", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		require.NoError(t, b.Where("status", "NOT IN", []any{"banned", "deleted"}))
		assert.Equal(t, "SELECT * FROM users WHERE status NOT IN (:status_0, :status_1)", b.BuildSelect())
	})

	t.Run("InRequiresSlice", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		err = b.Where("id", "IN", 5)
		require.Error(t, err)
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("EmptyInList", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		err = b.WhereIn("id", []any{})
		require.Error(t, err)
		assert.True(t, IsInvalidArgument(err))
		assert.Equal(t, "SELECT * FROM users", b.BuildSelect())
	})

	t.Run("WhereIn", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		require.NoError(t, b.WhereIn("id", []any{10, 20}))
		assert.Equal(t, "SELECT * FROM users WHERE id IN (:id_0, :id_1)", b.BuildSelect())
	})
}

func TestJoin(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder("orders")
	require.NoError(t, err)
	require.NoError(t, b.Join("users", "orders.user_id = users.id", "INNER"))
	require.NoError(t, b.Join("addresses", "users.id = addresses.user_id", "full outer"))
	assert.Equal(t,
		"SELECT * FROM orders INNER JOIN users ON orders.user_id = users.id "+
			"FULL OUTER JOIN addresses ON users.id = addresses.user_id",
		b.BuildSelect())

	err = b.Join("users", "orders.user_id = users.id", "CROSS")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	err = b.Join("users", "orders.user_id = users.id OR 1=1", "INNER")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestOrderGroupLimitOffset(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder("users")
	require.NoError(t, err)

	require.Error(t, b.OrderBy("name", "SIDEWAYS"))
	require.Error(t, b.Limit(-1))
	require.Error(t, b.Offset(-5))
	assert.Equal(t, "SELECT * FROM users", b.BuildSelect())

	require.NoError(t, b.OrderBy("name", "asc"))
	require.NoError(t, b.Limit(0))
	assert.Equal(t, "SELECT * FROM users ORDER BY name ASC LIMIT 0", b.BuildSelect())
}

func TestBuildInsert(t *testing.T) {
	t.Parallel()

	t.Run("Basic", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		stmt, err := b.BuildInsert([]Assign{
			{Column: "name", Value: "ada"},
			{Column: "email", Value: "ada@example.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO users (name, email) VALUES (:name, :email)", stmt)
		assert.Equal(t, map[string]any{"name": "ada", "email": "ada@example.com"}, b.Params())
	})

	t.Run("Empty", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		_, err = b.BuildInsert(nil)
		require.Error(t, err)
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("BadColumnLeavesParamsUntouched", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		_, err = b.BuildInsert([]Assign{
			{Column: "name", Value: "ada"},
			{Column: "email;--", Value: "x"},
		})
		require.Error(t, err)
		assert.Empty(t, b.Params())
	})

	t.Run("RepeatWithoutResetOverwrites", func(t *testing.T) {
		b, err := NewBuilder("users")
		require.NoError(t, err)
		_, err = b.BuildInsert([]Assign{{Column: "name", Value: "first"}})
		require.NoError(t, err)
		_, err = b.BuildInsert([]Assign{{Column: "name", Value: "second"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "second"}, b.Params())
	})
}

func TestBuildUpdate(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder("users")
	require.NoError(t, err)
	require.NoError(t, b.Where("id", "=", 5))
	stmt, err := b.BuildUpdate([]Assign{
		{Column: "name", Value: "grace"},
		{Column: "email", Value: "grace@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET name = :name, email = :email WHERE id = :id_0", stmt)
	assert.Equal(t, map[string]any{"name": "grace", "email": "grace@example.com", "id_0": 5}, b.Params())
}

func TestBuildDelete(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder("users")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users", b.BuildDelete())

	require.NoError(t, b.Where("id", "=", 5))
	assert.Equal(t, "DELETE FROM users WHERE id = :id_0", b.BuildDelete())
}

func TestReset(t *testing.T) {
	t.Parallel()

	b, err := NewBuilder("users")
	require.NoError(t, err)
	require.NoError(t, b.Select("id"))
	require.NoError(t, b.Where("id", "=", 5))
	require.NoError(t, b.OrderBy("id", "ASC"))
	require.NoError(t, b.Limit(1))

	b.Reset()
	assert.Equal(t, "users", b.Table(), "reset preserves the table binding")
	assert.Equal(t, "SELECT * FROM users", b.BuildSelect())
	assert.Empty(t, b.Params())
}
