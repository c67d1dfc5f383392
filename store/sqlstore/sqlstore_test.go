package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/rtcache/store"
)

type person struct {
	ID     int64
	Name   string
	IsCool bool
	Age    int64
}

func scanPerson(cols []string, vals []any) (person, error) {
	var p person
	for i, c := range cols {
		switch c {
		case "id":
			p.ID, _ = vals[i].(int64)
		case "name":
			p.Name, _ = vals[i].(string)
		case "is_cool":
			n, _ := vals[i].(int64)
			p.IsCool = n != 0
		case "age":
			p.Age, _ = vals[i].(int64)
		default:
			return p, fmt.Errorf("unexpected column %q", c)
		}
	}
	return p, nil
}

func newTestStore(t *testing.T) *Store[person] {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE person (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		is_cool INTEGER NOT NULL DEFAULT 0,
		age INTEGER NOT NULL DEFAULT 0
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO person (id, name, is_cool, age) VALUES
		(1, 'Bart', 1, 10), (2, 'Flanders', 0, 60), (3, 'Burns', 1, 123)`)
	require.NoError(t, err)

	s, err := New(db, Config[person]{Table: "person", Scan: scanPerson})
	require.NoError(t, err)
	return s
}

func names(ps []person) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestGetOne(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := s.GetOne(ctx, store.Filter{"name": "Bart"}, nil)
	require.NoError(t, err)
	assert.Equal(t, person{ID: 1, Name: "Bart", IsCool: true, Age: 10}, p)

	p, err = s.GetOne(ctx, store.Filter{"pk": int64(3)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Burns", p.Name)

	_, err = s.GetOne(ctx, store.Filter{"name": "Bender"}, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetOne(ctx, store.Filter{"is_cool": true}, nil)
	assert.ErrorIs(t, err, store.ErrMultiple)
}

func TestFilterLookups(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cases := []struct {
		filter store.Filter
		want   []string
	}{
		{nil, []string{"Bart", "Flanders", "Burns"}},
		{store.Filter{"age__gt": int64(20)}, []string{"Flanders", "Burns"}},
		{store.Filter{"age__gte": 60}, []string{"Flanders", "Burns"}},
		{store.Filter{"age__lt": 60}, []string{"Bart"}},
		{store.Filter{"age__lte": 60, "is_cool": true}, []string{"Bart"}},
		{store.Filter{"pk__in": []int64{1, 3}}, []string{"Bart", "Burns"}},
		{store.Filter{"pk__in": []int64{}}, []string{}},
		{store.Filter{"name__exact": "Flanders"}, []string{"Flanders"}},
		{store.Filter{"age__isnull": false}, []string{"Bart", "Flanders", "Burns"}},
	}
	for _, tc := range cases {
		got, err := s.Filter(ctx, tc.filter, nil)
		require.NoError(t, err, "filter %v", tc.filter)
		assert.Equal(t, tc.want, names(got), "filter %v", tc.filter)
	}
}

func TestProjectionLeavesOtherFieldsZero(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.Filter(ctx, store.Filter{"pk": 2}, []string{"id"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, person{ID: 2}, got[0])

	got, err = s.Filter(ctx, nil, []string{"pk", "name"})
	require.NoError(t, err)
	assert.Equal(t, person{ID: 1, Name: "Bart"}, got[0])
}

func TestRejectsUnsafeIdentifiers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Filter(ctx, store.Filter{"name; DROP TABLE person": "x"}, nil)
	assert.Error(t, err)
	_, err = s.Filter(ctx, nil, []string{"*"})
	assert.Error(t, err)
	_, err = s.Filter(ctx, store.Filter{"age__isnull": "yes"}, nil)
	assert.Error(t, err)
	_, err = s.Filter(ctx, store.Filter{"pk__in": 5}, nil)
	assert.Error(t, err)

	_, err = New[person](nil, Config[person]{Table: "person", Scan: scanPerson})
	assert.Error(t, err)
	_, err = New[person](&sql.DB{}, Config[person]{Table: "person x", Scan: scanPerson})
	assert.Error(t, err)
}

func TestBuildDollarPlaceholders(t *testing.T) {
	s := &Store[person]{table: "person", pk: "id", dollar: true}
	q, args, err := s.build(store.Filter{"age__gt": 1, "pk__in": []int{4, 5}}, []string{"name"}, 2)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "name" FROM "person" WHERE "age" > $1 AND "id" IN ($2, $3) ORDER BY "id" LIMIT 2`, q)
	assert.Equal(t, []any{1, 4, 5}, args)
}

func TestMaps(t *testing.T) {
	m, err := Maps([]string{"id", "name"}, []any{int64(1), []byte("Bart")})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(1), "name": "Bart"}, m)
}
