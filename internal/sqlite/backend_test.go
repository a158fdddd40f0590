package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braude/garage/pkg/types"
)

func attach(t *testing.T, dir string) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func tableOf(t *testing.T, b *Backend, name string) types.Table {
	t.Helper()
	tbl, err := b.GetTable(name)
	require.NoError(t, err)
	return tbl
}

func TestBackend_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()

	_, err := b.GetTable(types.TableClients)
	assert.ErrorIs(t, err, types.ErrBackendDetached)

	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}
	require.NoError(t, b.Attach(cfg))
	assert.ErrorIs(t, b.Attach(cfg), types.ErrAlreadyAttached)

	for _, name := range []string{dbFile, "clients.jsonl", "cars.jsonl", "car_services.jsonl"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	for _, name := range types.StandardTableNames {
		_, err := b.GetTable(name)
		assert.NoError(t, err, name)
	}
	_, err = b.GetTable("invoices")
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "detach is idempotent")
	_, err = b.GetTable(types.TableClients)
	assert.ErrorIs(t, err, types.ErrBackendDetached)
}

func TestBackend_AttachValidatesConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{DataDir: t.TempDir()}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "postgres", DataDir: t.TempDir()}), types.ErrBackendUnknown)
}

func TestTable_CRUD(t *testing.T) {
	b := attach(t, t.TempDir())
	clients := tableOf(t, b, types.TableClients)

	id, err := clients.Set(0, &types.Client{FirstName: "Ana", Mail: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := clients.Get(id)
	require.NoError(t, err)
	c := got.(*types.Client)
	assert.Equal(t, types.Client{ID: types.Int64(1), FirstName: "Ana", Mail: "a@x.com"}, *c)

	c.LastName = "Kovač"
	_, err = clients.Set(id, c)
	require.NoError(t, err)
	got, err = clients.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Kovač", got.(*types.Client).LastName)

	_, err = clients.Set(99, c)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = clients.Set(0, &types.Car{})
	assert.ErrorIs(t, err, types.ErrInvalidData)

	require.NoError(t, clients.Delete(id))
	_, err = clients.Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, clients.Delete(id), types.ErrNotFound)
	assert.ErrorIs(t, clients.Delete(0), types.ErrInvalidID)
}

func TestTable_ValueTypes(t *testing.T) {
	b := attach(t, t.TempDir())
	cars := tableOf(t, b, types.TableCars)
	services := tableOf(t, b, types.TableCarServices)

	carID, err := cars.Set(0, &types.Car{LicensePlate: "ZG-1", Year: types.Int(2017)})
	require.NoError(t, err)

	d := types.NewDate(2024, 3, 5)
	id, err := services.Set(0, &types.CarService{
		Date:        &d,
		Description: "Oil",
		TotalCost:   types.MustMoney("12.50"),
		CarID:       types.Int64(carID),
	})
	require.NoError(t, err)

	got, err := services.Get(id)
	require.NoError(t, err)
	s := got.(*types.CarService)
	assert.Equal(t, d, *s.Date)
	assert.True(t, s.TotalCost.Equal(types.MustMoney("12.5").Decimal))
	assert.Equal(t, carID, *s.CarID)

	got, err = cars.Get(carID)
	require.NoError(t, err)
	car := got.(*types.Car)
	assert.Equal(t, 2017, *car.Year)
	assert.Nil(t, car.ClientID)
}

func TestTable_References(t *testing.T) {
	b := attach(t, t.TempDir())
	clients := tableOf(t, b, types.TableClients)
	cars := tableOf(t, b, types.TableCars)
	services := tableOf(t, b, types.TableCarServices)

	_, err := cars.Set(0, &types.Car{ClientID: types.Int64(7)})
	assert.ErrorIs(t, err, types.ErrInvalidReference)

	clientID, err := clients.Set(0, &types.Client{FirstName: "Ana"})
	require.NoError(t, err)
	carID, err := cars.Set(0, &types.Car{LicensePlate: "ZG-1", ClientID: types.Int64(clientID)})
	require.NoError(t, err)
	svcID, err := services.Set(0, &types.CarService{Description: "Oil", CarID: types.Int64(carID)})
	require.NoError(t, err)

	t.Run("deleting a client clears its cars", func(t *testing.T) {
		require.NoError(t, clients.Delete(clientID))
		got, err := cars.Get(carID)
		require.NoError(t, err)
		assert.Nil(t, got.(*types.Car).ClientID)
	})

	t.Run("deleting a car clears its services", func(t *testing.T) {
		require.NoError(t, cars.Delete(carID))
		got, err := services.Get(svcID)
		require.NoError(t, err)
		assert.Nil(t, got.(*types.CarService).CarID)
	})
}

func TestTable_FetchAndCount(t *testing.T) {
	b := attach(t, t.TempDir())
	clients := tableOf(t, b, types.TableClients)
	for _, c := range []types.Client{
		{FirstName: "Ana", LastName: "Kovač", Mail: "ana@x.com"},
		{FirstName: "Marko", LastName: "Horvat", Mail: "marko@y.com"},
		{FirstName: "Ivana", LastName: "Babić"},
		{FirstName: "Ante", LastName: "Anić", Mail: "ante@x.com"},
	} {
		_, err := clients.Set(0, &c)
		require.NoError(t, err)
	}

	names := func(items []any) []string {
		out := make([]string, len(items))
		for i, it := range items {
			out[i] = it.(*types.Client).FirstName
		}
		return out
	}

	tests := []struct {
		name  string
		query types.Query
		want  []string
	}{
		{name: "all in id order", query: types.Query{}, want: []string{"Ana", "Marko", "Ivana", "Ante"}},
		{name: "sorted desc", query: types.Query{Sort: []types.SortOrder{{Field: "firstName", Desc: true}}}, want: []string{"Marko", "Ivana", "Ante", "Ana"}},
		{name: "paged", query: types.Query{Limit: 2, Offset: 2}, want: []string{"Ivana", "Ante"}},
		{name: "offset only", query: types.Query{Offset: 3}, want: []string{"Ante"}},
		{name: "search", query: types.Query{Search: "x.com"}, want: []string{"Ana", "Ante"}},
		{
			name:  "contains",
			query: types.Query{Criteria: types.Criteria{{Field: "firstName", Op: types.OpContains, Value: "an"}}},
			want:  []string{"Ana", "Ivana", "Ante"},
		},
		{
			name:  "specified false",
			query: types.Query{Criteria: types.Criteria{{Field: "mail", Op: types.OpSpecified, Value: "false"}}},
			want:  []string{"Ivana"},
		},
		{
			name:  "id greater than",
			query: types.Query{Criteria: types.Criteria{{Field: "id", Op: types.OpGreaterThan, Value: "2"}}},
			want:  []string{"Ivana", "Ante"},
		},
		{
			name:  "not equals",
			query: types.Query{Criteria: types.Criteria{{Field: "lastName", Op: types.OpNotEquals, Value: "Horvat"}}},
			want:  []string{"Ana", "Ivana", "Ante"},
		},
		{name: "like wildcards are literal", query: types.Query{Search: "%"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := clients.Fetch(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))

			n, err := clients.Count(tt.query)
			require.NoError(t, err)
			if tt.query.Limit == 0 && tt.query.Offset == 0 {
				assert.Equal(t, int64(len(tt.want)), n)
			} else {
				assert.Equal(t, int64(4), n, "count ignores paging")
			}
		})
	}

	_, err := clients.Fetch(types.Query{Criteria: types.Criteria{{Field: "age", Op: types.OpEquals, Value: "3"}}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
	_, err = clients.Fetch(types.Query{Sort: []types.SortOrder{{Field: "age"}}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
	_, err = clients.Fetch(types.Query{Criteria: types.Criteria{{Field: "id", Op: types.OpEquals, Value: "x"}}})
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestTable_MoneyComparesNumerically(t *testing.T) {
	b := attach(t, t.TempDir())
	services := tableOf(t, b, types.TableCarServices)
	for _, cost := range []string{"9.99", "100.00", "25.50"} {
		_, err := services.Set(0, &types.CarService{Description: cost, TotalCost: types.MustMoney(cost)})
		require.NoError(t, err)
	}

	got, err := services.Fetch(types.Query{
		Criteria: types.Criteria{{Field: "totalCost", Op: types.OpGreaterThan, Value: "20"}},
		Sort:     []types.SortOrder{{Field: "totalCost"}},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "25.50", got[0].(*types.CarService).Description)
	assert.Equal(t, "100.00", got[1].(*types.CarService).Description)
}
