package garage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braude/garage/internal/server"
	"github.com/braude/garage/pkg/container"
	"github.com/braude/garage/pkg/sqlite"
	"github.com/braude/garage/pkg/types"
)

// recorder captures request bodies on their way to the dev server.
type recorder struct {
	mu     sync.Mutex
	bodies map[string][]byte // by method
	paths  []string
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	r.paths = append(r.paths, req.Method+" "+req.URL.RequestURI())
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
		if r.bodies == nil {
			r.bodies = map[string][]byte{}
		}
		r.bodies[req.Method] = body
	}
	r.mu.Unlock()
	return http.DefaultTransport.RoundTrip(req)
}

func (r *recorder) body(method string) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bodies[method]
}

func (r *recorder) requests() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func newStore(t *testing.T, opts ...Option) (*Store, *recorder) {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = b.Detach() })

	ts := httptest.NewServer(server.New(server.Config{Backend: b, Log: zerolog.Nop()}).Handler())
	t.Cleanup(ts.Close)

	rec := &recorder{}
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: rec})}, opts...)
	return New(ts.URL, opts...), rec
}

func TestStore_CreateThenGet(t *testing.T) {
	s, rec := newStore(t)
	ctx := context.Background()

	saved, err := s.Clients.Create(ctx, types.Client{FirstName: "Ana", LastName: "", Mail: "a@x.com", PhoneNum: ""})
	require.NoError(t, err)
	require.NotNil(t, saved.ID)
	assert.JSONEq(t, `{"firstName":"Ana","mail":"a@x.com"}`, string(rec.body(http.MethodPost)))

	st := s.Clients.Snapshot()
	assert.Equal(t, saved, st.Entity)
	assert.True(t, st.UpdateSuccess)
	assert.False(t, st.Updating)
	assert.Equal(t, []types.Client{saved}, st.Entities, "follow-up list applied")
	assert.Equal(t, int64(1), st.TotalItems)

	got, err := s.Clients.Get(ctx, *saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	again, err := s.Clients.Get(ctx, *saved.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, got, s.Clients.Snapshot().Entity)
}

func TestStore_ListPagination(t *testing.T) {
	s, rec := newStore(t)
	ctx := context.Background()
	for _, name := range []string{"Ana", "Marko", "Ivana"} {
		_, err := s.Clients.Create(ctx, types.Client{FirstName: name})
		require.NoError(t, err)
	}

	items, err := s.Clients.List(ctx, types.Paged(1, 2, "id,asc"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ivana", items[0].FirstName)
	assert.Equal(t, int64(3), s.Clients.Snapshot().TotalItems)

	reqs := rec.requests()
	assert.Equal(t, "GET /api/clients?page=1&size=2&sort=id%2Casc", reqs[len(reqs)-1])
}

func TestStore_RemoveRefreshesOnce(t *testing.T) {
	s, rec := newStore(t)
	ctx := context.Background()
	saved, err := s.Cars.Create(ctx, types.Car{LicensePlate: "ZG-1234-AB", Year: types.Int(2017)})
	require.NoError(t, err)
	require.True(t, s.Cars.ConsumeUpdateSuccess())

	before := len(rec.requests())
	require.NoError(t, s.Cars.Remove(ctx, *saved.ID))

	st := s.Cars.Snapshot()
	assert.Equal(t, types.Car{}, st.Entity)
	assert.True(t, st.UpdateSuccess)
	assert.Empty(t, st.Entities)
	assert.Zero(t, st.TotalItems)

	reqs := rec.requests()[before:]
	require.Len(t, reqs, 2)
	assert.Equal(t, "DELETE /api/cars/1", reqs[0])
	assert.Contains(t, reqs[1], "GET /api/cars?cacheBuster=")
}

func TestStore_FailureKeepsCache(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	_, err := s.Clients.Create(ctx, types.Client{FirstName: "Ana"})
	require.NoError(t, err)
	cached := s.Clients.Snapshot()

	_, err = s.Clients.Get(ctx, 99)
	var rf *types.RequestFailed
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, http.StatusNotFound, rf.StatusCode)

	st := s.Clients.Snapshot()
	assert.Equal(t, cached.Entities, st.Entities)
	assert.Equal(t, cached.Entity, st.Entity)
	assert.Equal(t, err, st.Err)

	_, err = s.Clients.Create(ctx, types.Client{ID: types.Int64(5), FirstName: "Ana"})
	require.True(t, errors.As(err, &rf))
	p, ok := rf.Problem()
	require.True(t, ok)
	assert.Equal(t, "idexists", p.ErrorKey)
	assert.False(t, s.Clients.Snapshot().UpdateSuccess)
}

func TestStore_FilterAndCount(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	ana, err := s.Clients.Create(ctx, types.Client{FirstName: "Ana"})
	require.NoError(t, err)
	for _, plate := range []string{"ZG-1", "ZG-2"} {
		_, err := s.Cars.Create(ctx, types.Car{LicensePlate: plate, ClientID: ana.ID})
		require.NoError(t, err)
	}
	_, err = s.Cars.Create(ctx, types.Car{LicensePlate: "ST-1"})
	require.NoError(t, err)

	owned := types.Criteria{{Field: "clientId", Op: types.OpEquals, Value: "1"}}
	cars, err := s.Cars.Filter(ctx, owned, types.Page{})
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Equal(t, int64(2), s.Cars.Snapshot().TotalItems)

	n, err := s.Cars.Count(ctx, owned)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	found, err := s.Cars.Search(ctx, "ST", types.Page{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ST-1", found[0].LicensePlate)
}

func TestStore_CarServiceForm(t *testing.T) {
	s, rec := newStore(t)
	ctx := context.Background()
	car, err := s.Cars.Create(ctx, types.Car{LicensePlate: "ZG-1"})
	require.NoError(t, err)

	f, err := container.OpenForm[types.CarService, int64](ctx, s.CarServices, nil)
	require.NoError(t, err)
	require.NoError(t, f.Set("date", "2024-03-05"))
	require.NoError(t, f.Set("description", "Oil and filter"))
	require.NoError(t, f.Set("totalCost", "12.50"))
	require.NoError(t, f.Set("carId", "1"))

	saved, ok, err := f.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"date":"2024-03-05","description":"Oil and filter","totalCost":12.50,"carId":1}`, string(rec.body(http.MethodPost)))
	assert.Equal(t, car.ID, saved.CarID)
	assert.True(t, saved.TotalCost.Equal(types.MustMoney("12.5").Decimal))

	id := *saved.ID
	f, err = container.OpenForm(ctx, s.CarServices, &id)
	require.NoError(t, err)
	assert.False(t, f.IsNew())
	require.NoError(t, f.Set("totalCost", "15"))
	updated, ok, err := f.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, updated.TotalCost.Equal(types.MustMoney("15").Decimal))
	assert.Len(t, s.CarServices.Snapshot().Entities, 1)
}

func TestStore_Independent(t *testing.T) {
	a, _ := newStore(t)
	b, _ := newStore(t, WithSequencing(container.ArrivalOrder))
	ctx := context.Background()

	_, err := a.Clients.Create(ctx, types.Client{FirstName: "Ana"})
	require.NoError(t, err)
	assert.Empty(t, b.Clients.Snapshot().Entities)
	assert.NotEqual(t, a.BaseURL(), b.BaseURL())

	a.Reset()
	assert.Equal(t, container.State[types.Client]{}, a.Clients.Snapshot())
}
