package types

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageValues(t *testing.T) {
	tests := []struct {
		name string
		page Page
		want url.Values
	}{
		{name: "zero page encodes nothing", page: Page{}, want: url.Values{}},
		{
			name: "full page",
			page: Paged(1, 20, "id,asc"),
			want: url.Values{"page": {"1"}, "size": {"20"}, "sort": {"id,asc"}},
		},
		{
			name: "size only",
			page: Page{Size: Int(5)},
			want: url.Values{"size": {"5"}},
		},
		{
			name: "repeated sort",
			page: Page{Sort: []string{"make,asc", "id,desc"}},
			want: url.Values{"sort": {"make,asc", "id,desc"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.page.Values())
			assert.Equal(t, len(tt.want) == 0, tt.page.IsZero())
		})
	}
}

func TestParseSort(t *testing.T) {
	got, err := ParseSort("lastName,desc")
	require.NoError(t, err)
	assert.Equal(t, SortOrder{Field: "lastName", Desc: true}, got)

	got, err = ParseSort("id")
	require.NoError(t, err)
	assert.Equal(t, SortOrder{Field: "id"}, got)

	_, err = ParseSort("id,sideways")
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = ParseSort(",asc")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestCriteria(t *testing.T) {
	t.Run("command line form", func(t *testing.T) {
		cr, err := ParseCriterion("clientId.equals=3")
		require.NoError(t, err)
		assert.Equal(t, Criterion{Field: "clientId", Op: OpEquals, Value: "3"}, cr)
	})

	t.Run("rejects unknown operator", func(t *testing.T) {
		_, err := ParseCriterion("make.like=Audi")
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})

	t.Run("specified takes a boolean", func(t *testing.T) {
		_, err := ParseCriterion("clientId.specified=maybe")
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})

	t.Run("round trips through query values", func(t *testing.T) {
		in := Criteria{
			{Field: "make", Op: OpContains, Value: "Aud"},
			{Field: "year", Op: OpGreaterThan, Value: "2010"},
		}
		q := in.Values()
		q.Set("page", "0")
		q.Set("cacheBuster", "1700000000000")

		out, err := ParseCriteria(q, []string{"make", "year"})
		require.NoError(t, err)
		assert.ElementsMatch(t, in, out)
	})

	t.Run("rejects fields outside the schema", func(t *testing.T) {
		_, err := ParseCriteria(url.Values{"owner.equals": {"x"}}, []string{"make"})
		assert.ErrorIs(t, err, ErrInvalidFilter)
	})
}

func TestRequestFailed(t *testing.T) {
	err := error(&RequestFailed{
		Method:     "POST",
		URL:        "http://localhost/api/cars",
		StatusCode: 400,
		Body:       []byte(`{"title":"A new car cannot already have an ID","status":400,"message":"error.idexists","entityName":"car","errorKey":"idexists"}`),
	})
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "error.idexists")

	var rf *RequestFailed
	require.ErrorAs(t, err, &rf)
	p, ok := rf.Problem()
	require.True(t, ok)
	assert.Equal(t, "idexists", p.ErrorKey)

	plain := &RequestFailed{Method: "GET", URL: "http://x", StatusCode: 502, Body: []byte("bad gateway")}
	_, ok = plain.Problem()
	assert.False(t, ok)
	assert.Equal(t, "GET http://x: status 502", plain.Error())
}
