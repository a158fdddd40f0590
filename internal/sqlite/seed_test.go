package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braude/garage/pkg/types"
)

func TestSeed(t *testing.T) {
	b := attach(t, t.TempDir())

	seeded, err := Seed(b)
	require.NoError(t, err)
	assert.True(t, seeded)

	n, err := tableOf(t, b, types.TableClients).Count(types.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(demoData)), n)

	cars, err := tableOf(t, b, types.TableCars).Fetch(types.Query{
		Criteria: types.Criteria{{Field: "clientId", Op: types.OpSpecified, Value: "true"}},
	})
	require.NoError(t, err)
	assert.Len(t, cars, 3)

	n, err = tableOf(t, b, types.TableCarServices).Count(types.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	seeded, err = Seed(b)
	require.NoError(t, err)
	assert.False(t, seeded, "seeding twice is a no-op")
}
