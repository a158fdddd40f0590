package types

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	t.Run("marshals as ISO calendar date", func(t *testing.T) {
		b, err := json.Marshal(NewDate(2024, time.March, 7))
		require.NoError(t, err)
		assert.Equal(t, `"2024-03-07"`, string(b))
	})

	t.Run("unmarshals ISO calendar date", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"1999-12-31"`), &d))
		assert.Equal(t, Date{Year: 1999, Month: time.December, Day: 31}, d)
	})

	t.Run("rejects timestamps", func(t *testing.T) {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(`"1999-12-31T10:00:00Z"`), &d))
	})

	t.Run("null leaves pointer nil", func(t *testing.T) {
		var s CarService
		require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &s))
		assert.Nil(t, s.Date)
	})

	t.Run("normalizes out of range days", func(t *testing.T) {
		assert.Equal(t, "2024-03-01", NewDate(2024, time.February, 30).String())
	})
}

func TestMoneyJSON(t *testing.T) {
	t.Run("marshals as bare number", func(t *testing.T) {
		b, err := json.Marshal(CarService{TotalCost: MustMoney("129.90")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"description":"","totalCost":129.9}`, string(b))
	})

	t.Run("accepts number and string", func(t *testing.T) {
		var a, b Money
		require.NoError(t, json.Unmarshal([]byte(`12.5`), &a))
		require.NoError(t, json.Unmarshal([]byte(`"12.50"`), &b))
		assert.True(t, a.Equal(b.Decimal))
	})

	t.Run("keeps precision", func(t *testing.T) {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(`0.1`), &m))
		sum := m.Add(m.Decimal).Add(m.Decimal)
		assert.Equal(t, "0.3", sum.String())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := NewMoney("twelve")
		assert.Error(t, err)
	})
}

func TestEntityJSONShape(t *testing.T) {
	t.Run("unsaved client has no id", func(t *testing.T) {
		b, err := json.Marshal(Client{FirstName: "Ana"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"firstName":"Ana","lastName":"","mail":"","phoneNum":""}`, string(b))
	})

	t.Run("car carries nullable client reference", func(t *testing.T) {
		b, err := json.Marshal(Car{ID: Int64(4), LicensePlate: "12-345-67", Year: Int(2019), ClientID: Int64(2)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":4,"licensePlate":"12-345-67","make":"","model":"","year":2019,"clientId":2}`, string(b))
	})

	t.Run("identity functions", func(t *testing.T) {
		_, ok := ClientID(Client{})
		assert.False(t, ok)
		id, ok := CarServiceID(CarService{ID: Int64(9)})
		assert.True(t, ok)
		assert.Equal(t, int64(9), id)
	})
}

func TestEntityFieldsMatchTags(t *testing.T) {
	jsonNames := func(v any) []string {
		rt := reflect.TypeOf(v)
		names := make([]string, 0, rt.NumField())
		for i := 0; i < rt.NumField(); i++ {
			name, _, _ := strings.Cut(rt.Field(i).Tag.Get("json"), ",")
			names = append(names, name)
		}
		return names
	}
	assert.Equal(t, jsonNames(Client{}), EntityFields[TableClients])
	assert.Equal(t, jsonNames(Car{}), EntityFields[TableCars])
	assert.Equal(t, jsonNames(CarService{}), EntityFields[TableCarServices])
	for _, name := range StandardTableNames {
		assert.NotEmpty(t, EntityNames[name], name)
	}
}
