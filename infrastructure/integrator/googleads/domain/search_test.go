package adsdomain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchStream(t *testing.T) {
	t.Run("array de lotes com valores em string", func(t *testing.T) {
		body := []byte(`[
			{"results": [
				{"customer": {"id": "1112223333", "descriptiveName": "Loja A"},
				 "metrics": {"costMicros": "5000000", "conversions": 2, "impressions": "1000", "clicks": "25"}}
			], "fieldMask": "customer.id"},
			{"results": [
				{"customer": {"id": "1112223333", "descriptiveName": ""},
				 "metrics": {"costMicros": 1000000, "conversions": "0.5"}}
			]}
		]`)

		response, err := ParseSearchStream("111-222-3333", body)
		require.NoError(t, err)

		rows := response.Rows()
		require.Len(t, rows, 2)
		assert.Equal(t, "Loja A", rows[0].Customer.DescriptiveName)
		assert.Equal(t, int64(1112223333), rows[0].Customer.ID.Int64())
		assert.Equal(t, int64(5000000), rows[0].Metrics.CostMicros.Int64())
		assert.Equal(t, 2.0, rows[0].Metrics.Conversions.Float64())
		assert.Equal(t, int64(1000), rows[0].Metrics.Impressions.Int64())
		assert.Equal(t, int64(25), rows[0].Metrics.Clicks.Int64())

		assert.Equal(t, int64(1000000), rows[1].Metrics.CostMicros.Int64())
		assert.Equal(t, 0.5, rows[1].Metrics.Conversions.Float64())
		assert.Equal(t, int64(0), rows[1].Metrics.Impressions.Int64())
		assert.Equal(t, int64(0), rows[1].Metrics.Clicks.Int64())
	})

	t.Run("objeto único", func(t *testing.T) {
		body := []byte(`{"results": [{"metrics": {"costMicros": "3000000", "conversions": 1}}]}`)

		response, err := ParseSearchStream("222", body)
		require.NoError(t, err)

		rows := response.Rows()
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].Customer)
		assert.Equal(t, int64(3000000), rows[0].Metrics.CostMicros.Int64())
	})

	t.Run("sem resultados", func(t *testing.T) {
		response, err := ParseSearchStream("222", []byte(`[]`))
		require.NoError(t, err)
		assert.Empty(t, response.Rows())

		response, err = ParseSearchStream("222", []byte(`{}`))
		require.NoError(t, err)
		assert.Empty(t, response.Rows())
	})

	t.Run("campos nulos valem zero", func(t *testing.T) {
		body := []byte(`[{"results": [{"metrics": {"costMicros": null, "conversions": null, "clicks": ""}}]}]`)

		response, err := ParseSearchStream("222", body)
		require.NoError(t, err)
		assert.Equal(t, int64(0), response.Rows()[0].Metrics.CostMicros.Int64())
		assert.Equal(t, 0.0, response.Rows()[0].Metrics.Conversions.Float64())
	})

	invalid := []struct {
		name string
		body string
	}{
		{name: "corpo vazio", body: ``},
		{name: "não é JSON", body: `<html>oops</html>`},
		{name: "JSON truncado", body: `[{"results": [`},
		{name: "custo não numérico", body: `[{"results": [{"metrics": {"costMicros": "abc"}}]}]`},
		{name: "impressões decimais", body: `[{"results": [{"metrics": {"impressions": "10.5"}}]}]`},
		{name: "conversões não numéricas", body: `[{"results": [{"metrics": {"conversions": "NaN"}}]}]`},
		{name: "cliques negativos", body: `[{"results": [{"metrics": {"clicks": "-1"}}]}]`},
		{name: "tipo booleano", body: `[{"results": [{"metrics": {"clicks": true}}]}]`},
		{name: "results com tipo errado", body: `{"results": "nope"}`},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			response, err := ParseSearchStream("333", []byte(tt.body))
			assert.Nil(t, response)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "333", parseErr.CustomerID)
			assert.Contains(t, err.Error(), "customer 333")
		})
	}
}
