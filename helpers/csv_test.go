package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/autovis/schema"
)

const requestsCSV = `Date,Host,Requests,Enabled
2024-01-01,web-1,"1,200",true
2024-01-01,web-2,300,false
2024-01-02,web-1,450,true
2024-01-02,web-2,,false
`

func TestParseCSV(t *testing.T) {
	rows, fields, err := ParseCSV([]byte(requestsCSV))
	require.NoError(t, err)

	assert.Equal(t, []schema.Field{
		{Name: "Date", Type: "date"},
		{Name: "Host", Type: "keyword"},
		{Name: "Requests", Type: "double"},
		{Name: "Enabled", Type: "keyword"},
	}, fields)
	require.Len(t, rows, 4)
	assert.Equal(t, schema.Row{"Date": "2024-01-01", "Host": "web-1", "Requests": "1,200", "Enabled": "true"}, rows[0])
}

func TestParseCSVDataset(t *testing.T) {
	ds, err := ParseCSVDataset([]byte(requestsCSV))
	require.NoError(t, err)

	require.Len(t, ds.NumericalColumns, 1)
	requests := ds.NumericalColumns[0]
	assert.Equal(t, "Requests", requests.Name)
	assert.Equal(t, 3, requests.ValidValuesCount)
	assert.Equal(t, 3, requests.UniqueValuesCount)
	assert.Equal(t, 1200.0, ds.TransformedData[0][requests.Column])

	assert.Len(t, ds.CategoricalColumns, 2)
	require.Len(t, ds.DateColumns, 1)
	assert.Equal(t, 2, ds.DateColumns[0].UniqueValuesCount)
}

func TestParseCSVHeaders(t *testing.T) {
	rows, fields, err := ParseCSV([]byte("\ufeffname,,name\na,b,c\nshort\n"))
	require.NoError(t, err)

	assert.Equal(t, "name", fields[0].Name)
	assert.Equal(t, "column_2", fields[1].Name)
	assert.Equal(t, "name_2", fields[2].Name)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[1]["name_2"])
}

func TestParseCSVEmpty(t *testing.T) {
	_, _, err := ParseCSV(nil)
	assert.ErrorContains(t, err, "failed to read CSV headers")
}
