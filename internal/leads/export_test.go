package leads

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, exportHeader, records[0])
}

func TestWriteCSV_QuotesAwkwardFields(t *testing.T) {
	lead := &Lead{
		ID:             9,
		Name:           `Juan "el Güero" Pérez`,
		WhatsApp:       "555-0000",
		Operation:      "compra",
		PropertyType:   "casa",
		Zone:           "Roma Norte, CDMX",
		Budget:         "$3,500,000",
		Financing:      "crédito\nhipotecario",
		Timeline:       "inmediato",
		Classification: ClassificationHot,
		Status:         StatusPending,
		CreatedAt:      time.Date(2024, 7, 4, 18, 5, 9, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*Lead{lead}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	row := records[1]
	require.Len(t, row, len(exportHeader))
	assert.Equal(t, "9", row[0])
	assert.Equal(t, lead.Name, row[1])
	assert.Equal(t, "Roma Norte, CDMX", row[5])
	assert.Equal(t, "$3,500,000", row[6])
	assert.Equal(t, "crédito\nhipotecario", row[7])
	assert.Equal(t, "HOT", row[8])
	assert.Equal(t, "pending", row[10])
	assert.Equal(t, "2024-07-04 18:05:09", row[11])
}

func TestFilterMatch(t *testing.T) {
	lead := &Lead{Name: "María José", WhatsApp: "+52 55 1234", Classification: ClassificationWarm}

	tests := []struct {
		name   string
		filter ListFilter
		want   bool
	}{
		{"empty filter", ListFilter{}, true},
		{"exact classification", ListFilter{Classification: ClassificationWarm}, true},
		{"other classification", ListFilter{Classification: ClassificationHot}, false},
		{"case sensitive classification", ListFilter{Classification: "warm"}, false},
		{"name case insensitive", ListFilter{Search: "maría"}, true},
		{"phone substring", ListFilter{Search: "55 12"}, true},
		{"no match", ListFilter{Search: "pedro"}, false},
		{"classification wins over search", ListFilter{Classification: ClassificationCold, Search: "María"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(lead))
		})
	}
}
