package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Dataset {
	return Dataset{
		Title:   "Library Visitors",
		Headers: []string{"ID", "Name", "Roll No"},
		Rows: [][]string{
			{"2", "Asha, K", "AB12"},
			{"1", "Ravi"},
		},
	}
}

func TestCSVExporterQuotesAndPads(t *testing.T) {
	out, err := NewCSVExporter().Render(sample())
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Roll No\n2,\"Asha, K\",AB12\n1,Ravi,\n", string(out))
}

func TestRenderersRejectMissingHeaders(t *testing.T) {
	for _, r := range []Renderer{NewCSVExporter(), NewXLSXExporter(), NewPDFExporter()} {
		_, err := r.Render(Dataset{})
		assert.Error(t, err, r.Extension())
	}
}

func TestPDFExporterProducesDocument(t *testing.T) {
	data := sample()
	for i := 0; i < 120; i++ {
		data.Rows = append(data.Rows, []string{"9", strings.Repeat("long name ", 8), "ZZ9"})
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXRoundTrip(t *testing.T) {
	out, err := NewXLSXExporter().Render(sample())
	require.NoError(t, err)

	table, err := ReadXLSX(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "roll no"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Asha, K", table.Rows[0]["name"])
	assert.Equal(t, "", table.Rows[1]["roll no"])
}

func TestReadCSVNormalizesHeadersAndSkipsBlankRows(t *testing.T) {
	in := "\ufeffName , Roll_No,Level\nAsha, ab1 ,UG\n,,\nRavi,cd2\n"
	table, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "roll_no", "level"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "ab1", table.Rows[0]["roll_no"])
	assert.Equal(t, "", table.Rows[1]["level"])
	assert.Equal(t, []string{"purpose"}, table.MissingColumns("name", "purpose"))
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer("XLSX")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", r.Extension())

	r, err = NewRenderer("")
	require.NoError(t, err)
	assert.Equal(t, "csv", r.Extension())

	_, err = NewRenderer("docx")
	assert.Error(t, err)
}
