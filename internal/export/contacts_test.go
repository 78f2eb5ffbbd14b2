package export

import (
	"path/filepath"
	"testing"

	"asterbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteContacts(t *testing.T) {
	contacts := []models.Contact{
		{Name: "Асет", Phone: "77001234567", City: "Алматы"},
		{Name: "Дана", Phone: "77007654321", City: "Астана"},
	}

	tests := []struct {
		name   string
		layout Layout
		want   [][]string
	}{
		{
			name:   "Selection",
			layout: SelectionLayout,
			want: [][]string{
				{"Phone Number", "Name", "City"},
				{"77001234567", "Асет", "Алматы"},
				{"77007654321", "Дана", "Астана"},
			},
		},
		{
			name:   "Sales",
			layout: SalesLayout,
			want: [][]string{
				{"Имя", "Город", "Телефон"},
				{"Асет", "Алматы", "77001234567"},
				{"Дана", "Астана", "77007654321"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			e := NewExporter(dir, nil)

			path, err := e.WriteContacts("contacts.xlsx", tt.layout, contacts)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "contacts.xlsx"), path)

			f, err := excelize.OpenFile(path)
			require.NoError(t, err)
			defer f.Close()

			rows, err := f.GetRows(tt.layout.Sheet)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestWriteContacts_Empty(t *testing.T) {
	e := NewExporter(t.TempDir(), nil)
	path, err := e.WriteContacts("empty.xlsx", SalesLayout, nil)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SalesLayout.Sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteContacts_InvalidName(t *testing.T) {
	e := NewExporter(t.TempDir(), nil)
	_, err := e.WriteContacts("../x.xlsx", SalesLayout, nil)
	assert.Error(t, err)
}
