package xlsx

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/etable/pkg/table"
)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(2, 3)
	require.NoError(t, err)
	require.NoError(t, tbl.EditCell(1, 1, "10"))
	require.NoError(t, tbl.EditCell(1, 2, `"Hello world!"`))
	require.NoError(t, tbl.EditCell(1, 3, "2.5"))
	require.Error(t, tbl.EditCell(2, 1, "oops"))
	require.NoError(t, tbl.EditCell(2, 3, "=R1C1*R1C3"))
	return tbl
}

func TestExport_CellValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, Export(fs, "book.xlsx", sampleTable(t), "Data"))

	in, err := fs.Open("book.xlsx")
	require.NoError(t, err)
	defer in.Close()
	f, err := excelize.OpenReader(in)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Data"}, f.GetSheetList())

	tests := []struct {
		cell string
		want string
	}{
		{"A1", "10"},
		{"B1", "Hello world!"},
		{"C1", "2.5"},
		{"A2", "ERROR"},
		{"B2", ""},
		{"C2", "25"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue("Data", tt.cell)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.cell)
	}

	typ, err := f.GetCellType("Data", "A1")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "numbers are stored as numbers")
}

func TestExportImport_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	orig := sampleTable(t)
	require.NoError(t, Export(fs, "book.xlsx", orig, ""))

	back, diags, err := Import(fs, "book.xlsx", "", 10, 10)
	require.NoError(t, err)
	require.Len(t, diags, 1, "the error cell is reported again")
	assert.Equal(t, 2, diags[0].Row)
	assert.Equal(t, 1, diags[0].Col)
	assert.Equal(t, orig.Serialize(table.DefaultDelimiter), back.Serialize(table.DefaultDelimiter))
}

func TestImport_NamedAndMissingSheet(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, Export(fs, "book.xlsx", sampleTable(t), "Budget"))

	tbl, _, err := Import(fs, "book.xlsx", "Budget", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Rows())

	_, _, err = Import(fs, "book.xlsx", "Nope", 10, 10)
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestImport_EmptySheetUsesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	empty, err := table.New(1, 1)
	require.NoError(t, err)
	require.NoError(t, Export(fs, "empty.xlsx", empty, ""))

	tbl, diags, err := Import(fs, "empty.xlsx", "", 3, 4)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, 4, tbl.Columns())
}

func TestToRaw(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"42", "42"},
		{"-1.5", "-1.5"},
		{"=1+2", "=1+2"},
		{`"quoted"`, `"quoted"`},
		{"ERROR", "ERROR"},
		{"plain text", `"plain text"`},
		{"1E+10", `"1E+10"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, toRaw(tt.in))
		})
	}
}
