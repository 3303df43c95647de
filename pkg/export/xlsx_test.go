package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/staff-console/pkg/columns"
)

type org struct{ short, inn string }

func (o org) Cell(key string) string {
	if key == "inn" {
		return o.inn
	}
	return o.short
}

func TestXLSX(t *testing.T) {
	layout := columns.Layout{Resource: "organizations", Columns: []columns.Column{
		{Key: "short_name", Title: "Short Name", Width: 10},
		{Key: "inn", Title: "INN"},
	}}
	buf := &bytes.Buffer{}
	require.NoError(t, XLSX(buf, "", layout, []org{{"Acme", "7701234567"}, {"Globex", "7709876543"}}))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("organizations")
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Short Name", "INN"},
		{"Acme", "7701234567"},
		{"Globex", "7709876543"},
	}, rows)
}
