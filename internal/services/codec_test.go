package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecg-annotator/internal/labels"
	"ecg-annotator/internal/models"
)

func sampleTable() *models.AnnotationTable {
	table := models.SeedTable([]string{"a.jpg", "b.jpg", "sub/c.jpg"})
	table.SetTag("a.jpg", labels.Unreadable, true)
	table.SetTag("a.jpg", labels.GoodQuality, true)
	table.MarkSeen("a.jpg")
	table.MarkSeen("b.jpg")
	table.SetTag("sub/c.jpg", labels.SignalsIntersect, true)
	return table
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		override string
		want     Format
		wantErr  bool
	}{
		{"annotations.csv", "", FormatCSV, false},
		{"ANNOTATIONS.TSV", "", FormatTSV, false},
		{"data/annotations.json", "", FormatJSON, false},
		{"labels.yml", "", FormatYAML, false},
		{"labels.yaml", "", FormatYAML, false},
		{"labels.txt", "csv", FormatCSV, false},
		{"labels.txt", "", "", true},
		{"labels", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.override, func(t *testing.T) {
			got, err := FormatForPath(tt.path, tt.override)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatCSV, FormatTSV, FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			want := sampleTable()

			var buf bytes.Buffer
			require.NoError(t, f.Encode(&buf, want))

			got, err := f.Decode(&buf)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "decoded table differs")
		})
	}
}

func TestCodecRoundTripKeepsSpacesInPaths(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatCSV, FormatTSV, FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			want := models.NewAnnotationTable()
			want.SetRow(" scan.jpg", models.AnnotationRow{Seen: true}.With(labels.Obscured, true))
			want.SetRow("lead 2 .jpg", models.AnnotationRow{}.With(labels.GoodQuality, true))
			want.SetRow("scan.jpg", models.AnnotationRow{Seen: true})

			var buf bytes.Buffer
			require.NoError(t, f.Encode(&buf, want))

			got, err := f.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, want.Paths(), got.Paths())
			assert.True(t, want.Equal(got), "decoded table differs")
		})
	}
}

func TestEncodeCSVLayout(t *testing.T) {
	t.Parallel()

	table := models.SeedTable([]string{"b.jpg", "a.jpg"})
	table.SetTag("b.jpg", labels.Obscured, true)

	var buf bytes.Buffer
	require.NoError(t, FormatCSV.Encode(&buf, table))

	want := "path,Unreadable,Obscured,Low_Contrast,Signals_Intersect,Good_Quality,Seen\n" +
		"a.jpg,false,false,false,false,false,false\n" +
		"b.jpg,false,true,false,false,false,false\n"
	assert.Equal(t, want, buf.String())
}

func TestDecodeCSVTolerance(t *testing.T) {
	t.Parallel()

	// BOM, shuffled columns, an unknown column, a missing tag column, blank cells
	// and mixed boolean spellings
	input := "\ufeffpath,Seen,Good_Quality,Comment,unreadable\n" +
		"x.jpg,True,1,looks fine,\n" +
		"y.jpg,,false,,FALSE\n" +
		",true,true,,true\n"

	table, err := FormatCSV.Decode(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	x := table.GetRow("x.jpg")
	assert.True(t, x.Seen)
	assert.True(t, x.Has(labels.GoodQuality))
	assert.False(t, x.Has(labels.Unreadable))
	assert.False(t, x.Has(labels.Obscured))

	assert.False(t, table.GetRow("y.jpg").Annotated())
}

func TestDecodeCSVBadBoolean(t *testing.T) {
	t.Parallel()

	input := "path,Unreadable\nx.jpg,maybe\n"
	_, err := FormatCSV.Decode(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "Unreadable")
}

func TestDecodeEmptyInputs(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatCSV, FormatTSV, FormatJSON, FormatYAML} {
		table, err := f.Decode(strings.NewReader(""))
		require.NoError(t, err, string(f))
		assert.Zero(t, table.Len(), string(f))
	}
}

func TestDecodeJSONKeyedByDescription(t *testing.T) {
	t.Parallel()

	// Older stores used the checkbox text as field names
	input := `{
  "p1/scan.jpg": {
    "Unreadable": false,
    "Parts of image are obscured": true,
    "Low contrast between signal and image": true,
    "Signals intersect": false,
    "Good quality and good contrast": false,
    "Seen": true
  }
}`
	table, err := FormatJSON.Decode(strings.NewReader(input))
	require.NoError(t, err)

	row := table.GetRow("p1/scan.jpg")
	assert.True(t, row.Has(labels.Obscured))
	assert.True(t, row.Has(labels.LowContrast))
	assert.False(t, row.Has(labels.Unreadable))
	assert.True(t, row.Seen)
}

func TestDecodeJSONRejectsNonBoolean(t *testing.T) {
	t.Parallel()

	_, err := FormatJSON.Decode(strings.NewReader(`{"a.jpg": {"Unreadable": [1]}}`))
	assert.Error(t, err)
}
