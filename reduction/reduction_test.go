package reduction

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avollmer/deepfeat/logging"
	"github.com/avollmer/deepfeat/table"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(nil)
	os.Exit(m.Run())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestIsZeroLiteral(t *testing.T) {
	assert.True(t, IsZeroLiteral("0"))
	assert.True(t, IsZeroLiteral("0.0"))
	assert.False(t, IsZeroLiteral("0.00"))
	assert.False(t, IsZeroLiteral("-0"))
	assert.False(t, IsZeroLiteral(""))
	assert.False(t, IsZeroLiteral("0,0"))
}

func TestDetectZeroColumns(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[int]struct{}
	}{
		{
			name:    "mixed_zero_columns",
			content: "a,b,c\n0,1,0.0\n0,2,0\n",
			want:    map[int]struct{}{0: {}, 2: {}},
		},
		{
			name:    "single_row_uses_own_zeros",
			content: "a,b,c\n0.0,5,0\n",
			want:    map[int]struct{}{0: {}, 2: {}},
		},
		{
			name:    "no_rows_empty_set",
			content: "a,b,c\n",
			want:    map[int]struct{}{},
		},
		{
			name:    "no_zero_columns",
			content: "a,b\n1,0\n0,1\n",
			want:    map[int]struct{}{},
		},
		{
			name:    "string_match_not_numeric",
			content: "a,b\n0.00,0\n0.00,0.0\n",
			want:    map[int]struct{}{1: {}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "feat.csv", tt.content)
			got, err := DetectZeroColumns(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectValidatesAfterShortCircuit(t *testing.T) {
	// Row 2 empties the candidate set; row 3 is malformed and must still
	// surface even though no intersections remain to compute.
	content := "a,b\n0,1\n1,1\n1,2,3\n"
	path := writeFile(t, t.TempDir(), "feat.csv", content)

	_, err := DetectZeroColumns(path)
	var formatErr *table.FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestDetectARFF(t *testing.T) {
	content := "@relation r\n@attribute a numeric\n@attribute b numeric\n@data\n0.0,3\n0,4\n"
	path := writeFile(t, t.TempDir(), "feat.arff", content)

	got, err := DetectZeroColumns(path)
	require.NoError(t, err)
	assert.Equal(t, map[int]struct{}{0: {}}, got)
}

func TestReducedPath(t *testing.T) {
	assert.Equal(t, "feat.reduced.arff", ReducedPath("feat.arff"))
	assert.Equal(t, filepath.Join("d", "feat.reduced.csv"), ReducedPath(filepath.Join("d", "feat.csv")))
}

func readTable(t *testing.T, path string) ([]table.Attribute, [][]string) {
	t.Helper()
	r, err := table.Open(path, table.FormatForPath(path))
	require.NoError(t, err)
	defer r.Close()
	var rows [][]string
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return r.Attributes(), rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestReduceScenario(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "feat.csv", "a,b,c\n0,1,0.0\n0,2,0\n")
	dst := filepath.Join(dir, "feat.reduced.csv")

	require.NoError(t, Reduce(src, dst))

	attrs, rows := readTable(t, dst)
	require.Equal(t, []table.Attribute{{Name: "b"}}, attrs)
	assert.Equal(t, [][]string{{"1"}, {"2"}}, rows)
}

func TestReduceIdempotent(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "feat.csv", "a,b,c\n0,1,0.0\n0,2,0\n")

	once := filepath.Join(dir, "once.csv")
	require.NoError(t, Reduce(src, once))
	twice := filepath.Join(dir, "twice.csv")
	require.NoError(t, Reduce(once, twice))

	onceAttrs, onceRows := readTable(t, once)
	twiceAttrs, twiceRows := readTable(t, twice)
	assert.Equal(t, onceAttrs, twiceAttrs)
	assert.Equal(t, onceRows, twiceRows)
}

func TestReduceCrossFormat(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "feat.arff",
		"@relation 'Deep Spectrum Features'\n"+
			"@attribute name string\n@attribute n0 numeric\n@attribute n1 numeric\n@attribute class {a,b}\n"+
			"@data\nx.wav,0,1.5,a\ny.wav,0.0,2.5,b\n")
	dst := filepath.Join(dir, "feat.csv")

	require.NoError(t, Reduce(src, dst))

	attrs, rows := readTable(t, dst)
	require.Equal(t, []table.Attribute{{Name: "name"}, {Name: "n1"}, {Name: "class"}}, attrs)
	assert.Equal(t, [][]string{{"x.wav", "1.5", "a"}, {"y.wav", "2.5", "b"}}, rows)
}

func TestReduceARFFKeepsRelationAndTypes(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "feat.arff",
		"@relation Features\n@attribute n0 numeric\n@attribute class {a,b}\n@data\n0,a\n0.0,b\n")
	dst := filepath.Join(dir, "out.arff")

	require.NoError(t, Reduce(src, dst))

	r, err := table.Open(dst, table.FormatARFF)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "Reduced Features", r.Relation())
	assert.Equal(t, []table.Attribute{table.Nominal("class", "a", "b")}, r.Attributes())
}

func TestReduceMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := Reduce(filepath.Join(dir, "nope.csv"), filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReduceBatchUsesFirstFileAsReference(t *testing.T) {
	dir := t.TempDir()
	// Columns 0 and 2 are constant zero in A; only column 2 is in B.
	a := writeFile(t, dir, "a.csv", "a,b,c\n0,1,0\n0.0,2,0.0\n")
	b := writeFile(t, dir, "b.csv", "a,b,c\n7,1,0\n8,2,0\n")

	require.NoError(t, ReduceBatch([]string{a, b}, 2))

	_, aRows := readTable(t, ReducedPath(a))
	assert.Equal(t, [][]string{{"1"}, {"2"}}, aRows)

	// Column 0 is not constant in B but is dropped anyway.
	bAttrs, bRows := readTable(t, ReducedPath(b))
	require.Equal(t, []table.Attribute{{Name: "b"}}, bAttrs)
	assert.Equal(t, [][]string{{"1"}, {"2"}}, bRows)
}

func TestReduceBatchIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "a,b\n0,1\n")
	missing := filepath.Join(dir, "missing.csv")
	c := writeFile(t, dir, "c.csv", "a,b\n0,2\n")

	err := ReduceBatch([]string{a, missing, c}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// The good files still produced output.
	_, aRows := readTable(t, ReducedPath(a))
	assert.Equal(t, [][]string{{"1"}}, aRows)
	_, cRows := readTable(t, ReducedPath(c))
	assert.Equal(t, [][]string{{"2"}}, cRows)
}

func TestReduceBatchBadReferenceAborts(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.csv")
	b := writeFile(t, dir, "b.csv", "a\n1\n")

	err := ReduceBatch([]string{missing, b}, 1)
	require.Error(t, err)

	_, statErr := os.Stat(ReducedPath(b))
	assert.True(t, os.IsNotExist(statErr))
}

func TestReduceBatchEmpty(t *testing.T) {
	require.NoError(t, ReduceBatch(nil, 4))
}
