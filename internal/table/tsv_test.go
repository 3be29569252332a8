package table

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSV = "entity:sample_id\tbam\tnotes\treads\n" +
	"s1\tgs://bkt/x.bam\thello\t[\"gs://bkt/a.fq\",\"gs://bkt/b.fq\"]\n" +
	"s2\tgs://other/y.bam\t\t[1,2]\n"

func TestReadTSV(t *testing.T) {
	tbl, err := ReadTSV(strings.NewReader(sampleTSV))
	require.NoError(t, err)

	assert.Equal(t, "sample", tbl.Name)
	assert.Equal(t, []string{"s1", "s2"}, tbl.Rows)
	assert.Equal(t, []string{"bam", "notes", "reads"}, tbl.Columns)

	assert.Equal(t, KindLocator, Classify(tbl.Cell("s1", "bam"), "gs").Kind)
	assert.Equal(t, KindScalar, Classify(tbl.Cell("s1", "notes"), "gs").Kind)
	assert.Equal(t, KindEmpty, Classify(tbl.Cell("s2", "notes"), "gs").Kind)

	reads := Classify(tbl.Cell("s1", "reads"), "gs")
	assert.Equal(t, KindLocatorList, reads.Kind)
	assert.Equal(t, []string{"gs://bkt/a.fq", "gs://bkt/b.fq"}, reads.Locators)

	nums := Classify(tbl.Cell("s2", "reads"), "gs")
	assert.Equal(t, KindScalarList, nums.Kind)
	assert.Equal(t, []string{"1", "2"}, nums.Scalars)
}

func TestReadTSVBracketText(t *testing.T) {
	tbl, err := ReadTSV(strings.NewReader("sample_id\tnote\ns1\t[not json\n"))
	require.NoError(t, err)

	cell := Classify(tbl.Cell("s1", "note"), "gs")
	assert.Equal(t, KindScalar, cell.Kind)
	assert.Equal(t, []string{"[not json"}, cell.Scalars)
}

func TestReadTSVErrors(t *testing.T) {
	_, err := ReadTSV(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrBadHeader))

	_, err = ReadTSV(strings.NewReader("sample_id\tbam\ns1\ta\ns1\tb\n"))
	assert.ErrorContains(t, err, "duplicate row")

	_, err = ReadTSV(strings.NewReader("sample_id\tbam\ns1\ta\textra\n"))
	assert.Error(t, err)
}

func TestReadTSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.tsv")
	require.NoError(t, os.WriteFile(path, []byte(sampleTSV), 0644))

	tbl, err := ReadTSVFile(path)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)

	_, err = ReadTSVFile(filepath.Join(t.TempDir(), "missing.tsv"))
	assert.Error(t, err)
}
