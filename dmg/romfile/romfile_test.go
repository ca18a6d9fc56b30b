package romfile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var romBytes = []byte{0x3E, 0x42, 0x18, 0xFE}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadPlain(t *testing.T) {
	path := writeTemp(t, "game.gb", romBytes)

	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, romBytes, data)
}

func TestLoadZipPicksROMEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("not a rom"))
	require.NoError(t, err)
	w, err = zw.Create("game.gb")
	require.NoError(t, err)
	_, err = w.Write(romBytes)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := writeTemp(t, "game.zip", buf.Bytes())

	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, romBytes, data)
}

func TestLoadZipFallsBackToFirstEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("whatever.dat")
	require.NoError(t, err)
	_, err = w.Write(romBytes)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := writeTemp(t, "game.zip", buf.Bytes())

	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, romBytes, data)
}

func TestLoadGzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(romBytes)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	path := writeTemp(t, "game.gb.gz", buf.Bytes())

	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, romBytes, data)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.gb"))
	assert.Error(t, err)
}

func TestLoadEmptyZip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, zip.NewWriter(&buf).Close())

	path := writeTemp(t, "empty.zip", buf.Bytes())

	_, err := Load(path)
	assert.ErrorIs(t, err, errEmptyArchive)
}
