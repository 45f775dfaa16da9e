// pkg/archive/archive_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testutil.MemoryFS
// PURPOSE: Test archive extraction, layout detection, and corruption handling

package archive_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandpress/sandpress/pkg/archive"
	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/testutil"
)

// buildZip assembles a zip archive in memory. Entries ending in "/" are
// directories.
func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		if name[len(name)-1] == '/' {
			_, err := w.Create(name)
			require.NoError(t, err)
			continue
		}
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func buildTarGz(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range entries {
		if name[len(name)-1] == '/' {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name: name, Typeflag: tar.TypeDir, Mode: 0755,
			}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name, Typeflag: tar.TypeReg, Mode: 0644, Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestExtractZip(t *testing.T) {
	m := testutil.NewMemoryFS()
	data := buildZip(t, map[string]string{
		"wordpress/index.php":               "<?php",
		"wordpress/wp-includes/version.php": "$wp_version = '6.5.2';",
		"wordpress/wp-content/uploads/":     "",
	})
	testutil.MustWriteFile(t, m, "/cache/wp.zip", string(data))

	require.NoError(t, archive.Extract(m, "/cache/wp.zip", "/cache/extract"))

	assert.Equal(t, "<?php", testutil.MustReadFile(t, m, "/cache/extract/wordpress/index.php"))
	info, err := m.Stat("/cache/extract/wordpress/wp-content/uploads")
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "empty directories must survive extraction")
}

func TestExtractTarGz(t *testing.T) {
	m := testutil.NewMemoryFS()
	data := buildTarGz(t, map[string]string{
		"wordpress/":          "",
		"wordpress/index.php": "<?php",
	})
	testutil.MustWriteFile(t, m, "/cache/wp.tar.gz", string(data))

	require.NoError(t, archive.Extract(m, "/cache/wp.tar.gz", "/cache/extract"))
	assert.Equal(t, "<?php", testutil.MustReadFile(t, m, "/cache/extract/wordpress/index.php"))
}

func TestExtractCorrupt(t *testing.T) {
	m := testutil.NewMemoryFS()
	testutil.MustWriteFile(t, m, "/cache/bad.zip", "PK\x03\x04 this is not a real zip")

	err := archive.Extract(m, "/cache/bad.zip", "/cache/extract")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveRead))
}

func TestExtractUnknownFormat(t *testing.T) {
	m := testutil.NewMemoryFS()
	testutil.MustWriteFile(t, m, "/cache/odd.bin", "neither zip nor gzip")

	err := archive.Extract(m, "/cache/odd.bin", "/cache/extract")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveRead))
}

func TestExtractRejectsTraversal(t *testing.T) {
	m := testutil.NewMemoryFS()
	data := buildZip(t, map[string]string{"../evil.php": "<?php"})
	testutil.MustWriteFile(t, m, "/cache/evil.zip", string(data))

	err := archive.Extract(m, "/cache/evil.zip", "/cache/extract")
	require.Error(t, err)
}

func TestSingleRoot(t *testing.T) {
	m := testutil.NewMemoryFS()
	testutil.MustWriteFile(t, m, "/x/sqlite-database-integration-2.1.11/db.copy", "template")

	root, err := archive.SingleRoot(m, "/x")
	require.NoError(t, err)
	assert.Equal(t, "/x/sqlite-database-integration-2.1.11", root)
}

func TestSingleRootLayoutError(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, m *testutil.MemoryFS)
	}{
		{
			name: "two entries",
			setup: func(t *testing.T, m *testutil.MemoryFS) {
				testutil.MustWriteFile(t, m, "/x/a/f", "1")
				testutil.MustWriteFile(t, m, "/x/stray.txt", "2")
			},
		},
		{
			name: "single file instead of directory",
			setup: func(t *testing.T, m *testutil.MemoryFS) {
				testutil.MustWriteFile(t, m, "/x/only.txt", "1")
			},
		},
		{
			name: "empty",
			setup: func(t *testing.T, m *testutil.MemoryFS) {
				require.NoError(t, m.MkdirAll("/x", 0755))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testutil.NewMemoryFS()
			tt.setup(t, m)
			_, err := archive.SingleRoot(m, "/x")
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrArchiveLayout))
		})
	}
}
