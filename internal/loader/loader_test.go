package loader

import (
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
)

func TestLoad(t *testing.T) {
	fsys := memfs.New()
	files := map[string]string{
		"site/index.html":            "<html><body>docs</body></html>",
		"site/crates/serde.json":     `{"name": "serde"}`,
		"site/crates/tokio/meta.txt": "tokio",
		"site/blob":                  "%PDF-1.7\n...",
		"outside.txt":                "not loaded",
	}
	for name, content := range files {
		require.NoError(t, util.WriteFile(fsys, name, []byte(content), 0o644))
	}
	require.NoError(t, fsys.MkdirAll("site/empty", 0o755))

	tests := []struct {
		name     string
		prefix   string
		wantKeys []string
	}{
		{
			name:     "no prefix",
			prefix:   "",
			wantKeys: []string{"blob", "crates/serde.json", "crates/tokio/meta.txt", "index.html"},
		},
		{
			name:     "prefix with slashes",
			prefix:   "/docs/v1/",
			wantKeys: []string{"docs/v1/blob", "docs/v1/crates/serde.json", "docs/v1/crates/tokio/meta.txt", "docs/v1/index.html"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs, err := Load(fsys, "site", tt.prefix)
			require.NoError(t, err)

			keys := make([]string, len(blobs))
			for i, b := range blobs {
				keys[i] = b.Path
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}

	blobs, err := Load(fsys, "site", "")
	require.NoError(t, err)
	byKey := make(map[string]string, len(blobs))
	for _, b := range blobs {
		byKey[b.Path] = b.Mime
	}
	assert.Equal(t, "application/json", byKey["crates/serde.json"])
	assert.True(t, strings.HasPrefix(byKey["index.html"], "text/html"))
	assert.True(t, strings.HasPrefix(byKey["crates/tokio/meta.txt"], "text/plain"))
	assert.Equal(t, "application/pdf", byKey["blob"])
	assert.Equal(t, []byte(`{"name": "serde"}`), blobs[1].Content)
}

func TestLoad_Errors(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "file.txt", []byte("x"), 0o644))

	_, err := Load(fsys, "missing", "")
	require.Error(t, err)

	_, err = Load(fsys, "file.txt", "")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestLoad_EmptyDirectory(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, fsys.MkdirAll("empty", 0o755))

	blobs, err := Load(fsys, "empty", "")
	require.NoError(t, err)
	assert.Empty(t, blobs)
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		content []byte
		want    string
	}{
		{name: "json extension", key: "a.json", content: []byte("{}"), want: "application/json"},
		{name: "uppercase extension", key: "A.JSON", content: nil, want: "application/json"},
		{name: "sniffed png", key: "image", content: []byte("\x89PNG\r\n\x1a\n0000"), want: "image/png"},
		{name: "unknown extension sniffed", key: "data.zzz-unknown", content: []byte("\x89PNG\r\n\x1a\n0000"), want: "image/png"},
		{name: "empty content", key: "empty", content: nil, want: DefaultContentType},
		{name: "binary", key: "bin", content: []byte{0x00, 0x01, 0x02, 0xff}, want: DefaultContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType(tt.key, tt.content))
		})
	}
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "a/b.json", ObjectKey("", "a/b.json"))
	assert.Equal(t, "p/a/b.json", ObjectKey("p", "a/b.json"))
	assert.Equal(t, "p/q/a", ObjectKey("/p/q/", "a"))
}
