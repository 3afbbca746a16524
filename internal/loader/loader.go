// Package loader builds blob batches from a directory tree.
package loader

import (
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
)

// DefaultContentType is used when neither the extension nor the content
// identify the blob.
const DefaultContentType = "application/octet-stream"

// sniffLen matches the amount of data http.DetectContentType considers.
const sniffLen = 512

// Load walks root on fsys and returns one blob per regular file.
// Keys are the slash-separated path relative to root, joined to prefix.
// Blobs are returned in lexical path order.
func Load(fsys billy.Filesystem, root, prefix string) ([]blobtypes.Blob, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, errors.NewError("load", fmt.Errorf("stat %q: %w", root, err))
	}
	if !info.IsDir() {
		return nil, errors.NewError("load", errors.ErrInvalidInput).
			WithMessage(fmt.Sprintf("%q is not a directory", root))
	}

	var blobs []blobtypes.Blob
	walkErr := util.Walk(fsys, root, func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, name)
		if err != nil {
			return fmt.Errorf("relative path of %q: %w", name, err)
		}

		content, err := util.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %q: %w", name, err)
		}

		key := ObjectKey(prefix, rel)
		blobs = append(blobs, blobtypes.Blob{
			Path:    key,
			Mime:    DetectContentType(key, content),
			Content: content,
		})
		return nil
	})
	if walkErr != nil {
		return nil, errors.NewError("load", walkErr)
	}

	return blobs, nil
}

// ObjectKey joins prefix and a filesystem-relative path into an object key.
func ObjectKey(prefix, rel string) string {
	rel = filepath.ToSlash(rel)
	prefix = strings.Trim(filepath.ToSlash(prefix), "/")
	if prefix == "" {
		return rel
	}
	return path.Join(prefix, rel)
}

// DetectContentType picks a content type from the extension of name, falling
// back to sniffing content.
func DetectContentType(name string, content []byte) string {
	if ext := strings.ToLower(path.Ext(name)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	if len(content) == 0 {
		return DefaultContentType
	}
	if len(content) > sniffLen {
		content = content[:sniffLen]
	}
	if mt := mimetype.Detect(content); mt != nil {
		return mt.String()
	}

	return DefaultContentType
}
