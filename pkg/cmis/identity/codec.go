// Package identity maps object identifiers to filesystem paths.
//
// An identifier is either the root sentinel cmis.RootID or the standard
// base64 encoding of the repository path bytes ("/docs/a.txt"). Names need
// not be valid UTF-8. Repository paths always use "/" and are relative to the
// repository root.
package identity

import (
	"bytes"
	"encoding/base64"
	"path"
	"path/filepath"
	"strings"

	"github.com/marmos91/filebridge/pkg/cmis"
)

// Encode returns the identifier of a repository path. "/" and "" map to the
// root sentinel.
func Encode(repoPath string) string {
	if repoPath == "" || repoPath == "/" {
		return cmis.RootID
	}
	if !strings.HasPrefix(repoPath, "/") {
		repoPath = "/" + repoPath
	}
	return base64.StdEncoding.EncodeToString([]byte(repoPath))
}

// Decode returns the canonical repository path of id.
//
// An empty id fails with ErrInvalidArgument. Every other failure, including
// paths that would climb above the root, is reported as ErrNotFound.
func Decode(id string) (string, error) {
	if id == "" {
		return "", cmis.NewError(cmis.ErrInvalidArgument, "id is not valid")
	}
	if id == cmis.RootID {
		return "/", nil
	}

	raw, err := base64.StdEncoding.DecodeString(id)
	if err != nil {
		return "", cmis.WrapError(cmis.ErrNotFound, err, "object not found")
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return "", cmis.NewError(cmis.ErrNotFound, "object not found")
	}

	rel := path.Clean(strings.TrimLeft(string(raw), "/"))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", &cmis.Error{Code: cmis.ErrNotFound, Message: "object not found", Path: string(raw)}
	}
	if rel == "." {
		return "/", nil
	}
	return "/" + rel, nil
}

// Codec binds identifiers to the filesystem below one root directory.
type Codec struct {
	root string
}

// New creates a codec for root. root is made absolute and cleaned.
func New(root string) (*Codec, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Codec{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute root directory.
func (c *Codec) Root() string {
	return c.root
}

// IsRoot reports whether fsPath is the root directory.
func (c *Codec) IsRoot(fsPath string) bool {
	return filepath.Clean(fsPath) == c.root
}

// Path resolves id to an absolute filesystem path. No existence check is made.
func (c *Codec) Path(id string) (string, error) {
	repoPath, err := Decode(id)
	if err != nil {
		return "", err
	}
	return c.FromRepositoryPath(repoPath), nil
}

// ID returns the identifier of a filesystem path below the root.
func (c *Codec) ID(fsPath string) (string, error) {
	repoPath, err := c.RepositoryPath(fsPath)
	if err != nil {
		return "", err
	}
	return Encode(repoPath), nil
}

// RepositoryPath converts a filesystem path below the root into a repository
// path. The root itself is "/".
func (c *Codec) RepositoryPath(fsPath string) (string, error) {
	rel, err := filepath.Rel(c.root, filepath.Clean(fsPath))
	if err != nil {
		return "", cmis.WrapError(cmis.ErrRuntime, err, "path is outside the repository")
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", &cmis.Error{Code: cmis.ErrRuntime, Message: "path is outside the repository", Path: fsPath}
	}
	if rel == "." {
		return "/", nil
	}
	return "/" + rel, nil
}

// FromRepositoryPath joins a repository path onto the root.
func (c *Codec) FromRepositoryPath(repoPath string) string {
	return filepath.Join(c.root, filepath.FromSlash(strings.TrimPrefix(repoPath, "/")))
}
