package server

import (
	"strings"

	"github.com/codegraphls/codegraphls/internal/lserr"
)

const fileScheme = "file://"

// uriToPath converts an editor-protocol "file://" URI to a filesystem path.
// Only the file scheme is supported; anything else is InvalidUri.
func uriToPath(uri string) (string, error) {
	if !strings.HasPrefix(uri, fileScheme) {
		return "", lserr.New(lserr.InvalidUri, "unsupported URI scheme: "+uri)
	}
	path := strings.TrimPrefix(uri, fileScheme)
	if path == "" {
		return "", lserr.New(lserr.InvalidUri, "empty URI path: "+uri)
	}
	return path, nil
}

// pathToURI converts a filesystem path to a "file://" URI.
func pathToURI(path string) string {
	return fileScheme + path
}
