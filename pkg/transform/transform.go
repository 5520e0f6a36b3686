// Package transform applies one-way hash encodings to wordlist values.
// Hashes are used to produce test data, no salting or iterations.
package transform

import (
	"crypto/md5"  //nolint:gosec // not used for security
	"crypto/sha1" //nolint:gosec // not used for security
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"strings"

	"golang.org/x/crypto/md4" //nolint:staticcheck // md4 is a supported output format

	"github.com/umputun/wordsql/pkg/schema"
)

// Apply returns value encoded with the given transform as upper-case hex digest.
// TransformNone returns value as is.
func Apply(value string, kind schema.Transform) string {
	var h hash.Hash
	switch kind {
	case schema.TransformMD4:
		h = md4.New()
	case schema.TransformMD5:
		h = md5.New() //nolint:gosec
	case schema.TransformSHA1:
		h = sha1.New() //nolint:gosec
	case schema.TransformSHA256:
		h = sha256.New()
	case schema.TransformSHA512:
		h = sha512.New()
	default:
		return value
	}
	h.Write([]byte(value)) // nolint hash.Write never fails
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}
