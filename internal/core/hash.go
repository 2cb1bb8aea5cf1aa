package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// DocumentETag derives a weak validator for a composed document so preview
// reloads of an unchanged document can be answered with 304.
func DocumentETag(doc string) string {
	sum := sha256.Sum256([]byte(doc))
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}
