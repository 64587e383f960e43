// Package fingerprint identifies items by content, so that two items sharing
// an ID can be told apart as copies or conflicts.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/orgdrill/internal/domain"
)

// Normalize joins the item's kind, front and back after lowercasing and
// trimming each part and normalising line endings.
func Normalize(item domain.Item) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return strings.TrimSpace(p)
	}

	return strings.Join([]string{
		item.Ref().Kind.String(),
		normalizePart(item.Front()),
		normalizePart(item.Back()),
	}, "\n")
}

// Of returns the hex SHA-256 of the normalized item.
func Of(item domain.Item) string {
	sum := sha256.Sum256([]byte(Normalize(item)))
	return fmt.Sprintf("%x", sum)
}

// Same reports whether two items carry the same content. Subjects are not
// compared: the same item moved under another heading is still a copy.
func Same(a, b domain.Item) bool {
	return Of(a) == Of(b)
}
