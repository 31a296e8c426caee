package util

import (
	"github.com/gosimple/slug"
)

// Slugify converts a display name into a URL-safe slug.
// Brand and category creation is idempotent by slug, so the output
// must be stable for the same input.
func Slugify(name string) string {
	return slug.Make(name)
}
