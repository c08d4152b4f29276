package compare

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// inlineDiff renders a character-level diff of two texts in a compact
// bracket notation: deletions as [-text-], insertions as {+text+}.
func inlineDiff(oldText, newText string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var builder strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			builder.WriteString("[-")
			builder.WriteString(d.Text)
			builder.WriteString("-]")
		case diffmatchpatch.DiffInsert:
			builder.WriteString("{+")
			builder.WriteString(d.Text)
			builder.WriteString("+}")
		default:
			builder.WriteString(d.Text)
		}
	}
	return builder.String()
}
