package compare

import (
	"context"
	"fmt"
	"strings"

	"github.com/pagemark/revisor/core"
)

// maxNarratedText caps how much of a chunk's text goes into a prompt.
const maxNarratedText = 400

// SummarizeChanges asks the generator for a prose summary of a change
// set. The prompt is built from the structured records, not from the
// raw document texts.
func (c *Comparator) SummarizeChanges(ctx context.Context, changeSet *core.ChangeSet) (string, error) {
	if c.generator == nil {
		return "", ErrGeneratorRequired
	}

	var builder strings.Builder
	builder.WriteString("Summarize the differences between two versions of a document. ")
	builder.WriteString("Describe what was added, removed and reworded; ignore unchanged sections.\n\n")
	writeChangeSet(&builder, changeSet)
	builder.WriteString("\nSummary:")

	return c.generator.Generate(ctx, builder.String())
}

// QueryChanges answers a natural-language question about a change set.
func (c *Comparator) QueryChanges(ctx context.Context, changeSet *core.ChangeSet, question string) (string, error) {
	if c.generator == nil {
		return "", ErrGeneratorRequired
	}
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question", core.ErrEmptyInput)
	}

	var builder strings.Builder
	builder.WriteString("Answer the question using only the listed differences between two document versions.\n\n")
	writeChangeSet(&builder, changeSet)
	builder.WriteString("\nQuestion: ")
	builder.WriteString(question)

	return c.generator.Generate(ctx, builder.String())
}

func writeChangeSet(builder *strings.Builder, changeSet *core.ChangeSet) {
	unchanged, modified, added, removed := changeSet.Counts()
	fmt.Fprintf(builder, "Document %s, comparing %s to %s: %d unchanged, %d modified, %d added, %d removed.\n",
		changeSet.DocumentID, changeSet.OldVersion, changeSet.NewVersion,
		unchanged, modified, added, removed)

	for _, record := range changeSet.Records {
		switch record.Kind {
		case core.ChangeModified:
			fmt.Fprintf(builder, "- modified (chunk %d -> %d): %s\n",
				record.OldIndex, record.NewIndex, clip(record.Diff))
		case core.ChangeAdded:
			fmt.Fprintf(builder, "- added (chunk %d): %s\n",
				record.NewIndex, clip(record.NewText))
		case core.ChangeRemoved:
			fmt.Fprintf(builder, "- removed (chunk %d): %s\n",
				record.OldIndex, clip(record.OldText))
		}
	}
}

func clip(text string) string {
	runes := []rune(text)
	if len(runes) <= maxNarratedText {
		return text
	}
	return string(runes[:maxNarratedText]) + "..."
}
