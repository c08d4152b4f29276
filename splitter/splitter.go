package splitter

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators is the boundary priority list: paragraph breaks,
// line breaks, sentence ends, clauses, words. A hard character cut is
// the final fallback when no separator produces small enough units.
var defaultSeparators = []string{"\n\n", "\n", ". ", ", ", " "}

// Splitter turns long text into an ordered sequence of overlapping chunks.
// It is pure text-to-text and has no dependency on extraction or embedding.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// New creates a Splitter. chunkSize is the maximum chunk length in runes
// and must be positive; overlap is the maximum number of trailing runes
// carried into the next chunk and must satisfy 0 <= overlap < chunkSize.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, ErrInvalidOverlap
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// Split splits text into ordered chunks of at most chunkSize runes.
// Consecutive chunks overlap by at most the configured overlap, rounded
// down to a unit boundary. Separators stay attached to the unit they
// terminate, so concatenating chunks (minus overlap regions) reproduces
// the input. Empty or whitespace-only input yields no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if runeLen(text) <= s.chunkSize {
		return []string{text}
	}
	return s.split(text, 0)
}

// split recursively splits text using the separator at sepIdx,
// falling back to finer separators and finally a hard character cut.
func (s *Splitter) split(text string, sepIdx int) []string {
	if runeLen(text) <= s.chunkSize {
		return []string{text}
	}
	if sepIdx >= len(s.separators) {
		return s.splitByCharacters(text)
	}

	units := splitAfter(text, s.separators[sepIdx])
	if len(units) <= 1 {
		// Separator absent, try the next finer one
		return s.split(text, sepIdx+1)
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, unit := range units {
		unitLen := runeLen(unit)

		if currentLen > 0 && currentLen+unitLen > s.chunkSize {
			chunks = append(chunks, strings.Join(current, ""))

			// Carry trailing units up to the overlap budget into the next chunk
			current, currentLen = s.overlapTail(current)
		}

		current = append(current, unit)
		currentLen += unitLen
	}

	if currentLen > 0 {
		chunks = append(chunks, strings.Join(current, ""))
	}

	// A single unit can still exceed the chunk size; refine it with the
	// next separator so no chunk silently stays oversized.
	var final []string
	for _, chunk := range chunks {
		if runeLen(chunk) > s.chunkSize {
			final = append(final, s.split(chunk, sepIdx+1)...)
		} else {
			final = append(final, chunk)
		}
	}
	return final
}

// overlapTail returns the trailing units of a closed chunk whose total
// length fits the overlap budget, with their combined rune length.
// Rounding to whole units keeps the actual overlap <= the configured one.
func (s *Splitter) overlapTail(units []string) ([]string, int) {
	total := 0
	start := len(units)
	for start > 0 {
		l := runeLen(units[start-1])
		if total+l > s.overlap {
			break
		}
		total += l
		start--
	}
	if start == len(units) {
		return nil, 0
	}
	tail := make([]string, len(units)-start)
	copy(tail, units[start:])
	return tail, total
}

// splitByCharacters is the last-resort hard cut, stepping by
// chunkSize-overlap runes so consecutive pieces overlap by exactly
// the configured overlap.
func (s *Splitter) splitByCharacters(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// splitAfter splits text on sep keeping the separator attached to the
// preceding unit, dropping empty trailing units.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	units := parts[:0]
	for _, p := range parts {
		if p != "" {
			units = append(units, p)
		}
	}
	return units
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
