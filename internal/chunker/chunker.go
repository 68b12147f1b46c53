package chunker

import (
	"errors"

	"rfpqa/internal/domain"
)

// Splitter cuts text into overlapping character windows, preferring to break
// at a paragraph boundary, then at a sentence boundary, before falling back
// to a hard cut. Offsets are rune-based so multi-byte text chunks cleanly.
type Splitter struct {
	maxSize int
	overlap int
}

// New validates the window parameters and returns a Splitter.
func New(maxSize, overlap int) (*Splitter, error) {
	if maxSize <= 0 {
		return nil, errors.New("chunk size must be > 0")
	}
	if overlap < 0 || overlap >= maxSize {
		return nil, errors.New("overlap must be >= 0 and < chunk size")
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}, nil
}

// Split scans the text left to right producing ordered chunks. Consecutive
// chunks overlap by exactly the configured amount except possibly the last
// pair, and together the chunks cover every rune of the input.
func (s *Splitter) Split(text string) []domain.Chunk {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var chunks []domain.Chunk
	start := 0
	for idx := 0; start < n; idx++ {
		end := start + s.maxSize
		if end > n {
			end = n
		}
		if end < n {
			// Never break before the window midpoint, and never accept a
			// break the overlap would swallow: either way the next window
			// would not move forward.
			floor := start + s.maxSize/2
			if cut := lastPair(runes, '\n', '\n', start, end); cut > floor && cut-s.overlap > start {
				end = cut
			} else if cut := lastPair(runes, '.', ' ', start, end); cut > floor && cut+1-s.overlap > start {
				end = cut + 1 // keep the period
			}
		}
		chunks = append(chunks, domain.Chunk{
			Index: idx,
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
		if end == n {
			break
		}
		start = end - s.overlap
	}
	return chunks
}

// lastPair returns the highest i in [start, end-2] where runes[i] == a and
// runes[i+1] == b, or -1.
func lastPair(runes []rune, a, b rune, start, end int) int {
	for i := end - 2; i >= start; i-- {
		if runes[i] == a && runes[i+1] == b {
			return i
		}
	}
	return -1
}
