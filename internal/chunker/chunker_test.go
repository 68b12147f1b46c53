package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 1000, 200, false},
		{"zero overlap", 100, 0, false},
		{"zero size", 0, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s, err := New(100, 20)
	require.NoError(t, err)

	chunks := s.Split("short text")
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len("short text"), chunks[0].End)
	assert.Equal(t, "short text", chunks[0].Text)
}

func TestSplitEmptyText(t *testing.T) {
	s, err := New(100, 20)
	require.NoError(t, err)
	assert.Empty(t, s.Split(""))
}

func TestSplitHardBreakWindows(t *testing.T) {
	s, err := New(10, 3)
	require.NoError(t, err)

	text := strings.Repeat("a", 25)
	chunks := s.Split(text)
	require.Len(t, chunks, 4)

	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 10, chunks[0].End)
	assert.Equal(t, 7, chunks[1].Start)
	assert.Equal(t, 17, chunks[1].End)
	assert.Equal(t, 14, chunks[2].Start)
	assert.Equal(t, 24, chunks[2].End)
	assert.Equal(t, 21, chunks[3].Start)
	assert.Equal(t, 25, chunks[3].End)
}

func TestSplitPrefersParagraphBreak(t *testing.T) {
	s, err := New(100, 10)
	require.NoError(t, err)

	text := strings.Repeat("x", 60) + "\n\n" + strings.Repeat("y", 60)
	chunks := s.Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("x", 60), chunks[0].Text)
	assert.Equal(t, 50, chunks[1].Start)
	assert.Equal(t, len([]rune(text)), chunks[1].End)
}

func TestSplitFallsBackToSentenceBreak(t *testing.T) {
	s, err := New(100, 10)
	require.NoError(t, err)

	text := strings.Repeat("a", 60) + ". " + strings.Repeat("b", 60)
	chunks := s.Split(text)
	require.Len(t, chunks, 2)
	// cut lands just after the period
	assert.True(t, strings.HasSuffix(chunks[0].Text, "."))
	assert.Equal(t, 61, chunks[0].End)
}

func TestSplitIgnoresBreaksBeforeMidpoint(t *testing.T) {
	s, err := New(100, 10)
	require.NoError(t, err)

	// Both candidate breaks sit in the first half of the window, so the
	// splitter must hard-cut at the window edge instead.
	text := "ab.\n\n" + strings.Repeat("c", 200)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)
	assert.Equal(t, 100, chunks[0].End)
}

func TestSplitCoversInputWithExactOverlap(t *testing.T) {
	s, err := New(50, 10)
	require.NoError(t, err)

	text := strings.Repeat("word ", 100) // 500 chars, no sentence breaks
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len([]rune(text)), chunks[len(chunks)-1].End)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, i, chunks[i].Index)
		overlap := chunks[i-1].End - chunks[i].Start
		if i < len(chunks)-1 {
			assert.Equal(t, 10, overlap, "chunk %d", i)
		} else {
			assert.GreaterOrEqual(t, overlap, 0, "last chunk must not leave a gap")
		}
	}
}

func TestSplitLargeOverlapKeepsForwardProgress(t *testing.T) {
	// overlap > maxSize/2 can swallow a sentence break that sits just past
	// the midpoint; such a break must be skipped or the window would move
	// backward and the scan would never reach the end of the text.
	s, err := New(10, 8)
	require.NoError(t, err)

	text := "aaaaaa. " + strings.Repeat("b", 50)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len([]rune(text)), chunks[len(chunks)-1].End)
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].Start, chunks[i-1].Start, "chunk %d", i)
		assert.LessOrEqual(t, chunks[i].Start, chunks[i-1].End, "chunk %d must not leave a gap", i)
	}
}

func TestSplitLargeOverlapWithParagraphBreaks(t *testing.T) {
	s, err := New(20, 15)
	require.NoError(t, err)

	text := strings.Repeat("para text.\n\n", 12)
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	assert.Equal(t, len([]rune(text)), chunks[len(chunks)-1].End)
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].Start, chunks[i-1].Start, "chunk %d", i)
	}
}

func TestSplitDeterministic(t *testing.T) {
	s, err := New(80, 15)
	require.NoError(t, err)

	text := "First paragraph here.\n\nSecond paragraph with more words. " +
		strings.Repeat("filler sentence. ", 20)
	first := s.Split(text)
	second := s.Split(text)
	assert.Equal(t, first, second)
}

func TestSplitRuneOffsets(t *testing.T) {
	s, err := New(4, 1)
	require.NoError(t, err)

	text := strings.Repeat("é", 10)
	chunks := s.Split(text)
	require.Len(t, chunks, 3)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len([]rune(ch.Text)), 4)
	}
	assert.Equal(t, "éééé", chunks[0].Text)
	assert.Equal(t, 3, chunks[1].Start)
	assert.Equal(t, 10, chunks[2].End)
}
