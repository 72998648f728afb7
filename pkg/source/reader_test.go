package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gorazor/pkg/source"
)

func TestReader_Empty(t *testing.T) {
	t.Parallel()

	reader := source.NewReader(source.NewDocumentFromString("", ""))

	assert.True(t, reader.EOF())
	assert.Equal(t, source.EOF, reader.Peek())
	assert.Equal(t, source.Location{}, reader.Location())

	reader.Seek(10)
	assert.Equal(t, 0, reader.Offset())
}

func TestReader_ReadPastEnd(t *testing.T) {
	t.Parallel()

	reader := source.NewReader(source.NewDocumentFromString("", "ab"))

	assert.Equal(t, 'a', reader.Read())
	assert.Equal(t, 'b', reader.Read())
	for range 3 {
		assert.Equal(t, source.EOF, reader.Read())
	}
	assert.Equal(t, 2, reader.Offset())
	assert.True(t, reader.EOF())
}

func TestReader_TracksLines(t *testing.T) {
	t.Parallel()

	doc := source.NewDocumentFromString("", "a\r\nbc\nd")
	reader := source.NewReader(doc)

	var locations []source.Location
	for !reader.EOF() {
		reader.Read()
		locations = append(locations, reader.Location())
	}

	assert.Equal(t, []source.Location{
		{Offset: 1, Line: 0, Column: 1},
		{Offset: 2, Line: 0, Column: 2},
		{Offset: 3, Line: 1, Column: 0},
		{Offset: 4, Line: 1, Column: 1},
		{Offset: 5, Line: 1, Column: 2},
		{Offset: 6, Line: 2, Column: 0},
		{Offset: 7, Line: 2, Column: 1},
	}, locations)

	// Every location tracked incrementally matches the index lookup.
	for _, loc := range locations {
		assert.Equal(t, doc.Location(loc.Offset), loc)
	}
}

func TestReader_PeekDoesNotConsume(t *testing.T) {
	t.Parallel()

	reader := source.NewReader(source.NewDocumentFromString("", "héllo"))

	assert.Equal(t, 'h', reader.Peek())
	assert.Equal(t, 'é', reader.PeekAt(1))
	assert.Equal(t, 'l', reader.PeekAt(2))
	assert.Equal(t, source.EOF, reader.PeekAt(10))
	assert.Equal(t, 0, reader.Offset())
	assert.True(t, reader.HasPrefix("hé"))
	assert.False(t, reader.HasPrefix("hello"))
}

func TestReader_Seek(t *testing.T) {
	t.Parallel()

	reader := source.NewReader(source.NewDocumentFromString("", "ab\ncd"))

	reader.Seek(4)
	assert.Equal(t, source.Location{Offset: 4, Line: 1, Column: 1}, reader.Location())
	assert.Equal(t, 'd', reader.Read())

	reader.Seek(-1)
	assert.Equal(t, source.Location{}, reader.Location())
}
