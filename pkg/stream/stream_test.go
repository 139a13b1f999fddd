package stream

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferSource(t *testing.T) {
	t.Run("clamps reads to remaining bytes", func(t *testing.T) {
		src := NewBufferSource([]byte{1, 2, 3})
		buf := make([]byte, 8)

		n, err := src.Read(buf)
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.Equal(t, []byte{1, 2, 3}, buf[:n])
		require.True(t, src.EOF())
	})

	t.Run("advances cursor by amount read", func(t *testing.T) {
		src := NewBufferSource([]byte{1, 2, 3, 4})
		buf := make([]byte, 2)

		n, err := src.Read(buf)
		require.NoError(t, err)
		require.Equal(t, 2, n)
		require.Equal(t, 2, src.Remaining())
		require.False(t, src.EOF())

		n, err = src.Read(buf)
		require.NoError(t, err)
		require.Equal(t, 2, n)
		require.Equal(t, []byte{3, 4}, buf)
		require.True(t, src.EOF())
	})

	t.Run("read past end returns EOF", func(t *testing.T) {
		src := NewBufferSource([]byte{9})
		buf := make([]byte, 1)
		_, err := src.Read(buf)
		require.NoError(t, err)

		n, err := src.Read(buf)
		require.Equal(t, 0, n)
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("empty buffer is immediately at EOF", func(t *testing.T) {
		src := NewBufferSource(nil)
		require.True(t, src.EOF())
		require.Equal(t, 0, src.Remaining())
	})
}

func TestFileSource(t *testing.T) {
	t.Run("reads sequentially and latches EOF", func(t *testing.T) {
		src := NewFileSource(strings.NewReader("abcdef"))
		require.False(t, src.EOF())

		buf := make([]byte, 4)
		n, err := src.Read(buf)
		require.NoError(t, err)
		require.Equal(t, 4, n)
		require.Equal(t, "abcd", string(buf[:n]))

		n, _ = src.Read(buf)
		require.Equal(t, 2, n)
		require.Equal(t, "ef", string(buf[:n]))

		n, err = src.Read(buf)
		require.Equal(t, 0, n)
		require.ErrorIs(t, err, io.EOF)
		require.True(t, src.EOF())
	})
}
