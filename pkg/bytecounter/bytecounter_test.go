package bytecounter

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteCounter(t *testing.T) {
	bc := New(bytes.NewBuffer(nil), nil, nil)

	_, err := bc.Write([]byte{0x01, 0x02, 0x03, 0x04})
	require.NoError(t, err)

	buf := make([]byte, 2)
	_, err = bc.Read(buf)
	require.NoError(t, err)

	require.Equal(t, uint64(4), bc.BytesSent())
	require.Equal(t, uint64(2), bc.BytesReceived())
}

func TestByteCounterSharedCounters(t *testing.T) {
	var received atomic.Uint64
	var sent atomic.Uint64

	bc1 := New(bytes.NewBuffer([]byte{1, 2, 3}), &received, &sent)
	bc2 := New(bytes.NewBuffer([]byte{4, 5}), &received, &sent)

	buf := make([]byte, 8)
	_, err := bc1.Read(buf)
	require.NoError(t, err)
	_, err = bc2.Read(buf)
	require.NoError(t, err)

	_, err = bc2.Write([]byte{6})
	require.NoError(t, err)

	require.Equal(t, uint64(5), received.Load())
	require.Equal(t, uint64(1), sent.Load())
	require.Equal(t, uint64(5), bc1.BytesReceived())
}
