package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngines(t *testing.T) {
	require.Equal(t, EndianEngine(binary.LittleEndian), GetLittleEndianEngine())
	require.Equal(t, EndianEngine(binary.BigEndian), GetBigEndianEngine())
}

func TestUint40BE_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xFF, 0x0102030405, 0xFFFFFFFFFF}

	for _, v := range values {
		buf := make([]byte, 5)
		PutUint40BE(buf, v)
		require.Equal(t, v, Uint40BE(buf))

		appended := AppendUint40BE(nil, v)
		require.Equal(t, buf, appended)
	}
}

func TestUint40BE_ByteOrder(t *testing.T) {
	// The most significant byte comes first.
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	require.Equal(t, uint64(0x0102030405), Uint40BE(buf))
}

func TestAppendUint40BE_Appends(t *testing.T) {
	b := []byte{0xAA}
	b = AppendUint40BE(b, 0x0102030405)
	require.Equal(t, []byte{0xAA, 0x01, 0x02, 0x03, 0x04, 0x05}, b)
}
