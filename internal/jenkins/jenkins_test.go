package jenkins

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashLittle_KnownVectors(t *testing.T) {
	// Vectors from the lookup3.c reference comments.
	require.Equal(t, uint32(0xdeadbeef), HashLittle(nil, 0))
	require.Equal(t, uint32(0xdeadbef0), HashLittle(nil, 1))

	phrase := []byte("Four score and seven years ago")
	require.Equal(t, uint32(0x17770551), HashLittle(phrase, 0))
	require.Equal(t, uint32(0xcd628161), HashLittle(phrase, 1))
}

func TestHashLittle_Deterministic(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d}
	require.Equal(t, HashLittle(data, 7), HashLittle(data, 7))
	require.NotEqual(t, HashLittle(data, 7), HashLittle(data, 8))
}

func TestHashLittle_AllTailLengths(t *testing.T) {
	// Every tail length 1..12 must take a distinct code path; flipping the
	// last byte must always change the hash.
	base := make([]byte, 25)
	for i := range base {
		base[i] = byte(i*17 + 3)
	}

	for n := 1; n <= len(base); n++ {
		data := append([]byte(nil), base[:n]...)
		h1 := HashLittle(data, 0)
		data[n-1] ^= 0x40
		h2 := HashLittle(data, 0)
		require.NotEqual(t, h1, h2, "length %d", n)
	}
}

func TestHashLittle2_PrimaryMatchesHashLittle(t *testing.T) {
	data := []byte("some index entry payload bytes")
	c, _ := HashLittle2(data, 42, 0)
	require.Equal(t, HashLittle(data, 42), c)
}

func TestHashLittle2_Chaining(t *testing.T) {
	// Accumulating record-by-record is the verification mode used for index
	// payloads. Chained results must be order sensitive.
	records := [][]byte{
		[]byte("record-aaaaaaaaaa"),
		[]byte("record-bbbbbbbbbb"),
		[]byte("record-cccccccccc"),
	}

	var c1, b1 uint32
	for _, r := range records {
		c1, b1 = HashLittle2(r, c1, b1)
	}

	var c2, b2 uint32
	for i := len(records) - 1; i >= 0; i-- {
		c2, b2 = HashLittle2(records[i], c2, b2)
	}

	require.NotEqual(t, c1, c2)
	_ = b1
	_ = b2
}

func TestHashLittle2_EmptyInputKeepsSeedShape(t *testing.T) {
	// For empty input the reference returns the seeded state untouched:
	// c = 0xdeadbeef + pc + pb, b = 0xdeadbeef + pc.
	c, b := HashLittle2(nil, 5, 9)
	require.Equal(t, uint32(initMagic+5+9), c)
	require.Equal(t, uint32(initMagic+5), b)
}
