package section

import (
	"testing"

	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/internal/jenkins"
	"github.com/stretchr/testify/require"
)

func validHeaderV1(bucket uint8) *IndexHeaderV1 {
	h := &IndexHeaderV1{
		Field0:        IndexFormatV1,
		KeyIndex:      bucket,
		Field8:        1,
		MaxFileOffset: 0x3FFFFFFFFF,
		SpanSizeBytes: SpanSizeBytes,
		SpanOffsBytes: SpanOffsBytes,
		KeyBytes:      KeyBytes,
		SegmentBits:   30,
	}
	h.HeaderHash = h.ComputeHeaderHash()

	return h
}

func TestIndexHeaderV1_ParseRoundTrip(t *testing.T) {
	original := validHeaderV1(3)
	original.KeyCount1 = 7
	original.KeyCount2 = 2
	original.KeysHash1 = 0x11111111
	original.KeysHash2 = 0x22222222
	original.HeaderHash = original.ComputeHeaderHash()

	data := original.Bytes()
	require.Len(t, data, IndexHeaderV1Size)

	parsed := &IndexHeaderV1{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, *original, *parsed)
}

func TestIndexHeaderV1_Parse_TooShort(t *testing.T) {
	h := &IndexHeaderV1{}
	err := h.Parse(make([]byte, IndexHeaderV1Size-1))
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
}

func TestVerifyIndexHeaderV1_RoundTrip(t *testing.T) {
	h := validHeaderV1(0)
	data := h.Bytes()

	require.True(t, VerifyIndexHeaderV1(data))

	t.Run("Mutating any non-hash byte breaks verification", func(t *testing.T) {
		for i := 0; i < 44; i++ {
			mutated := append([]byte(nil), data...)
			mutated[i] ^= 0x01
			require.False(t, VerifyIndexHeaderV1(mutated), "byte %d", i)
		}
	})

	t.Run("Rewriting the computed hash restores verification", func(t *testing.T) {
		parsed := &IndexHeaderV1{}
		require.NoError(t, parsed.Parse(data))
		parsed.KeyCount1 = 99
		parsed.HeaderHash = parsed.ComputeHeaderHash()
		require.True(t, VerifyIndexHeaderV1(parsed.Bytes()))
	})
}

func TestVerifyIndexBlockV2(t *testing.T) {
	header := IndexHeaderV2{
		IndexVersion:  IndexVersionV2,
		KeyIndex:      5,
		SpanSizeBytes: SpanSizeBytes,
		SpanOffsBytes: SpanOffsBytes,
		KeyBytes:      KeyBytes,
		SegmentBits:   30,
		MaxFileOffset: 0x3FFFFFFFFF,
	}
	block := header.Bytes()

	high, _ := jenkins.HashLittle2(block, 0, 0)
	prefix := BlockPrefix{BlockSize: uint32(len(block)), BlockHash: high}
	data := append(prefix.Bytes(), block...)

	require.True(t, VerifyIndexBlockV2(data))

	t.Run("Corrupted hash fails", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[4] ^= 0xFF
		require.False(t, VerifyIndexBlockV2(bad))
	})

	t.Run("Block too small fails", func(t *testing.T) {
		small := BlockPrefix{BlockSize: 0x08, BlockHash: 0}
		require.False(t, VerifyIndexBlockV2(append(small.Bytes(), make([]byte, 8)...)))
	})

	t.Run("Truncated file fails", func(t *testing.T) {
		require.False(t, VerifyIndexBlockV2(data[:len(data)-1]))
	})
}

func TestIndexHeaderV2_ParseRoundTrip(t *testing.T) {
	original := &IndexHeaderV2{
		IndexVersion:  IndexVersionV2,
		KeyIndex:      0x0A,
		SpanSizeBytes: SpanSizeBytes,
		SpanOffsBytes: SpanOffsBytes,
		KeyBytes:      KeyBytes,
		SegmentBits:   30,
		MaxFileOffset: 0x123456789A,
	}

	parsed := &IndexHeaderV2{}
	require.NoError(t, parsed.Parse(original.Bytes()))
	require.Equal(t, *original, *parsed)
}
