package section

import (
	"encoding/hex"

	"github.com/miztooks/casc/errs"
)

// ContentHash is the MD5 of a file's plaintext bytes. Root handlers
// resolve names to content hashes; the encoding map resolves content
// hashes onward.
type ContentHash [HashSize]byte

// EncodingHash is the MD5 of a file's encoded bytes as stored in a data
// archive. Also called the encoding key.
type EncodingHash [HashSize]byte

// IndexKey is the first 9 bytes of an EncodingHash, the truncated form
// stored by index records.
type IndexKey [IndexKeySize]byte

// BucketCount is the number of index shards; the high nibble of an
// encoding key's lead byte selects one.
const BucketCount = 16

// ContentHashFromSlice copies a 16-byte slice into a ContentHash.
func ContentHashFromSlice(b []byte) (ContentHash, error) {
	var h ContentHash
	if len(b) != HashSize {
		return h, errs.ErrInvalidParameter
	}
	copy(h[:], b)

	return h, nil
}

// ContentHashFromString decodes a 32-digit hex string.
func ContentHashFromString(s string) (ContentHash, error) {
	var h ContentHash
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != HashSize {
		return h, errs.ErrInvalidParameter
	}
	copy(h[:], b)

	return h, nil
}

// EncodingHashFromSlice copies a 16-byte slice into an EncodingHash.
func EncodingHashFromSlice(b []byte) (EncodingHash, error) {
	var h EncodingHash
	if len(b) != HashSize {
		return h, errs.ErrInvalidParameter
	}
	copy(h[:], b)

	return h, nil
}

// EncodingHashFromString decodes a 32-digit hex string.
func EncodingHashFromString(s string) (EncodingHash, error) {
	var h EncodingHash
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != HashSize {
		return h, errs.ErrInvalidParameter
	}
	copy(h[:], b)

	return h, nil
}

func (h ContentHash) String() string { return hex.EncodeToString(h[:]) }

func (h EncodingHash) String() string { return hex.EncodeToString(h[:]) }

func (k IndexKey) String() string { return hex.EncodeToString(k[:]) }

// IsZero reports whether the hash is all zeroes.
func (h ContentHash) IsZero() bool { return h == ContentHash{} }

// IsZero reports whether the hash is all zeroes.
func (h EncodingHash) IsZero() bool { return h == EncodingHash{} }

// IndexKey truncates the encoding hash to the 9-byte form stored in index
// records.
func (h EncodingHash) IndexKey() IndexKey {
	var k IndexKey
	copy(k[:], h[:IndexKeySize])

	return k
}

// Bucket returns the index shard the encoding hash belongs to, taken from
// the high nibble of the lead byte.
func (h EncodingHash) Bucket() int { return int(h[0] >> 4) }

// Bucket returns the index shard of the truncated key.
func (k IndexKey) Bucket() int { return int(k[0] >> 4) }
