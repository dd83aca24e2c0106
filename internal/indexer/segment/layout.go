package segment

import (
	"encoding/binary"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

// MagicNumber identifies a complete index file. It is written last, so a
// file whose write was interrupted never carries it.
const MagicNumber uint32 = 0xCAFEF00D

// Encoded sizes of the fixed-width structures. Every multi-byte field is
// big-endian.
const (
	HeaderSize                = 16
	BucketListHeaderSize      = 4
	BucketRecordSize          = 12
	ElementPositionRecordSize = 8
	DocTableElementHeaderSize = 10
	WordPostingsHeaderSize    = 6
	DocIDElementHeaderSize    = 12
	PositionSize              = 4
)

var order = binary.BigEndian

// Header sits at offset 0. Checksum covers DocTableBytes+IndexBytes bytes
// starting right after the header.
type Header struct {
	Magic         uint32
	Checksum      uint32
	DocTableBytes uint32
	IndexBytes    uint32
}

func (h Header) Encode(b []byte) {
	order.PutUint32(b[0:4], h.Magic)
	order.PutUint32(b[4:8], h.Checksum)
	order.PutUint32(b[8:12], h.DocTableBytes)
	order.PutUint32(b[12:16], h.IndexBytes)
}

func DecodeHeader(b []byte) (Header, error) {
	if err := need(b, HeaderSize, "header"); err != nil {
		return Header{}, err
	}
	return Header{
		Magic:         order.Uint32(b[0:4]),
		Checksum:      order.Uint32(b[4:8]),
		DocTableBytes: order.Uint32(b[8:12]),
		IndexBytes:    order.Uint32(b[12:16]),
	}, nil
}

// BucketRecord locates one bucket's serialized chain.
type BucketRecord struct {
	ChainLength  uint32
	BucketOffset uint64
}

func (r BucketRecord) Encode(b []byte) {
	order.PutUint32(b[0:4], r.ChainLength)
	order.PutUint64(b[4:12], r.BucketOffset)
}

func DecodeBucketRecord(b []byte) (BucketRecord, error) {
	if err := need(b, BucketRecordSize, "bucket record"); err != nil {
		return BucketRecord{}, err
	}
	return BucketRecord{
		ChainLength:  order.Uint32(b[0:4]),
		BucketOffset: order.Uint64(b[4:12]),
	}, nil
}

func EncodeBucketListHeader(b []byte, numBuckets uint32) {
	order.PutUint32(b[0:4], numBuckets)
}

func DecodeBucketListHeader(b []byte) (uint32, error) {
	if err := need(b, BucketListHeaderSize, "bucket list header"); err != nil {
		return 0, err
	}
	return order.Uint32(b[0:4]), nil
}

func EncodeElementPosition(b []byte, offset uint64) {
	order.PutUint64(b[0:8], offset)
}

func DecodeElementPosition(b []byte) (uint64, error) {
	if err := need(b, ElementPositionRecordSize, "element position record"); err != nil {
		return 0, err
	}
	return order.Uint64(b[0:8]), nil
}

// DocTableElementHeader precedes NameLength raw filename bytes.
type DocTableElementHeader struct {
	DocID      uint64
	NameLength uint16
}

func (h DocTableElementHeader) Encode(b []byte) {
	order.PutUint64(b[0:8], h.DocID)
	order.PutUint16(b[8:10], h.NameLength)
}

func DecodeDocTableElementHeader(b []byte) (DocTableElementHeader, error) {
	if err := need(b, DocTableElementHeaderSize, "doctable element header"); err != nil {
		return DocTableElementHeader{}, err
	}
	return DocTableElementHeader{
		DocID:      order.Uint64(b[0:8]),
		NameLength: order.Uint16(b[8:10]),
	}, nil
}

// WordPostingsHeader precedes WordLength word bytes and then a nested table
// of TableBytes bytes keyed by DocID.
type WordPostingsHeader struct {
	WordLength uint16
	TableBytes uint32
}

func (h WordPostingsHeader) Encode(b []byte) {
	order.PutUint16(b[0:2], h.WordLength)
	order.PutUint32(b[2:6], h.TableBytes)
}

func DecodeWordPostingsHeader(b []byte) (WordPostingsHeader, error) {
	if err := need(b, WordPostingsHeaderSize, "word postings header"); err != nil {
		return WordPostingsHeader{}, err
	}
	return WordPostingsHeader{
		WordLength: order.Uint16(b[0:2]),
		TableBytes: order.Uint32(b[2:6]),
	}, nil
}

// DocIDElementHeader precedes NumPositions 32-bit byte offsets.
type DocIDElementHeader struct {
	DocID        uint64
	NumPositions uint32
}

func (h DocIDElementHeader) Encode(b []byte) {
	order.PutUint64(b[0:8], h.DocID)
	order.PutUint32(b[8:12], h.NumPositions)
}

func DecodeDocIDElementHeader(b []byte) (DocIDElementHeader, error) {
	if err := need(b, DocIDElementHeaderSize, "doc id element header"); err != nil {
		return DocIDElementHeader{}, err
	}
	return DocIDElementHeader{
		DocID:        order.Uint64(b[0:8]),
		NumPositions: order.Uint32(b[8:12]),
	}, nil
}

func EncodePositions(b []byte, positions []uint32) {
	for i, p := range positions {
		order.PutUint32(b[i*PositionSize:], p)
	}
}

func DecodePositions(b []byte, n int) ([]uint32, error) {
	if err := need(b, n*PositionSize, "position list"); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = order.Uint32(b[i*PositionSize:])
	}
	return out, nil
}

func need(b []byte, n int, what string) error {
	if len(b) < n {
		return fmt.Errorf("decoding %s: %w: have %d bytes, need %d", what, apperrors.ErrFormat, len(b), n)
	}
	return nil
}
