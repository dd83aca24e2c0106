package segment

import (
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/dchest/safefile"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/container/hashtable"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/container/linkedlist"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

// ElementEncoder serializes one hash table element at an absolute file
// offset and returns the number of bytes it wrote.
type ElementEncoder[K comparable, V any] interface {
	EncodeElement(w io.WriterAt, offset int64, key K, value V) (int64, error)
}

// WriteHashTable serializes t at offset: a bucket list header, one bucket
// record per bucket, then each bucket's element position records followed by
// its encoded elements. It returns the number of bytes written.
func WriteHashTable[K comparable, V any](w io.WriterAt, offset int64, t *hashtable.Table[K, V], enc ElementEncoder[K, V]) (int64, error) {
	numBuckets := t.NumBuckets()
	if uint64(numBuckets) > math.MaxUint32 {
		return 0, fmt.Errorf("writing hash table: %w: %d buckets", apperrors.ErrInvalidInput, numBuckets)
	}

	records := make([]byte, BucketListHeaderSize+numBuckets*BucketRecordSize)
	EncodeBucketListHeader(records, uint32(numBuckets))

	bucketPos := offset + int64(len(records))
	for b := 0; b < numBuckets; b++ {
		chain := t.Chain(b)
		BucketRecord{
			ChainLength:  uint32(len(chain)),
			BucketOffset: uint64(bucketPos),
		}.Encode(records[BucketListHeaderSize+b*BucketRecordSize:])

		n, err := writeBucket(w, bucketPos, chain, enc)
		if err != nil {
			return 0, fmt.Errorf("writing bucket %d: %w", b, err)
		}
		bucketPos += n
	}

	if err := writeAt(w, records, offset); err != nil {
		return 0, fmt.Errorf("writing bucket records: %w", err)
	}
	return bucketPos - offset, nil
}

func writeBucket[K comparable, V any](w io.WriterAt, offset int64, chain []hashtable.KeyValue[K, V], enc ElementEncoder[K, V]) (int64, error) {
	if len(chain) == 0 {
		return 0, nil
	}
	positions := make([]byte, len(chain)*ElementPositionRecordSize)
	elemPos := offset + int64(len(positions))
	for i, kv := range chain {
		EncodeElementPosition(positions[i*ElementPositionRecordSize:], uint64(elemPos))
		n, err := enc.EncodeElement(w, elemPos, kv.Key, kv.Value)
		if err != nil {
			return 0, err
		}
		elemPos += n
	}
	if err := writeAt(w, positions, offset); err != nil {
		return 0, fmt.Errorf("writing element positions: %w", err)
	}
	return elemPos - offset, nil
}

type docTableEncoder struct{}

func (docTableEncoder) EncodeElement(w io.WriterAt, offset int64, id index.DocID, name string) (int64, error) {
	if len(name) > math.MaxUint16 {
		return 0, fmt.Errorf("doc %d: %w: name is %d bytes", id, apperrors.ErrInvalidInput, len(name))
	}
	buf := make([]byte, DocTableElementHeaderSize+len(name))
	DocTableElementHeader{DocID: uint64(id), NameLength: uint16(len(name))}.Encode(buf)
	copy(buf[DocTableElementHeaderSize:], name)
	if err := writeAt(w, buf, offset); err != nil {
		return 0, fmt.Errorf("writing doc %d: %w", id, err)
	}
	return int64(len(buf)), nil
}

type wordPostingsEncoder struct{}

// EncodeElement writes the nested DocID table first, since its size is only
// known afterwards, then the header and word in front of it.
func (wordPostingsEncoder) EncodeElement(w io.WriterAt, offset int64, word string, wp *index.WordPostings) (int64, error) {
	if len(word) > math.MaxUint16 {
		return 0, fmt.Errorf("word %.32q: %w: %d bytes long", word, apperrors.ErrInvalidInput, len(word))
	}
	tableOffset := offset + WordPostingsHeaderSize + int64(len(word))
	tableBytes, err := WriteHashTable[index.DocID, *linkedlist.List[uint32]](w, tableOffset, wp.Postings, docPositionsEncoder{})
	if err != nil {
		return 0, fmt.Errorf("word %q: %w", word, err)
	}
	if tableBytes > math.MaxUint32 {
		return 0, fmt.Errorf("word %q: %w: postings table is %d bytes", word, apperrors.ErrInvalidInput, tableBytes)
	}

	buf := make([]byte, WordPostingsHeaderSize+len(word))
	WordPostingsHeader{WordLength: uint16(len(word)), TableBytes: uint32(tableBytes)}.Encode(buf)
	copy(buf[WordPostingsHeaderSize:], word)
	if err := writeAt(w, buf, offset); err != nil {
		return 0, fmt.Errorf("writing word %q: %w", word, err)
	}
	return int64(len(buf)) + tableBytes, nil
}

type docPositionsEncoder struct{}

func (docPositionsEncoder) EncodeElement(w io.WriterAt, offset int64, id index.DocID, positions *linkedlist.List[uint32]) (int64, error) {
	values := positions.Values()
	buf := make([]byte, DocIDElementHeaderSize+len(values)*PositionSize)
	DocIDElementHeader{DocID: uint64(id), NumPositions: uint32(len(values))}.Encode(buf)
	EncodePositions(buf[DocIDElementHeaderSize:], values)
	if err := writeAt(w, buf, offset); err != nil {
		return 0, fmt.Errorf("writing positions of doc %d: %w", id, err)
	}
	return int64(len(buf)), nil
}

// WriteIndex serializes dt and mi to path and returns the file size. The
// data goes to a temporary file in the same directory which is renamed over
// path only after the header and checksum are in place; on any failure the
// temporary file is removed and path is left untouched.
func WriteIndex(mi *index.MemoryIndex, dt *index.DocTable, path string) (int64, error) {
	logger := slog.Default().With("component", "segment-writer", "path", path)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, apperrors.Wrap(apperrors.ErrIO, err, "creating index directory")
		}
	}
	f, err := safefile.Create(path, 0644)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrIO, err, "creating index file")
	}
	defer f.Close()

	if err := writeAt(f, make([]byte, HeaderSize), 0); err != nil {
		return 0, fmt.Errorf("writing header placeholder: %w", err)
	}

	docTableBytes, err := WriteHashTable[index.DocID, string](f, HeaderSize, dt.ByID(), docTableEncoder{})
	if err != nil {
		return 0, fmt.Errorf("writing doctable: %w", err)
	}
	indexBytes, err := WriteHashTable[string, *index.WordPostings](f, HeaderSize+docTableBytes, mi.Table(), wordPostingsEncoder{})
	if err != nil {
		return 0, fmt.Errorf("writing index: %w", err)
	}
	if docTableBytes > math.MaxUint32 || indexBytes > math.MaxUint32 {
		return 0, fmt.Errorf("%w: regions of %d and %d bytes exceed the format's 32-bit lengths",
			apperrors.ErrInvalidInput, docTableBytes, indexBytes)
	}

	if err := f.Sync(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrIO, err, "syncing index body")
	}
	checksum, err := checksumFile(f.Name(), HeaderSize, docTableBytes+indexBytes)
	if err != nil {
		return 0, err
	}

	hdr := make([]byte, HeaderSize)
	Header{
		Magic:         MagicNumber,
		Checksum:      checksum,
		DocTableBytes: uint32(docTableBytes),
		IndexBytes:    uint32(indexBytes),
	}.Encode(hdr)
	if err := writeAt(f, hdr, 0); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}
	if err := f.Sync(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrIO, err, "syncing index file")
	}
	if err := f.Commit(); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrIO, err, "committing index file")
	}

	total := HeaderSize + docTableBytes + indexBytes
	logger.Info("index written",
		"bytes", total,
		"docs", dt.Len(),
		"words", mi.NumWords(),
		"checksum", fmt.Sprintf("%08x", checksum),
	)
	return total, nil
}

// checksumFile re-reads length bytes at offset from the file on disk.
func checksumFile(name string, offset, length int64) (uint32, error) {
	rf, err := os.Open(name)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrIO, err, "reopening index body")
	}
	defer rf.Close()
	return checksumRegion(rf, offset, length)
}

func checksumRegion(r io.ReaderAt, offset, length int64) (uint32, error) {
	crc := crc32.NewIEEE()
	n, err := io.Copy(crc, io.NewSectionReader(r, offset, length))
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrIO, err, "checksumming index body")
	}
	if n != length {
		return 0, fmt.Errorf("checksumming index body: %w: read %d of %d bytes", apperrors.ErrFormat, n, length)
	}
	return crc.Sum32(), nil
}

func writeAt(w io.WriterAt, b []byte, offset int64) error {
	if _, err := w.WriteAt(b, offset); err != nil {
		return apperrors.Wrap(apperrors.ErrIO, err, "write at %d", offset)
	}
	return nil
}
