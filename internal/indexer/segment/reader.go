package segment

import (
	"errors"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/container/hashtable"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

// HashTableReader resolves keys of one serialized hash table to the offsets
// of the candidate elements in their bucket. Only the bucket list header is
// read up front; every lookup reads one bucket record and one run of element
// position records. All reads go through ReadAt, so a reader is safe for
// concurrent use.
type HashTableReader struct {
	r          io.ReaderAt
	offset     int64
	limit      int64
	numBuckets uint32
}

// NewHashTableReader binds a reader to the table serialized at offset. Reads
// past limit are reported as format errors.
func NewHashTableReader(r io.ReaderAt, offset, limit int64) (*HashTableReader, error) {
	buf := make([]byte, BucketListHeaderSize)
	if err := readAt(r, buf, offset, limit); err != nil {
		return nil, fmt.Errorf("reading bucket list header at %d: %w", offset, err)
	}
	n, err := DecodeBucketListHeader(buf)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("table at %d: %w: zero buckets", offset, apperrors.ErrFormat)
	}
	if offset+BucketListHeaderSize+int64(n)*BucketRecordSize > limit {
		return nil, fmt.Errorf("table at %d: %w: %d bucket records overrun region", offset, apperrors.ErrFormat, n)
	}
	return &HashTableReader{r: r, offset: offset, limit: limit, numBuckets: n}, nil
}

func (h *HashTableReader) NumBuckets() int {
	return int(h.numBuckets)
}

// LookupElementPositions returns the offsets of every element in the bucket
// key maps to. Callers must decode each one and compare keys themselves.
func (h *HashTableReader) LookupElementPositions(key uint64) ([]int64, error) {
	return h.ElementPositions(int(key % uint64(h.numBuckets)))
}

// ElementPositions returns the element offsets stored in bucket b.
func (h *HashTableReader) ElementPositions(b int) ([]int64, error) {
	if b < 0 || b >= int(h.numBuckets) {
		return nil, fmt.Errorf("bucket %d: %w: table has %d buckets", b, apperrors.ErrInvalidInput, h.numBuckets)
	}
	buf := make([]byte, BucketRecordSize)
	recordAt := h.offset + BucketListHeaderSize + int64(b)*BucketRecordSize
	if err := readAt(h.r, buf, recordAt, h.limit); err != nil {
		return nil, fmt.Errorf("reading bucket record %d: %w", b, err)
	}
	rec, err := DecodeBucketRecord(buf)
	if err != nil {
		return nil, err
	}
	if rec.ChainLength == 0 {
		return nil, nil
	}

	start := int64(rec.BucketOffset)
	size := int64(rec.ChainLength) * ElementPositionRecordSize
	if start < h.offset || start+size > h.limit {
		return nil, fmt.Errorf("bucket %d: %w: chain of %d at %d outside table", b, apperrors.ErrFormat, rec.ChainLength, start)
	}
	buf = make([]byte, size)
	if err := readAt(h.r, buf, start, h.limit); err != nil {
		return nil, fmt.Errorf("reading chain of bucket %d: %w", b, err)
	}
	out := make([]int64, rec.ChainLength)
	for i := range out {
		pos, err := DecodeElementPosition(buf[i*ElementPositionRecordSize:])
		if err != nil {
			return nil, err
		}
		if int64(pos) < h.offset || int64(pos) >= h.limit {
			return nil, fmt.Errorf("bucket %d element %d: %w: offset %d outside table", b, i, apperrors.ErrFormat, pos)
		}
		out[i] = int64(pos)
	}
	return out, nil
}

// EachElement calls fn with the offset of every element, bucket by bucket.
func (h *HashTableReader) EachElement(fn func(offset int64) error) error {
	for b := 0; b < int(h.numBuckets); b++ {
		positions, err := h.ElementPositions(b)
		if err != nil {
			return err
		}
		for _, pos := range positions {
			if err := fn(pos); err != nil {
				return err
			}
		}
	}
	return nil
}

// DocTableReader resolves DocIDs to document names.
type DocTableReader struct {
	table *HashTableReader
}

func NewDocTableReader(r io.ReaderAt, offset, limit int64) (*DocTableReader, error) {
	ht, err := NewHashTableReader(r, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("opening doctable: %w", err)
	}
	return &DocTableReader{table: ht}, nil
}

// LookupDocID returns the name stored for id. ok is false when the table
// has no such document.
func (d *DocTableReader) LookupDocID(id index.DocID) (name string, ok bool, err error) {
	positions, err := d.table.LookupElementPositions(uint64(id))
	if err != nil {
		return "", false, err
	}
	for _, pos := range positions {
		hdr, err := d.readHeader(pos)
		if err != nil {
			return "", false, err
		}
		if index.DocID(hdr.DocID) != id {
			continue
		}
		name, err := d.readName(pos, hdr)
		if err != nil {
			return "", false, err
		}
		return name, true, nil
	}
	return "", false, nil
}

// Each calls fn for every document in the table.
func (d *DocTableReader) Each(fn func(id index.DocID, name string) error) error {
	return d.table.EachElement(func(pos int64) error {
		hdr, err := d.readHeader(pos)
		if err != nil {
			return err
		}
		name, err := d.readName(pos, hdr)
		if err != nil {
			return err
		}
		return fn(index.DocID(hdr.DocID), name)
	})
}

func (d *DocTableReader) readHeader(pos int64) (DocTableElementHeader, error) {
	buf := make([]byte, DocTableElementHeaderSize)
	if err := readAt(d.table.r, buf, pos, d.table.limit); err != nil {
		return DocTableElementHeader{}, fmt.Errorf("reading doctable element at %d: %w", pos, err)
	}
	return DecodeDocTableElementHeader(buf)
}

func (d *DocTableReader) readName(pos int64, hdr DocTableElementHeader) (string, error) {
	buf := make([]byte, hdr.NameLength)
	if err := readAt(d.table.r, buf, pos+DocTableElementHeaderSize, d.table.limit); err != nil {
		return "", fmt.Errorf("reading name of doc %d: %w", hdr.DocID, err)
	}
	return string(buf), nil
}

// IndexTableReader resolves words to their per-document postings.
type IndexTableReader struct {
	table *HashTableReader
}

func NewIndexTableReader(r io.ReaderAt, offset, limit int64) (*IndexTableReader, error) {
	ht, err := NewHashTableReader(r, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("opening index table: %w", err)
	}
	return &IndexTableReader{table: ht}, nil
}

// LookupWord returns a reader over the documents containing word, or nil
// when the word is not in the index.
func (t *IndexTableReader) LookupWord(word string) (*DocIDTableReader, error) {
	positions, err := t.table.LookupElementPositions(hashtable.HashString(word))
	if err != nil {
		return nil, err
	}
	for _, pos := range positions {
		hdr, err := t.readHeader(pos)
		if err != nil {
			return nil, err
		}
		if int(hdr.WordLength) != len(word) {
			continue
		}
		got, err := t.readWord(pos, hdr)
		if err != nil {
			return nil, err
		}
		if got != word {
			continue
		}
		return t.postingsReader(pos, hdr, got)
	}
	return nil, nil
}

// Each calls fn for every word in the index.
func (t *IndexTableReader) Each(fn func(postings *DocIDTableReader) error) error {
	return t.table.EachElement(func(pos int64) error {
		hdr, err := t.readHeader(pos)
		if err != nil {
			return err
		}
		word, err := t.readWord(pos, hdr)
		if err != nil {
			return err
		}
		docs, err := t.postingsReader(pos, hdr, word)
		if err != nil {
			return err
		}
		return fn(docs)
	})
}

func (t *IndexTableReader) readHeader(pos int64) (WordPostingsHeader, error) {
	buf := make([]byte, WordPostingsHeaderSize)
	if err := readAt(t.table.r, buf, pos, t.table.limit); err != nil {
		return WordPostingsHeader{}, fmt.Errorf("reading word postings at %d: %w", pos, err)
	}
	return DecodeWordPostingsHeader(buf)
}

func (t *IndexTableReader) readWord(pos int64, hdr WordPostingsHeader) (string, error) {
	buf := make([]byte, hdr.WordLength)
	if err := readAt(t.table.r, buf, pos+WordPostingsHeaderSize, t.table.limit); err != nil {
		return "", fmt.Errorf("reading word at %d: %w", pos, err)
	}
	return string(buf), nil
}

func (t *IndexTableReader) postingsReader(pos int64, hdr WordPostingsHeader, word string) (*DocIDTableReader, error) {
	start := pos + WordPostingsHeaderSize + int64(hdr.WordLength)
	end := start + int64(hdr.TableBytes)
	if end > t.table.limit {
		return nil, fmt.Errorf("postings of %q: %w: %d bytes overrun index region", word, apperrors.ErrFormat, hdr.TableBytes)
	}
	ht, err := NewHashTableReader(t.table.r, start, end)
	if err != nil {
		return nil, fmt.Errorf("postings of %q: %w", word, err)
	}
	return &DocIDTableReader{word: word, table: ht}, nil
}

// DocIDTableReader resolves DocIDs to the positions of one word.
type DocIDTableReader struct {
	word  string
	table *HashTableReader
}

// DocCount is a document together with how often the word occurs in it.
type DocCount struct {
	DocID index.DocID
	Count int
}

func (p *DocIDTableReader) Word() string {
	return p.word
}

// LookupDocID returns the positions of the word within id.
func (p *DocIDTableReader) LookupDocID(id index.DocID) (positions []uint32, ok bool, err error) {
	pos, hdr, ok, err := p.find(id)
	if err != nil || !ok {
		return nil, false, err
	}
	positions, err = p.readPositions(pos, hdr)
	if err != nil {
		return nil, false, err
	}
	return positions, true, nil
}

// Count returns how often the word occurs in id without reading the
// positions themselves.
func (p *DocIDTableReader) Count(id index.DocID) (int, bool, error) {
	_, hdr, ok, err := p.find(id)
	if err != nil || !ok {
		return 0, false, err
	}
	return int(hdr.NumPositions), true, nil
}

// DocIDList returns every document containing the word with its count, in
// table order.
func (p *DocIDTableReader) DocIDList() ([]DocCount, error) {
	var out []DocCount
	err := p.table.EachElement(func(pos int64) error {
		hdr, err := p.readHeader(pos)
		if err != nil {
			return err
		}
		out = append(out, DocCount{DocID: index.DocID(hdr.DocID), Count: int(hdr.NumPositions)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *DocIDTableReader) find(id index.DocID) (int64, DocIDElementHeader, bool, error) {
	positions, err := p.table.LookupElementPositions(uint64(id))
	if err != nil {
		return 0, DocIDElementHeader{}, false, fmt.Errorf("postings of %q: %w", p.word, err)
	}
	for _, pos := range positions {
		hdr, err := p.readHeader(pos)
		if err != nil {
			return 0, DocIDElementHeader{}, false, err
		}
		if index.DocID(hdr.DocID) == id {
			return pos, hdr, true, nil
		}
	}
	return 0, DocIDElementHeader{}, false, nil
}

func (p *DocIDTableReader) readHeader(pos int64) (DocIDElementHeader, error) {
	buf := make([]byte, DocIDElementHeaderSize)
	if err := readAt(p.table.r, buf, pos, p.table.limit); err != nil {
		return DocIDElementHeader{}, fmt.Errorf("reading postings of %q at %d: %w", p.word, pos, err)
	}
	return DecodeDocIDElementHeader(buf)
}

func (p *DocIDTableReader) readPositions(pos int64, hdr DocIDElementHeader) ([]uint32, error) {
	size := int64(hdr.NumPositions) * PositionSize
	start := pos + DocIDElementHeaderSize
	if start+size > p.table.limit {
		return nil, fmt.Errorf("positions of %q in doc %d: %w: %d entries overrun table", p.word, hdr.DocID, apperrors.ErrFormat, hdr.NumPositions)
	}
	buf := make([]byte, size)
	if err := readAt(p.table.r, buf, start, p.table.limit); err != nil {
		return nil, fmt.Errorf("reading positions of %q in doc %d: %w", p.word, hdr.DocID, err)
	}
	return DecodePositions(buf, int(hdr.NumPositions))
}

// readAt fills b from offset. Short reads and reads past limit mean the file
// is truncated or malformed; anything else is an I/O failure.
func readAt(r io.ReaderAt, b []byte, offset, limit int64) error {
	if offset < 0 || offset+int64(len(b)) > limit {
		return fmt.Errorf("%w: %d bytes at %d past end of region %d", apperrors.ErrFormat, len(b), offset, limit)
	}
	if len(b) == 0 {
		return nil
	}
	n, err := r.ReadAt(b, offset)
	if n == len(b) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated, read %d of %d bytes at %d", apperrors.ErrFormat, n, len(b), offset)
	}
	return apperrors.Wrap(apperrors.ErrIO, err, "read at %d", offset)
}
