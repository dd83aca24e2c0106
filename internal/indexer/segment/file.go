package segment

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

// FileIndexReader is an open index file. The doctable and index readers it
// hands out share its descriptor and are valid until Close.
type FileIndexReader struct {
	file   *os.File
	path   string
	header Header
	size   int64
}

// OpenIndex opens path and checks its header. With validate set the body
// checksum is recomputed and must match the header.
func OpenIndex(path string, validate bool) (*FileIndexReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrIO, err, "opening index file")
	}
	r, err := newFileIndexReader(f, path, validate)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	slog.Default().With("component", "segment-reader").Debug("index opened",
		"path", path,
		"bytes", r.size,
		"validated", validate,
	)
	return r, nil
}

func newFileIndexReader(f *os.File, path string, validate bool) (*FileIndexReader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrIO, err, "stat")
	}
	size := info.Size()

	buf := make([]byte, HeaderSize)
	if err := readAt(f, buf, 0, size); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	hdr, err := DecodeHeader(buf)
	if err != nil {
		return nil, err
	}
	if hdr.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: bad magic number %#08x", apperrors.ErrFormat, hdr.Magic)
	}
	bodyEnd := int64(HeaderSize) + int64(hdr.DocTableBytes) + int64(hdr.IndexBytes)
	if bodyEnd > size {
		return nil, fmt.Errorf("%w: header describes %d bytes, file has %d", apperrors.ErrFormat, bodyEnd, size)
	}

	r := &FileIndexReader{file: f, path: path, header: hdr, size: size}
	if validate {
		if err := r.Verify(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Verify recomputes the body checksum and compares it with the header.
func (r *FileIndexReader) Verify() error {
	sum, err := checksumRegion(r.file, HeaderSize, int64(r.header.DocTableBytes)+int64(r.header.IndexBytes))
	if err != nil {
		return err
	}
	if sum != r.header.Checksum {
		return fmt.Errorf("%w: checksum %08x, header says %08x", apperrors.ErrFormat, sum, r.header.Checksum)
	}
	return nil
}

func (r *FileIndexReader) Path() string {
	return r.path
}

func (r *FileIndexReader) Header() Header {
	return r.header
}

// Size returns the file size in bytes.
func (r *FileIndexReader) Size() int64 {
	return r.size
}

// DocTable returns a reader over the doctable region, which starts right
// after the header.
func (r *FileIndexReader) DocTable() (*DocTableReader, error) {
	start := int64(HeaderSize)
	return NewDocTableReader(r.file, start, start+int64(r.header.DocTableBytes))
}

// IndexTable returns a reader over the index region, which follows the
// doctable.
func (r *FileIndexReader) IndexTable() (*IndexTableReader, error) {
	start := int64(HeaderSize) + int64(r.header.DocTableBytes)
	return NewIndexTableReader(r.file, start, start+int64(r.header.IndexBytes))
}

func (r *FileIndexReader) Close() error {
	return r.file.Close()
}

// Summary is the result of a full traversal of an index file.
type Summary struct {
	Header    Header
	Size      int64
	Docs      int
	Words     int
	Postings  int
	Positions int
}

// Summarize walks both tables of r and counts their contents.
func Summarize(r *FileIndexReader) (Summary, error) {
	s := Summary{Header: r.header, Size: r.size}
	docs, err := r.DocTable()
	if err != nil {
		return s, err
	}
	if err := docs.Each(func(index.DocID, string) error {
		s.Docs++
		return nil
	}); err != nil {
		return s, err
	}

	words, err := r.IndexTable()
	if err != nil {
		return s, err
	}
	err = words.Each(func(p *DocIDTableReader) error {
		counts, err := p.DocIDList()
		if err != nil {
			return err
		}
		s.Words++
		s.Postings += len(counts)
		for _, c := range counts {
			s.Positions += c.Count
		}
		return nil
	})
	return s, err
}
