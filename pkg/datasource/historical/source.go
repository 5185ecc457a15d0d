package historical

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/peter-kozarec/barsim/pkg/datasource"
	"golang.org/x/exp/mmap"
)

var (
	ErrSourceClosed  = errors.New("data source is not open")
	ErrInvalidLayout = errors.New("invalid record layout")
)

// Source reads little endian records of T from a memory mapped file.
// T must have a fixed binary size, the file must hold a whole number of records.
type Source[T any] struct {
	path       string
	recordSize int
	records    int64
	reader     *mmap.ReaderAt
	buffers    sync.Pool
}

func NewSource[T any](path string) *Source[T] {
	var record T
	size := binary.Size(&record)

	s := &Source[T]{path: path, recordSize: size}
	s.buffers.New = func() interface{} {
		buffer := make([]byte, max(size, 0))
		return &buffer
	}
	return s
}

// Open maps the file and checks that its length matches the record layout
func (s *Source[T]) Open() error {
	if s.recordSize <= 0 {
		return fmt.Errorf("%w: %T has no fixed binary size", ErrInvalidLayout, *new(T))
	}

	reader, err := mmap.Open(s.path)
	if err != nil {
		return fmt.Errorf("unable to open data source %q: %w", s.path, err)
	}

	length := int64(reader.Len())
	if length%int64(s.recordSize) != 0 {
		_ = reader.Close()
		return fmt.Errorf("%w: %q holds %d bytes, not a multiple of the %d byte record",
			ErrInvalidLayout, s.path, length, s.recordSize)
	}

	s.reader = reader
	s.records = length / int64(s.recordSize)
	return nil
}

func (s *Source[T]) Close() error {
	if s.reader == nil {
		return nil
	}
	err := s.reader.Close()
	s.reader = nil
	s.records = 0
	return err
}

// Read decodes the record at index into data, past the last record it returns datasource.ErrEof
func (s *Source[T]) Read(index int64, data *T) error {
	if s.reader == nil {
		return ErrSourceClosed
	}
	if index < 0 {
		return fmt.Errorf("record index %d is negative", index)
	}
	if index >= s.records {
		return datasource.ErrEof
	}

	buffer := s.buffers.Get().(*[]byte)
	defer s.buffers.Put(buffer)

	if _, err := s.reader.ReadAt(*buffer, index*int64(s.recordSize)); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("unable to read record %d of %q: %w", index, s.path, err)
	}
	if _, err := binary.Decode(*buffer, binary.LittleEndian, data); err != nil {
		return fmt.Errorf("unable to decode record %d of %q: %w", index, s.path, err)
	}
	return nil
}

// EntryCount is the number of whole records in the open file
func (s *Source[T]) EntryCount() (int64, error) {
	if s.reader == nil {
		return 0, ErrSourceClosed
	}
	return s.records, nil
}

func (s *Source[T]) RecordSize() int {
	return s.recordSize
}
