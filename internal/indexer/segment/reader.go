package segment

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/index"
)

// ErrCorrupt marks a segment file that failed structural or checksum
// validation.
var ErrCorrupt = errors.New("corrupt segment")

// Reader holds an opened, verified segment file in memory.
type Reader struct {
	filePath string
	header   SegmentHeader
	dict     []DictEntry
	meta     meta
	postings []byte
}

func OpenReader(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening segment file: %w", err)
	}
	if len(data) < HeaderSize+FooterSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrCorrupt, len(data))
	}
	headerBytes := data[:HeaderSize]
	magic := binary.LittleEndian.Uint32(headerBytes[0:4])
	if magic != MagicBytes {
		return nil, fmt.Errorf("%w: bad magic bytes %x", ErrCorrupt, magic)
	}
	header := SegmentHeader{
		Magic:       magic,
		Version:     binary.LittleEndian.Uint32(headerBytes[4:8]),
		TermCount:   binary.LittleEndian.Uint32(headerBytes[8:12]),
		RecordCount: binary.LittleEndian.Uint32(headerBytes[12:16]),
		CreatedAt:   int64(binary.LittleEndian.Uint64(headerBytes[16:24])),
		DictOffset:  int64(binary.LittleEndian.Uint64(headerBytes[24:32])),
		DictSize:    int64(binary.LittleEndian.Uint64(headerBytes[32:40])),
		PostOffset:  int64(binary.LittleEndian.Uint64(headerBytes[40:48])),
		PostSize:    int64(binary.LittleEndian.Uint64(headerBytes[48:56])),
		Fingerprint: binary.LittleEndian.Uint64(headerBytes[56:64]),
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, header.Version)
	}

	footer := data[len(data)-FooterSize:]
	body := data[HeaderSize : len(data)-FooterSize]
	if sum := crc32.ChecksumIEEE(body); sum != binary.LittleEndian.Uint32(footer[0:4]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	metaOffset := int64(binary.LittleEndian.Uint64(footer[8:16]))
	metaSize := int64(binary.LittleEndian.Uint64(footer[16:24]))

	bodyEnd := int64(len(data) - FooterSize)
	if !within(header.PostOffset, header.PostSize, bodyEnd) ||
		!within(header.DictOffset, header.DictSize, bodyEnd) ||
		!within(metaOffset, metaSize, bodyEnd) {
		return nil, fmt.Errorf("%w: section offsets out of range", ErrCorrupt)
	}

	var dict []DictEntry
	if err := json.Unmarshal(data[header.DictOffset:header.DictOffset+header.DictSize], &dict); err != nil {
		return nil, fmt.Errorf("%w: parsing dictionary: %v", ErrCorrupt, err)
	}
	var m meta
	if err := json.Unmarshal(data[metaOffset:metaOffset+metaSize], &m); err != nil {
		return nil, fmt.Errorf("%w: parsing meta: %v", ErrCorrupt, err)
	}
	return &Reader{
		filePath: path,
		header:   header,
		dict:     dict,
		meta:     m,
		postings: data[header.PostOffset : header.PostOffset+header.PostSize],
	}, nil
}

func within(offset, size, limit int64) bool {
	return offset >= 0 && size >= 0 && offset+size <= limit
}

func (r *Reader) Search(term string) (index.PostingList, error) {
	idx := sort.Search(len(r.dict), func(i int) bool {
		return r.dict[i].Term >= term
	})
	if idx >= len(r.dict) || r.dict[idx].Term != term {
		return nil, nil
	}
	return r.postingsAt(r.dict[idx])
}

func (r *Reader) postingsAt(entry DictEntry) (index.PostingList, error) {
	end := entry.PostOffset + int64(entry.PostLen)
	if entry.PostOffset < 0 || end > int64(len(r.postings)) {
		return nil, fmt.Errorf("%w: postings for %q out of range", ErrCorrupt, entry.Term)
	}
	var postings index.PostingList
	if err := json.Unmarshal(r.postings[entry.PostOffset:end], &postings); err != nil {
		return nil, fmt.Errorf("parsing postings: %w", err)
	}
	return postings, nil
}

// Snapshot decodes the whole segment back into an index snapshot.
func (r *Reader) Snapshot() (*index.Snapshot, error) {
	terms := make([]index.TermEntry, 0, len(r.dict))
	for _, entry := range r.dict {
		postings, err := r.postingsAt(entry)
		if err != nil {
			return nil, err
		}
		terms = append(terms, index.TermEntry{Term: entry.Term, Postings: postings})
	}
	snap, err := index.Restore(r.meta.Names, terms, r.meta.Weights)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return snap, nil
}

func (r *Reader) Terms() int {
	return len(r.dict)
}

func (r *Reader) RecordCount() uint32 {
	return r.header.RecordCount
}

func (r *Reader) Fingerprint() uint64 {
	return r.header.Fingerprint
}

func (r *Reader) Path() string {
	return r.filePath
}
