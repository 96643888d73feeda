// Package segment persists built index snapshots so an unchanged command
// source can be served without re-indexing.
//
// File layout:
//
//	header (64 bytes) | postings | dictionary | meta | footer (32 bytes)
//
// Postings are JSON-encoded per term; the dictionary maps each term to its
// postings offset. The meta block carries the record name table and the
// weights the snapshot was built with. The footer checksum covers every
// byte between header and footer.
package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/index"
)

const (
	MagicBytes    uint32 = 0x4C434C58
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 32
	FileExt              = ".lclx"
)

// SegmentHeader is the 64-byte header written at the start of every segment.
type SegmentHeader struct {
	Magic       uint32
	Version     uint32
	TermCount   uint32
	RecordCount uint32
	CreatedAt   int64
	DictOffset  int64
	DictSize    int64
	PostOffset  int64
	PostSize    int64
	Fingerprint uint64
}

// DictEntry maps a term to its postings offset, length, and record
// frequency in the segment file.
type DictEntry struct {
	Term       string `json:"t"`
	PostOffset int64  `json:"o"`
	PostLen    int    `json:"l"`
	DocFreq    int    `json:"d"`
}

type meta struct {
	Names   []string      `json:"names"`
	Weights index.Weights `json:"weights"`
}

// Writer serialises snapshots into segment files.
type Writer struct {
	dataDir string
}

// NewWriter creates a Writer that writes segments into the given directory.
func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir}
}

// FileName is the segment file name for a source fingerprint.
func FileName(fingerprint uint64) string {
	return fmt.Sprintf("snapshot_%016x%s", fingerprint, FileExt)
}

// Write atomically creates the segment file for snap. It writes to a .tmp
// file first and renames on success, replacing any previous segment with
// the same fingerprint.
func (w *Writer) Write(snap *index.Snapshot, fingerprint uint64) (string, error) {
	finalPath := filepath.Join(w.dataDir, FileName(fingerprint))
	tmpPath := finalPath + ".tmp"

	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return "", fmt.Errorf("creating segment directory: %w", err)
	}
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp segment file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	entries := snap.Terms()
	headerBytes := make([]byte, HeaderSize)
	if _, err := f.Write(headerBytes); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}

	crc := crc32.NewIEEE()
	postingsStart := int64(HeaderSize)
	var written int64
	dict := make([]DictEntry, 0, len(entries))
	for _, entry := range entries {
		postingsData, err := json.Marshal(entry.Postings)
		if err != nil {
			return "", fmt.Errorf("marshaling postings for term %q: %w", entry.Term, err)
		}
		if _, err := f.Write(postingsData); err != nil {
			return "", fmt.Errorf("writing postings for term %q: %w", entry.Term, err)
		}
		crc.Write(postingsData)
		dict = append(dict, DictEntry{
			Term:       entry.Term,
			PostOffset: written,
			PostLen:    len(postingsData),
			DocFreq:    len(entry.Postings),
		})
		written += int64(len(postingsData))
	}

	dictStart := postingsStart + written
	dictData, err := json.Marshal(dict)
	if err != nil {
		return "", fmt.Errorf("marshaling dictionary: %w", err)
	}
	if _, err := f.Write(dictData); err != nil {
		return "", fmt.Errorf("writing dictionary: %w", err)
	}
	crc.Write(dictData)

	metaStart := dictStart + int64(len(dictData))
	metaData, err := json.Marshal(meta{Names: snap.Names(), Weights: snap.Weights()})
	if err != nil {
		return "", fmt.Errorf("marshaling meta: %w", err)
	}
	if _, err := f.Write(metaData); err != nil {
		return "", fmt.Errorf("writing meta: %w", err)
	}
	crc.Write(metaData)

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc.Sum32())
	binary.LittleEndian.PutUint64(footer[8:16], uint64(metaStart))
	binary.LittleEndian.PutUint64(footer[16:24], uint64(len(metaData)))
	if _, err := f.Write(footer); err != nil {
		return "", fmt.Errorf("writing footer: %w", err)
	}

	binary.LittleEndian.PutUint32(headerBytes[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(headerBytes[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(headerBytes[8:12], uint32(len(entries)))
	binary.LittleEndian.PutUint32(headerBytes[12:16], uint32(snap.RecordCount()))
	binary.LittleEndian.PutUint64(headerBytes[16:24], uint64(time.Now().Unix()))
	binary.LittleEndian.PutUint64(headerBytes[24:32], uint64(dictStart))
	binary.LittleEndian.PutUint64(headerBytes[32:40], uint64(len(dictData)))
	binary.LittleEndian.PutUint64(headerBytes[40:48], uint64(postingsStart))
	binary.LittleEndian.PutUint64(headerBytes[48:56], uint64(written))
	binary.LittleEndian.PutUint64(headerBytes[56:64], fingerprint)
	if _, err := f.WriteAt(headerBytes, 0); err != nil {
		return "", fmt.Errorf("updating header: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("syncing segment file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing segment file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("renaming segment file: %w", err)
	}
	return finalPath, nil
}
