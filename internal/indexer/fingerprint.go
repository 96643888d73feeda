package indexer

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/indexer/segment"
)

// Fingerprint hashes everything a snapshot is derived from: the indexed
// fields of every record in order, the weights and the segment format.
func Fingerprint(records []catalog.CommandRecord, w index.Weights) uint64 {
	d := xxhash.New()
	write := func(s string) {
		d.WriteString(s)
		d.Write([]byte{0})
	}
	write(strconv.FormatUint(uint64(segment.FormatVersion), 10))
	for _, f := range index.Fields() {
		write(strconv.FormatFloat(w.Of(f), 'g', -1, 64))
	}
	for _, rec := range records {
		write(rec.Name)
		write(rec.Category)
		write(rec.Description)
		for _, opt := range rec.Options {
			write(opt.Flag)
		}
		d.Write([]byte{1})
	}
	return d.Sum64()
}
