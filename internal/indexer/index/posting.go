package index

// Posting records which fields of one record contain a term. RecordID is
// the record's position in the snapshot's name table.
type Posting struct {
	RecordID int      `json:"r"`
	Fields   FieldSet `json:"f"`
}

type PostingList []Posting

// TermEntry is one row of the term dictionary.
type TermEntry struct {
	Term     string      `json:"t"`
	Postings PostingList `json:"p"`
}
