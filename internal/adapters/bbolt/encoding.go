// Record encoding for saved keyword lists.
//
// A list's metadata (name, columns, config, timestamps) is small and is
// stored as JSON. Keywords dominate the record, so they follow as a compact
// length-prefixed block. Listing reads only the header and the keyword
// count, never the keywords themselves.
//
// Record format (little-endian):
//
//	metaLen:      uint32
//	meta:         [metaLen]byte  (JSON, Keywords omitted)
//	keywordCount: uint32
//	per keyword:
//	  len:        uint32
//	  bytes:      [len]byte
package bbolt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/corey/adsaver/internal/ports"
)

// recordMeta is the JSON header: every KeywordList field except Keywords.
type recordMeta struct {
	ports.KeywordList
	Keywords []string `json:"keywords,omitempty"` // shadows the embedded field; always nil
}

// encodeList encodes a list as header + keyword block. A single buffer is
// pre-allocated to avoid repeated growth.
func encodeList(list *ports.KeywordList) ([]byte, error) {
	meta, err := json.Marshal(recordMeta{KeywordList: *list})
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}

	totalSize := 4 + len(meta) + 4
	for _, kw := range list.Keywords {
		totalSize += 4 + len(kw)
	}

	buf := make([]byte, totalSize)
	offset := 0

	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(meta)))
	offset += 4
	copy(buf[offset:], meta)
	offset += len(meta)

	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(list.Keywords)))
	offset += 4
	for _, kw := range list.Keywords {
		binary.LittleEndian.PutUint32(buf[offset:], uint32(len(kw)))
		offset += 4
		copy(buf[offset:], kw)
		offset += len(kw)
	}

	return buf, nil
}

// decodeHeader parses the JSON header and returns the offset of the keyword
// block. Every read is bounds-checked to avoid panics on corrupt data.
func decodeHeader(data []byte) (*ports.KeywordList, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("record too short: %d bytes", len(data))
	}
	metaLen := int(binary.LittleEndian.Uint32(data))
	offset := 4
	if offset+metaLen > len(data) {
		return nil, 0, fmt.Errorf("truncated meta (need %d, have %d)", metaLen, len(data)-offset)
	}

	var meta recordMeta
	if err := json.Unmarshal(data[offset:offset+metaLen], &meta); err != nil {
		return nil, 0, fmt.Errorf("unmarshal meta: %w", err)
	}
	offset += metaLen

	list := meta.KeywordList
	list.Keywords = nil
	return &list, offset, nil
}

// keywordCount reads the count at the start of the keyword block.
func keywordCount(data []byte, offset int) (uint32, error) {
	if offset+4 > len(data) {
		return 0, fmt.Errorf("truncated keyword count (offset %d)", offset)
	}
	return binary.LittleEndian.Uint32(data[offset:]), nil
}

// decodeList decodes a full record.
func decodeList(data []byte) (*ports.KeywordList, error) {
	list, offset, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	count, err := keywordCount(data, offset)
	if err != nil {
		return nil, err
	}
	offset += 4

	// Each keyword needs at least its 4-byte length prefix.
	if uint64(count)*4 > uint64(len(data)-offset) {
		return nil, fmt.Errorf("keyword count %d exceeds record size", count)
	}

	keywords := make([]string, count)
	for i := uint32(0); i < count; i++ {
		if offset+4 > len(data) {
			return nil, fmt.Errorf("truncated at keyword %d length (offset %d)", i, offset)
		}
		n := int(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		if n > len(data)-offset {
			return nil, fmt.Errorf("truncated at keyword %d (offset %d, need %d)", i, offset, n)
		}
		keywords[i] = string(data[offset : offset+n])
		offset += n
	}
	if offset != len(data) {
		return nil, fmt.Errorf("%d trailing bytes", len(data)-offset)
	}

	list.Keywords = keywords
	return list, nil
}

// decodeSummary decodes only what a listing needs.
func decodeSummary(data []byte) (ports.ListSummary, error) {
	list, offset, err := decodeHeader(data)
	if err != nil {
		return ports.ListSummary{}, err
	}
	count, err := keywordCount(data, offset)
	if err != nil {
		return ports.ListSummary{}, err
	}
	sum := list.Summary()
	sum.Count = int(count)
	return sum, nil
}
