package track

import "encoding/binary"

const (
	tagScan      byte = 0x00 // scan block start, followed by int32 sequence number
	tagEntry     byte = 0x01 // access point entry start
	tagTime      byte = 0x02 // int32 relative time in milliseconds
	tagAP        byte = 0x04 // int16 local access point index
	tagSignal    byte = 0x05 // int8 signal level in dBm
	tagFrequency byte = 0x11 // int32 frequency
	tagEntryEnd  byte = 0x09
	tagScanEnd   byte = 0x10

	headerSize    = 2
	scanHeadSize  = 5
	entrySize     = 17
	scanFooterLen = 1
)

var header = [headerSize]byte{0x02, 0x01}

var byteOrder = binary.BigEndian

// Entry is a single signal sample of one access point inside a track.
//
// Field widths are fixed by the track format. Callers narrowing wider values
// into an Entry get two's complement truncation, values are never range checked.
type Entry struct {
	Time      int32 // Time relative to the survey start in milliseconds
	AP        int16 // AP is the survey-local access point index
	Signal    int8  // Signal level in dBm
	Frequency int32 // Frequency of the observed channel
}

// Scan is a group of entries sharing one relative time, the track format's
// representation of a single scan pass.
type Scan struct {
	Seq     int32
	Entries []Entry
}

// Size returns the number of bytes Serialize produces for entries.
func Size(entries []Entry) int {
	size := headerSize
	for _, group := range groups(entries) {
		size += scanHeadSize + entrySize*len(group) + scanFooterLen
	}
	return size
}

// Serialize encodes entries into the binary track format.
//
// Entries must already be sorted by (Time, AP). Consecutive entries with an
// equal Time are written as one scan block. Blocks are numbered from zero in
// the order they appear, whatever the timestamp value.
func Serialize(entries []Entry) []byte {
	buf := make([]byte, 0, Size(entries))
	buf = append(buf, header[:]...)

	for seq, group := range groups(entries) {
		buf = append(buf, tagScan)
		buf = byteOrder.AppendUint32(buf, uint32(int32(seq)))

		for _, e := range group {
			buf = appendEntry(buf, e)
		}

		buf = append(buf, tagScanEnd)
	}

	return buf
}

func appendEntry(buf []byte, e Entry) []byte {
	buf = append(buf, tagEntry)

	buf = append(buf, tagTime)
	buf = byteOrder.AppendUint32(buf, uint32(e.Time))

	buf = append(buf, tagAP)
	buf = byteOrder.AppendUint16(buf, uint16(e.AP))

	buf = append(buf, tagSignal, byte(e.Signal))

	buf = append(buf, tagFrequency)
	buf = byteOrder.AppendUint32(buf, uint32(e.Frequency))

	return append(buf, tagEntryEnd)
}

// groups splits entries into runs of equal Time. Equality, not proximity,
// decides the grouping.
func groups(entries []Entry) [][]Entry {
	var result [][]Entry

	start := 0
	for i := 1; i <= len(entries); i++ {
		if i == len(entries) || entries[i].Time != entries[start].Time {
			result = append(result, entries[start:i])
			start = i
		}
	}

	return result
}
