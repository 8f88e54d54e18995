package track

import (
	"errors"
	"fmt"
)

var (
	// ErrBadHeader is returned when a payload does not start with the track header
	ErrBadHeader = errors.New("invalid track header")

	// ErrTruncated is returned when a payload ends in the middle of a scan block
	ErrTruncated = errors.New("truncated track payload")
)

// TagError reports an unexpected marker byte
type TagError struct {
	Offset   int
	Expected byte
	Got      byte
}

func (e *TagError) Error() string {
	return fmt.Sprintf("unexpected tag 0x%02x at offset %d, expected 0x%02x", e.Got, e.Offset, e.Expected)
}

type decoder struct {
	p   []byte
	off int
}

// Decode parses a payload produced by Serialize back into its scan blocks.
func Decode(p []byte) ([]Scan, error) {
	if len(p) < headerSize || p[0] != header[0] || p[1] != header[1] {
		return nil, ErrBadHeader
	}

	d := decoder{p: p, off: headerSize}

	var scans []Scan
	for d.off < len(d.p) {
		scan, err := d.scan()
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}

	return scans, nil
}

func (d *decoder) scan() (Scan, error) {
	var s Scan

	if err := d.expect(tagScan); err != nil {
		return s, err
	}

	seq, err := d.readUint32()
	if err != nil {
		return s, err
	}
	s.Seq = int32(seq)

	for {
		tag, err := d.peek()
		if err != nil {
			return s, err
		}

		switch tag {
		case tagScanEnd:
			d.off++
			return s, nil

		case tagEntry:
			e, err := d.entry()
			if err != nil {
				return s, err
			}
			s.Entries = append(s.Entries, e)

		default:
			return s, &TagError{Offset: d.off, Expected: tagEntry, Got: tag}
		}
	}
}

func (d *decoder) entry() (e Entry, err error) {
	if err = d.expect(tagEntry); err != nil {
		return
	}

	if err = d.expect(tagTime); err != nil {
		return
	}
	t, err := d.readUint32()
	if err != nil {
		return
	}
	e.Time = int32(t)

	if err = d.expect(tagAP); err != nil {
		return
	}
	ap, err := d.readUint16()
	if err != nil {
		return
	}
	e.AP = int16(ap)

	if err = d.expect(tagSignal); err != nil {
		return
	}
	sig, err := d.readByte()
	if err != nil {
		return
	}
	e.Signal = int8(sig)

	if err = d.expect(tagFrequency); err != nil {
		return
	}
	freq, err := d.readUint32()
	if err != nil {
		return
	}
	e.Frequency = int32(freq)

	err = d.expect(tagEntryEnd)
	return
}

func (d *decoder) peek() (byte, error) {
	if d.off >= len(d.p) {
		return 0, ErrTruncated
	}
	return d.p[d.off], nil
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.peek()
	if err != nil {
		return 0, err
	}
	d.off++
	return b, nil
}

func (d *decoder) expect(tag byte) error {
	b, err := d.peek()
	if err != nil {
		return err
	}
	if b != tag {
		return &TagError{Offset: d.off, Expected: tag, Got: b}
	}
	d.off++
	return nil
}

func (d *decoder) readUint16() (uint16, error) {
	if len(d.p)-d.off < 2 {
		return 0, ErrTruncated
	}
	v := byteOrder.Uint16(d.p[d.off:])
	d.off += 2
	return v, nil
}

func (d *decoder) readUint32() (uint32, error) {
	if len(d.p)-d.off < 4 {
		return 0, ErrTruncated
	}
	v := byteOrder.Uint32(d.p[d.off:])
	d.off += 4
	return v, nil
}
