// Package wire frames cached query results so a reader can tell a valid entry
// of the expected family from foreign, truncated or expired bytes.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const version byte = 1

// Kind identifies the query family an entry belongs to.
type Kind byte

const (
	KindBooks   Kind = 1
	KindReviews Kind = 2
)

var (
	ErrCorrupt = errors.New("bookcache: corrupt entry")
	ErrKind    = errors.New("bookcache: entry kind mismatch")
	magic4     = [...]byte{'B', 'K', 'C', 'E'}
)

const hdrLen = 4 + 1 + 1 + 8 + 4

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | kind(1) | expiresAt(i64 unix nano, be) | vlen(u32 be) | payload(vlen)
func Encode(kind Kind, expiresAt time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(byte(kind))

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(expiresAt.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode validates the frame and returns the entry's expiry and payload.
// The payload aliases b.
func Decode(b []byte, want Kind) (expiresAt time.Time, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return time.Time{}, nil, ErrCorrupt
	}
	if Kind(b[5]) != want {
		return time.Time{}, nil, ErrKind
	}

	off := 6

	exp := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // trailing bytes are corruption too
		return time.Time{}, nil, ErrCorrupt
	}

	return time.Unix(0, exp), b[off : off+vlen], nil
}
