package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func mustDecode(t *testing.T, b []byte, k Kind) (time.Time, []byte) {
	t.Helper()
	exp, p, err := Decode(b, k)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return exp, p
}

func TestRoundTripEmptyAndNonEmpty(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 6, time.UTC)
	cases := []struct {
		kind    Kind
		payload []byte
	}{
		{KindBooks, nil},
		{KindBooks, []byte("[]")},
		{KindReviews, []byte(`[{"id":1,"rating":5}]`)},
	}
	for _, tc := range cases {
		enc := Encode(tc.kind, exp, tc.payload)
		gotExp, p := mustDecode(t, enc, tc.kind)
		if !gotExp.Equal(exp) {
			t.Fatalf("expiry mismatch: got %v want %v", gotExp, exp)
		}
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := Encode(KindBooks, time.Now(), []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, _, err := Decode(enc, KindBooks); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on trailing bytes, got %v", err)
	}
}

func TestCorruptHeadersAndLengths(t *testing.T) {
	enc := Encode(KindReviews, time.Now(), []byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := Decode(badMagic, KindReviews); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on bad magic, got %v", err)
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := Decode(badVer, KindReviews); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on bad version, got %v", err)
	}

	if _, _, err := Decode(enc, KindBooks); !errors.Is(err, ErrKind) {
		t.Fatalf("expected ErrKind, got %v", err)
	}

	overLen := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(overLen[14:18], 1<<20)
	if _, _, err := Decode(overLen, KindReviews); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on oversized length, got %v", err)
	}

	if _, _, err := Decode(enc[:hdrLen-1], KindReviews); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on short header, got %v", err)
	}

	// Raw JSON written by some other client is foreign, not ours.
	if _, _, err := Decode([]byte(`[{"id":1}]`), KindBooks); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on foreign bytes, got %v", err)
	}
}
