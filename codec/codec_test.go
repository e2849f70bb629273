package codec

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type record struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	ISBN      *string   `json:"isbn"`
	Year      *int      `json:"publication_year"`
	CreatedAt time.Time `json:"created_at"`
}

func sample() []record {
	isbn := "978-0-452-28423-4"
	year := 1949
	return []record{
		{ID: 1, Title: "1984", ISBN: &isbn, Year: &year, CreatedAt: time.Date(2024, 5, 1, 10, 30, 0, 123456000, time.UTC)},
		{ID: 2, Title: "Untitled", CreatedAt: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
	}
}

func TestRoundTripAllCodecs(t *testing.T) {
	for _, name := range []string{NameJSON, NameMsgpack, NameCBOR} {
		t.Run(name, func(t *testing.T) {
			c, err := ByName[[]record](name, 0)
			if err != nil {
				t.Fatalf("ByName: %v", err)
			}
			for _, in := range [][]record{sample(), {}} {
				b, err := c.Encode(in)
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}
				out, err := c.Decode(b)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if diff := cmp.Diff(in, out, cmpopts.EquateEmpty()); diff != "" {
					t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestByNameUnknown(t *testing.T) {
	if _, err := ByName[[]record]("yaml", 0); err == nil || !strings.Contains(err.Error(), "yaml") {
		t.Fatalf("expected unknown codec error, got %v", err)
	}
}

func TestLimitRejectsOversizedPayload(t *testing.T) {
	c, err := ByName[[]record]("", 16)
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if _, ok := c.(Limit[[]record]); !ok {
		t.Fatalf("expected Limit wrapper, got %T", c)
	}
	b, err := c.Encode(sample())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := c.Decode(b); err == nil {
		t.Fatalf("expected size error for %d bytes", len(b))
	}
	if _, err := c.Decode([]byte("[]")); err != nil {
		t.Fatalf("small payload: %v", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	for _, name := range []string{NameJSON, NameMsgpack, NameCBOR} {
		c, _ := ByName[[]record](name, 0)
		if _, err := c.Decode([]byte{0xc1, 0xff, 0x00}); err == nil {
			t.Fatalf("%s: expected decode error", name)
		}
	}
}
