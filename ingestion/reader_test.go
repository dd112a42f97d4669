package ingestion

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/poiesic/colormatch/core"
)

func readAll(t *testing.T, r *CSVReader) []Record {
	t.Helper()
	var out []Record
	for {
		rec, err := r.Read(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		out = append(out, rec)
	}
}

func TestCSVReader(t *testing.T) {
	src := strings.NewReader(header +
		"A,\"Tee, striped\",man,cotton,short,//cdn/a.jpg,https://shop/a,128 64 32\n" +
		"\n" +
		"B,short\n" +
		"C,Tee,WOM,cotton,short,//cdn/c.jpg,https://shop/c,\n")

	recs := readAll(t, NewCSVReaderFrom(src, ',', true))
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}

	a := recs[0]
	if a.Err != nil {
		t.Fatalf("record A: %v", a.Err)
	}
	if a.Line != 2 {
		t.Errorf("line = %d, want 2", a.Line)
	}
	if a.Item.Title != "Tee, striped" || a.Item.Gender != core.GenderMan {
		t.Errorf("unexpected item %+v", a.Item)
	}
	if a.Item.Color == nil || *a.Item.Color != (core.ColorVector{R: 128, G: 64, B: 32}) {
		t.Errorf("color = %v", a.Item.Color)
	}

	if !errors.Is(recs[1].Err, ErrMalformedRecord) {
		t.Errorf("short line err = %v, want ErrMalformedRecord", recs[1].Err)
	}

	if recs[2].Err != nil || recs[2].Item.Color != nil {
		t.Errorf("record C = %+v, %v", recs[2].Item, recs[2].Err)
	}
}

func TestCSVReader_NoHeader(t *testing.T) {
	src := strings.NewReader("A,Tee,MAN,cotton,short,//cdn/a.jpg,https://shop/a\n")
	recs := readAll(t, NewCSVReaderFrom(src, ',', false))
	if len(recs) != 1 || recs[0].Item.ID != "A" {
		t.Fatalf("got %+v", recs)
	}
}

func TestCSVReader_ReadAfterEOF(t *testing.T) {
	r := NewCSVReaderFrom(strings.NewReader(header), ',', true)
	for i := 0; i < 2; i++ {
		if _, err := r.Read(context.Background()); !errors.Is(err, io.EOF) {
			t.Fatalf("read %d: err = %v, want io.EOF", i, err)
		}
	}
}

func TestParseItem_BadColor(t *testing.T) {
	_, err := ParseItem([]string{"A", "Tee", "MAN", "c", "s", "p", "u", "red"})
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
}
