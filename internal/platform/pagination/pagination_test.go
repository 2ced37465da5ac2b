package pagination

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	for _, c := range []Cursor{
		{Type: "feedback", Value: "2024-01-15T10:30:00Z|abc"},
		{Type: "item", Value: "a:b:c"},
		{Type: "item", Value: "日本語"},
		{Type: "test", Value: ""},
	} {
		decoded, err := DecodeCursor(c.Encode())
		if err != nil {
			t.Fatalf("decode %+v: %v", c, err)
		}
		if decoded != c {
			t.Fatalf("expected %+v, got %+v", c, decoded)
		}
	}
}

func TestCursorEncodeURLSafe(t *testing.T) {
	encoded := Cursor{Type: "test", Value: "value+with/special=chars??>>"}.Encode()
	if strings.ContainsAny(encoded, "+/=") {
		t.Fatalf("encoded cursor is not URL safe: %s", encoded)
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	for _, in := range []string{"!!!invalid!!!", "dGVzdA", "abc def"} {
		if _, err := DecodeCursor(in); !errors.Is(err, ErrInvalidCursor) {
			t.Errorf("%q: expected ErrInvalidCursor, got %v", in, err)
		}
	}
}

func TestDecodeKey(t *testing.T) {
	k := Key{Time: time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC), ID: "f-1"}

	got, err := DecodeKey(k.Cursor("feedback").Encode(), "feedback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Time.Equal(k.Time) || got.ID != k.ID {
		t.Fatalf("expected %+v, got %+v", k, got)
	}

	if got, err := DecodeKey("", "feedback"); err != nil || !got.IsZero() {
		t.Fatalf("expected zero key for first page, got %+v %v", got, err)
	}
	if _, err := DecodeKey(k.Cursor("item").Encode(), "feedback"); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected type mismatch rejected, got %v", err)
	}
	bad := Cursor{Type: "feedback", Value: "yesterday|f-1"}.Encode()
	if _, err := DecodeKey(bad, "feedback"); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected bad timestamp rejected, got %v", err)
	}
}

func TestKeyBefore(t *testing.T) {
	t0 := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	k := Key{Time: t0, ID: "m"}

	if !k.Before(t0.Add(-time.Second), "z") {
		t.Error("older row should follow the key")
	}
	if k.Before(t0.Add(time.Second), "a") {
		t.Error("newer row should precede the key")
	}
	if !k.Before(t0, "a") || k.Before(t0, "z") || k.Before(t0, "m") {
		t.Error("ties should break on descending id")
	}
	if !(Key{}).Before(t0, "a") {
		t.Error("zero key should admit every row")
	}
}

func TestPage(t *testing.T) {
	t0 := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	type row struct {
		id string
		at time.Time
	}
	rows := []row{{"c", t0}, {"b", t0.Add(-time.Minute)}, {"a", t0.Add(-2 * time.Minute)}}
	key := func(r row) Key { return Key{Time: r.at, ID: r.id} }

	page, next := Page(rows, 2, "row", key)
	if len(page) != 2 || next == "" {
		t.Fatalf("expected 2 rows and a next cursor, got %d %q", len(page), next)
	}
	k, err := DecodeKey(next, "row")
	if err != nil || k.ID != "b" {
		t.Fatalf("expected cursor at b, got %+v %v", k, err)
	}

	page, next = Page(rows, 3, "row", key)
	if len(page) != 3 || next != "" {
		t.Fatalf("expected last page, got %d %q", len(page), next)
	}
}

func TestBuildLinkHeader(t *testing.T) {
	query := url.Values{"limit": []string{"10"}}
	link := BuildLinkHeader("/v1/feedback", query, "bmV4dA")
	if link != `</v1/feedback?cursor=bmV4dA&limit=10>; rel="next"` {
		t.Fatalf("unexpected link: %s", link)
	}
	if query.Get("cursor") != "" {
		t.Fatal("query was mutated")
	}
	if BuildLinkHeader("/v1/feedback", nil, "") != "" {
		t.Fatal("expected no link without a next cursor")
	}
}
