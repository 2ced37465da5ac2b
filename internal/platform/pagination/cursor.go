package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// ErrInvalidCursor indicates the cursor could not be decoded or belongs to
// another resource.
var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor is an opaque position tagged with the resource type it was issued for.
type Cursor struct {
	Type  string
	Value string
}

// Encode returns a URL-safe Base64 representation.
func (c Cursor) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(c.Type + ":" + c.Value))
}

// DecodeCursor parses a cursor string. An empty string is the first page.
func DecodeCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	typ, value, ok := strings.Cut(string(b), ":")
	if !ok {
		return Cursor{}, ErrInvalidCursor
	}
	return Cursor{Type: typ, Value: value}, nil
}

// Key is the last row of a page in a list ordered by (Time, ID) descending.
type Key struct {
	Time time.Time
	ID   string
}

// IsZero reports whether k is the start of the list.
func (k Key) IsZero() bool { return k.ID == "" && k.Time.IsZero() }

// Cursor wraps k for the resource typ.
func (k Key) Cursor(typ string) Cursor {
	return Cursor{Type: typ, Value: k.Time.UTC().Format(time.RFC3339Nano) + "|" + k.ID}
}

// DecodeKey parses s, which must be empty or a cursor issued for typ.
func DecodeKey(s, typ string) (Key, error) {
	c, err := DecodeCursor(s)
	if err != nil || c.Value == "" {
		return Key{}, err
	}
	if c.Type != typ {
		return Key{}, ErrInvalidCursor
	}
	ts, id, ok := strings.Cut(c.Value, "|")
	if !ok || id == "" {
		return Key{}, ErrInvalidCursor
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Key{}, ErrInvalidCursor
	}
	return Key{Time: t, ID: id}, nil
}

// Before reports whether a row at (t, id) sorts after k in a descending list,
// i.e. belongs on a later page.
func (k Key) Before(t time.Time, id string) bool {
	if k.IsZero() {
		return true
	}
	if !t.Equal(k.Time) {
		return t.Before(k.Time)
	}
	return id < k.ID
}
