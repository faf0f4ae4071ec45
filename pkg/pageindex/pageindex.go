// Package pageindex converts between a location query string and a typed page cursor.
//
// The cursor is the only resumable state of a feed. It is carried in the
// "page" query parameter of the navigable location:
//
//	cursor := pageindex.Decode("?page=4&sort=new") // Cursor{Page: 4}
//	query := pageindex.Encode(cursor.Next(), "page=4&sort=new") // "page=5&sort=new"
//
// Missing, malformed or out-of-range values decode to the first page.
package pageindex

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParamPage is the query parameter holding the page number.
const ParamPage = "page"

// MaxPage is the largest page a location may resume from. Catch-up fetches
// every page up to the cursor, so larger values are rejected.
const MaxPage = 1000

// FirstPage is the cursor used when the location carries no valid page.
var FirstPage = Cursor{Page: 1}

// Cursor points at the last page reflected in the location.
type Cursor struct {
	Page int
}

// Next returns the cursor for the following page.
func (c Cursor) Next() Cursor {
	return Cursor{Page: c.Page + 1}
}

// Valid reports whether the cursor holds a positive page number.
func (c Cursor) Valid() bool {
	return c.Page >= 1
}

// DecodeError describes a query that could not be decoded into a cursor.
type DecodeError struct {
	Raw string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode page cursor from %q: %v", e.Raw, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses a location query into a cursor, falling back to FirstPage.
func Decode(query string) Cursor {
	cursor, _ := DecodeStrict(query)
	return cursor
}

// DecodeStrict parses a location query into a cursor.
// On failure it returns FirstPage together with a *DecodeError.
// An absent page parameter is not an error, and malformed unrelated
// parameters are ignored.
func DecodeStrict(query string) (Cursor, error) {
	var (
		raw   string
		found bool
	)
	for _, seg := range segments(query) {
		key, value, _ := strings.Cut(seg, "=")
		if unescapeKey(key) != ParamPage {
			continue
		}
		raw, found = value, true
		break
	}
	if !found || raw == "" {
		return FirstPage, nil
	}

	value, err := url.QueryUnescape(raw)
	if err != nil {
		return FirstPage, &DecodeError{Raw: query, Err: err}
	}

	page, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return FirstPage, &DecodeError{Raw: query, Err: err}
	}
	if page < 1 || page > MaxPage {
		return FirstPage, &DecodeError{Raw: query, Err: fmt.Errorf("page must be in 1..%d (got %d)", MaxPage, page)}
	}

	return Cursor{Page: page}, nil
}

// Encode writes the cursor into base. Unrelated parameters are kept verbatim
// and in place; the first page parameter is replaced and any repeats dropped.
// The result has no leading "?".
func Encode(cursor Cursor, base string) string {
	if !cursor.Valid() {
		cursor = FirstPage
	}
	pageSeg := ParamPage + "=" + strconv.Itoa(cursor.Page)

	out := make([]string, 0, 4)
	replaced := false
	for _, seg := range segments(base) {
		key, _, _ := strings.Cut(seg, "=")
		if unescapeKey(key) != ParamPage {
			out = append(out, seg)
			continue
		}
		if !replaced {
			out = append(out, pageSeg)
			replaced = true
		}
	}
	if !replaced {
		out = append(out, pageSeg)
	}
	return strings.Join(out, "&")
}

// segments splits a raw query into its non-empty "&"-separated pairs.
func segments(query string) []string {
	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return nil
	}
	parts := strings.Split(query, "&")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// unescapeKey decodes a query key, returning it unchanged when malformed.
func unescapeKey(key string) string {
	if k, err := url.QueryUnescape(key); err == nil {
		return k
	}
	return key
}
