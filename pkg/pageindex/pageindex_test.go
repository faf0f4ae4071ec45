package pageindex

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Cursor
		wantErr bool
	}{
		{name: "empty query", query: "", want: Cursor{Page: 1}},
		{name: "leading question mark", query: "?page=4", want: Cursor{Page: 4}},
		{name: "without question mark", query: "page=12", want: Cursor{Page: 12}},
		{name: "with unrelated params", query: "?sort=new&page=3&q=cats", want: Cursor{Page: 3}},
		{name: "absent page", query: "?sort=new", want: Cursor{Page: 1}},
		{name: "zero", query: "?page=0", want: Cursor{Page: 1}, wantErr: true},
		{name: "negative", query: "?page=-2", want: Cursor{Page: 1}, wantErr: true},
		{name: "non numeric", query: "?page=abc", want: Cursor{Page: 1}, wantErr: true},
		{name: "fractional", query: "?page=2.5", want: Cursor{Page: 1}, wantErr: true},
		{name: "bad escape", query: "?page=%zz", want: Cursor{Page: 1}, wantErr: true},
		{name: "first value wins", query: "?page=2&page=9", want: Cursor{Page: 2}},
		{name: "max page", query: "?page=1000", want: Cursor{Page: MaxPage}},
		{name: "above max page", query: "?page=1001", want: Cursor{Page: 1}, wantErr: true},
		{name: "int64 overflow range", query: "?page=9223372036854775807", want: Cursor{Page: 1}, wantErr: true},
		{name: "semicolon in unrelated param", query: "utm=a;b&page=4", want: Cursor{Page: 4}},
		{name: "bad escape in unrelated param", query: "ref=%zz&page=4", want: Cursor{Page: 4}},
		{name: "escaped key", query: "p%61ge=6", want: Cursor{Page: 6}},
		{name: "empty pairs", query: "&&page=3&", want: Cursor{Page: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeStrict(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeStrict() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DecodeStrict() = %+v, want %+v", got, tt.want)
			}
			if tt.wantErr {
				var de *DecodeError
				if !errors.As(err, &de) {
					t.Errorf("error %T is not a *DecodeError", err)
				} else if de.Raw != tt.query {
					t.Errorf("DecodeError.Raw = %q, want %q", de.Raw, tt.query)
				}
			}
			if got := Decode(tt.query); got != tt.want {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncode_MergesUnrelatedParams(t *testing.T) {
	got := Encode(Cursor{Page: 5}, "?q=cats&page=4&sort=new")

	values, err := url.ParseQuery(got)
	if err != nil {
		t.Fatalf("ParseQuery(%q) error = %v", got, err)
	}
	want := url.Values{
		"q":    []string{"cats"},
		"sort": []string{"new"},
		"page": []string{"5"},
	}
	if !reflect.DeepEqual(values, want) {
		t.Errorf("Encode() = %v, want %v", values, want)
	}
}

func TestEncode_KeepsRawParams(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{"empty base", "", "page=5"},
		{"page appended", "?sort=new", "sort=new&page=5"},
		{"page replaced in place", "a=1&page=4&b=2", "a=1&page=5&b=2"},
		{"repeated page dropped", "page=4&x=y&page=9", "page=5&x=y"},
		{"semicolon kept", "utm=a;b&page=4", "utm=a;b&page=5"},
		{"bad escape kept", "ref=%zz&page=4", "ref=%zz&page=5"},
		{"escaped value kept", "q=a%20b&page=4", "q=a%20b&page=5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(Cursor{Page: 5}, tt.base); got != tt.want {
				t.Errorf("Encode(5, %q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestEncode_InvalidCursor(t *testing.T) {
	if got := Encode(Cursor{}, ""); got != "page=1" {
		t.Errorf("Encode(zero cursor) = %q, want %q", got, "page=1")
	}
}

func TestRoundTrip(t *testing.T) {
	for page := 1; page <= 50; page++ {
		c := Cursor{Page: page}
		if got := Decode(Encode(c, "x=1")); got != c {
			t.Errorf("Decode(Encode(%+v)) = %+v", c, got)
		}
	}
}

func TestNormalizationIsIdempotent(t *testing.T) {
	queries := []string{
		"", "?page=1", "?page=0", "?page=foo", "page=7&x=y", "?page=%", "?a=b",
		"?page=" + strconv.Itoa(1<<20), "utm=a;b&page=4", "ref=%zz&page=4",
	}

	for _, q := range queries {
		first := Decode(q)
		if again := Decode(Encode(first, q)); again != first {
			t.Errorf("query %q: decode(encode(decode(q))) = %+v, want %+v", q, again, first)
		}
	}
}

func TestCursor(t *testing.T) {
	if got := (Cursor{Page: 3}).Next(); got.Page != 4 {
		t.Errorf("Next() = %+v, want page 4", got)
	}
	if (Cursor{}).Valid() {
		t.Error("zero cursor should be invalid")
	}
	if !FirstPage.Valid() {
		t.Error("FirstPage should be valid")
	}
}
