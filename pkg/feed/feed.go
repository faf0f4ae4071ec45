// Package feed defines the domain types shared by the feed loading components.
package feed

// Item is a single entry of the paginated feed.
// Items are immutable once fetched and identified by ID.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"desc"`
	ImageURL    string `json:"image"`
	Date        string `json:"date"`
}

// PageResult is the normalized result of fetching one page.
type PageResult struct {
	// Page is the 1-based page number that produced this result.
	Page    int
	Items   []Item
	HasNext bool
}

// Response is the wire format of GET /api/posts.
type Response struct {
	Total   int    `json:"total"`
	Data    []Item `json:"data"`
	HasNext bool   `json:"hasNext"`
}

// ToPageResult normalizes a wire response for the given page.
// A missing data array becomes an empty slice.
func (r Response) ToPageResult(page int) PageResult {
	items := r.Data
	if items == nil {
		items = []Item{}
	}
	return PageResult{
		Page:    page,
		Items:   items,
		HasNext: r.HasNext,
	}
}

// Status is the loading status owned by the feed loader.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusEnd     Status = "end"
)

// Terminal reports whether no automatic progress follows this status.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusEnd
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}
