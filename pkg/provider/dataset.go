package provider

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Sternrassler/feedscroll/pkg/feed"
	"github.com/google/uuid"
)

// datasetEpoch anchors generated post dates so a seed always yields the same dataset.
var datasetEpoch = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

var loremWords = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do
eiusmod tempor incididunt ut labore et dolore magna aliqua enim ad minim veniam quis nostrud
exercitation ullamco laboris nisi aliquip ex ea commodo consequat duis aute irure in
reprehenderit voluptate velit esse cillum fugiat nulla pariatur excepteur sint occaecat
cupidatat non proident sunt culpa qui officia deserunt mollit anim id est laborum`)

var animals = []string{"cat", "dog", "fox", "owl", "seal", "otter", "lynx", "panda", "koala", "heron"}

// Dataset is the fixed set of posts served by the provider, grouped by page.
type Dataset struct {
	pages   [][]feed.Item
	perPage int
	seed    int64
}

// NewDataset generates pages*perPage posts. The same seed produces the same posts.
func NewDataset(pages, perPage int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))

	d := &Dataset{
		pages:   make([][]feed.Item, pages),
		perPage: perPage,
		seed:    seed,
	}
	for p := range d.pages {
		items := make([]feed.Item, perPage)
		for i := range items {
			items[i] = newPost(rng, seed, p+1, i)
		}
		d.pages[p] = items
	}
	return d
}

func newPost(rng *rand.Rand, seed int64, page, index int) feed.Item {
	name := fmt.Sprintf("feedscroll/%d/%d/%d", seed, page, index)
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()

	paragraph := make([]string, 7)
	for i := range paragraph {
		paragraph[i] = sentence(rng, 6+rng.Intn(8))
	}

	return feed.Item{
		ID:          id,
		Title:       strings.TrimSuffix(sentence(rng, 5), "."),
		Description: strings.Join(paragraph, " "),
		ImageURL:    fmt.Sprintf("https://loremflickr.com/300/300/%s?lock=%d", animals[rng.Intn(len(animals))], rng.Intn(10000)),
		Date:        datasetEpoch.AddDate(0, 0, -rng.Intn(365)).Format("Mon Jan 02 2006"),
	}
}

func sentence(rng *rand.Rand, words int) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = loremWords[rng.Intn(len(loremWords))]
	}
	parts[0] = strings.ToUpper(parts[0][:1]) + parts[0][1:]
	return strings.Join(parts, " ") + "."
}

// Page returns the posts of a page. Out-of-range pages are empty.
func (d *Dataset) Page(page int) []feed.Item {
	if page < 1 || page > len(d.pages) {
		return []feed.Item{}
	}
	return d.pages[page-1]
}

// Pages returns the number of non-empty pages.
func (d *Dataset) Pages() int {
	return len(d.pages)
}

// Total returns the number of posts across all pages.
func (d *Dataset) Total() int {
	return len(d.pages) * d.perPage
}

// Response builds the wire response for a page.
// hasNext is true iff the following page has posts.
func (d *Dataset) Response(page int) feed.Response {
	return feed.Response{
		Total:   d.Total(),
		Data:    d.Page(page),
		HasNext: len(d.Page(page+1)) > 0,
	}
}

// ETag returns the entity tag for a page of this dataset.
func (d *Dataset) ETag(page int) string {
	return fmt.Sprintf(`"s%d-p%d-n%d"`, d.seed, page, d.perPage)
}
