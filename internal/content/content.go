// Package content turns stored news items into what the views display in
// the active language.
package content

import (
	"time"

	"github.com/bilgisen/sevennews/internal/i18n"
	"github.com/bilgisen/sevennews/internal/models"
)

// RelatedWindow is how many of the latest items the detail page considers
// for its related list, the current item included.
const RelatedWindow = 6

// Display is the title and description shown for an item.
type Display struct {
	Title       string
	Description string
}

// ResolveDisplayFields picks the fields of lang and falls back to the other
// language per field when the preferred one is empty.
func ResolveDisplayFields(item models.NewsItem, lang i18n.Language) Display {
	title, titleAlt := item.TitleEN, item.TitleTA
	desc, descAlt := item.DescriptionEN, item.DescriptionTA
	if lang == i18n.Tamil {
		title, titleAlt = titleAlt, title
		desc, descAlt = descAlt, desc
	}
	return Display{
		Title:       firstNonEmpty(title, titleAlt),
		Description: firstNonEmpty(desc, descAlt),
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// IsVideo reports whether the item carries a video.
func IsVideo(item models.NewsItem) bool {
	return item.VideoURL != ""
}

// FilterFeed returns every item in its given order.
func FilterFeed(items []models.NewsItem) []models.NewsItem {
	return items
}

// FilterVideos keeps the video items, preserving order.
func FilterVideos(items []models.NewsItem) []models.NewsItem {
	out := make([]models.NewsItem, 0, len(items))
	for _, it := range items {
		if IsVideo(it) {
			out = append(out, it)
		}
	}
	return out
}

// Related drops excludeID from items.
func Related(items []models.NewsItem, excludeID string) []models.NewsItem {
	out := make([]models.NewsItem, 0, len(items))
	for _, it := range items {
		if it.ID != excludeID {
			out = append(out, it)
		}
	}
	return out
}

// Card is the view model of one item.
type Card struct {
	ID          string
	Title       string
	Description string
	Category    string
	ImageURL    string
	VideoURL    string
	Published   time.Time
	CreatedAt   int64
}

func (c Card) IsVideo() bool {
	return c.VideoURL != ""
}

// Date formats the publish date for display.
func (c Card) Date() string {
	return c.Published.Format("2 Jan 2006")
}

// NewCard resolves item for lang.
func NewCard(item models.NewsItem, lang i18n.Language) Card {
	d := ResolveDisplayFields(item, lang)
	return Card{
		ID:          item.ID,
		Title:       d.Title,
		Description: d.Description,
		Category:    item.Category,
		ImageURL:    item.ImageURL,
		VideoURL:    item.VideoURL,
		Published:   item.Published(),
		CreatedAt:   item.CreatedAt,
	}
}

func Cards(items []models.NewsItem, lang i18n.Language) []Card {
	cards := make([]Card, len(items))
	for i, it := range items {
		cards[i] = NewCard(it, lang)
	}
	return cards
}

// Hero returns the newest item of a newest-first list, or nil for an
// empty one.
func Hero(items []models.NewsItem, lang i18n.Language) *Card {
	if len(items) == 0 {
		return nil
	}
	c := NewCard(items[0], lang)
	return &c
}
