package models

import "time"

// NewsItem is a bilingual article as stored in the "news" collection.
type NewsItem struct {
	ID            string `json:"id"`
	TitleEN       string `json:"title_en"`
	TitleTA       string `json:"title_ta"`
	DescriptionEN string `json:"description_en"`
	DescriptionTA string `json:"description_ta"`
	Category      string `json:"category"`
	ImageURL      string `json:"imageUrl"`
	VideoURL      string `json:"videoUrl,omitempty"`
	// CreatedAt is epoch milliseconds. It doubles as the publish time and
	// the only sort key; updates never change it.
	CreatedAt int64 `json:"createdAt"`
}

// Published returns CreatedAt as a time.Time.
func (n NewsItem) Published() time.Time {
	return time.UnixMilli(n.CreatedAt)
}

// Fields returns the editable field set of the item.
func (n NewsItem) Fields() Fields {
	return Fields{
		TitleEN:       n.TitleEN,
		TitleTA:       n.TitleTA,
		DescriptionEN: n.DescriptionEN,
		DescriptionTA: n.DescriptionTA,
		Category:      n.Category,
		ImageURL:      n.ImageURL,
		VideoURL:      n.VideoURL,
		CreatedAt:     n.CreatedAt,
	}
}

// NowMillis returns the current time in epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
