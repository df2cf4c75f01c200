package models

// Category labels offered by the admin form.
const (
	CategoryWorld      = "World"
	CategoryTechnology = "Technology"
	CategoryPolitics   = "Politics"
	CategorySports     = "Sports"
	CategoryCulture    = "Culture"
	CategoryGeneral    = "General"
)

// Categories lists the labels in the order the admin form shows them.
var Categories = []string{
	CategoryWorld,
	CategoryTechnology,
	CategoryPolitics,
	CategorySports,
	CategoryCulture,
	CategoryGeneral,
}

// Fields is the complete field set written on create and update. Writes
// replace the whole record, so an empty value here clears the stored one.
type Fields struct {
	TitleEN       string
	TitleTA       string
	DescriptionEN string
	DescriptionTA string
	Category      string
	ImageURL      string
	VideoURL      string
	// CreatedAt is kept as supplied; zero means "now" on create.
	CreatedAt int64
}

// Normalize applies the defaults a stored record must carry.
func (f Fields) Normalize() Fields {
	if f.Category == "" {
		f.Category = CategoryGeneral
	}
	return f
}

// Item builds the record for id from the field set.
func (f Fields) Item(id string) NewsItem {
	f = f.Normalize()
	return NewsItem{
		ID:            id,
		TitleEN:       f.TitleEN,
		TitleTA:       f.TitleTA,
		DescriptionEN: f.DescriptionEN,
		DescriptionTA: f.DescriptionTA,
		Category:      f.Category,
		ImageURL:      f.ImageURL,
		VideoURL:      f.VideoURL,
		CreatedAt:     f.CreatedAt,
	}
}
