package models

import "time"

// HeroBanner is homepage marketing content. Like the rest of the catalog,
// the document store is the store of record.
type HeroBanner struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(200)" validate:"required,max=200"`
	Subtitle  string    `json:"subtitle,omitempty" gorm:"type:varchar(300)"`
	ImageURL  string    `json:"image_url" gorm:"type:varchar(512)" validate:"required,url"`
	LinkURL   string    `json:"link_url,omitempty" gorm:"type:varchar(512)"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDocument converts the banner to its document-store shape.
func (b *HeroBanner) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"id":       int64(b.ID),
		"title":    b.Title,
		"subtitle": b.Subtitle,
		"imageURL": b.ImageURL,
		"linkURL":  b.LinkURL,
		"active":   b.Active,
	}
}

// HeroBannerFromDocument converts a document snapshot to the canonical shape.
func HeroBannerFromDocument(docID string, data map[string]interface{}) (*HeroBanner, error) {
	b := &HeroBanner{
		Title:    docString(data, "title"),
		Subtitle: docString(data, "subtitle"),
		ImageURL: docString(data, "imageURL"),
		LinkURL:  docString(data, "linkURL"),
	}
	if v, ok := data["active"].(bool); ok {
		b.Active = v
	}
	if id, ok := docUint(data, "id"); ok {
		b.ID = id
		return b, nil
	}
	id, err := ParseNumericID(docID)
	if err != nil {
		return nil, err
	}
	b.ID = id
	return b, nil
}

// Testimonial is a curated customer quote shown on the storefront.
type Testimonial struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Author    string    `json:"author" gorm:"type:varchar(100)" validate:"required,max=100"`
	Quote     string    `json:"quote" gorm:"type:text" validate:"required,max=1000"`
	PhotoURL  string    `json:"photo_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToDocument converts the testimonial to its document-store shape.
func (t *Testimonial) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"id":       int64(t.ID),
		"author":   t.Author,
		"quote":    t.Quote,
		"photoURL": t.PhotoURL,
	}
}

// TestimonialFromDocument converts a document snapshot to the canonical shape.
func TestimonialFromDocument(docID string, data map[string]interface{}) (*Testimonial, error) {
	t := &Testimonial{
		Author:   docString(data, "author"),
		Quote:    docString(data, "quote"),
		PhotoURL: docString(data, "photoURL"),
	}
	if id, ok := docUint(data, "id"); ok {
		t.ID = id
		return t, nil
	}
	id, err := ParseNumericID(docID)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return t, nil
}
