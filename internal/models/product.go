package models

import "time"

// Product represents a catalog product. The document store is the store of
// record for catalog content in this deployment; the relational copy is the
// fallback.
type Product struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Name          string     `json:"name" gorm:"type:varchar(200)" validate:"required,min=3,max=200"`
	Description   string     `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Price         float64    `json:"price" validate:"required,gt=0"`
	DiscountPrice float64    `json:"discount_price,omitempty" validate:"omitempty,gte=0"`
	CategoryID    uint       `json:"category_id"`
	Stock         int        `json:"stock" validate:"gte=0"`
	ImageURL      string     `json:"image_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"-" gorm:"index"`
}

// OnSale reports whether the product carries an effective discount: the
// discount price must be set, positive, and strictly below the list price.
func (p *Product) OnSale() bool {
	return p.DiscountPrice > 0 && p.DiscountPrice < p.Price
}

// EffectivePrice is the price a buyer actually pays.
func (p *Product) EffectivePrice() float64 {
	if p.OnSale() {
		return p.DiscountPrice
	}
	return p.Price
}

// ToDocument converts the product to its document-store shape.
func (p *Product) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"id":            int64(p.ID),
		"name":          p.Name,
		"description":   p.Description,
		"price":         p.Price,
		"discountPrice": p.DiscountPrice,
		"categoryId":    int64(p.CategoryID),
		"stock":         int64(p.Stock),
		"imageURL":      p.ImageURL,
	}
}

// ProductFromDocument converts a document snapshot to the canonical shape.
// The document key doubles as the ID when the snapshot has no id field.
func ProductFromDocument(docID string, data map[string]interface{}) (*Product, error) {
	p := &Product{
		Name:        docString(data, "name"),
		Description: docString(data, "description"),
		ImageURL:    docString(data, "imageURL"),
	}
	if v, ok := docFloat(data, "price"); ok {
		p.Price = v
	}
	if v, ok := docFloat(data, "discountPrice"); ok {
		p.DiscountPrice = v
	}
	if v, ok := docUint(data, "categoryId"); ok {
		p.CategoryID = v
	}
	if v, ok := docFloat(data, "stock"); ok {
		p.Stock = int(v)
	}
	if id, ok := docUint(data, "id"); ok {
		p.ID = id
		return p, nil
	}
	id, err := ParseNumericID(docID)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

// Category groups products.
type Category struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	ImageURL    string     `json:"image_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-" gorm:"index"`
}

// ToDocument converts the category to its document-store shape.
func (c *Category) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"id":          int64(c.ID),
		"name":        c.Name,
		"description": c.Description,
		"imageURL":    c.ImageURL,
	}
}

// CategoryFromDocument converts a document snapshot to the canonical shape.
func CategoryFromDocument(docID string, data map[string]interface{}) (*Category, error) {
	c := &Category{
		Name:        docString(data, "name"),
		Description: docString(data, "description"),
		ImageURL:    docString(data, "imageURL"),
	}
	if id, ok := docUint(data, "id"); ok {
		c.ID = id
		return c, nil
	}
	id, err := ParseNumericID(docID)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}
