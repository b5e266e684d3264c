package models

import "time"

// Order statuses follow the fulfilment lifecycle.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// OrderItem is a single line of an order, priced at order time.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	OrderID   uint    `json:"-" gorm:"index"`
	ProductID uint    `json:"product_id" validate:"required"`
	Name      string  `json:"name" gorm:"type:varchar(200)"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price"`
}

// Order is a customer order. UserID is nil for guest checkout, which is a
// first-class supported path.
type Order struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	UserID          *uint       `json:"user_id,omitempty" gorm:"index"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount     float64     `json:"total_amount"`
	Status          string      `json:"status" gorm:"type:varchar(20);default:pending"`
	PaymentRef      string      `json:"payment_ref,omitempty" gorm:"type:varchar(128)"`
	ShippingAddress string      `json:"shipping_address,omitempty" gorm:"type:text"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ToDocument converts the order to its document-store mirror shape.
func (o *Order) ToDocument() map[string]interface{} {
	items := make([]interface{}, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]interface{}{
			"productId": int64(it.ProductID),
			"name":      it.Name,
			"quantity":  int64(it.Quantity),
			"price":     it.Price,
		})
	}
	doc := map[string]interface{}{
		"id":              int64(o.ID),
		"items":           items,
		"totalAmount":     o.TotalAmount,
		"status":          o.Status,
		"paymentRef":      o.PaymentRef,
		"shippingAddress": o.ShippingAddress,
		"createdAt":       o.CreatedAt,
	}
	if o.UserID != nil {
		doc["userId"] = int64(*o.UserID)
	} else {
		doc["userId"] = nil
	}
	return doc
}

// OrderFromDocument converts a document snapshot to the canonical shape.
func OrderFromDocument(docID string, data map[string]interface{}) (*Order, error) {
	o := &Order{
		Status:          docString(data, "status"),
		PaymentRef:      docString(data, "paymentRef"),
		ShippingAddress: docString(data, "shippingAddress"),
	}
	if v, ok := docFloat(data, "totalAmount"); ok {
		o.TotalAmount = v
	}
	if v, ok := docUint(data, "userId"); ok {
		uid := v
		o.UserID = &uid
	}
	if raw, ok := data["items"].([]interface{}); ok {
		for _, el := range raw {
			m, ok := el.(map[string]interface{})
			if !ok {
				continue
			}
			item := OrderItem{Name: docString(m, "name")}
			if v, ok := docUint(m, "productId"); ok {
				item.ProductID = v
			}
			if v, ok := docFloat(m, "quantity"); ok {
				item.Quantity = int(v)
			}
			if v, ok := docFloat(m, "price"); ok {
				item.Price = v
			}
			o.Items = append(o.Items, item)
		}
	}
	if v, ok := data["createdAt"].(time.Time); ok {
		o.CreatedAt = v
	}
	if id, ok := docUint(data, "id"); ok {
		o.ID = id
		return o, nil
	}
	id, err := ParseNumericID(docID)
	if err != nil {
		return nil, err
	}
	o.ID = id
	return o, nil
}

// Review is a product review placed by an authenticated user. The relational
// store is the store of record; the document copy is a best-effort mirror.
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"index" validate:"required"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment,omitempty" gorm:"type:text" validate:"omitempty,max=2000"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDocument converts the review to its document-store mirror shape.
func (r *Review) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"id":        int64(r.ID),
		"productId": int64(r.ProductID),
		"userId":    int64(r.UserID),
		"rating":    int64(r.Rating),
		"comment":   r.Comment,
		"createdAt": r.CreatedAt,
	}
}
