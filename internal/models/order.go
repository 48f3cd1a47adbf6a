package models

// StatusPending is the status every order starts with, regardless of the
// status supplied in the creation payload.
const StatusPending = "Pending"

// Order represents a buyer's request to purchase one product. Status is
// free-text: any string set through the update endpoint is stored verbatim.
type Order struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	ProductID    uint   `json:"product_id" gorm:"not null;index"`
	BuyerName    string `json:"buyer_name" gorm:"size:200;not null"`
	BuyerPhone   string `json:"buyer_phone" gorm:"size:20;not null"`
	BuyerAddress string `json:"buyer_address" gorm:"size:500;not null"`
	Status       string `json:"status" gorm:"size:50;default:Pending"`

	// Product is the denormalized product embedded in the serialized order.
	// It is nil when the reference no longer resolves, which serializes as
	// "product": null.
	Product *Product `json:"product" gorm:"foreignKey:ProductID"`
}
