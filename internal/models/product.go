package models

// Product represents an item listed for sale in the marketplace.
// Its JSON form is the wire representation returned by the API.
type Product struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"size:200;not null"`
	Description string  `json:"description" gorm:"size:500;not null"`
	Price       float64 `json:"price" gorm:"not null"`
	Category    string  `json:"category" gorm:"size:100;not null"`
	SellerID    int     `json:"seller_id" gorm:"not null"`
}
