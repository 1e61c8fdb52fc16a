package entity

import "time"

type Product struct {
	ID          string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:50;not null" json:"name"`
	Description string    `gorm:"column:description;size:500" json:"description"`
	Price       float64   `gorm:"column:price;type:decimal(18,2);not null" json:"price"`
	IsAvailable bool      `gorm:"column:is_available;not null" json:"isAvailable"`
	CreatorID   string    `gorm:"column:creator_id;type:char(36);index;not null" json:"creatorId"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"creationDate"`
}

func (Product) TableName() string {
	return "products"
}
