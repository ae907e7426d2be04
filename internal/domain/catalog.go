package domain

import "time"

// Category groups products in the POS catalog.
type Category struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "pos_category"
}

// Product is a sellable catalog item. Price is stored in integer minor
// currency units (Rupiah). Stock never goes below zero; decrements are
// guarded at the storage layer.
type Product struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	Price       int64     `json:"price" form:"price"`
	Stock       int       `json:"stock" form:"stock"`
	CategoryID  int64     `gorm:"index" json:"category_id,string" form:"category_id"`
	Description string    `gorm:"size:1024" json:"description" form:"description"`
	IsActive    bool      `gorm:"index" json:"is_active" form:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "pos_product"
}
