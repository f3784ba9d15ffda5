package models

import "time"

// Reference data is maintained by the catalog/party screens; the payment core
// only checks that referenced rows exist and are active.

type Customer struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Phone     string    `gorm:"size:30" json:"phone"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Supplier struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Phone     string    `gorm:"size:30" json:"phone"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Staff are cashiers, delivery and unloading crew.
type Staff struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Role      UserRole  `gorm:"size:20;not null" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Product struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Sku        string    `gorm:"size:100;index" json:"sku"`
	UnitId     int       `json:"unit_id"`
	CategoryId int       `json:"category_id"`
	BrandId    int       `json:"brand_id"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type ProductUnit struct {
	ID           int    `gorm:"primary_key" json:"id"`
	Name         string `gorm:"size:100;not null" json:"name"`
	Abbreviation string `gorm:"size:20" json:"abbreviation"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
}

type ProductCategory struct {
	ID       int    `gorm:"primary_key" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

type Brand struct {
	ID       int    `gorm:"primary_key" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

type ReferenceKind string

const (
	ReferenceKindCustomer ReferenceKind = "customer"
	ReferenceKindSupplier ReferenceKind = "supplier"
	ReferenceKindStaff    ReferenceKind = "staff"
	ReferenceKindProduct  ReferenceKind = "product"
	ReferenceKindUnit     ReferenceKind = "unit"
	ReferenceKindCategory ReferenceKind = "category"
	ReferenceKindBrand    ReferenceKind = "brand"
)

// RefSummary is the resolved form of any reference.
type RefSummary struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}
