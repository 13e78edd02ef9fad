// models/item_loan.go
package models

import "time"

const LoanTable = "av_loans"
const ItemTable = "av_items"

type Item struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Placa       string    `gorm:"size:20;uniqueIndex;not null" json:"placa"` // 资产标签
	Name        string    `gorm:"size:100;not null" json:"name"`
	Category    string    `gorm:"size:50;not null;index" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	Available   bool      `gorm:"not null;default:true" json:"available"` // ✅ 冗余列：没有未结束的借用时为 true
	Slug        string    `gorm:"size:150;uniqueIndex;not null" json:"slug"`
	OwnerID     string    `gorm:"type:uuid;index;not null" json:"ownerId"`
	Owner       *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PublicPath 用 slug 而不是内部 ID 暴露物品
func (it Item) PublicPath() string { return "/items/" + it.Slug }

type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanActive    LoanStatus = "active"
	LoanReturned  LoanStatus = "returned"
	LoanCancelled LoanStatus = "cancelled"
)

// Open pending 与 active 都占用物品
func (s LoanStatus) Open() bool { return s == LoanPending || s == LoanActive }

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanPending, LoanActive, LoanReturned, LoanCancelled:
		return true
	}
	return false
}

type Loan struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string     `gorm:"type:uuid;index;not null" json:"userId"`
	ItemID     string     `gorm:"type:uuid;index;not null" json:"itemId"`
	PersonID   string     `gorm:"type:uuid;index;not null" json:"personId"`
	LoanedAt   time.Time  `gorm:"index;not null" json:"loanedAt"`
	ReturnedAt *time.Time `gorm:"index" json:"returnedAt,omitempty"`
	Status     LoanStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Item   *Item   `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Item) TableName() string { return ItemTable }
func (Loan) TableName() string { return LoanTable }
