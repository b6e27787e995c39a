package objects

import "time"

// Category 对应 categories 表
type Category struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_categories_name" json:"name"`
	Slug      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_categories_slug" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryWithCount 后台列表用，带文章数
type CategoryWithCount struct {
	Category
	ArticlesCount int64 `json:"articles_count"`
}
