package objects

import (
	"encoding/json"
	"time"
)

// Placeholder 主图为空时展示的占位图，启动时按配置覆盖
var Placeholder = "/UdD-Logo.png"

// Article 对应数据库表 articles
type Article struct {
	// ID 主键
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Title string `gorm:"type:varchar(255);not null" json:"title"`

	// Slug 由标题生成，全局唯一，生成后不再修改
	Slug string `gorm:"type:varchar(255);not null;uniqueIndex:idx_articles_slug" json:"slug"`

	// 富文本 HTML，服务端不解析
	Content string `gorm:"type:text;not null" json:"content"`

	// 主图 URL，未上传时为默认占位图
	Image string  `gorm:"type:varchar(512)" json:"image"`
	Video *string `gorm:"type:varchar(512)" json:"video"`

	// 使用 GORM 的序列化功能，自动将 []string 转为 JSON 字符串存入数据库
	GalleryImages []string `gorm:"serializer:json;type:text" json:"gallery_images"`

	PublishedAt *time.Time `gorm:"index" json:"published_at"`

	CategoryID *uint64   `gorm:"index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`

	UserID *uint64 `gorm:"index" json:"user_id"`
	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`

	// 署名覆盖，为空时使用作者用户名
	AuthorName *string `gorm:"type:varchar(255)" json:"author_name"`

	IsHero bool   `gorm:"not null;default:false;index" json:"is_hero"`
	Views  uint64 `gorm:"not null;default:0;index" json:"views"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Article) TableName() string {
	return "articles"
}

// Byline 展示用署名
func (a *Article) Byline() string {
	if a.AuthorName != nil && *a.AuthorName != "" {
		return *a.AuthorName
	}
	if a.User != nil {
		return a.User.Name
	}
	return ""
}

// DisplayDate 发布时间为空时回退到创建时间
func (a *Article) DisplayDate() time.Time {
	if a.PublishedAt != nil && !a.PublishedAt.IsZero() {
		return *a.PublishedAt
	}
	return a.CreatedAt
}

// DisplayImage 渲染时主图永不为空
func (a *Article) DisplayImage(placeholder string) string {
	if a.Image == "" {
		return placeholder
	}
	return a.Image
}

// MarshalJSON 附带展示用的署名、日期与主图
func (a Article) MarshalJSON() ([]byte, error) {
	type plain Article
	return json.Marshal(struct {
		plain
		Byline       string    `json:"byline"`
		DisplayDate  time.Time `json:"display_date"`
		DisplayImage string    `json:"display_image"`
	}{plain(a), a.Byline(), a.DisplayDate(), a.DisplayImage(Placeholder)})
}
