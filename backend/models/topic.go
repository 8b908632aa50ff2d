package models

import "gorm.io/gorm"

type Topic struct {
	gorm.Model
	Title       string `gorm:"size:50;not null" json:"title"`
	Slug        string `gorm:"size:55;uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsActive    bool   `gorm:"default:true;index" json:"is_active"`

	// SEO metadata
	SEOTitle       string `gorm:"size:60" json:"seo_title"`
	SEOKeywords    string `json:"seo_keywords"`
	SEODescription string `json:"seo_description"`

	Courses []Course `gorm:"many2many:course_topics;" json:"-"`
}
