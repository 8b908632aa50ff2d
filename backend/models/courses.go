package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	IsActive    bool   `gorm:"default:true;index:idx_course_active_featured" json:"is_active"`
	IsFeatured  bool   `gorm:"default:false;index:idx_course_active_featured" json:"is_featured"`

	// SEO metadata
	SEOTitle       string `gorm:"size:60" json:"seo_title"`
	SEOKeywords    string `json:"seo_keywords"`
	SEODescription string `json:"seo_description"`

	Topics   []Topic   `gorm:"many2many:course_topics;" json:"topics,omitempty"`
	Lectures []Lecture `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Lecture slugs are unique per course, not globally: two courses may both
// have an "introduction" lecture. Lookups must always scope by (course, slug).
// The canonical lecture sequence within a course is ascending primary key.
type Lecture struct {
	gorm.Model
	CourseID    uint   `gorm:"not null;uniqueIndex:idx_course_lecture_slug" json:"course_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Slug        string `gorm:"uniqueIndex:idx_course_lecture_slug;not null" json:"slug"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
	VideoID     string `gorm:"size:150" json:"video_id"`
	Previewable bool   `gorm:"default:true" json:"previewable"`

	// SEO metadata
	SEOTitle       string `gorm:"size:60" json:"seo_title"`
	SEOKeywords    string `json:"seo_keywords"`
	SEODescription string `json:"seo_description"`
}
