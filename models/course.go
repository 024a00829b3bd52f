package models

// Course is a paid catalog item. PriceUnits is the integer smallest-unit
// price (KES × 100); responses expose priceKES.
type Course struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Title            string `gorm:"size:200;not null" json:"title"`
	Slug             string `gorm:"uniqueIndex;size:220" json:"slug"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	ThumbnailURL     *string `json:"thumbnail_url,omitempty"`
	PriceUnits       int64  `gorm:"not null" json:"price_units"`
	Category         string `gorm:"size:50;default:'other'" json:"category"`
	DurationHours    int    `json:"duration_hours"`
	IsPublished      bool   `gorm:"default:false;index" json:"is_published"`
	CreatedBy        string `gorm:"type:uuid" json:"created_by"`

	Timestamps

	Lessons  []Lesson  `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
	Chapters []Chapter `gorm:"foreignKey:CourseID" json:"chapters,omitempty"`
}

// Chapter is ordered written content inside a course.
type Chapter struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CourseID    uint   `gorm:"index;not null" json:"course_id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Category    *string `gorm:"size:50" json:"category,omitempty"`
	ContentHTML string `json:"content_html"`
	OrderNum    int    `gorm:"default:0" json:"order_num"`

	Timestamps
}

// Lesson is a video unit inside a course.
type Lesson struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	CourseID        uint   `gorm:"index;not null" json:"course_id"`
	Title           string `gorm:"size:200;not null" json:"title"`
	VideoURL        string `json:"video_url"`
	DurationMinutes int    `json:"duration_minutes"`
	OrderIndex      int    `gorm:"default:0" json:"order_index"`

	Timestamps
}

// CourseResource is an extra link (tool, video) attached to a course.
type CourseResource struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CourseID   uint   `gorm:"index;not null" json:"course_id"`
	Type       string `gorm:"size:30;not null" json:"type"`
	Title      string `gorm:"size:200;not null" json:"title"`
	URL        string `gorm:"not null" json:"url"`
	OrderIndex int    `gorm:"default:0" json:"order_index"`

	Timestamps
}
