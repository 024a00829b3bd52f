package models

import "time"

// LessonProgress is a last-write-wins upsert keyed by (user, lesson).
type LessonProgress struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         string `gorm:"type:uuid;not null;uniqueIndex:idx_user_lesson" json:"user_id"`
	LessonID       uint   `gorm:"not null;uniqueIndex:idx_user_lesson" json:"lesson_id"`
	Completed      bool   `gorm:"default:false" json:"completed"`
	WatchedSeconds int    `gorm:"default:0" json:"watched_seconds"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ChapterProgress remembers where the user left off in a course.
type ChapterProgress struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	UserID        string `gorm:"type:uuid;not null;uniqueIndex:idx_user_course_progress" json:"user_id"`
	CourseID      uint   `gorm:"not null;uniqueIndex:idx_user_course_progress" json:"course_id"`
	LastChapterID uint   `json:"last_chapter_id"`

	UpdatedAt time.Time `json:"updated_at"`
}
