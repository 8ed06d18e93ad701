package models

import "time"

// CourseLevel is the target audience level of a course
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "BEGINNER"
	LevelIntermediate CourseLevel = "INTERMEDIATE"
	LevelAdvanced     CourseLevel = "ADVANCED"
	LevelAllLevels    CourseLevel = "ALL_LEVELS"
)

// IsValid reports whether l is a known level
func (l CourseLevel) IsValid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelAllLevels:
		return true
	}
	return false
}

// LessonType is the content type of a lesson
type LessonType string

const (
	LessonVideo   LessonType = "VIDEO"
	LessonArticle LessonType = "ARTICLE"
)

// Lesson is one lesson inside a curriculum section
type Lesson struct {
	Title           string     `json:"title"`
	Type            LessonType `json:"type"`
	VideoURL        string     `json:"videoUrl"`
	VideoFileID     string     `json:"videoFileId"`
	Content         string     `json:"content"`
	DurationMinutes int        `json:"durationMinutes"`
	IsPreview       bool       `json:"isPreview"`
}

// Section is one curriculum section
type Section struct {
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

// CourseForm is the form record of the course authoring wizard
type CourseForm struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	CategoryID      int64       `json:"categoryId"`
	Level           CourseLevel `json:"level"`
	Language        string      `json:"language"`
	Sections        []Section   `json:"sections"`
	ThumbnailURL    string      `json:"thumbnailUrl"`
	ThumbnailFileID string      `json:"thumbnailFileId"`
	PromoVideoURL   string      `json:"promoVideoUrl"`
	PromoFileID     string      `json:"promoVideoFileId"`
	Price           float64     `json:"price"`
	IsFree          bool        `json:"isFree"`
	Currency        string      `json:"currency"`
}

// CoursePayload is the body sent to the marketplace course create endpoint
type CoursePayload struct {
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	CategoryID    int64       `json:"categoryId"`
	Level         CourseLevel `json:"level"`
	Language      string      `json:"language"`
	Sections      []Section   `json:"sections"`
	ThumbnailURL  string      `json:"thumbnailUrl"`
	PromoVideoURL string      `json:"promoVideoUrl,omitempty"`
	Price         float64     `json:"price"`
	IsFree        bool        `json:"isFree"`
	Currency      string      `json:"currency"`
}

// Course is a course as listed by the marketplace
type Course struct {
	ID             int64       `json:"id" example:"42"`
	Title          string      `json:"title" example:"Go for backend engineers"`
	Description    string      `json:"description"`
	ThumbnailURL   string      `json:"thumbnailUrl"`
	CategoryID     int64       `json:"categoryId"`
	CategoryName   string      `json:"categoryName"`
	Level          CourseLevel `json:"level"`
	Language       string      `json:"language"`
	Price          float64     `json:"price"`
	Currency       string      `json:"currency"`
	Rating         float64     `json:"rating"`
	RatingCount    int         `json:"ratingCount"`
	InstructorID   int64       `json:"instructorId"`
	InstructorName string      `json:"instructorName"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Category is a course category
type Category struct {
	ID       int64  `json:"id" example:"3"`
	Name     string `json:"name" example:"Programming"`
	Slug     string `json:"slug" example:"programming"`
	ParentID *int64 `json:"parentId,omitempty"`
}

// Bank is one entry of the payout bank list
type Bank struct {
	Code      string `json:"code" example:"VCB"`
	Name      string `json:"name" example:"Vietcombank"`
	ShortName string `json:"shortName" example:"VCB"`
	LogoURL   string `json:"logoUrl,omitempty"`
}

// Page is one page of an upstream listing
type Page[T any] struct {
	Items      []T   `json:"items"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}
