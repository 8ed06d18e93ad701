package wizards

import (
	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/validation"
	"github.com/yigit/skillmart/internal/pkg/wizard"
)

// Course step names
const (
	StepBasics     = "basics"
	StepCurriculum = "curriculum"
	StepMedia      = "media"
	StepPricing    = "pricing"
	StepPublish    = "publish"
)

// Course upload slots
const (
	SlotThumbnail   = "thumbnail"
	SlotPromoVideo  = "promoVideo"
	SlotLessonVideo = "lessonVideo"
)

var courseFlow = wizard.NewFlow(
	wizard.Step[models.CourseForm]{Name: StepBasics, Valid: basicsValid},
	wizard.Step[models.CourseForm]{Name: StepCurriculum, Valid: curriculumValid},
	wizard.Step[models.CourseForm]{Name: StepMedia, Valid: func(f *models.CourseForm) bool { return present(f.ThumbnailURL) }},
	wizard.Step[models.CourseForm]{Name: StepPricing, Valid: pricingValid},
	wizard.Step[models.CourseForm]{Name: StepPublish, Valid: func(*models.CourseForm) bool { return true }},
)

func basicsValid(f *models.CourseForm) bool {
	return runesBetween(f.Title, "min=5,max=120") &&
		runesBetween(f.Description, "min=20") &&
		f.CategoryID > 0 &&
		f.Level.IsValid() &&
		present(f.Language)
}

func curriculumValid(f *models.CourseForm) bool {
	if len(f.Sections) == 0 {
		return false
	}
	for _, s := range f.Sections {
		if !present(s.Title) || len(s.Lessons) == 0 {
			return false
		}
		for _, l := range s.Lessons {
			if !lessonValid(l) {
				return false
			}
		}
	}
	return true
}

func lessonValid(l models.Lesson) bool {
	if !present(l.Title) {
		return false
	}
	switch l.Type {
	case models.LessonVideo:
		return present(l.VideoURL)
	case models.LessonArticle:
		return present(l.Content)
	default:
		return false
	}
}

func pricingValid(f *models.CourseForm) bool {
	if f.Price < 0 || (f.IsFree && f.Price != 0) {
		return false
	}
	return validation.Check(f.Currency, "oneof=USD EUR VND")
}

func blankCourse() models.CourseForm {
	return models.CourseForm{
		Sections: []models.Section{{Lessons: []models.Lesson{}}},
		Currency: "USD",
	}
}

// NewCourse returns the course authoring wizard
func NewCourse() Definition {
	return &definition[models.CourseForm]{
		kind: models.WizardCourse,
		flow: courseFlow,
		lists: wizard.NewLists(
			wizard.NewList("sections", 1,
				func(f *models.CourseForm) *[]models.Section { return &f.Sections },
				func() models.Section { return models.Section{Lessons: []models.Lesson{}} },
			),
		),
		readOnly: []string{"thumbnailUrl", "thumbnailFileId", "promoVideoUrl", "promoVideoFileId"},
		blank:    blankCourse,
		guard:    lessonVideosUploaded,
		slots: map[string]slot[models.CourseForm]{
			SlotThumbnail: {
				def: SlotDef{Name: SlotThumbnail, Kind: models.UploadThumbnail},
				set: func(f *models.CourseForm, _ SlotRef, r models.UploadResult) bool {
					f.ThumbnailURL, f.ThumbnailFileID = r.FileURL, r.FileID
					return true
				},
				clear: func(f *models.CourseForm, _ SlotRef) {
					f.ThumbnailURL, f.ThumbnailFileID = "", ""
				},
			},
			SlotPromoVideo: {
				def: SlotDef{Name: SlotPromoVideo, Kind: models.UploadVideo},
				set: func(f *models.CourseForm, _ SlotRef, r models.UploadResult) bool {
					f.PromoVideoURL, f.PromoFileID = r.FileURL, r.FileID
					return true
				},
				clear: func(f *models.CourseForm, _ SlotRef) {
					f.PromoVideoURL, f.PromoFileID = "", ""
				},
			},
			SlotLessonVideo: {
				def:   SlotDef{Name: SlotLessonVideo, Kind: models.UploadVideo, List: "sections", Field: "lessons"},
				set:   setLessonVideo,
				clear: func(f *models.CourseForm, ref SlotRef) { setLessonVideo(f, ref, models.UploadResult{}) },
			},
		},
	}
}

type lessonVideo struct{ url, fileID string }

// lessonVideosUploaded rejects lesson videos that did not come from an upload. Lessons
// may move and drop their video, but every video left must already be in the record.
func lessonVideosUploaded(prev, next *models.CourseForm) error {
	uploaded := make(map[lessonVideo]bool)
	for _, s := range prev.Sections {
		for _, l := range s.Lessons {
			uploaded[lessonVideo{l.VideoURL, l.VideoFileID}] = true
		}
	}
	for _, s := range next.Sections {
		for _, l := range s.Lessons {
			v := lessonVideo{l.VideoURL, l.VideoFileID}
			if v != (lessonVideo{}) && !uploaded[v] {
				return &wizard.FieldError{Field: "videoUrl", Err: wizard.ErrReadOnlyField}
			}
		}
	}
	return nil
}

// setLessonVideo writes the video of lesson SubIndex in section Index, copying both levels
func setLessonVideo(f *models.CourseForm, ref SlotRef, r models.UploadResult) bool {
	if ref.Index < 0 || ref.Index >= len(f.Sections) {
		return false
	}
	section := f.Sections[ref.Index]
	if ref.SubIndex < 0 || ref.SubIndex >= len(section.Lessons) {
		return false
	}

	lessons := make([]models.Lesson, len(section.Lessons))
	copy(lessons, section.Lessons)
	lessons[ref.SubIndex].VideoURL = r.FileURL
	lessons[ref.SubIndex].VideoFileID = r.FileID
	section.Lessons = lessons

	sections := make([]models.Section, len(f.Sections))
	copy(sections, f.Sections)
	sections[ref.Index] = section
	f.Sections = sections
	return true
}

// CoursePayload converts a completed form into the upstream request body
func CoursePayload(f *models.CourseForm) models.CoursePayload {
	return models.CoursePayload{
		Title:         f.Title,
		Description:   f.Description,
		CategoryID:    f.CategoryID,
		Level:         f.Level,
		Language:      f.Language,
		Sections:      f.Sections,
		ThumbnailURL:  f.ThumbnailURL,
		PromoVideoURL: f.PromoVideoURL,
		Price:         f.Price,
		IsFree:        f.IsFree,
		Currency:      f.Currency,
	}
}
