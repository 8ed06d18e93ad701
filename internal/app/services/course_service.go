package services

import (
	"context"
	"net/url"
	"time"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/app/models/dto"
	"github.com/yigit/skillmart/internal/pkg/cache"
	"github.com/yigit/skillmart/internal/pkg/helpers"
	"github.com/yigit/skillmart/internal/pkg/listquery"
)

// CourseService serves the course catalogue
type CourseService struct {
	api   CourseAPI
	cache cache.Cache
	ttl   time.Duration
}

// NewCourseService creates a new course service instance. Listing pages are cached for ttl
// under their canonical query, so bursts of identical requests reach the backend once.
func NewCourseService(api CourseAPI, c cache.Cache, ttl time.Duration) *CourseService {
	return &CourseService{api: api, cache: c, ttl: ttl}
}

// List returns one page of courses for the normalized form of raw
func (s *CourseService) List(ctx context.Context, raw url.Values) (*dto.PaginatedResponse, error) {
	q := listquery.Courses.Parse(raw)

	page, err := cache.Remember(ctx, s.cache, "courses:"+q.Encode(), s.ttl, func(ctx context.Context) (models.Page[models.Course], error) {
		return s.api.ListCourses(ctx, q.Values())
	})
	if err != nil {
		return nil, err
	}
	return paginated(q, page.Items, page.TotalItems), nil
}

// ChangeQuery applies toolbar changes to the current course query string
func (s *CourseService) ChangeQuery(current string, changes map[string]string) dto.QueryChangeResponse {
	return dto.QueryChangeResponse{Query: listquery.Courses.ParseString(current).Apply(changes).Encode()}
}

// paginated wraps a listing page with pagination info and query links
func paginated[T any](q listquery.Query, items []T, total int64) *dto.PaginatedResponse {
	if items == nil {
		items = []T{}
	}
	info := helpers.NewPaginationInfo(total, q.Page(), q.Size())
	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: info,
		Query:      helpers.NewQueryLinks(q, info),
	}
}
