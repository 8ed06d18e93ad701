package listquery

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNormalizes(t *testing.T) {
	q := Courses.Parse(url.Values{
		"pageNumber": {"0"},
		"pageSize":   {"500"},
		"keyword":    {"  golang  "},
		"minPrice":   {"50"},
		"maxPrice":   {"10"},
		"minRating":  {"9"},
		"categoryId": {"abc"},
		"level":      {"beginner"},
		"unknown":    {"x"},
	})

	assert.Equal(t, 1, q.Page())
	assert.Equal(t, 100, q.Size())
	assert.Equal(t, "golang", q.Get(Keyword))
	assert.Equal(t, "BEGINNER", q.Get(Level))
	assert.False(t, q.Has(CategoryID), "invalid numbers are dropped")

	minP, _ := q.Float(MinPrice)
	maxP, _ := q.Float(MaxPrice)
	assert.Equal(t, 10.0, minP)
	assert.Equal(t, 50.0, maxP)

	rating, _ := q.Float(MinRating)
	assert.Equal(t, 5.0, rating)
}

func TestParseDropsIntegersOutOfRange(t *testing.T) {
	q := Courses.Parse(url.Values{
		"pageNumber": {"1e30"},
		"categoryId": {"9e20"},
		"pageSize":   {"-1e300"},
	})

	assert.Equal(t, 1, q.Page())
	assert.Equal(t, 1, q.Size(), "below the minimum clamps before the range check")
	assert.False(t, q.Has(CategoryID))
	assert.Equal(t, "pageSize=1", q.Encode())
	assert.Equal(t, "1", q.Values().Get(PageNumber))

	big := Courses.Parse(url.Values{"categoryId": {"9223372036854775808"}})
	assert.False(t, big.Has(CategoryID))
}

func TestEncodeIsCanonical(t *testing.T) {
	a := Courses.ParseString("level=ADVANCED&categoryId=3&pageSize=12&isDescending=false")
	b := Courses.ParseString("?categoryId=3&level=advanced")

	assert.Equal(t, "categoryId=3&level=ADVANCED", a.Encode())
	assert.Equal(t, a.Encode(), b.Encode())
	assert.Equal(t, "", Courses.ParseString("").Encode())
}

func TestApplyResetsPage(t *testing.T) {
	q := Courses.ParseString("categoryId=3&pageNumber=4")

	next := q.Apply(map[string]string{CategoryID: "5"})
	assert.Equal(t, 1, next.Page(), "changing the category resets the page")
	assert.Equal(t, "categoryId=5", next.Encode())

	paged := q.Apply(map[string]string{PageNumber: "7"})
	assert.Equal(t, 7, paged.Page())

	same := q.Apply(map[string]string{CategoryID: "3"})
	assert.Equal(t, 4, same.Page(), "re-applying the same value is not a change")

	cleared := q.Apply(map[string]string{CategoryID: ""})
	assert.Equal(t, "", cleared.Encode())
}

func TestValuesIncludeDefaults(t *testing.T) {
	v := Registrations.ParseString("status=pending").Values()

	assert.Equal(t, "PENDING", v.Get(Status))
	assert.Equal(t, "10", v.Get(PageSize))
	assert.Equal(t, "1", v.Get(PageNumber))
	assert.Equal(t, "createdAt", v.Get(SortBy))
}

func TestWithPage(t *testing.T) {
	q := Registrations.ParseString("keyword=anna")

	assert.Equal(t, "keyword=anna&pageNumber=2", q.WithPage(2).Encode())
	assert.Equal(t, "keyword=anna", q.WithPage(2).WithPage(1).Encode())
}
