package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourseFilterActive(t *testing.T) {
	assert.False(t, CourseFilter{Page: 3, Limit: 5}.HasActiveFilters())

	lo := 10.0
	assert.True(t, CourseFilter{MinPrice: &lo}.HasActiveFilters())
	assert.True(t, CourseFilter{Categories: []uint{1}}.HasActiveFilters())
	assert.False(t, CourseFilter{Search: "   "}.Normalize().HasActiveFilters())
	assert.True(t, CourseFilter{Level: "7-9"}.Normalize().HasActiveFilters())
}

func TestCourseFilterPaging(t *testing.T) {
	f := CourseFilter{}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 12, f.Limit)
	assert.Equal(t, 0, f.Offset())

	f = CourseFilter{Page: 3, Limit: 500}.Normalize()
	assert.Equal(t, 100, f.Limit)
	assert.Equal(t, 200, f.Offset())
}

func TestPostFilterRelated(t *testing.T) {
	f := PostFilter{Category: "news", ExcludeID: 4, Page: 5, Limit: 50}.Normalize()
	assert.True(t, f.IsRelated())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, RelatedPostsLimit, f.Limit)

	f = PostFilter{Category: "news", Page: 2, Limit: 20}.Normalize()
	assert.False(t, f.IsRelated())
	assert.Equal(t, 20, f.Offset())
}
