package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Fixed keys for course reads
const (
	KeyAllCourses       = "all_courses"
	CourseListPrefix    = "courses"
	CourseListPattern   = CourseListPrefix + ":*"
	courseKeyFormat     = "course_%d"
	courseURLKeyFormat  = "course__%s"
	instructorKeyFormat = "courses_instructor_%d"
)

// CourseKey caches a single course by id
func CourseKey(id uint) string {
	return fmt.Sprintf(courseKeyFormat, id)
}

// CourseURLKey caches a single course by its public url
func CourseURLKey(url string) string {
	return fmt.Sprintf(courseURLKeyFormat, url)
}

// InstructorCoursesKey caches the course list of one instructor
func InstructorCoursesKey(id uint) string {
	return fmt.Sprintf(instructorKeyFormat, id)
}

// GenerateKey derives a deterministic key from a base name and a filter value.
// The filters are normalized through JSON into maps, whose keys encoding/json
// already writes in sorted order, so field or map ordering never changes the hash.
// Slices of scalars are sorted too: category [2,1] and [1,2] select the same rows.
func GenerateKey(base string, filters interface{}) (string, error) {
	raw, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(normalize(generic))
	if err != nil {
		return "", err
	}
	sum := md5.Sum(canonical)
	return base + ":" + hex.EncodeToString(sum[:]), nil
}

func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			out[k] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
		})
		return out
	}
	return v
}
