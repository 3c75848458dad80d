package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-sync-api/internal/dto"
	"github.com/noah-isme/attendance-sync-api/internal/models"
	appErrors "github.com/noah-isme/attendance-sync-api/pkg/errors"
)

type memoryCache struct {
	values      map[string]interface{}
	gets, sets  int
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]interface{}{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) bool {
	c.gets++
	v, ok := c.values[key]
	if !ok {
		return false
	}
	switch d := dest.(type) {
	case *dto.StudentEnrollmentInfo:
		*d = *(v.(*dto.StudentEnrollmentInfo))
	case *[]models.StudentSession:
		*d = v.([]models.StudentSession)
	default:
		return false
	}
	return true
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	c.sets++
	c.values[key] = value
}

func (c *memoryCache) Invalidate(ctx context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	c.values = map[string]interface{}{}
	return nil
}

func TestStudentEnrollAndCourses(t *testing.T) {
	f := newCourseFixture()
	course := f.store.addCourse("CSC101", f.lecturer.LecturerID)
	f.store.addSession(course.CourseID, syncNow)
	f.store.addStudent(f.student.ID, "U1")
	cache := newMemoryCache()
	svc := NewStudentService(f.store, nil, cache, time.Minute, nil)

	info, err := svc.Courses(context.Background(), &f.student)
	require.NoError(t, err)
	assert.Zero(t, info.TotalEnrollments)
	assert.Equal(t, 1, cache.sets)

	enrolled, err := svc.Enroll(context.Background(), &f.student, dto.EnrollRequest{CourseCode: " csc101 "})
	require.NoError(t, err)
	assert.Equal(t, course.CourseID, enrolled.CourseID)
	assert.Equal(t, []string{studentCachePattern(f.student.ID)}, cache.invalidated)

	_, err = svc.Enroll(context.Background(), &f.student, dto.EnrollRequest{CourseCode: "CSC101"})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Already enrolled in this course", appMessage(err))

	_, err = svc.Enroll(context.Background(), &f.student, dto.EnrollRequest{CourseCode: "NOPE"})
	assert.Equal(t, "Course not found", appMessage(err))

	info, err = svc.Courses(context.Background(), &f.student)
	require.NoError(t, err)
	assert.Equal(t, 1, info.TotalEnrollments)
	assert.Equal(t, "U1", info.MatricNo)

	sessions, err := svc.Sessions(context.Background(), &f.student)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Nil(t, sessions[0].AttendanceStatus)

	cached, err := svc.Sessions(context.Background(), &f.student)
	require.NoError(t, err)
	assert.Equal(t, sessions, cached)
}

func TestStudentEndpointsRequireStudent(t *testing.T) {
	f := newCourseFixture()
	svc := NewStudentService(f.store, nil, nil, 0, nil)

	_, err := svc.Courses(context.Background(), &f.owner)
	assert.Equal(t, "Only students can access this endpoint", appMessage(err))
	_, err = svc.Sessions(context.Background(), &f.student)
	assert.Equal(t, "Student profile not found", appMessage(err))
	_, err = svc.Enroll(context.Background(), &f.owner, dto.EnrollRequest{CourseCode: "X"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
