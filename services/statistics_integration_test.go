package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/sahilchouksey/edu-platform-api/database"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openStatisticsDB connects to TEST_DATABASE_URL or skips the test
func openStatisticsDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test. Set TEST_DATABASE_URL to run.")
	}
	db, err := database.Open(dsn, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type statisticsSeed struct {
	teacher model.User
	active  model.Course
	idle    model.Course
	student model.User
}

// seedStatistics creates a published course with two enrollments and payments,
// plus a draft course with no activity, both taught by one teacher
func seedStatistics(t *testing.T, db *gorm.DB) statisticsSeed {
	t.Helper()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	user := func(name, role string) model.User {
		u := model.User{
			Name:         name,
			Email:        fmt.Sprintf("%s-%s@example.com", name, suffix),
			PasswordHash: "x",
			Role:         role,
			Status:       model.UserStatusActive,
		}
		require.NoError(t, db.Create(&u).Error)
		return u
	}

	var s statisticsSeed
	s.teacher = user("teacher", model.RoleTeacher)
	s.student = user("ana", model.RoleStudent)
	other := user("ben", model.RoleStudent)

	s.active = model.Course{Name: "Stats Algebra " + suffix, Status: model.CourseStatusPublished, InstructorID: &s.teacher.ID}
	require.NoError(t, db.Create(&s.active).Error)
	s.idle = model.Course{Name: "Stats Geometry " + suffix, Status: model.CourseStatusDraft, InstructorID: &s.teacher.ID}
	require.NoError(t, db.Create(&s.idle).Error)

	require.NoError(t, db.Create(&[]model.Enrollment{
		{UserID: s.student.ID, CourseID: s.active.ID, Status: model.EnrollmentStatusActive, CompletionPercentage: 40},
		{UserID: other.ID, CourseID: s.active.ID, Status: model.EnrollmentStatusCompleted, CompletionPercentage: 100},
	}).Error)
	require.NoError(t, db.Create(&[]model.Payment{
		{TransactionID: "tx-a-" + suffix, UserID: s.student.ID, CourseID: s.active.ID, Amount: 100, Status: model.PaymentStatusCompleted},
		{TransactionID: "tx-b-" + suffix, UserID: other.ID, CourseID: s.active.ID, Amount: 50, Status: model.PaymentStatusCompleted},
		{TransactionID: "tx-c-" + suffix, UserID: s.student.ID, CourseID: s.active.ID, Amount: 30, Status: model.PaymentStatusPending},
	}).Error)

	t.Cleanup(func() {
		db.Delete(&model.Course{}, []uint{s.active.ID, s.idle.ID})
		db.Delete(&model.User{}, []uint{s.teacher.ID, s.student.ID, other.ID})
	})
	return s
}

func TestDailySnapshotsUpsertPerDayAndCourse(t *testing.T) {
	db := openStatisticsDB(t)
	ctx := context.Background()
	seed := seedStatistics(t, db)

	day := time.Date(2001, 2, 3, 15, 30, 0, 0, time.UTC)
	snapshotDay := dayStart(day)
	t.Cleanup(func() { db.Where("date = ?", snapshotDay).Delete(&model.Statistics{}) })

	svc := NewStatisticsService(db)
	svc.now = func() time.Time { return day }

	require.NoError(t, svc.GenerateDailyStatistics(ctx))

	// a later payment on the same day overwrites the snapshot instead of adding one
	require.NoError(t, db.Create(&model.Payment{
		TransactionID: fmt.Sprintf("tx-late-%d", time.Now().UnixNano()),
		UserID:        seed.student.ID,
		CourseID:      seed.active.ID,
		Amount:        25,
		Status:        model.PaymentStatusCompleted,
	}).Error)
	require.NoError(t, svc.GenerateDailyStatistics(ctx))

	var general []model.Statistics
	require.NoError(t, db.Where("date = ?", snapshotDay).Find(&general).Error)
	require.Len(t, general, 1)
	assert.GreaterOrEqual(t, general[0].TotalRevenue, 175.0)
	assert.GreaterOrEqual(t, general[0].TotalStudents, int64(2))
	assert.GreaterOrEqual(t, general[0].ActiveCourses, int64(1))

	forCourse := func(dest interface{}, courseID uint) {
		t.Helper()
		require.NoError(t, db.Where("date = ? AND course_id = ?", snapshotDay, courseID).Find(dest).Error)
	}

	var enrollments []model.EnrollmentStatistics
	forCourse(&enrollments, seed.active.ID)
	require.Len(t, enrollments, 1)
	assert.Equal(t, int64(2), enrollments[0].TotalEnrollments)
	assert.Equal(t, int64(1), enrollments[0].ActiveEnrollments)

	var revenue []model.RevenueStatistics
	forCourse(&revenue, seed.active.ID)
	require.Len(t, revenue, 1)
	assert.InDelta(t, 175.0, revenue[0].Revenue, 0.001)
	assert.Equal(t, int64(3), revenue[0].PaymentCount)

	var completions []model.CompletionStatistics
	forCourse(&completions, seed.active.ID)
	require.Len(t, completions, 1)
	assert.Equal(t, int64(1), completions[0].CompletedCount)
	assert.InDelta(t, 70.0, completions[0].AverageCompletionRate, 0.001)

	// a course without any activity still gets zero rows for the day
	var idleEnrollments []model.EnrollmentStatistics
	forCourse(&idleEnrollments, seed.idle.ID)
	require.Len(t, idleEnrollments, 1)
	assert.Zero(t, idleEnrollments[0].TotalEnrollments)
	var idleRevenue []model.RevenueStatistics
	forCourse(&idleRevenue, seed.idle.ID)
	require.Len(t, idleRevenue, 1)
	assert.Zero(t, idleRevenue[0].Revenue)
	var idleCompletions []model.CompletionStatistics
	forCourse(&idleCompletions, seed.idle.ID)
	require.Len(t, idleCompletions, 1)
	assert.Zero(t, idleCompletions[0].CompletedCount)
}

func TestInstructorDashboard(t *testing.T) {
	db := openStatisticsDB(t)
	seed := seedStatistics(t, db)

	stats, err := NewStatisticsService(db).Dashboard(context.Background(), &seed.teacher.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalStudents)
	assert.Equal(t, int64(2), stats.TotalCourses)
	assert.Equal(t, int64(1), stats.ActiveCourses)
	assert.InDelta(t, 150.0, stats.TotalRevenue, 0.001, "pending payments are not revenue")
	assert.InDelta(t, 70.0, stats.AverageCompletionRate, 0.001)

	require.Len(t, stats.TopCoursesByEnrollment, 1)
	assert.Equal(t, seed.active.ID, stats.TopCoursesByEnrollment[0].ID)
	assert.Equal(t, int64(2), stats.TopCoursesByEnrollment[0].Enrollments)
	require.Len(t, stats.TopCoursesByRevenue, 1)
	assert.InDelta(t, 150.0, stats.TopCoursesByRevenue[0].Revenue, 0.001)

	require.Len(t, stats.CourseCompletionStats, 1)
	assert.Equal(t, 70, stats.CourseCompletionStats[0].Value)
	assert.Equal(t, courseColors[0], stats.CourseCompletionStats[0].Color)

	require.NotEmpty(t, stats.MonthlyCompletionAndEnrollment)
	var enrolled, completed int64
	for _, m := range stats.MonthlyCompletionAndEnrollment {
		enrolled += m.Enrollments
		completed += m.Completions
	}
	assert.Equal(t, int64(2), enrolled)
	assert.Equal(t, int64(1), completed)
}
