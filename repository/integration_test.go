package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/edu-platform-api/database"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to TEST_DATABASE_URL or skips the test
func openTestDB(t *testing.T) *gorm.DB {
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

func seedGroup(t *testing.T, db *gorm.DB, capacity int) (*model.Group, []model.User) {
	t.Helper()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())

	course := model.Course{Name: "Course " + suffix, Status: model.CourseStatusDraft}
	require.NoError(t, db.Create(&course).Error)

	group := model.Group{GroupNumber: "G-" + suffix, MaxStudents: capacity, CourseID: course.ID}
	require.NoError(t, db.Create(&group).Error)

	var students []model.User
	for i := 0; i < 4; i++ {
		u := model.User{
			Name:         fmt.Sprintf("Student %d", i),
			Email:        fmt.Sprintf("s%d-%s@example.com", i, suffix),
			PasswordHash: "x",
			Role:         model.RoleStudent,
		}
		require.NoError(t, db.Create(&u).Error)
		students = append(students, u)
	}
	t.Cleanup(func() { db.Delete(&model.Course{}, course.ID) })
	return &group, students
}

func countMembers(t *testing.T, db *gorm.DB, groupID uint) (rows int64, counter int) {
	t.Helper()
	require.NoError(t, db.Model(&model.GroupStudent{}).Where("group_id = ?", groupID).Count(&rows).Error)
	var g model.Group
	require.NoError(t, db.First(&g, groupID).Error)
	return rows, g.CurrentStudents
}

func TestGroupMembershipKeepsCounterInSync(t *testing.T) {
	db := openTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()
	group, students := seedGroup(t, db, 2)

	require.NoError(t, repo.AddMember(ctx, Membership{GroupID: group.ID, StudentID: students[0].ID}))
	require.NoError(t, repo.AddMember(ctx, Membership{GroupID: group.ID, StudentID: students[1].ID}))

	err := repo.AddMember(ctx, Membership{GroupID: group.ID, StudentID: students[2].ID})
	assert.ErrorIs(t, err, apperror.ErrCapacityExceeded)

	rows, counter := countMembers(t, db, group.ID)
	assert.Equal(t, int64(2), rows)
	assert.Equal(t, 2, counter)

	require.NoError(t, repo.RemoveMember(ctx, group.ID, students[0].ID))
	err = repo.RemoveMember(ctx, group.ID, students[0].ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = repo.AddMember(ctx, Membership{GroupID: group.ID, StudentID: students[1].ID})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	rows, counter = countMembers(t, db, group.ID)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, 1, counter)

	assert.ErrorIs(t, repo.UpdateMaxStudents(ctx, group.ID, 0), apperror.ErrInvalidArgument)
	assert.NoError(t, repo.UpdateMaxStudents(ctx, group.ID, 1))
	assert.ErrorIs(t, repo.UpdateMaxStudents(ctx, 0, 3), apperror.ErrNotFound)
}

func TestConcurrentAddMemberNeverOverfills(t *testing.T) {
	db := openTestDB(t)
	repo := NewGroupRepository(db)
	group, students := seedGroup(t, db, 1)

	var wg sync.WaitGroup
	errs := make([]error, len(students))
	for i, s := range students {
		wg.Add(1)
		go func(i int, studentID uint) {
			defer wg.Done()
			errs[i] = repo.AddMember(context.Background(), Membership{GroupID: group.ID, StudentID: studentID})
		}(i, s.ID)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, apperror.ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 1, ok)

	rows, counter := countMembers(t, db, group.ID)
	assert.Equal(t, int64(1), rows)
	assert.Equal(t, 1, counter)
}

func TestGroupUpdateRollsBackCapacityOnConflict(t *testing.T) {
	db := openTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()
	group, _ := seedGroup(t, db, 5)
	other, _ := seedGroup(t, db, 5)

	capacity := 9
	renamed := *group
	renamed.GroupNumber = other.GroupNumber
	err := repo.Update(ctx, &renamed, nil, &capacity)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	var stored model.Group
	require.NoError(t, db.First(&stored, group.ID).Error)
	assert.Equal(t, 5, stored.MaxStudents)
	assert.Equal(t, group.GroupNumber, stored.GroupNumber)

	require.NoError(t, repo.Update(ctx, group, nil, &capacity))
	require.NoError(t, db.First(&stored, group.ID).Error)
	assert.Equal(t, 9, stored.MaxStudents)
}
