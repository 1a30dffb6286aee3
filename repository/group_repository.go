package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Membership is one student joining a group, optionally through an application
type Membership struct {
	GroupID       uint
	StudentID     uint
	ApplicationID *uint
}

// GroupRepository persists groups, their schedule and their members.
// Member counts are changed only by AddMember, RemoveMember and
// ReplaceApplicationMember, each of which keeps current_students equal to the
// number of group_students rows inside a single transaction.
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	FindByID(ctx context.Context, id uint) (*model.Group, error)
	GroupNumberTaken(ctx context.Context, number string, excludeID uint) (bool, error)
	List(ctx context.Context, courseID *uint) ([]model.Group, error)
	AgeRanges(ctx context.Context) ([]string, error)
	Update(ctx context.Context, group *model.Group, schedule []model.GroupSchedule, capacity *int) error
	UpdateMaxStudents(ctx context.Context, id uint, capacity int) error
	Delete(ctx context.Context, id uint) error

	AddMember(ctx context.Context, m Membership) error
	RemoveMember(ctx context.Context, groupID, studentID uint) error
	ReplaceApplicationMember(ctx context.Context, applicationID uint, m Membership) error
	ListMembers(ctx context.Context, groupID uint) ([]model.GroupStudent, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository returns the postgres implementation
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return duplicate(err, fmt.Sprintf("group number %q", group.GroupNumber))
	}
	return nil
}

func (r *groupRepository) FindByID(ctx context.Context, id uint) (*model.Group, error) {
	var g model.Group
	err := r.db.WithContext(ctx).
		Preload("Schedule").
		Preload("Course").
		First(&g, id).Error
	if err != nil {
		return nil, notFound(err, "group", id)
	}
	return &g, nil
}

func (r *groupRepository) GroupNumberTaken(ctx context.Context, number string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Group{}).Where("group_number = ?", number)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return exists(q)
}

func (r *groupRepository) List(ctx context.Context, courseID *uint) ([]model.Group, error) {
	q := r.db.WithContext(ctx).Preload("Schedule").Preload("Course").Order("id ASC")
	if courseID != nil {
		q = q.Where("course_id = ?", *courseID)
	}
	var groups []model.Group
	if err := q.Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) AgeRanges(ctx context.Context) ([]string, error) {
	var ranges []string
	err := r.db.WithContext(ctx).
		Model(&model.Group{}).
		Where("age_range IS NOT NULL AND age_range <> ''").
		Distinct().
		Pluck("age_range", &ranges).Error
	return ranges, err
}

// Update saves the scalar fields and, when schedule is non-nil, replaces the schedule wholesale.
// A non-nil capacity changes max_students in the same transaction, under the
// same guard as UpdateMaxStudents. current_students is never touched here.
func (r *groupRepository) Update(ctx context.Context, group *model.Group, schedule []model.GroupSchedule, capacity *int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if capacity != nil {
			if err := setCapacity(tx, group.ID, *capacity); err != nil {
				return err
			}
		}
		res := tx.Model(&model.Group{}).Where("id = ?", group.ID).Updates(map[string]interface{}{
			"group_number": group.GroupNumber,
			"age_range":    group.AgeRange,
			"course_id":    group.CourseID,
		})
		if res.Error != nil {
			return duplicate(res.Error, fmt.Sprintf("group number %q", group.GroupNumber))
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("group", group.ID)
		}
		if schedule == nil {
			return nil
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&model.GroupSchedule{}).Error; err != nil {
			return err
		}
		if len(schedule) == 0 {
			return nil
		}
		for i := range schedule {
			schedule[i].ID = 0
			schedule[i].GroupID = group.ID
		}
		return tx.Create(&schedule).Error
	})
}

// UpdateMaxStudents lowers or raises capacity only when it stays >= current_students.
// The comparison happens in the UPDATE itself so a concurrent AddMember cannot slip in between.
func (r *groupRepository) UpdateMaxStudents(ctx context.Context, id uint, capacity int) error {
	return setCapacity(r.db.WithContext(ctx), id, capacity)
}

func setCapacity(db *gorm.DB, id uint, capacity int) error {
	res := db.Model(&model.Group{}).
		Where("id = ? AND current_students <= ?", id, capacity).
		Update("max_students", capacity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var g model.Group
	if err := db.Select("id", "current_students").First(&g, id).Error; err != nil {
		return notFound(err, "group", id)
	}
	return apperror.Invalid("maxStudents %d is below the %d students already in group %d", capacity, g.CurrentStudents, id)
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Group{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("group", id)
	}
	return nil
}

func (r *groupRepository) AddMember(ctx context.Context, m Membership) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return addMember(tx, m)
	})
}

// addMember locks the group row, checks capacity and duplicates, then inserts
// the membership and bumps the counter. Callers provide the transaction.
func addMember(tx *gorm.DB, m Membership) error {
	var g model.Group
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "max_students", "current_students").
		First(&g, m.GroupID).Error
	if err != nil {
		return notFound(err, "group", m.GroupID)
	}
	if g.CurrentStudents >= g.MaxStudents {
		return fmt.Errorf("%w: group %d has %d of %d seats taken",
			apperror.ErrCapacityExceeded, g.ID, g.CurrentStudents, g.MaxStudents)
	}

	taken, err := exists(tx.Model(&model.GroupStudent{}).
		Where("group_id = ? AND student_id = ?", m.GroupID, m.StudentID))
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict("student %d is already in group %d", m.StudentID, m.GroupID)
	}

	row := model.GroupStudent{GroupID: m.GroupID, StudentID: m.StudentID, ApplicationID: m.ApplicationID}
	if err := tx.Create(&row).Error; err != nil {
		return duplicate(err, fmt.Sprintf("student %d in group %d", m.StudentID, m.GroupID))
	}

	return tx.Model(&model.Group{}).
		Where("id = ?", m.GroupID).
		UpdateColumn("current_students", gorm.Expr("current_students + 1")).Error
}

// decrementExpr never lets the counter go negative
var decrementExpr = gorm.Expr("CASE WHEN current_students > 0 THEN current_students - 1 ELSE 0 END")

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, studentID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock first so the delete and the decrement are seen together
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&model.Group{}, groupID).Error; err != nil {
			return notFound(err, "group", groupID)
		}
		res := tx.Where("group_id = ? AND student_id = ?", groupID, studentID).Delete(&model.GroupStudent{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: student %d is not in group %d", apperror.ErrNotFound, studentID, groupID)
		}
		return tx.Model(&model.Group{}).
			Where("id = ?", groupID).
			UpdateColumn("current_students", decrementExpr).Error
	})
}

// ReplaceApplicationMember drops whatever membership the application created
// before and adds m, all or nothing. A full target group rolls back the removal.
func (r *groupRepository) ReplaceApplicationMember(ctx context.Context, applicationID uint, m Membership) error {
	m.ApplicationID = &applicationID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior []model.GroupStudent
		if err := tx.Where("application_id = ?", applicationID).Find(&prior).Error; err != nil {
			return err
		}
		for _, p := range prior {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&model.Group{}, p.GroupID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			res := tx.Where("group_id = ? AND student_id = ?", p.GroupID, p.StudentID).Delete(&model.GroupStudent{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			if err := tx.Model(&model.Group{}).Where("id = ?", p.GroupID).
				UpdateColumn("current_students", decrementExpr).Error; err != nil {
				return err
			}
		}
		return addMember(tx, m)
	})
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID uint) ([]model.GroupStudent, error) {
	var members []model.GroupStudent
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}
