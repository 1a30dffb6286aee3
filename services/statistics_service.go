package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// courseColors is cycled through for per-course chart series
var courseColors = []string{
	"#3b82f6", "#10b981", "#f59e0b", "#8b5cf6", "#ec4899",
	"#ef4444", "#14b8a6", "#6366f1", "#22c55e", "#eab308",
}

// StatisticsService builds dashboards and the daily snapshots
type StatisticsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(db *gorm.DB) *StatisticsService {
	return &StatisticsService{db: db, now: time.Now}
}

// MonthlyAmount is one point of the revenue series
type MonthlyAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// MonthlyProgress compares enrollments and completions in one month
type MonthlyProgress struct {
	Name        string `json:"name"`
	Enrollments int64  `json:"enrollments"`
	Completions int64  `json:"completions"`
}

// TopCourse is one row of a top-5 ranking
type TopCourse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Enrollments int64   `json:"enrollments,omitempty"`
	Revenue     float64 `json:"revenue,omitempty"`
}

// CourseCompletion is the average completion of one course
type CourseCompletion struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Value int    `json:"value"`
}

// DashboardStats represents the admin or instructor dashboard
type DashboardStats struct {
	TotalStudents                  int64              `json:"total_students"`
	TotalCourses                   int64              `json:"total_courses"`
	ActiveCourses                  int64              `json:"active_courses"`
	TotalRevenue                   float64            `json:"total_revenue"`
	AverageCompletionRate          float64            `json:"average_completion_rate"`
	NewStudentsThisMonth           int64              `json:"new_students_this_month"`
	RevenueThisMonth               float64            `json:"revenue_this_month"`
	MonthlyRevenue                 []MonthlyAmount    `json:"monthly_revenue"`
	MonthlyCompletionAndEnrollment []MonthlyProgress  `json:"monthly_completion_and_enrollment"`
	TopCoursesByEnrollment         []TopCourse        `json:"top_courses_by_enrollment"`
	TopCoursesByRevenue            []TopCourse        `json:"top_courses_by_revenue"`
	CourseCompletionStats          []CourseCompletion `json:"course_completion_stats"`
}

type monthCount struct {
	Month string
	Count int64
}

// Dashboard aggregates platform figures. With instructorID set, course,
// enrollment and revenue figures only cover that instructor's courses.
func (s *StatisticsService) Dashboard(ctx context.Context, instructorID *uint) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	sixMonthsAgo := monthStart.AddDate(0, -5, 0)
	stats := &DashboardStats{}

	courses := func() *gorm.DB {
		q := db.Model(&model.Course{})
		if instructorID != nil {
			q = q.Where("instructor_id = ?", *instructorID)
		}
		return q
	}
	payments := func() *gorm.DB {
		q := db.Model(&model.Payment{}).Where("payments.status = ?", model.PaymentStatusCompleted)
		if instructorID != nil {
			q = q.Joins("JOIN courses ON courses.id = payments.course_id").
				Where("courses.instructor_id = ?", *instructorID)
		}
		return q
	}
	enrollments := func() *gorm.DB {
		q := db.Model(&model.Enrollment{})
		if instructorID != nil {
			q = q.Joins("JOIN courses ON courses.id = enrollments.course_id").
				Where("courses.instructor_id = ?", *instructorID)
		}
		return q
	}
	students := func() *gorm.DB {
		q := db.Model(&model.User{}).Where("users.role = ?", model.RoleStudent)
		if instructorID != nil {
			q = q.Where(`EXISTS (SELECT 1 FROM enrollments e JOIN courses c ON c.id = e.course_id
				WHERE e.user_id = users.id AND c.instructor_id = ?)`, *instructorID)
		}
		return q
	}

	if err := students().Count(&stats.TotalStudents).Error; err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	if err := students().Where("users.created_at >= ?", monthStart).Count(&stats.NewStudentsThisMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to count new students: %w", err)
	}
	if err := courses().Count(&stats.TotalCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	if err := courses().Where("status = ?", model.CourseStatusPublished).Count(&stats.ActiveCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to count active courses: %w", err)
	}

	if err := payments().Select("COALESCE(SUM(payments.amount), 0)").Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if err := payments().Where("payments.created_at >= ?", monthStart).
		Select("COALESCE(SUM(payments.amount), 0)").Scan(&stats.RevenueThisMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to sum monthly revenue: %w", err)
	}
	if err := payments().Where("payments.created_at >= ?", sixMonthsAgo).
		Select("to_char(payments.created_at, 'YYYY-MM') AS month, SUM(payments.amount) AS amount").
		Group("month").Order("month ASC").
		Scan(&stats.MonthlyRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to build revenue series: %w", err)
	}

	if err := enrollments().Select("COALESCE(AVG(enrollments.completion_percentage), 0)").
		Scan(&stats.AverageCompletionRate).Error; err != nil {
		return nil, fmt.Errorf("failed to average completion: %w", err)
	}

	if err := enrollments().
		Joins("JOIN courses top ON top.id = enrollments.course_id").
		Select("top.id AS id, top.name AS name, COUNT(*) AS enrollments").
		Group("top.id, top.name").Order("COUNT(*) DESC").Limit(5).
		Scan(&stats.TopCoursesByEnrollment).Error; err != nil {
		return nil, fmt.Errorf("failed to rank courses by enrollment: %w", err)
	}
	if err := payments().
		Joins("JOIN courses top ON top.id = payments.course_id").
		Select("top.id AS id, top.name AS name, SUM(payments.amount) AS revenue").
		Group("top.id, top.name").Order("SUM(payments.amount) DESC").Limit(5).
		Scan(&stats.TopCoursesByRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to rank courses by revenue: %w", err)
	}

	var perCourse []struct {
		Name    string
		Average float64
	}
	if err := enrollments().
		Joins("JOIN courses pc ON pc.id = enrollments.course_id").
		Select("pc.name AS name, AVG(enrollments.completion_percentage) AS average").
		Group("pc.name").Order("pc.name ASC").
		Scan(&perCourse).Error; err != nil {
		return nil, fmt.Errorf("failed to average completion per course: %w", err)
	}
	stats.CourseCompletionStats = make([]CourseCompletion, 0, len(perCourse))
	for i, row := range perCourse {
		stats.CourseCompletionStats = append(stats.CourseCompletionStats, CourseCompletion{
			Name:  row.Name,
			Value: int(row.Average + 0.5),
			Color: courseColors[i%len(courseColors)],
		})
	}

	var enrolledByMonth, completedByMonth []monthCount
	monthly := "to_char(enrollments.updated_at, 'YYYY-MM') AS month, COUNT(*) AS count"
	if err := enrollments().Where("enrollments.updated_at >= ?", sixMonthsAgo).
		Select(monthly).Group("month").Scan(&enrolledByMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to count monthly enrollments: %w", err)
	}
	if err := enrollments().Where("enrollments.updated_at >= ? AND enrollments.status = ?", sixMonthsAgo, model.EnrollmentStatusCompleted).
		Select(monthly).Group("month").Scan(&completedByMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to count monthly completions: %w", err)
	}
	stats.MonthlyCompletionAndEnrollment = mergeMonthly(enrolledByMonth, completedByMonth)

	return stats, nil
}

// mergeMonthly joins both series on month, filling gaps with zero, sorted by month
func mergeMonthly(enrolled, completed []monthCount) []MonthlyProgress {
	byMonth := make(map[string]*MonthlyProgress)
	get := func(m string) *MonthlyProgress {
		p, ok := byMonth[m]
		if !ok {
			p = &MonthlyProgress{Name: m}
			byMonth[m] = p
		}
		return p
	}
	for _, e := range enrolled {
		get(e.Month).Enrollments = e.Count
	}
	for _, c := range completed {
		get(c.Month).Completions = c.Count
	}

	out := make([]MonthlyProgress, 0, len(byMonth))
	for _, p := range byMonth {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func snapshotQuery(db *gorm.DB, f repository.SnapshotFilter, perCourse bool) *gorm.DB {
	if perCourse {
		db = db.Preload("Course")
		if f.CourseID != nil {
			db = db.Where("course_id = ?", *f.CourseID)
		}
	}
	if f.From != nil {
		db = db.Where("date >= ?", dayStart(*f.From))
	}
	if f.To != nil {
		db = db.Where("date <= ?", dayStart(*f.To))
	}
	return db.Order("date DESC")
}

func (s *StatisticsService) General(ctx context.Context, f repository.SnapshotFilter) ([]model.Statistics, error) {
	var rows []model.Statistics
	err := snapshotQuery(s.db.WithContext(ctx), f, false).Find(&rows).Error
	return rows, err
}

func (s *StatisticsService) Enrollments(ctx context.Context, f repository.SnapshotFilter) ([]model.EnrollmentStatistics, error) {
	var rows []model.EnrollmentStatistics
	err := snapshotQuery(s.db.WithContext(ctx), f, true).Find(&rows).Error
	return rows, err
}

func (s *StatisticsService) Revenue(ctx context.Context, f repository.SnapshotFilter) ([]model.RevenueStatistics, error) {
	var rows []model.RevenueStatistics
	err := snapshotQuery(s.db.WithContext(ctx), f, true).Find(&rows).Error
	return rows, err
}

func (s *StatisticsService) Completions(ctx context.Context, f repository.SnapshotFilter) ([]model.CompletionStatistics, error) {
	var rows []model.CompletionStatistics
	err := snapshotQuery(s.db.WithContext(ctx), f, true).Find(&rows).Error
	return rows, err
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type courseAggregate struct {
	CourseID uint
	Count    int64
	Active   int64
	Amount   float64
	Average  float64
}

// GenerateDailyStatistics recomputes today's snapshots from scratch. Running
// it again on the same day overwrites that day's rows.
func (s *StatisticsService) GenerateDailyStatistics(ctx context.Context) error {
	today := dayStart(s.now())
	start := time.Now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		general := model.Statistics{Date: today}
		if err := tx.Model(&model.User{}).
			Where("role = ? AND status = ?", model.RoleStudent, model.UserStatusActive).
			Count(&general.TotalStudents).Error; err != nil {
			return fmt.Errorf("failed to count students: %w", err)
		}
		if err := tx.Model(&model.Course{}).Where("status = ?", model.CourseStatusPublished).
			Count(&general.ActiveCourses).Error; err != nil {
			return fmt.Errorf("failed to count active courses: %w", err)
		}
		if err := tx.Model(&model.Payment{}).Where("status = ?", model.PaymentStatusCompleted).
			Select("COALESCE(SUM(amount), 0)").Scan(&general.TotalRevenue).Error; err != nil {
			return fmt.Errorf("failed to sum revenue: %w", err)
		}
		if err := tx.Model(&model.Enrollment{}).
			Select("COALESCE(AVG(completion_percentage), 0)").Scan(&general.CompletionRate).Error; err != nil {
			return fmt.Errorf("failed to average completion: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_students", "active_courses", "total_revenue", "completion_rate", "updated_at"}),
		}).Create(&general).Error; err != nil {
			return fmt.Errorf("failed to store general snapshot: %w", err)
		}

		var courseIDs []uint
		if err := tx.Model(&model.Course{}).Order("id").Pluck("id", &courseIDs).Error; err != nil {
			return err
		}
		if len(courseIDs) == 0 {
			return nil
		}

		enrollments, err := aggregateByCourse(tx.Model(&model.Enrollment{}).
			Select("course_id, COUNT(*) AS count, COUNT(*) FILTER (WHERE status = ?) AS active", model.EnrollmentStatusActive))
		if err != nil {
			return fmt.Errorf("failed to aggregate enrollments: %w", err)
		}
		revenue, err := aggregateByCourse(tx.Model(&model.Payment{}).
			Where("status = ?", model.PaymentStatusCompleted).
			Select("course_id, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount"))
		if err != nil {
			return fmt.Errorf("failed to aggregate revenue: %w", err)
		}
		completions, err := aggregateByCourse(tx.Model(&model.Enrollment{}).
			Select("course_id, COUNT(*) FILTER (WHERE completion_percentage >= 100) AS count, COALESCE(AVG(completion_percentage), 0) AS average"))
		if err != nil {
			return fmt.Errorf("failed to aggregate completions: %w", err)
		}

		enrollmentRows := make([]model.EnrollmentStatistics, 0, len(courseIDs))
		revenueRows := make([]model.RevenueStatistics, 0, len(courseIDs))
		completionRows := make([]model.CompletionStatistics, 0, len(courseIDs))
		for _, id := range courseIDs {
			e, r, c := enrollments[id], revenue[id], completions[id]
			enrollmentRows = append(enrollmentRows, model.EnrollmentStatistics{
				Date: today, CourseID: id, TotalEnrollments: e.Count, ActiveEnrollments: e.Active,
			})
			revenueRows = append(revenueRows, model.RevenueStatistics{
				Date: today, CourseID: id, Revenue: r.Amount, PaymentCount: r.Count,
			})
			completionRows = append(completionRows, model.CompletionStatistics{
				Date: today, CourseID: id, CompletedCount: c.Count, AverageCompletionRate: c.Average,
			})
		}

		perDay := []clause.Column{{Name: "date"}, {Name: "course_id"}}
		if err := tx.Omit("Course").Clauses(clause.OnConflict{
			Columns:   perDay,
			DoUpdates: clause.AssignmentColumns([]string{"total_enrollments", "active_enrollments", "updated_at"}),
		}).Create(&enrollmentRows).Error; err != nil {
			return fmt.Errorf("failed to store enrollment snapshots: %w", err)
		}
		if err := tx.Omit("Course").Clauses(clause.OnConflict{
			Columns:   perDay,
			DoUpdates: clause.AssignmentColumns([]string{"revenue", "payment_count", "updated_at"}),
		}).Create(&revenueRows).Error; err != nil {
			return fmt.Errorf("failed to store revenue snapshots: %w", err)
		}
		if err := tx.Omit("Course").Clauses(clause.OnConflict{
			Columns:   perDay,
			DoUpdates: clause.AssignmentColumns([]string{"completed_count", "average_completion_rate", "updated_at"}),
		}).Create(&completionRows).Error; err != nil {
			return fmt.Errorf("failed to store completion snapshots: %w", err)
		}

		log.Printf("[STATS] snapshot for %s: %d courses in %s", today.Format("2006-01-02"), len(courseIDs), time.Since(start))
		return nil
	})
}

func aggregateByCourse(q *gorm.DB) (map[uint]courseAggregate, error) {
	var rows []courseAggregate
	if err := q.Group("course_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]courseAggregate, len(rows))
	for _, r := range rows {
		out[r.CourseID] = r
	}
	return out, nil
}
