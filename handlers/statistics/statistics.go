package statistics

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
)

// StatisticsHandler serves the dashboard and the daily snapshots
type StatisticsHandler struct {
	stats *services.StatisticsService
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(stats *services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

// GetDashboard handles GET /statistics/dashboard.
// Teachers always see their own courses; admins may pass instructor_id.
func (h *StatisticsHandler) GetDashboard(c *fiber.Ctx) error {
	scope, err := handlers.QueryID(c, "instructor_id")
	if err != nil {
		return err
	}
	if role, _ := middleware.GetUserRole(c); role == model.RoleTeacher {
		id, _ := middleware.GetUserID(c)
		scope = &id
	}

	stats, err := h.stats.Dashboard(c.UserContext(), scope)
	if err != nil {
		return err
	}
	return response.Success(c, stats)
}

// GetGeneral handles GET /statistics/general
func (h *StatisticsHandler) GetGeneral(c *fiber.Ctx) error {
	f, err := snapshotFilter(c)
	if err != nil {
		return err
	}
	rows, err := h.stats.General(c.UserContext(), f)
	if err != nil {
		return err
	}
	return response.Success(c, rows)
}

// GetEnrollments handles GET /statistics/enrollments
func (h *StatisticsHandler) GetEnrollments(c *fiber.Ctx) error {
	f, err := snapshotFilter(c)
	if err != nil {
		return err
	}
	rows, err := h.stats.Enrollments(c.UserContext(), f)
	if err != nil {
		return err
	}
	return response.Success(c, rows)
}

// GetRevenue handles GET /statistics/revenue
func (h *StatisticsHandler) GetRevenue(c *fiber.Ctx) error {
	f, err := snapshotFilter(c)
	if err != nil {
		return err
	}
	rows, err := h.stats.Revenue(c.UserContext(), f)
	if err != nil {
		return err
	}
	return response.Success(c, rows)
}

// GetCompletions handles GET /statistics/completions
func (h *StatisticsHandler) GetCompletions(c *fiber.Ctx) error {
	f, err := snapshotFilter(c)
	if err != nil {
		return err
	}
	rows, err := h.stats.Completions(c.UserContext(), f)
	if err != nil {
		return err
	}
	return response.Success(c, rows)
}

// Generate handles POST /statistics/generate
func (h *StatisticsHandler) Generate(c *fiber.Ctx) error {
	if err := h.stats.GenerateDailyStatistics(c.UserContext()); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Statistics generated", nil)
}

func snapshotFilter(c *fiber.Ctx) (repository.SnapshotFilter, error) {
	var f repository.SnapshotFilter
	courseID, err := handlers.QueryID(c, "courseId")
	if err != nil {
		return f, err
	}
	f.CourseID = courseID
	if f.From, err = queryDate(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return f, err
	}
	return f, nil
}

// queryDate accepts 2006-01-02 or RFC 3339
func queryDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name+" date")
}
