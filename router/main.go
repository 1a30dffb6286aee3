package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/handlers"
	application_handlers "github.com/sahilchouksey/edu-platform-api/handlers/application"
	auth_handlers "github.com/sahilchouksey/edu-platform-api/handlers/auth"
	category_handlers "github.com/sahilchouksey/edu-platform-api/handlers/category"
	course_handlers "github.com/sahilchouksey/edu-platform-api/handlers/course"
	enrollment_handlers "github.com/sahilchouksey/edu-platform-api/handlers/enrollment"
	file_handlers "github.com/sahilchouksey/edu-platform-api/handlers/file"
	group_handlers "github.com/sahilchouksey/edu-platform-api/handlers/group"
	lesson_handlers "github.com/sahilchouksey/edu-platform-api/handlers/lesson"
	notification_handlers "github.com/sahilchouksey/edu-platform-api/handlers/notification"
	payment_handlers "github.com/sahilchouksey/edu-platform-api/handlers/payment"
	post_handlers "github.com/sahilchouksey/edu-platform-api/handlers/post"
	statistics_handlers "github.com/sahilchouksey/edu-platform-api/handlers/statistics"
	user_handlers "github.com/sahilchouksey/edu-platform-api/handlers/user"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
)

// Services is everything the HTTP layer calls into
type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Categories    *services.CategoryService
	Courses       *services.CourseService
	Groups        *services.GroupService
	Applications  *services.ApplicationService
	Enrollments   *services.EnrollmentService
	Lessons       *services.LessonService
	Blog          *services.PostService[model.BlogPost, *model.BlogPost]
	News          *services.PostService[model.News, *model.News]
	Notifications *services.NotificationService
	Statistics    *services.StatisticsService
	Payments      *services.PaymentService
	Files         *services.FileService
}

// Config carries the HTTP-level settings
type Config struct {
	AllowedOrigins    string
	RateLimitRequests int
	// UploadDir is served under /uploads when files are kept on disk
	UploadDir string
}

var (
	adminRoles  = []string{model.RoleAdmin, model.RoleSuperAdmin}
	staffRoles  = []string{model.RoleAdmin, model.RoleSuperAdmin, model.RoleTeacher}
	editorRoles = []string{model.RoleAdmin, model.RoleSuperAdmin, model.RoleTeacher, model.RoleEditor}
)

func SetupRoutes(
	app *fiber.App,
	svc Services,
	authMiddleware *middleware.AuthMiddleware,
	bruteForceProtection *middleware.BruteForceProtection,
	health *handlers.HealthHandler,
	cfg Config,
) {
	authHandler := auth_handlers.NewAuthHandler(svc.Auth, svc.Users, bruteForceProtection)
	userHandler := user_handlers.NewUserHandler(svc.Users)
	categoryHandler := category_handlers.NewCategoryHandler(svc.Categories)
	courseHandler := course_handlers.NewCourseHandler(svc.Courses)
	groupHandler := group_handlers.NewGroupHandler(svc.Groups)
	applicationHandler := application_handlers.NewApplicationHandler(svc.Applications)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(svc.Enrollments)
	lessonHandler := lesson_handlers.NewLessonHandler(svc.Lessons)
	blogHandler := post_handlers.NewPostHandler[model.BlogPost](svc.Blog, "Blog post")
	newsHandler := post_handlers.NewPostHandler[model.News](svc.News, "News")
	notificationHandler := notification_handlers.NewNotificationHandler(svc.Notifications)
	statisticsHandler := statistics_handlers.NewStatisticsHandler(svc.Statistics)
	paymentHandler := payment_handlers.NewPaymentHandler(svc.Payments)
	fileHandler := file_handlers.NewFileHandler(svc.Files)

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   1 * time.Minute,
	})

	required := authMiddleware.Required()
	admin := []fiber.Handler{required, middleware.RequireRole(adminRoles...)}
	staff := []fiber.Handler{required, middleware.RequireRole(staffRoles...)}
	editors := []fiber.Handler{required, middleware.RequireRole(editorRoles...)}

	// Health check endpoint (public)
	app.Get("/health", health.Check)

	if cfg.UploadDir != "" {
		app.Static("/uploads", cfg.UploadDir)
	}

	api := app.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", bruteForceProtection.CheckLock(), authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", required, authHandler.Logout)
	authGroup.Get("/me", required, authHandler.Me)
	authGroup.Patch("/me", required, authHandler.UpdateProfile)

	// Users (admin)
	users := api.Group("/users", admin...)
	users.Get("/", userHandler.ListUsers)
	users.Post("/", userHandler.CreateUser)
	users.Get("/:id", userHandler.GetUser)
	users.Patch("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)

	// Categories
	categories := api.Group("/category")
	categories.Get("/public", categoryHandler.ListPublicCategories)
	categories.Get("/", append(admin, categoryHandler.ListCategories)...)
	categories.Get("/:id", categoryHandler.GetCategory)
	categories.Post("/", append(admin, categoryHandler.CreateCategory)...)
	categories.Patch("/:id", append(admin, categoryHandler.UpdateCategory)...)
	categories.Delete("/:id", append(admin, categoryHandler.DeleteCategory)...)

	// Courses; static segments before /:id
	courses := api.Group("/courses")
	courses.Get("/public", courseHandler.ListPublicCourses)
	courses.Get("/url/:url", courseHandler.GetCourseByURL)
	courses.Get("/instructor/:id", courseHandler.ListInstructorCourses)
	courses.Get("/", append(staff, courseHandler.ListCourses)...)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Get("/:id/groups", courseHandler.ListCourseGroups)
	courses.Post("/", append(staff, courseHandler.CreateCourse)...)
	courses.Patch("/:id", append(staff, courseHandler.UpdateCourse)...)
	courses.Delete("/:id", append(admin, courseHandler.DeleteCourse)...)

	// Groups
	groups := api.Group("/groups")
	groups.Get("/age-ranges", groupHandler.ListAgeRanges)
	groups.Get("/", groupHandler.ListGroups)
	groups.Get("/:id", groupHandler.GetGroup)
	groups.Post("/", append(admin, groupHandler.CreateGroup)...)
	groups.Patch("/:id", append(admin, groupHandler.UpdateGroup)...)
	groups.Delete("/:id", append(admin, groupHandler.DeleteGroup)...)
	groups.Get("/:id/students", append(staff, groupHandler.ListStudents)...)
	groups.Post("/:id/students", append(admin, groupHandler.AddStudent)...)
	groups.Delete("/:id/students/:studentId", append(admin, groupHandler.RemoveStudent)...)

	// Applications: anyone may apply, staff process them
	applications := api.Group("/applications")
	applications.Post("/", applicationHandler.CreateApplication)
	applications.Get("/", append(admin, applicationHandler.ListApplications)...)
	applications.Get("/:id", append(admin, applicationHandler.GetApplication)...)
	applications.Patch("/:id", append(admin, applicationHandler.UpdateApplication)...)
	applications.Delete("/:id", append(admin, applicationHandler.DeleteApplication)...)

	// Enrollments
	enrollments := api.Group("/enrollments", staff...)
	enrollments.Get("/", enrollmentHandler.ListEnrollments)
	enrollments.Get("/:id", enrollmentHandler.GetEnrollment)
	enrollments.Post("/", enrollmentHandler.CreateEnrollment)
	enrollments.Patch("/:id", enrollmentHandler.UpdateEnrollment)
	enrollments.Delete("/:id", enrollmentHandler.DeleteEnrollment)

	// Lessons
	lessons := api.Group("/lessons")
	lessons.Get("/", lessonHandler.ListLessons)
	lessons.Get("/:id", lessonHandler.GetLesson)
	lessons.Post("/", append(staff, lessonHandler.CreateLesson)...)
	lessons.Patch("/:id", append(staff, lessonHandler.UpdateLesson)...)
	lessons.Delete("/:id", append(staff, lessonHandler.DeleteLesson)...)

	// Blog
	blog := api.Group("/blog")
	blog.Get("/", blogHandler.ListPosts)
	blog.Get("/url/:url", blogHandler.GetPostByURL)
	blog.Get("/teacher/:id", blogHandler.ListByAuthor)
	blog.Get("/:id", blogHandler.GetPost)
	blog.Post("/", append(editors, blogHandler.CreatePost)...)
	blog.Patch("/:id", append(editors, blogHandler.UpdatePost)...)
	blog.Delete("/:id", append(editors, blogHandler.DeletePost)...)

	// News
	news := api.Group("/news")
	news.Get("/", newsHandler.ListPosts)
	news.Get("/url/:url", newsHandler.GetPostByURL)
	news.Get("/:id", newsHandler.GetPost)
	news.Post("/", append(editors, newsHandler.CreatePost)...)
	news.Patch("/:id", append(editors, newsHandler.UpdatePost)...)
	news.Delete("/:id", append(editors, newsHandler.DeletePost)...)

	// Notifications
	notif := api.Group("/notif", required)
	notif.Get("/", notificationHandler.GetNotifications)
	notif.Get("/admin", middleware.RequireRole(adminRoles...), notificationHandler.GetAdminNotifications)
	notif.Patch("/read-all", notificationHandler.MarkAllAsRead)
	notif.Patch("/admin/read-all", middleware.RequireRole(adminRoles...), notificationHandler.MarkAllAsReadAdmin)
	notif.Get("/:id", notificationHandler.GetNotification)
	notif.Patch("/:id/read", notificationHandler.MarkAsRead)
	notif.Delete("/:id", notificationHandler.DeleteNotification)

	// Statistics
	statistics := api.Group("/statistics", staff...)
	statistics.Get("/dashboard", statisticsHandler.GetDashboard)
	statistics.Get("/general", statisticsHandler.GetGeneral)
	statistics.Get("/enrollments", statisticsHandler.GetEnrollments)
	statistics.Get("/revenue", statisticsHandler.GetRevenue)
	statistics.Get("/completions", statisticsHandler.GetCompletions)
	statistics.Post("/generate", middleware.RequireRole(adminRoles...), statisticsHandler.Generate)

	// Payments (admin)
	payments := api.Group("/payments", admin...)
	payments.Get("/", paymentHandler.ListPayments)
	payments.Post("/", paymentHandler.CreatePayment)

	// Files
	files := api.Group("/files")
	files.Get("/", fileHandler.ListFiles)
	files.Get("/:id", fileHandler.GetFile)
	files.Post("/", append(editors, fileHandler.UploadFile)...)
	files.Delete("/:id", append(editors, fileHandler.DeleteFile)...)
}
