package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/projecthub/internal/app/controllers"
	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/middleware"
	"github.com/yigit/projecthub/internal/pkg/websocket"
)

// Controllers groups the handlers mounted under /api/v1
type Controllers struct {
	Auth    *controllers.AuthController
	User    *controllers.UserController
	Team    *controllers.TeamController
	Project *controllers.ProjectController
	Review  *controllers.ReviewController
	Stats   *controllers.StatsController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	wsHandler *websocket.Handler,
) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Any signed-in user may ask what they can see; restricted users get an empty tab list
	authenticated.GET("/admin/me/permissions", ctrl.Auth.MyPermissions)

	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.AdminRequired())
	{
		admin.GET("/events/ws", wsHandler.HandleConnection)
		admin.GET("/scopes", ctrl.Project.ListScopes)

		// Marks and reviews are corrected from the statistics tabs
		admin.PUT("/marks/:id", authMiddleware.TabRequired(models.TabIndividualStats), ctrl.Review.UpdateMark)
		admin.PUT("/reviews/:id", authMiddleware.TabRequired(models.TabIndividualStats), ctrl.Review.UpdateReview)
	}

	students := admin.Group("/students")
	students.Use(authMiddleware.TabRequired(models.TabStudents))
	{
		students.GET("", ctrl.User.ListStudents)
	}

	faculty := admin.Group("/faculty")
	faculty.Use(authMiddleware.TabRequired(models.TabFaculty))
	{
		faculty.GET("", ctrl.User.ListFaculty)
		faculty.POST("", ctrl.User.AddFaculty)
	}

	admins := admin.Group("/admins")
	admins.Use(authMiddleware.TabRequired(models.TabAdmins))
	{
		admins.GET("", ctrl.User.ListAdmins)
		admins.POST("", ctrl.User.AddAdmin)
	}

	// Edits to any account are gated on the students tab
	users := admin.Group("/users")
	users.Use(authMiddleware.TabRequired(models.TabStudents))
	{
		users.PUT("/:id", ctrl.User.UpdateUser)
		users.DELETE("/:id", ctrl.User.DeleteUser)
		users.POST("/bulk-delete", ctrl.User.BulkDelete)
	}
	admin.POST("/users/:id/temp-admin", authMiddleware.FullAdminRequired(), ctrl.User.ToggleTempAdmin)

	projects := admin.Group("/projects")
	projects.Use(authMiddleware.TabRequired(models.TabProjects))
	{
		projects.GET("", ctrl.Project.ListProjects)
		projects.PUT("/:id", ctrl.Project.UpdateProject)
		projects.DELETE("/:id", ctrl.Project.DeleteProject)
		projects.POST("/:id/solo", ctrl.Project.AssignSolo)
	}

	teams := admin.Group("/teams")
	teams.Use(authMiddleware.TabRequired(models.TabTeams))
	{
		teams.GET("", ctrl.Team.ListTeams)
		teams.POST("", ctrl.Team.CreateTeam)
		teams.POST("/:id/members", ctrl.Team.AddMember)
		teams.DELETE("/:id/members/:userId", ctrl.Team.RemoveMember)
		teams.PUT("/:id/leader", ctrl.Team.ChangeLeader)
		teams.PUT("/:id/project", ctrl.Team.AssignProject)
		teams.DELETE("/:id/project", ctrl.Team.UnassignProject)
		teams.PUT("/:id/faculty", ctrl.Team.AssignFaculty)
		teams.DELETE("/:id/faculty/:role", ctrl.Team.UnassignFaculty)
	}

	facultyStats := admin.Group("/stats/faculty")
	facultyStats.Use(authMiddleware.TabRequired(models.TabFacultyStats))
	{
		facultyStats.GET("", ctrl.Stats.FacultyStats)
		facultyStats.GET("/:id", ctrl.Stats.FacultyDetail)
	}

	studentStats := admin.Group("/stats/students")
	studentStats.Use(authMiddleware.TabRequired(models.TabIndividualStats))
	{
		studentStats.GET("", ctrl.Stats.StudentStats)
		studentStats.GET("/:id", ctrl.Stats.StudentDetail)
	}

	admin.GET("/export/students", authMiddleware.TabRequired(models.TabIndividualStats), ctrl.Stats.ExportStudents)
}
