package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dcastillo-uci/carga-docente-backend/controllers"
	"github.com/dcastillo-uci/carga-docente-backend/middleware"
	"github.com/dcastillo-uci/carga-docente-backend/permissions"
	"github.com/dcastillo-uci/carga-docente-backend/repository"
	"github.com/dcastillo-uci/carga-docente-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	assignments := controllers.NewAssignmentController(repository.NewAssignmentRepository(db))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)
	r.GET("/ws/notifications", ws.HandleNotificationsWebSocket)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/refresh", controllers.Refresh)

		me := auth.Group("")
		me.Use(middleware.AuthMiddleware())
		{
			me.GET("/profile", controllers.Profile)
			me.PUT("/profile", controllers.UpdateProfile)
			me.PATCH("/profile", controllers.UpdateProfile)
			me.PUT("/change-password", controllers.ChangePassword)
			me.PATCH("/change-password", controllers.ChangePassword)
		}
	}

	// Catálogo de roles, disponible para cualquier autenticado
	roles := api.Group("/roles")
	roles.Use(middleware.AuthMiddleware())
	{
		roles.GET("", controllers.GetRoles)
	}

	// Gestión de usuarios, solo administración
	users := api.Group("/users")
	users.Use(middleware.AuthMiddleware(), middleware.RequireCapability(permissions.ManageUsers))
	{
		users.GET("", controllers.ListUsers)
		users.POST("", controllers.CreateUser)
		users.GET("/:id", controllers.GetUser)
		users.PUT("/:id", controllers.UpdateUser)
		users.PATCH("/:id", controllers.UpdateUser)
		users.DELETE("/:id", controllers.DeleteUser)
		users.POST("/:id/block", controllers.BlockUser)
		users.POST("/:id/unblock", controllers.UnblockUser)
		users.POST("/:id/change_password", controllers.AdminChangePassword)
	}

	// Estructura académica: lectura autenticada, escritura restringida
	academic := api.Group("")
	academic.Use(middleware.AuthMiddleware())
	{
		academic.GET("/faculties", controllers.ListFaculties)
		academic.GET("/faculties/:id", controllers.GetFaculty)
		academic.GET("/disciplines", controllers.ListDisciplines)
		academic.GET("/disciplines/:id", controllers.GetDiscipline)
		academic.GET("/subjects", controllers.ListSubjects)
		academic.GET("/subjects/:id", controllers.GetSubject)
	}

	academicWrite := api.Group("")
	academicWrite.Use(middleware.AuthMiddleware(), middleware.RequireCapability(permissions.ManageAcademic))
	{
		academicWrite.POST("/faculties", controllers.CreateFaculty)
		academicWrite.PUT("/faculties/:id", controllers.UpdateFaculty)
		academicWrite.PATCH("/faculties/:id", controllers.UpdateFaculty)
		academicWrite.DELETE("/faculties/:id", controllers.DeleteFaculty)
		academicWrite.POST("/disciplines", controllers.CreateDiscipline)
		academicWrite.PUT("/disciplines/:id", controllers.UpdateDiscipline)
		academicWrite.PATCH("/disciplines/:id", controllers.UpdateDiscipline)
		academicWrite.DELETE("/disciplines/:id", controllers.DeleteDiscipline)
		academicWrite.POST("/subjects", controllers.CreateSubject)
		academicWrite.PUT("/subjects/:id", controllers.UpdateSubject)
		academicWrite.PATCH("/subjects/:id", controllers.UpdateSubject)
		academicWrite.DELETE("/subjects/:id", controllers.DeleteSubject)
	}

	// Profesores
	professors := api.Group("/professors")
	professors.Use(middleware.AuthMiddleware())
	{
		professors.GET("", controllers.ListProfessors)
		professors.GET("/categories", controllers.GetCategories)
		professors.GET("/scientific_degrees", controllers.GetScientificDegrees)
		professors.GET("/contract_types", controllers.GetContractTypes)
		professors.GET("/:id", controllers.GetProfessor)

		write := professors.Group("")
		write.Use(middleware.RequireCapability(permissions.AddProfessors))
		{
			write.POST("", controllers.CreateProfessor)
			write.PUT("/:id", controllers.UpdateProfessor)
			write.PATCH("/:id", controllers.UpdateProfessor)
			write.DELETE("/:id", controllers.DeleteProfessor)
		}

		export := professors.Group("")
		export.Use(middleware.RequireCapability(permissions.DownloadReports))
		{
			export.GET("/export_csv", controllers.ExportProfessorsCSV)
			export.GET("/export_excel", controllers.ExportProfessorsExcel)
		}
	}

	// Asignaciones de carga docente
	assignmentGroup := api.Group("/assignments")
	assignmentGroup.Use(middleware.AuthMiddleware())
	{
		assignmentGroup.GET("", assignments.List)
		assignmentGroup.GET("/assignment_types", assignments.AssignmentTypes)
		assignmentGroup.GET("/:id", assignments.Get)
		assignmentGroup.GET("/:id/history", assignments.History)

		write := assignmentGroup.Group("")
		write.Use(middleware.RequireCapability(permissions.ModifyAssignments))
		{
			write.POST("", assignments.Create)
			write.PUT("/:id", assignments.Update)
			write.PATCH("/:id", assignments.Update)
			write.DELETE("/:id", assignments.Delete)
		}

		export := assignmentGroup.Group("")
		export.Use(middleware.RequireCapability(permissions.DownloadReports))
		{
			export.GET("/export_csv", assignments.ExportCSV)
			export.GET("/export_by_faculty", assignments.ExportByFaculty)
			export.GET("/export_by_discipline", assignments.ExportByDiscipline)
			export.GET("/export_excel", assignments.ExportExcel)
		}
	}

	// Historial global de cambios, solo lectura
	history := api.Group("/history")
	history.Use(middleware.AuthMiddleware())
	{
		history.GET("", assignments.AllHistory)
	}

	// Buzón de comentarios y respuestas
	comments := api.Group("/comments")
	comments.Use(middleware.AuthMiddleware())
	{
		comments.GET("", controllers.ListComments)
		comments.POST("", controllers.CreateComment)
		comments.GET("/types", controllers.GetCommentTypes)
		comments.GET("/unread", controllers.UnreadComments)
		comments.GET("/statistics", controllers.CommentStatistics)
		comments.GET("/:id", controllers.GetComment)
		comments.DELETE("/:id", controllers.DeleteComment)
		comments.POST("/:id/mark_read", controllers.MarkCommentRead)
		comments.POST("/:id/reply", controllers.ReplyToComment)
	}

	replies := api.Group("/replies")
	replies.Use(middleware.AuthMiddleware(), middleware.RequireCapability(permissions.ViewComments))
	{
		replies.GET("", controllers.ListReplies)
		replies.PUT("/:id", controllers.UpdateReply)
		replies.PATCH("/:id", controllers.UpdateReply)
		replies.DELETE("/:id", controllers.DeleteReply)
	}

	return r
}
