package routes

import (
	"telecare-backend/config"
	"telecare-backend/controllers"
	"telecare-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	r.GET("/", func(c *gin.Context) {
		c.String(200, "OK - webhook ativo")
	})

	// Meta webhook: GET handshake, POST events. Verify-token only, no JWT.
	r.GET("/webhook", controllers.VerifyWebhook)
	r.POST("/webhook", controllers.ReceiveWebhook)

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Patient routes
		patients := api.Group("/patients")
		{
			patients.POST("", controllers.CreatePatient)
			patients.GET("", controllers.GetPatients)
			patients.GET("/:id", controllers.GetPatient)
			patients.PUT("/:id", controllers.UpdatePatient)
			patients.DELETE("/:id", controllers.DeletePatient)
		}

		// Consultation routes
		consultations := api.Group("/consultations")
		{
			consultations.POST("", controllers.CreateConsultation)
			consultations.GET("", controllers.GetConsultations)
			consultations.GET("/:id", controllers.GetConsultation)
			consultations.PUT("/:id", controllers.RescheduleConsultation)
			consultations.DELETE("/:id", controllers.DeleteConsultation)
		}

		// Consent routes
		consents := api.Group("/consents")
		{
			consents.GET("", controllers.GetConsentRecords)
			consents.PUT("/:phone", controllers.UpdateConsent)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
