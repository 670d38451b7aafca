package sessionRoutes

import (
	controllers "quizbank/controllers/session"
	"quizbank/middleware"
	validators "quizbank/validators/session"

	"github.com/gofiber/fiber/v2"
)

// SetupSessionRoutes sets up all learning session routes
func SetupSessionRoutes(app *fiber.App) {
	sessionGroup := app.Group("/session")

	sessionGroup.Get("/list", middleware.JWTMiddleware, controllers.GetSessionList)
	sessionGroup.Get("/:id", middleware.JWTMiddleware, validators.SessionIDParam(), controllers.GetSessionDetails)

	sessionGroup.Post("/", middleware.JWTMiddleware, validators.StartSession(), controllers.StartSession)
	sessionGroup.Post("/:id/answer", middleware.JWTMiddleware, validators.SessionIDParam(), validators.SubmitAnswer(), controllers.SubmitAnswer)
}
