package questionRoutes

import (
	controllers "quizbank/controllers/question"
	"quizbank/middleware"
	validators "quizbank/validators/question"

	"github.com/gofiber/fiber/v2"
)

// SetupQuestionRoutes sets up all question bank routes
func SetupQuestionRoutes(app *fiber.App) {
	questionGroup := app.Group("/question")

	questionGroup.Get("/list", middleware.JWTMiddleware, controllers.GetQuestionList)
	questionGroup.Get("/:id", middleware.JWTMiddleware, validators.QuestionIDParam(), controllers.GetQuestionDetails)

	questionGroup.Post("/", middleware.JWTMiddleware, validators.CreateQuestion(), controllers.CreateQuestion)
	questionGroup.Put("/:id", middleware.JWTMiddleware, validators.QuestionIDParam(), controllers.UpdateQuestion)
	questionGroup.Delete("/:id", middleware.JWTMiddleware, validators.QuestionIDParam(), controllers.DeleteQuestion)

	// External trivia import (teachers and admins)
	questionGroup.Post("/import", middleware.JWTMiddleware, middleware.CheckRoleMiddleware("ADMIN", "TEACHER"), validators.ImportQuestions(), controllers.ImportQuestions)
}
