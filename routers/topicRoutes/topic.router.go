package topicRoutes

import (
	controllers "quizbank/controllers/topic"
	"quizbank/middleware"
	validators "quizbank/validators/topic"

	"github.com/gofiber/fiber/v2"
)

// SetupTopicRoutes sets up all topic hierarchy routes
func SetupTopicRoutes(app *fiber.App) {
	topicGroup := app.Group("/topic")

	// Reads (catalog is world-readable)
	topicGroup.Get("/list", middleware.JWTMiddleware, controllers.GetTopicList)
	topicGroup.Get("/leaves", middleware.JWTMiddleware, controllers.GetLeafTopics)
	topicGroup.Get("/:id", middleware.JWTMiddleware, validators.TopicIDParam(), controllers.GetTopicDetails)
	topicGroup.Get("/:id/descendants", middleware.JWTMiddleware, validators.TopicIDParam(), controllers.GetDescendants)
	topicGroup.Get("/:id/stats", middleware.JWTMiddleware, validators.TopicIDParam(), controllers.GetTopicStats)

	// Writes (creator-owned)
	topicGroup.Post("/", middleware.JWTMiddleware, validators.CreateTopic(), controllers.CreateTopic)
	topicGroup.Put("/:id", middleware.JWTMiddleware, validators.TopicIDParam(), validators.UpdateTopic(), controllers.UpdateTopic)
	topicGroup.Delete("/:id", middleware.JWTMiddleware, validators.TopicIDParam(), controllers.DeleteTopic)

	// Bulk hierarchy import (teachers and admins)
	topicGroup.Post("/import", middleware.JWTMiddleware, middleware.CheckRoleMiddleware("ADMIN", "TEACHER"), validators.ImportHierarchy(), controllers.ImportTopicHierarchy)
}
