package userRoutes

import (
	controllers "quizbank/controllers/userControllers"
	"quizbank/middleware"
	validators "quizbank/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes sets up all user profile routes
func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user")

	userGroup.Get("/profile", middleware.JWTMiddleware, controllers.GetMyProfile)
	userGroup.Put("/profile", middleware.JWTMiddleware, validators.UpdateProfile(), controllers.UpdateMyProfile)

	// Admin only
	userGroup.Put("/role/:id", middleware.JWTMiddleware, middleware.CheckRoleMiddleware("ADMIN"), validators.UpdateRole(), controllers.UpdateUserRole)
}
