package userController

import (
	"quizbank/database"
	"quizbank/middleware"
	"quizbank/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile returns the caller's profile
func GetMyProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var profile models.UserProfile
	if err := database.Database.Db.Where("id = ?", userID).First(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Profile not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", profile)
}

// UpdateMyProfile updates the caller's own display fields. Role changes go
// through UpdateUserRole.
func UpdateMyProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var profile models.UserProfile
	if err := database.Database.Db.Where("id = ?", userID).First(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Profile not found!", nil)
	}

	reqData := new(struct {
		FullName  *string `json:"full_name"`
		AvatarURL *string `json:"avatar_url"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.FullName != nil {
		profile.FullName = *reqData.FullName
	}
	if reqData.AvatarURL != nil {
		profile.AvatarURL = *reqData.AvatarURL
	}

	if err := database.Database.Db.Save(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated!", profile)
}

// UpdateUserRole lets an admin change another user's role
func UpdateUserRole(c *fiber.Ctx) error {
	targetID := c.Params("id")

	var profile models.UserProfile
	if err := database.Database.Db.Where("id = ?", targetID).First(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Profile not found!", nil)
	}

	reqData := new(struct {
		Role string `json:"role"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	switch reqData.Role {
	case models.RoleAdmin, models.RoleTeacher, models.RoleStudent:
	default:
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid role!", nil)
	}

	profile.Role = reqData.Role
	if err := database.Database.Db.Save(&profile).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update role!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role updated!", profile)
}
