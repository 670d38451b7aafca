package controllers

import (
	"errors"
	"quizbank/database"
	"quizbank/middleware"
	"quizbank/models"
	"time"

	topicControllers "quizbank/controllers/topic"

	"github.com/gofiber/fiber/v2"
)

// StartSession opens a learning session. When scoped to a topic, the expected
// question count and max score default to the topic's closed subtree.
func StartSession(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		TopicID        *uint  `json:"topic_id"`
		Label          string `json:"label"`
		TotalQuestions *int   `json:"total_questions"`
		MaxScore       *int   `json:"max_score"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	session := models.UserSession{
		UserID:    userID,
		TopicID:   reqData.TopicID,
		Label:     reqData.Label,
		Status:    models.SessionActive,
		StartedAt: time.Now(),
	}

	if reqData.TopicID != nil {
		topicIDs, err := topicControllers.SubtreeTopicIDs(database.Database.Db, *reqData.TopicID)
		if err != nil {
			if errors.Is(err, topicControllers.ErrTopicNotFound) {
				return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Topic not found!", nil)
			}
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start session!", nil)
		}

		var questionCount int64
		database.Database.Db.Model(&models.Question{}).Where("topic_id IN ?", topicIDs).Count(&questionCount)
		session.TotalQuestions = int(questionCount)

		var maxScore int
		database.Database.Db.Model(&models.Question{}).
			Where("topic_id IN ?", topicIDs).
			Select("COALESCE(SUM(points), 0)").
			Scan(&maxScore)
		session.MaxScore = maxScore
	}

	// Explicit totals win over the subtree defaults
	if reqData.TotalQuestions != nil {
		session.TotalQuestions = *reqData.TotalQuestions
	}
	if reqData.MaxScore != nil {
		session.MaxScore = *reqData.MaxScore
	}

	if err := database.Database.Db.Create(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start session!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Session started!", session)
}

// SubmitAnswer records and grades an answer, then recomputes the session's
// progress and score in the same transaction
func SubmitAnswer(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sessionID := c.Locals("sessionID").(int)

	var session models.UserSession
	if err := database.Database.Db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}

	reqData := new(struct {
		QuestionID   uint   `json:"question_id"`
		ChoiceID     *uint  `json:"choice_id"`
		AnswerText   string `json:"answer_text"`
		TimeSpentSec int    `json:"time_spent_sec"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	answer, err := submitAnswerRecord(database.Database.Db, session, reqData.QuestionID, reqData.ChoiceID, reqData.AnswerText, reqData.TimeSpentSec)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuestionNotFound):
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Question not found!", nil)
		case errors.Is(err, ErrChoiceNotFound):
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Choice does not belong to this question!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit answer!", nil)
		}
	}

	// Return the freshly aggregated session alongside the graded answer
	database.Database.Db.First(&session, session.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer submitted!", fiber.Map{
		"answer":  answer,
		"session": session,
	})
}

// GetSessionList returns the caller's sessions, newest first
func GetSessionList(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var sessions []models.UserSession
	err := database.Database.Db.
		Where("user_id = ?", userID).
		Order("started_at desc").
		Find(&sessions).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch sessions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sessions fetched successfully!", sessions)
}

// GetSessionDetails returns one of the caller's sessions with its answers
func GetSessionDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	sessionID := c.Locals("sessionID").(int)

	var session models.UserSession
	if err := database.Database.Db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	}

	var answers []models.UserAnswer
	database.Database.Db.Where("session_id = ?", session.ID).Order("created_at asc").Find(&answers)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session fetched successfully!", fiber.Map{
		"session": session,
		"answers": answers,
	})
}
