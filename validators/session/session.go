package sessionValidator

import (
	"quizbank/middleware"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// SessionIDParam parses and validates the :id route parameter
func SessionIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID, err := strconv.Atoi(c.Params("id"))
		if err != nil || sessionID < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid session id!", nil)
		}

		c.Locals("sessionID", sessionID)
		return c.Next()
	}
}

func StartSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TopicID        *uint `json:"topic_id"`
			TotalQuestions *int  `json:"total_questions"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// A session needs a question budget: either a topic scope or an explicit total
		if reqData.TopicID == nil && reqData.TotalQuestions == nil {
			errors["total_questions"] = "Provide a topic_id or total_questions!"
		}
		if reqData.TotalQuestions != nil && *reqData.TotalQuestions < 0 {
			errors["total_questions"] = "Total questions cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func SubmitAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			QuestionID   uint   `json:"question_id"`
			ChoiceID     *uint  `json:"choice_id"`
			AnswerText   string `json:"answer_text"`
			TimeSpentSec int    `json:"time_spent_sec"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.QuestionID < 1 {
			errors["question_id"] = "Question id is required!"
		}
		if reqData.ChoiceID != nil && *reqData.ChoiceID < 1 {
			errors["choice_id"] = "Choice id must be greater than 0!"
		}
		if reqData.TimeSpentSec < 0 {
			errors["time_spent_sec"] = "Time spent cannot be negative!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}
