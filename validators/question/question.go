package questionValidator

import (
	"quizbank/middleware"
	"quizbank/models"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// QuestionIDParam parses and validates the :id route parameter
func QuestionIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		questionID, err := strconv.Atoi(c.Params("id"))
		if err != nil || questionID < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid question id!", nil)
		}

		c.Locals("questionID", questionID)
		return c.Next()
	}
}

func CreateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			QuestionText    string `json:"question_text"`
			QuestionType    string `json:"question_type"`
			Points          int    `json:"points"`
			DifficultyLevel int    `json:"difficulty_level"`
			Choices         []struct {
				Text string `json:"text"`
			} `json:"choices"`
			CorrectAnswers []struct {
				Text string `json:"text"`
			} `json:"correct_answers"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate QuestionText
		if strings.TrimSpace(reqData.QuestionText) == "" {
			errors["question_text"] = "Question text is required!"
		}

		// Validate QuestionType
		validType := false
		for _, t := range models.QuestionTypes {
			if reqData.QuestionType == t {
				validType = true
				break
			}
		}
		if !validType {
			errors["question_type"] = "Unknown question type!"
		}

		// Choice-based questions need choices, text-based ones need correct answers
		if models.IsChoiceType(reqData.QuestionType) && len(reqData.Choices) < 2 {
			errors["choices"] = "Choice questions need at least 2 choices!"
		}
		if models.IsTextType(reqData.QuestionType) && len(reqData.CorrectAnswers) == 0 {
			errors["correct_answers"] = "Text questions need at least 1 correct answer!"
		}

		if reqData.Points < 0 {
			errors["points"] = "Points must be positive!"
		}
		if reqData.DifficultyLevel != 0 && (reqData.DifficultyLevel < 1 || reqData.DifficultyLevel > 5) {
			errors["difficulty_level"] = "Difficulty must be between 1 and 5!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func ImportQuestions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TopicID uint `json:"topic_id"`
			Amount  int  `json:"amount"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.TopicID < 1 {
			errors["topic_id"] = "Topic id is required!"
		}
		if reqData.Amount < 0 || reqData.Amount > 50 {
			errors["amount"] = "Amount must be between 1 and 50!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}
