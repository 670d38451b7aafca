package controllers

import (
	"errors"
	"html"
	"quizbank/database"
	"quizbank/middleware"
	"quizbank/models"
	"quizbank/utils"

	topicControllers "quizbank/controllers/topic"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ChoiceInput is one choice of a question create request
type ChoiceInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// CorrectAnswerInput is one expected answer of a question create request
type CorrectAnswerInput struct {
	Text            string `json:"text"`
	IsCaseSensitive bool   `json:"is_case_sensitive"`
	IsExactMatch    *bool  `json:"is_exact_match"`
	Points          int    `json:"points"`
}

type QuestionInput struct {
	TopicID         *uint                `json:"topic_id"`
	QuestionText    string               `json:"question_text"`
	QuestionType    string               `json:"question_type"`
	Explanation     string               `json:"explanation"`
	Points          int                  `json:"points"`
	DifficultyLevel int                  `json:"difficulty_level"`
	Choices         []ChoiceInput        `json:"choices"`
	CorrectAnswers  []CorrectAnswerInput `json:"correct_answers"`
}

// CreateQuestionRecord inserts a question with its nested choices and correct
// answers, sort order assigned by position
func CreateQuestionRecord(db *gorm.DB, userID string, in QuestionInput) (*models.Question, error) {
	question := models.Question{
		TopicID:         in.TopicID,
		QuestionText:    in.QuestionText,
		QuestionType:    in.QuestionType,
		Explanation:     in.Explanation,
		Points:          in.Points,
		DifficultyLevel: in.DifficultyLevel,
		CreatedBy:       userID,
	}
	if question.Points <= 0 {
		question.Points = 1
	}
	if question.DifficultyLevel < 1 || question.DifficultyLevel > 5 {
		question.DifficultyLevel = 1
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if in.TopicID != nil {
			var topic models.Topic
			if err := tx.First(&topic, *in.TopicID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return topicControllers.ErrTopicNotFound
				}
				return err
			}
		}

		if err := tx.Create(&question).Error; err != nil {
			return err
		}

		for i, choice := range in.Choices {
			row := models.Choice{
				QuestionID: question.ID,
				ChoiceText: choice.Text,
				IsCorrect:  choice.IsCorrect,
				SortOrder:  i,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		for i, answer := range in.CorrectAnswers {
			exact := true
			if answer.IsExactMatch != nil {
				exact = *answer.IsExactMatch
			}
			points := answer.Points
			if points <= 0 {
				points = 1
			}
			row := models.CorrectAnswer{
				QuestionID:      question.ID,
				AnswerText:      answer.Text,
				IsCaseSensitive: answer.IsCaseSensitive,
				IsExactMatch:    exact,
				Points:          points,
				SortOrder:       i,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// CreateQuestion creates a question with nested choices and correct answers
func CreateQuestion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(QuestionInput)
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	question, err := CreateQuestionRecord(database.Database.Db, userID, *reqData)
	if err != nil {
		if errors.Is(err, topicControllers.ErrTopicNotFound) {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Topic not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created!", question)
}

// GetQuestionList returns questions, optionally scoped to a topic. With
// subtree=true the scope widens to the topic's whole subtree.
func GetQuestionList(c *fiber.Ctx) error {
	query := database.Database.Db.Model(&models.Question{})

	if topicID := c.QueryInt("topic_id", 0); topicID > 0 {
		if c.QueryBool("subtree", false) {
			topicIDs, err := topicControllers.SubtreeTopicIDs(database.Database.Db, uint(topicID))
			if err != nil {
				if errors.Is(err, topicControllers.ErrTopicNotFound) {
					return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
				}
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
			}
			query = query.Where("topic_id IN ?", topicIDs)
		} else {
			query = query.Where("topic_id = ?", topicID)
		}
	}

	var questions []models.Question
	if err := query.Order("created_at asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", questions)
}

// GetQuestionDetails returns a question with its choices and correct answers
func GetQuestionDetails(c *fiber.Ctx) error {
	questionID := c.Locals("questionID").(int)

	var question models.Question
	if err := database.Database.Db.First(&question, questionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	var choices []models.Choice
	database.Database.Db.Where("question_id = ?", question.ID).Order("sort_order asc").Find(&choices)

	var correctAnswers []models.CorrectAnswer
	database.Database.Db.Where("question_id = ?", question.ID).Order("sort_order asc").Find(&correctAnswers)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question fetched successfully!", fiber.Map{
		"question":        question,
		"choices":         choices,
		"correct_answers": correctAnswers,
	})
}

// UpdateQuestion updates a question's own fields (not its answer key)
func UpdateQuestion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	questionID := c.Locals("questionID").(int)

	var question models.Question
	if err := database.Database.Db.First(&question, questionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	if question.CreatedBy != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only update your own questions!", nil)
	}

	reqData := new(struct {
		TopicID         *uint   `json:"topic_id"`
		ClearTopic      bool    `json:"clear_topic"`
		QuestionText    *string `json:"question_text"`
		Explanation     *string `json:"explanation"`
		Points          *int    `json:"points"`
		DifficultyLevel *int    `json:"difficulty_level"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.ClearTopic {
		question.TopicID = nil
	} else if reqData.TopicID != nil {
		var topic models.Topic
		if err := database.Database.Db.First(&topic, *reqData.TopicID).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Topic not found!", nil)
		}
		question.TopicID = reqData.TopicID
	}
	if reqData.QuestionText != nil {
		question.QuestionText = *reqData.QuestionText
	}
	if reqData.Explanation != nil {
		question.Explanation = *reqData.Explanation
	}
	if reqData.Points != nil && *reqData.Points > 0 {
		question.Points = *reqData.Points
	}
	if reqData.DifficultyLevel != nil && *reqData.DifficultyLevel >= 1 && *reqData.DifficultyLevel <= 5 {
		question.DifficultyLevel = *reqData.DifficultyLevel
	}

	if err := database.Database.Db.Save(&question).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated!", question)
}

// DeleteQuestion deletes a question with its choices and correct answers
func DeleteQuestion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	questionID := c.Locals("questionID").(int)

	var question models.Question
	if err := database.Database.Db.First(&question, questionID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	if question.CreatedBy != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only delete your own questions!", nil)
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("question_id = ?", question.ID).Delete(&models.Choice{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("question_id = ?", question.ID).Delete(&models.CorrectAnswer{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&question).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted!", nil)
}

// ImportQuestions pulls questions from the external trivia API and files them
// under a topic
func ImportQuestions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		TopicID uint `json:"topic_id"`
		Amount  int  `json:"amount"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var topic models.Topic
	if err := database.Database.Db.First(&topic, reqData.TopicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Topic not found!", nil)
	}

	amount := reqData.Amount
	if amount <= 0 || amount > 50 {
		amount = 10
	}

	fetched, err := utils.FetchTriviaQuestions(amount)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to fetch questions from trivia API!", nil)
	}

	imported := 0
	for _, tq := range fetched {
		in := QuestionInput{
			TopicID:         &topic.ID,
			QuestionText:    html.UnescapeString(tq.Question),
			Points:          1,
			DifficultyLevel: utils.TriviaDifficultyLevel(tq.Difficulty),
		}

		switch tq.Type {
		case "boolean":
			in.QuestionType = models.TypeTrueFalse
			in.Choices = []ChoiceInput{
				{Text: "True", IsCorrect: tq.CorrectAnswer == "True"},
				{Text: "False", IsCorrect: tq.CorrectAnswer == "False"},
			}
		default:
			in.QuestionType = models.TypeSingleChoice
			in.Choices = append(in.Choices, ChoiceInput{Text: html.UnescapeString(tq.CorrectAnswer), IsCorrect: true})
			for _, wrong := range tq.IncorrectAnswers {
				in.Choices = append(in.Choices, ChoiceInput{Text: html.UnescapeString(wrong), IsCorrect: false})
			}
		}

		if _, err := CreateQuestionRecord(database.Database.Db, userID, in); err != nil {
			continue
		}
		imported++
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Questions imported!", fiber.Map{
		"requested": amount,
		"imported":  imported,
	})
}
