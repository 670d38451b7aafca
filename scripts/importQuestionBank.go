package main

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"strings"

	"quizbank/config"
	questionControllers "quizbank/controllers/question"
	topicControllers "quizbank/controllers/topic"
	"quizbank/database"
	"quizbank/models"
	"quizbank/utils"
)

// Seeds the question bank from QuestionBank.csv. Expected columns:
// topic, question_type, question_text, explanation, points, difficulty, answer
// For choice types "answer" is the correct choice followed by wrong ones
// separated by "|"; for text types it is the expected answer text.
func main() {
	config.LoadConfig()
	database.ConnectDb()

	file, err := os.Open("QuestionBank.csv")
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV file: %v", err)
	}

	seedUser := os.Getenv("SEED_USER_ID")
	if seedUser == "" {
		log.Fatal("SEED_USER_ID is required")
	}

	db := database.Database.Db
	topicIDs := make(map[string]uint)
	imported := 0

	for i, record := range records {
		if i == 0 {
			// Skip header row
			continue
		}
		if len(record) < 7 {
			log.Printf("Skipping row %d: expected 7 columns, got %d", i+1, len(record))
			continue
		}

		topicName := strings.TrimSpace(record[0])
		questionType := strings.TrimSpace(record[1])
		questionText := strings.TrimSpace(record[2])
		explanation := strings.TrimSpace(record[3])
		points, _ := strconv.Atoi(record[4])
		difficulty, _ := strconv.Atoi(record[5])
		answer := strings.TrimSpace(record[6])

		topicID, ok := topicIDs[utils.Slugify(topicName)]
		if !ok {
			var existing models.Topic
			err := db.Where("slug = ?", utils.Slugify(topicName)).First(&existing).Error
			if err == nil {
				topicID = existing.ID
			} else {
				topic, err := topicControllers.CreateTopicRecord(db, seedUser, topicName, "", nil, 0)
				if err != nil {
					log.Printf("Skipping row %d: failed to create topic %q: %v", i+1, topicName, err)
					continue
				}
				topicID = topic.ID
			}
			topicIDs[utils.Slugify(topicName)] = topicID
		}

		in := questionControllers.QuestionInput{
			TopicID:         &topicID,
			QuestionText:    questionText,
			QuestionType:    questionType,
			Explanation:     explanation,
			Points:          points,
			DifficultyLevel: difficulty,
		}

		if models.IsChoiceType(questionType) {
			parts := strings.Split(answer, "|")
			for j, part := range parts {
				in.Choices = append(in.Choices, questionControllers.ChoiceInput{
					Text:      strings.TrimSpace(part),
					IsCorrect: j == 0,
				})
			}
		} else if models.IsTextType(questionType) {
			in.CorrectAnswers = append(in.CorrectAnswers, questionControllers.CorrectAnswerInput{
				Text:   answer,
				Points: points,
			})
		}

		if _, err := questionControllers.CreateQuestionRecord(db, seedUser, in); err != nil {
			log.Printf("Skipping row %d: failed to create question: %v", i+1, err)
			continue
		}
		imported++
	}

	log.Printf("Imported %d questions across %d topics", imported, len(topicIDs))
}
