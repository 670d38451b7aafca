package controllers

import (
	"errors"
	"quizbank/models"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrSessionNotFound is returned when a session does not exist or belongs to someone else
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuestionNotFound is returned when an answer references a missing question
	ErrQuestionNotFound = errors.New("question not found")
	// ErrChoiceNotFound is returned when an answer references a choice that does not belong to the question
	ErrChoiceNotFound = errors.New("choice not found for question")
)

// matchesCorrectAnswer grades a free-text submission against one expected
// answer, honoring its case-sensitivity and exact/partial flags
func matchesCorrectAnswer(expected models.CorrectAnswer, submitted string) bool {
	want := strings.TrimSpace(expected.AnswerText)
	got := strings.TrimSpace(submitted)

	if !expected.IsCaseSensitive {
		want = strings.ToLower(want)
		got = strings.ToLower(got)
	}

	if expected.IsExactMatch {
		return got == want
	}
	return want != "" && strings.Contains(got, want)
}

// evaluateAnswer grades a submission against the question's answer key.
// Choice-based questions score the question's own points when the selected
// choice is correct; text-based questions score the points of the matched
// correct answer. Essay, matching and ordering stay ungraded.
func evaluateAnswer(tx *gorm.DB, question models.Question, choiceID *uint, answerText string) (bool, int, error) {
	switch {
	case models.IsChoiceType(question.QuestionType):
		if choiceID == nil {
			return false, 0, nil
		}

		var choice models.Choice
		err := tx.Where("id = ? AND question_id = ?", *choiceID, question.ID).First(&choice).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, 0, ErrChoiceNotFound
			}
			return false, 0, err
		}

		if choice.IsCorrect {
			return true, question.Points, nil
		}
		return false, 0, nil

	case models.IsTextType(question.QuestionType):
		var expected []models.CorrectAnswer
		err := tx.Where("question_id = ?", question.ID).Order("sort_order asc").Find(&expected).Error
		if err != nil {
			return false, 0, err
		}

		best := 0
		correct := false
		for _, ca := range expected {
			if matchesCorrectAnswer(ca, answerText) {
				correct = true
				if ca.Points > best {
					best = ca.Points
				}
			}
		}
		return correct, best, nil

	default:
		return false, 0, nil
	}
}

// recomputeSessionStats re-aggregates a session's derived fields from its
// answer rows. Always a full recomputation, never an incremental delta, and
// always inside the same transaction as the answer write that triggered it.
// CompletedAt is monotonic: once set it is never cleared.
func recomputeSessionStats(tx *gorm.DB, sessionID uint) error {
	var session models.UserSession

	q := tx
	if tx.Dialector.Name() == "postgres" {
		// Serialize concurrent answer writers to the same session
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	var completed int64
	if err := tx.Model(&models.UserAnswer{}).Where("session_id = ?", sessionID).Count(&completed).Error; err != nil {
		return err
	}

	var totalScore int
	err := tx.Model(&models.UserAnswer{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(points_earned), 0)").
		Scan(&totalScore).Error
	if err != nil {
		return err
	}

	session.CompletedQuestions = int(completed)
	session.TotalScore = totalScore

	if session.CompletedAt == nil && session.CompletedQuestions >= session.TotalQuestions {
		now := time.Now()
		session.CompletedAt = &now
		session.Status = models.SessionCompleted
	}

	return tx.Save(&session).Error
}

// submitAnswerRecord grades and stores one answer, then re-aggregates the
// owning session, all in one transaction
func submitAnswerRecord(db *gorm.DB, session models.UserSession, questionID uint, choiceID *uint, answerText string, timeSpentSec int) (*models.UserAnswer, error) {
	var answer models.UserAnswer

	err := db.Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.First(&question, questionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestionNotFound
			}
			return err
		}

		isCorrect, points, err := evaluateAnswer(tx, question, choiceID, answerText)
		if err != nil {
			return err
		}

		answer = models.UserAnswer{
			SessionID:    session.ID,
			QuestionID:   question.ID,
			ChoiceID:     choiceID,
			AnswerText:   answerText,
			IsCorrect:    isCorrect,
			PointsEarned: points,
			TimeSpentSec: timeSpentSec,
		}
		if err := tx.Create(&answer).Error; err != nil {
			return err
		}

		return recomputeSessionStats(tx, session.ID)
	})
	if err != nil {
		return nil, err
	}
	return &answer, nil
}
