package models

import (
	"time"

	"gorm.io/gorm"
)

// Session lifecycle states
const (
	SessionActive    = "ACTIVE"
	SessionCompleted = "COMPLETED"
	SessionAbandoned = "ABANDONED"
)

// UserSession tracks one learning session. CompletedQuestions, TotalScore and
// CompletedAt are derived from the session's user_answers rows and recomputed
// in the same transaction as every answer write.
type UserSession struct {
	gorm.Model
	UserID             string     `json:"user_id" gorm:"index;not null"`
	TopicID            *uint      `json:"topic_id" gorm:"index"`
	Label              string     `json:"label"`
	TotalQuestions     int        `json:"total_questions" gorm:"default:0"`
	CompletedQuestions int        `json:"completed_questions" gorm:"default:0"`
	TotalScore         int        `json:"total_score" gorm:"default:0"`
	MaxScore           int        `json:"max_score" gorm:"default:0"`
	Status             string     `json:"status" gorm:"default:'ACTIVE'"` // ACTIVE, COMPLETED, ABANDONED
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at"`
}

// UserAnswer records one submitted answer. ChoiceID is set for choice-based
// questions, AnswerText for text-based ones.
type UserAnswer struct {
	gorm.Model
	SessionID    uint   `json:"session_id" gorm:"index;not null"`
	QuestionID   uint   `json:"question_id" gorm:"index;not null"`
	ChoiceID     *uint  `json:"choice_id"`
	AnswerText   string `json:"answer_text"`
	IsCorrect    bool   `json:"is_correct" gorm:"default:false"`
	PointsEarned int    `json:"points_earned" gorm:"default:0"`
	TimeSpentSec int    `json:"time_spent_sec" gorm:"default:0"`
}
