package models

import "gorm.io/gorm"

// Question types supported by the bank
const (
	TypeMultipleChoice = "multiple_choice"
	TypeSingleChoice   = "single_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
	TypeFillInBlank    = "fill_in_blank"
	TypeEssay          = "essay"
	TypeMatching       = "matching"
	TypeOrdering       = "ordering"
)

// QuestionTypes lists every accepted question type
var QuestionTypes = []string{
	TypeMultipleChoice,
	TypeSingleChoice,
	TypeTrueFalse,
	TypeShortAnswer,
	TypeFillInBlank,
	TypeEssay,
	TypeMatching,
	TypeOrdering,
}

// IsChoiceType reports whether answers to this type reference a choice row
func IsChoiceType(questionType string) bool {
	return questionType == TypeMultipleChoice ||
		questionType == TypeSingleChoice ||
		questionType == TypeTrueFalse
}

// IsTextType reports whether answers to this type are graded against correct_answers
func IsTextType(questionType string) bool {
	return questionType == TypeShortAnswer || questionType == TypeFillInBlank
}

// Question represents a question in the bank. TopicID is optional so a
// question can survive detached from the hierarchy.
type Question struct {
	gorm.Model
	TopicID         *uint  `json:"topic_id" gorm:"index"`
	QuestionText    string `json:"question_text" gorm:"not null"`
	QuestionType    string `json:"question_type" gorm:"index;not null"`
	Explanation     string `json:"explanation"`
	Points          int    `json:"points" gorm:"default:1"`
	DifficultyLevel int    `json:"difficulty_level" gorm:"default:1"` // 1-5
	CreatedBy       string `json:"created_by" gorm:"index;not null"`
}

// Choice represents an option of a choice-based question
type Choice struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	ChoiceText string `json:"choice_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"default:false"`
	SortOrder  int    `json:"sort_order" gorm:"default:0"`
}

// CorrectAnswer represents an expected answer of a text-based question
type CorrectAnswer struct {
	gorm.Model
	QuestionID      uint   `json:"question_id" gorm:"index;not null"`
	AnswerText      string `json:"answer_text"`
	IsCaseSensitive bool   `json:"is_case_sensitive" gorm:"default:false"`
	IsExactMatch    bool   `json:"is_exact_match"`
	Points          int    `json:"points" gorm:"default:1"`
	SortOrder       int    `json:"sort_order" gorm:"default:0"`
}
