package utils

import (
	"fmt"
	"net/http"
	"quizbank/config"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// TriviaQuestion is one question as served by the external trivia API
type TriviaQuestion struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"` // "multiple" or "boolean"
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type triviaResponse struct {
	ResponseCode int              `json:"response_code"`
	Results      []TriviaQuestion `json:"results"`
}

// FetchTriviaQuestions pulls questions from the configured trivia API
func FetchTriviaQuestions(amount int) ([]TriviaQuestion, error) {
	client := resty.New().SetTimeout(15 * time.Second)

	var out triviaResponse
	resp, err := client.R().
		SetQueryParam("amount", strconv.Itoa(amount)).
		SetResult(&out).
		Get(config.AppConfig.TriviaApiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("trivia API error: %s", resp.Status())
	}
	if out.ResponseCode != 0 {
		return nil, fmt.Errorf("trivia API returned code %d", out.ResponseCode)
	}

	return out.Results, nil
}

// TriviaDifficultyLevel maps the API's difficulty labels onto the 1-5 scale
func TriviaDifficultyLevel(difficulty string) int {
	switch difficulty {
	case "easy":
		return 1
	case "medium":
		return 3
	case "hard":
		return 5
	default:
		return 1
	}
}
