package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizbank/config"
	topicControllers "quizbank/controllers/topic"
	"quizbank/database"
	"quizbank/middleware"
	"quizbank/models"
	validators "quizbank/validators/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func setupTestApp(t *testing.T) (*fiber.App, string) {
	t.Helper()

	db := setupTestDB(t)
	database.Database = database.DbInstance{Db: db}
	config.AppConfig = &config.Config{JWTKey: "test-secret"}

	app := fiber.New()
	app.Post("/session/", middleware.JWTMiddleware, validators.StartSession(), StartSession)
	app.Post("/session/:id/answer", middleware.JWTMiddleware, validators.SessionIDParam(), validators.SubmitAnswer(), SubmitAnswer)
	app.Get("/session/:id", middleware.JWTMiddleware, validators.SessionIDParam(), GetSessionDetails)

	token, err := middleware.GenerateJWT(uuid.NewString(), "Test User", "tester@example.com")
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return app, token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var envelope struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	fields := map[string]json.RawMessage{}
	if len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		if err := json.Unmarshal(envelope.Data, &fields); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	fields["_raw"] = envelope.Data
	return resp, fields
}

func TestSessionFlowOverHTTP(t *testing.T) {
	app, token := setupTestApp(t)
	db := database.Database.Db

	topic, err := topicControllers.CreateTopicRecord(db, testUser, "Finnish Grammar", "", nil, 0)
	if err != nil {
		t.Fatalf("failed to create topic: %v", err)
	}

	q := models.Question{
		TopicID:         &topic.ID,
		QuestionText:    "Partitive of 'talo'?",
		QuestionType:    models.TypeShortAnswer,
		Points:          2,
		DifficultyLevel: 2,
		CreatedBy:       testUser,
	}
	db.Create(&q)
	db.Create(&models.CorrectAnswer{QuestionID: q.ID, AnswerText: "taloa", IsExactMatch: true, Points: 2})

	// Starting a topic-scoped session defaults the totals from the subtree
	resp, data := doJSON(t, app, "POST", "/session/", token, fiber.Map{
		"topic_id": topic.ID,
		"label":    "evening practice",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("start session status = %d, want 201", resp.StatusCode)
	}

	var session models.UserSession
	if err := json.Unmarshal(data["_raw"], &session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if session.TotalQuestions != 1 || session.MaxScore != 2 {
		t.Errorf("totals = %d/%d, want 1/2", session.TotalQuestions, session.MaxScore)
	}

	resp, data = doJSON(t, app, "POST", fmt.Sprintf("/session/%d/answer", session.ID), token, fiber.Map{
		"question_id":    q.ID,
		"answer_text":    "Taloa",
		"time_spent_sec": 12,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("submit answer status = %d, want 200", resp.StatusCode)
	}

	var after models.UserSession
	if err := json.Unmarshal(data["session"], &after); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if after.CompletedQuestions != 1 || after.TotalScore != 2 {
		t.Errorf("aggregates = %d/%d, want 1/2", after.CompletedQuestions, after.TotalScore)
	}
	if after.CompletedAt == nil {
		t.Error("completed_at not set")
	}
	if after.Status != models.SessionCompleted {
		t.Errorf("status = %q, want %q", after.Status, models.SessionCompleted)
	}
}

func TestSessionOwnershipOverHTTP(t *testing.T) {
	app, token := setupTestApp(t)
	db := database.Database.Db

	// A session owned by someone else is invisible to the caller
	foreign := models.UserSession{
		UserID:         uuid.NewString(),
		TotalQuestions: 1,
		Status:         models.SessionActive,
	}
	db.Create(&foreign)

	resp, _ := doJSON(t, app, "GET", fmt.Sprintf("/session/%d", foreign.ID), token, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestProfileProvisionedOnFirstRequest(t *testing.T) {
	app, token := setupTestApp(t)
	db := database.Database.Db

	resp, _ := doJSON(t, app, "POST", "/session/", token, fiber.Map{"total_questions": 3})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var profiles []models.UserProfile
	db.Find(&profiles)
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles, want 1", len(profiles))
	}
	if profiles[0].Email != "tester@example.com" {
		t.Errorf("email = %q, want tester@example.com", profiles[0].Email)
	}
	if profiles[0].FullName != "Test User" {
		t.Errorf("full_name = %q, want Test User", profiles[0].FullName)
	}
	if profiles[0].Role != models.RoleStudent {
		t.Errorf("role = %q, want STUDENT", profiles[0].Role)
	}

	// A second request must not create a second profile
	doJSON(t, app, "POST", "/session/", token, fiber.Map{"total_questions": 1})
	db.Find(&profiles)
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles after second request, want 1", len(profiles))
	}
}
