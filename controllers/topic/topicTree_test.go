package controllers

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"quizbank/database"
	"quizbank/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testUser = "6f1e6a0e-8f7d-4c3a-9a39-0b1e2f3a4b5c"

var testDbSeq int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:topictest%d?mode=memory&cache=shared", atomic.AddInt64(&testDbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	database.RunMigrations(db)
	return db
}

func mustCreateTopic(t *testing.T, db *gorm.DB, name string, parentID *uint) *models.Topic {
	t.Helper()

	topic, err := CreateTopicRecord(db, testUser, name, "", parentID, 0)
	if err != nil {
		t.Fatalf("failed to create topic %q: %v", name, err)
	}
	return topic
}

func pathOf(t *testing.T, db *gorm.DB, id uint) []string {
	t.Helper()

	var topic models.Topic
	if err := db.First(&topic, id).Error; err != nil {
		t.Fatalf("failed to reload topic %d: %v", id, err)
	}
	return topic.Path
}

func assertPath(t *testing.T, got, want []string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("path = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("path = %v, want %v", got, want)
		}
	}
}

func TestCreateTopicPaths(t *testing.T) {
	db := setupTestDB(t)

	math := mustCreateTopic(t, db, "Mathematics", nil)
	if math.Slug != "mathematics" {
		t.Errorf("slug = %q, want %q", math.Slug, "mathematics")
	}
	assertPath(t, math.Path, []string{"mathematics"})

	algebra := mustCreateTopic(t, db, "Algebra", &math.ID)
	assertPath(t, algebra.Path, []string{"mathematics", "algebra"})

	linear := mustCreateTopic(t, db, "Linear Equations", &algebra.ID)
	assertPath(t, linear.Path, []string{"mathematics", "algebra", "linear-equations"})
}

func TestCreateTopicMissingParent(t *testing.T) {
	db := setupTestDB(t)

	missing := uint(9999)
	_, err := CreateTopicRecord(db, testUser, "Orphan", "", &missing, 0)
	if !errors.Is(err, ErrParentTopicNotFound) {
		t.Fatalf("err = %v, want ErrParentTopicNotFound", err)
	}
}

func TestCreateTopicDuplicateSlug(t *testing.T) {
	db := setupTestDB(t)

	mustCreateTopic(t, db, "Algebra", nil)
	_, err := CreateTopicRecord(db, testUser, "  ALGEBRA ", "", nil, 0)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("err = %v, want ErrDuplicatedKey", err)
	}
}

func TestRenameCascadesToDescendants(t *testing.T) {
	db := setupTestDB(t)

	math := mustCreateTopic(t, db, "Mathematics", nil)
	algebra := mustCreateTopic(t, db, "Algebra", &math.ID)
	linear := mustCreateTopic(t, db, "Linear Equations", &algebra.ID)

	newName := "Applied Mathematics"
	updated, err := applyTopicUpdate(db, math.ID, topicUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if updated.Slug != "applied-mathematics" {
		t.Errorf("slug = %q, want %q", updated.Slug, "applied-mathematics")
	}

	assertPath(t, pathOf(t, db, math.ID), []string{"applied-mathematics"})
	assertPath(t, pathOf(t, db, algebra.ID), []string{"applied-mathematics", "algebra"})
	assertPath(t, pathOf(t, db, linear.ID), []string{"applied-mathematics", "algebra", "linear-equations"})
}

func TestReparentCascadesToDescendants(t *testing.T) {
	db := setupTestDB(t)

	math := mustCreateTopic(t, db, "Mathematics", nil)
	science := mustCreateTopic(t, db, "Science", nil)
	algebra := mustCreateTopic(t, db, "Algebra", &math.ID)
	linear := mustCreateTopic(t, db, "Linear Equations", &algebra.ID)

	_, err := applyTopicUpdate(db, algebra.ID, topicUpdate{ParentID: &science.ID})
	if err != nil {
		t.Fatalf("reparent failed: %v", err)
	}

	assertPath(t, pathOf(t, db, algebra.ID), []string{"science", "algebra"})
	assertPath(t, pathOf(t, db, linear.ID), []string{"science", "algebra", "linear-equations"})
	// The old parent keeps its own path
	assertPath(t, pathOf(t, db, math.ID), []string{"mathematics"})
}

func TestReparentToRoot(t *testing.T) {
	db := setupTestDB(t)

	math := mustCreateTopic(t, db, "Mathematics", nil)
	algebra := mustCreateTopic(t, db, "Algebra", &math.ID)
	linear := mustCreateTopic(t, db, "Linear Equations", &algebra.ID)

	_, err := applyTopicUpdate(db, algebra.ID, topicUpdate{ClearParent: true})
	if err != nil {
		t.Fatalf("reparent to root failed: %v", err)
	}

	assertPath(t, pathOf(t, db, algebra.ID), []string{"algebra"})
	assertPath(t, pathOf(t, db, linear.ID), []string{"algebra", "linear-equations"})
}

func TestReparentCycleRejected(t *testing.T) {
	db := setupTestDB(t)

	math := mustCreateTopic(t, db, "Mathematics", nil)
	algebra := mustCreateTopic(t, db, "Algebra", &math.ID)
	linear := mustCreateTopic(t, db, "Linear Equations", &algebra.ID)

	// Moving the root under its own grandchild must fail
	_, err := applyTopicUpdate(db, math.ID, topicUpdate{ParentID: &linear.ID})
	if !errors.Is(err, ErrTopicCycle) {
		t.Fatalf("err = %v, want ErrTopicCycle", err)
	}

	// Self-parenting is a cycle too
	_, err = applyTopicUpdate(db, algebra.ID, topicUpdate{ParentID: &algebra.ID})
	if !errors.Is(err, ErrTopicCycle) {
		t.Fatalf("err = %v, want ErrTopicCycle", err)
	}

	// The stored tree is unchanged after the rejected writes
	assertPath(t, pathOf(t, db, math.ID), []string{"mathematics"})
	assertPath(t, pathOf(t, db, algebra.ID), []string{"mathematics", "algebra"})
	assertPath(t, pathOf(t, db, linear.ID), []string{"mathematics", "algebra", "linear-equations"})

	var mathRow models.Topic
	db.First(&mathRow, math.ID)
	if mathRow.ParentID != nil {
		t.Errorf("parent_id = %v, want nil after rejected reparent", *mathRow.ParentID)
	}
}

func TestLeafTopicsExcludeRoots(t *testing.T) {
	db := setupTestDB(t)

	math := mustCreateTopic(t, db, "Mathematics", nil)
	mustCreateTopic(t, db, "Science", nil) // childless root
	algebra := mustCreateTopic(t, db, "Algebra", &math.ID)
	linear := mustCreateTopic(t, db, "Linear Equations", &algebra.ID)

	leaves, err := leafTopics(db)
	if err != nil {
		t.Fatalf("leafTopics failed: %v", err)
	}

	if len(leaves) != 1 {
		t.Fatalf("got %d leaves, want 1", len(leaves))
	}
	if leaves[0].ID != linear.ID {
		t.Errorf("leaf = %q, want %q", leaves[0].Name, "Linear Equations")
	}
}

func TestDescendants(t *testing.T) {
	db := setupTestDB(t)

	math := mustCreateTopic(t, db, "Mathematics", nil)
	algebra := mustCreateTopic(t, db, "Algebra", &math.ID)
	linear := mustCreateTopic(t, db, "Linear Equations", &algebra.ID)
	mustCreateTopic(t, db, "Science", nil)

	var mathRow models.Topic
	db.First(&mathRow, math.ID)

	descendants, err := descendantTopics(db, mathRow)
	if err != nil {
		t.Fatalf("descendantTopics failed: %v", err)
	}
	if len(descendants) != 2 {
		t.Fatalf("got %d descendants, want 2", len(descendants))
	}
	got := map[uint]bool{}
	for _, d := range descendants {
		got[d.ID] = true
	}
	if !got[algebra.ID] || !got[linear.ID] {
		t.Errorf("descendants = %v, want algebra and linear equations", descendants)
	}

	// A topic with no children has no descendants
	var linearRow models.Topic
	db.First(&linearRow, linear.ID)
	none, err := descendantTopics(db, linearRow)
	if err != nil {
		t.Fatalf("descendantTopics failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("got %d descendants for a leaf, want 0", len(none))
	}
}

func attachQuestions(t *testing.T, db *gorm.DB, topicID uint, count int) {
	t.Helper()

	for i := 0; i < count; i++ {
		q := models.Question{
			TopicID:         &topicID,
			QuestionText:    fmt.Sprintf("Question %d", i+1),
			QuestionType:    models.TypeShortAnswer,
			Points:          1,
			DifficultyLevel: 1,
			CreatedBy:       testUser,
		}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("failed to create question: %v", err)
		}
	}
}

func TestSubtreeQuestionCount(t *testing.T) {
	db := setupTestDB(t)

	math := mustCreateTopic(t, db, "Mathematics", nil)
	algebra := mustCreateTopic(t, db, "Algebra", &math.ID)
	attachQuestions(t, db, algebra.ID, 3)

	var mathRow models.Topic
	db.First(&mathRow, math.ID)

	count, err := subtreeQuestionCount(db, mathRow)
	if err != nil {
		t.Fatalf("subtreeQuestionCount failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestComputeCourseStats(t *testing.T) {
	db := setupTestDB(t)

	math := mustCreateTopic(t, db, "Mathematics", nil)
	algebra := mustCreateTopic(t, db, "Algebra", &math.ID)
	linear := mustCreateTopic(t, db, "Linear Equations", &algebra.ID)
	attachQuestions(t, db, algebra.ID, 3)
	attachQuestions(t, db, linear.ID, 2)

	var mathRow models.Topic
	db.First(&mathRow, math.ID)

	stats, err := computeCourseStats(db, mathRow)
	if err != nil {
		t.Fatalf("computeCourseStats failed: %v", err)
	}
	if stats.TotalTopics != 3 {
		t.Errorf("total_topics = %d, want 3", stats.TotalTopics)
	}
	if stats.TotalQuestions != 5 {
		t.Errorf("total_questions = %d, want 5", stats.TotalQuestions)
	}
	if stats.TotalLeaves != 1 {
		t.Errorf("total_leaf_topics = %d, want 1", stats.TotalLeaves)
	}
}

func TestSubtreeTopicIDsMissingTopic(t *testing.T) {
	db := setupTestDB(t)

	_, err := SubtreeTopicIDs(db, 424242)
	if !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("err = %v, want ErrTopicNotFound", err)
	}
}

func TestDeleteTopicSubtree(t *testing.T) {
	db := setupTestDB(t)

	math := mustCreateTopic(t, db, "Mathematics", nil)
	algebra := mustCreateTopic(t, db, "Algebra", &math.ID)
	linear := mustCreateTopic(t, db, "Linear Equations", &algebra.ID)
	attachQuestions(t, db, algebra.ID, 3)
	attachQuestions(t, db, linear.ID, 1)

	var q models.Question
	db.Where("topic_id = ?", algebra.ID).First(&q)
	db.Create(&models.Choice{QuestionID: q.ID, ChoiceText: "x = 2", IsCorrect: true})

	topics, questions, err := deleteTopicSubtree(db, algebra.ID)
	if err != nil {
		t.Fatalf("deleteTopicSubtree failed: %v", err)
	}
	if topics != 2 {
		t.Errorf("deleted topics = %d, want 2", topics)
	}
	if questions != 4 {
		t.Errorf("deleted questions = %d, want 4", questions)
	}

	var choiceCount int64
	db.Model(&models.Choice{}).Count(&choiceCount)
	if choiceCount != 0 {
		t.Errorf("choices left = %d, want 0", choiceCount)
	}

	// The root survives, and the freed slug can be reused
	assertPath(t, pathOf(t, db, math.ID), []string{"mathematics"})
	if _, err := CreateTopicRecord(db, testUser, "Algebra", "", &math.ID, 0); err != nil {
		t.Errorf("slug not freed after delete: %v", err)
	}
}

func TestDeleteMissingTopic(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := deleteTopicSubtree(db, 31337)
	if !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("err = %v, want ErrTopicNotFound", err)
	}
}

func TestImportTopicTreeCountsAndReuse(t *testing.T) {
	db := setupTestDB(t)

	tree := TopicNode{
		Name: "Mathematics",
		Children: []TopicNode{
			{Name: "Algebra", Children: []TopicNode{{Name: "Linear Equations"}}},
			{Name: "Geometry"},
		},
	}

	root, created, reused, err := importTopicTree(db, testUser, tree)
	if err != nil {
		t.Fatalf("importTopicTree failed: %v", err)
	}
	if created != 4 || reused != 0 {
		t.Errorf("counts = %d created / %d reused, want 4/0", created, reused)
	}
	assertPath(t, root.Path, []string{"mathematics"})

	var linear models.Topic
	if err := db.Where("slug = ?", "linear-equations").First(&linear).Error; err != nil {
		t.Fatalf("failed to load imported leaf: %v", err)
	}
	assertPath(t, linear.Path, []string{"mathematics", "algebra", "linear-equations"})

	// Re-importing the same course reuses every node
	_, created, reused, err = importTopicTree(db, testUser, tree)
	if err != nil {
		t.Fatalf("importTopicTree failed on re-import: %v", err)
	}
	if created != 0 || reused != 4 {
		t.Errorf("re-import counts = %d created / %d reused, want 0/4", created, reused)
	}
}

func TestImportTopicTreeIsAtomic(t *testing.T) {
	db := setupTestDB(t)

	failErr := errors.New("induced insert failure")
	err := db.Callback().Create().Before("gorm:create").Register("fail_marked_topic", func(tx *gorm.DB) {
		if topic, ok := tx.Statement.Dest.(*models.Topic); ok && topic.Name == "Geometry" {
			tx.AddError(failErr)
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	_, _, _, err = importTopicTree(db, testUser, TopicNode{
		Name: "Mathematics",
		Children: []TopicNode{
			{Name: "Algebra"},
			{Name: "Geometry"},
		},
	})
	if !errors.Is(err, failErr) {
		t.Fatalf("err = %v, want induced failure", err)
	}

	// A mid-walk failure must not leave earlier nodes behind
	var count int64
	db.Model(&models.Topic{}).Count(&count)
	if count != 0 {
		t.Errorf("found %d topics after failed import, want 0", count)
	}
}
