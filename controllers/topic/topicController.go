package controllers

import (
	"errors"
	"quizbank/database"
	"quizbank/middleware"
	"quizbank/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateTopic creates a topic with its materialized path computed before the
// insert commits
func CreateTopic(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ParentID    *uint  `json:"parent_id"`
		SortOrder   int    `json:"sort_order"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	topic, err := CreateTopicRecord(database.Database.Db, userID, reqData.Name, reqData.Description, reqData.ParentID, reqData.SortOrder)
	if err != nil {
		switch {
		case errors.Is(err, ErrParentTopicNotFound):
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Parent topic not found!", nil)
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(), nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create topic!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Topic created!", topic)
}

// UpdateTopic renames and/or reparents a topic. A name or parent change
// recomputes the stored path of the topic and all of its descendants.
func UpdateTopic(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	topicID := c.Locals("topicID").(int)

	var existing models.Topic
	if err := database.Database.Db.First(&existing, topicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
	}

	if existing.CreatedBy != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only update your own topics!", nil)
	}

	reqData := new(struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		SortOrder   *int    `json:"sort_order"`
		ParentID    *uint   `json:"parent_id"`
		ClearParent bool    `json:"clear_parent"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	topic, err := applyTopicUpdate(database.Database.Db, uint(topicID), topicUpdate{
		Name:        reqData.Name,
		Description: reqData.Description,
		SortOrder:   reqData.SortOrder,
		ParentID:    reqData.ParentID,
		ClearParent: reqData.ClearParent,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTopicNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
		case errors.Is(err, ErrParentTopicNotFound):
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Parent topic not found!", nil)
		case errors.Is(err, ErrTopicCycle):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Topic cannot become its own ancestor!", nil)
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(), nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update topic!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic updated!", topic)
}

// DeleteTopic deletes a topic, its descendants and all attached questions
func DeleteTopic(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	topicID := c.Locals("topicID").(int)

	var existing models.Topic
	if err := database.Database.Db.First(&existing, topicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
	}

	if existing.CreatedBy != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only delete your own topics!", nil)
	}

	topics, questions, err := deleteTopicSubtree(database.Database.Db, uint(topicID))
	if err != nil {
		if errors.Is(err, ErrTopicNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete topic!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic deleted!", fiber.Map{
		"deleted_topics":    topics,
		"deleted_questions": questions,
	})
}

// GetTopicList returns all topics ordered for display
func GetTopicList(c *fiber.Ctx) error {
	var topics []models.Topic
	if err := database.Database.Db.Order("sort_order asc, name asc").Find(&topics).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch topics!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topics fetched successfully!", topics)
}

// GetTopicDetails returns a topic with its direct children
func GetTopicDetails(c *fiber.Ctx) error {
	topicID := c.Locals("topicID").(int)

	var topic models.Topic
	if err := database.Database.Db.First(&topic, topicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
	}

	var children []models.Topic
	database.Database.Db.Where("parent_id = ?", topic.ID).Order("sort_order asc, name asc").Find(&children)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Topic fetched successfully!", fiber.Map{
		"topic":    topic,
		"children": children,
	})
}

// GetLeafTopics returns every non-root topic that has no children
func GetLeafTopics(c *fiber.Ctx) error {
	leaves, err := leafTopics(database.Database.Db)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch leaf topics!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Leaf topics fetched successfully!", leaves)
}

// GetDescendants returns every topic in the subtree below the given topic
func GetDescendants(c *fiber.Ctx) error {
	topicID := c.Locals("topicID").(int)

	var topic models.Topic
	if err := database.Database.Db.First(&topic, topicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
	}

	descendants, err := descendantTopics(database.Database.Db, topic)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch descendants!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Descendants fetched successfully!", descendants)
}

// GetTopicStats returns aggregate counts over the topic's closed subtree
func GetTopicStats(c *fiber.Ctx) error {
	topicID := c.Locals("topicID").(int)

	var topic models.Topic
	if err := database.Database.Db.First(&topic, topicID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Topic not found!", nil)
	}

	stats, err := computeCourseStats(database.Database.Db, topic)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute stats!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched successfully!", stats)
}

// TopicNode is one node of a bulk hierarchy import
type TopicNode struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	SortOrder   int         `json:"sort_order"`
	Children    []TopicNode `json:"children"`
}

// ImportTopicHierarchy creates a whole topic tree in one request. Nodes whose
// slug already exists are reused, so re-importing the same course is safe. The
// import is all-or-nothing.
func ImportTopicHierarchy(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(string)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	root := new(TopicNode)
	if err := c.BodyParser(root); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	rootTopic, created, reused, err := importTopicTree(database.Database.Db, userID, *root)
	if err != nil {
		if errors.Is(err, ErrParentTopicNotFound) {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Parent topic not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to import hierarchy!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Hierarchy imported!", fiber.Map{
		"root_topic": rootTopic,
		"created":    created,
		"reused":     reused,
	})
}
