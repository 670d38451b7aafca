package controllers

import (
	"errors"
	"quizbank/models"
	"quizbank/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrTopicNotFound is returned when a referenced topic does not exist
	ErrTopicNotFound = errors.New("topic not found")
	// ErrParentTopicNotFound is returned when a create/update names a missing parent
	ErrParentTopicNotFound = errors.New("parent topic not found")
	// ErrTopicCycle is returned when a reparent would make a topic its own ancestor
	ErrTopicCycle = errors.New("reparent would make the topic its own ancestor")
)

// pathHasPrefix reports whether path starts with every segment of prefix.
// Containment is segment-wise, never character-wise.
func pathHasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// buildTopicPath computes the materialized path for a topic: the parent's
// current path plus the topic's own slug, or just the slug for a root topic.
func buildTopicPath(tx *gorm.DB, parentID *uint, slug string) (datatypes.JSONSlice[string], error) {
	if parentID == nil {
		return datatypes.JSONSlice[string]{slug}, nil
	}

	var parent models.Topic
	if err := tx.First(&parent, *parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentTopicNotFound
		}
		return nil, err
	}

	path := make([]string, 0, len(parent.Path)+1)
	path = append(path, parent.Path...)
	path = append(path, slug)
	return datatypes.JSONSlice[string](path), nil
}

// CreateTopicRecord inserts a topic with its path already computed
func CreateTopicRecord(db *gorm.DB, userID, name, description string, parentID *uint, sortOrder int) (*models.Topic, error) {
	topic := models.Topic{
		Name:        name,
		Description: description,
		Slug:        utils.Slugify(name),
		ParentID:    parentID,
		SortOrder:   sortOrder,
		CreatedBy:   userID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		path, err := buildTopicPath(tx, parentID, topic.Slug)
		if err != nil {
			return err
		}
		topic.Path = path
		return tx.Create(&topic).Error
	})
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// topicUpdate carries the mutable topic fields. ClearParent moves the topic
// to the root; it wins over ParentID.
type topicUpdate struct {
	Name        *string
	Description *string
	SortOrder   *int
	ParentID    *uint
	ClearParent bool
}

// applyTopicUpdate updates a topic and, when the name or parent changed,
// recomputes its path and the stored path of every descendant in the same
// transaction. A reader never sees a partially updated subtree.
func applyTopicUpdate(db *gorm.DB, topicID uint, upd topicUpdate) (*models.Topic, error) {
	var topic models.Topic

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&topic, topicID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopicNotFound
			}
			return err
		}

		oldPath := append([]string{}, topic.Path...)

		if upd.Description != nil {
			topic.Description = *upd.Description
		}
		if upd.SortOrder != nil {
			topic.SortOrder = *upd.SortOrder
		}

		nameChanged := upd.Name != nil && *upd.Name != topic.Name
		if nameChanged {
			topic.Name = *upd.Name
			topic.Slug = utils.Slugify(*upd.Name)
		}

		parentChanged := false
		if upd.ClearParent {
			parentChanged = topic.ParentID != nil
			topic.ParentID = nil
		} else if upd.ParentID != nil {
			parentChanged = topic.ParentID == nil || *topic.ParentID != *upd.ParentID
			topic.ParentID = upd.ParentID
		}

		if parentChanged && topic.ParentID != nil {
			var parent models.Topic
			if err := tx.First(&parent, *topic.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrParentTopicNotFound
				}
				return err
			}
			// The new parent must not sit inside this topic's own subtree
			if pathHasPrefix(parent.Path, oldPath) {
				return ErrTopicCycle
			}
		}

		if !nameChanged && !parentChanged {
			return tx.Save(&topic).Error
		}

		newPath, err := buildTopicPath(tx, topic.ParentID, topic.Slug)
		if err != nil {
			return err
		}
		topic.Path = newPath

		if err := tx.Save(&topic).Error; err != nil {
			return err
		}

		// Descendants keep their own slug suffix under the new ancestor path
		var all []models.Topic
		if err := tx.Find(&all).Error; err != nil {
			return err
		}
		for _, d := range all {
			if d.ID == topic.ID || !pathHasPrefix(d.Path, oldPath) {
				continue
			}
			rebased := make([]string, 0, len(newPath)+len(d.Path)-len(oldPath))
			rebased = append(rebased, newPath...)
			rebased = append(rebased, d.Path[len(oldPath):]...)
			err := tx.Model(&models.Topic{}).Where("id = ?", d.ID).
				Update("path", datatypes.JSONSlice[string](rebased)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// collectSubtreeTopics returns the closed subtree rooted at root, inclusive
// of root itself
func collectSubtreeTopics(tx *gorm.DB, root models.Topic) ([]models.Topic, error) {
	var all []models.Topic
	if err := tx.Find(&all).Error; err != nil {
		return nil, err
	}

	subtree := make([]models.Topic, 0)
	for _, t := range all {
		if pathHasPrefix(t.Path, root.Path) {
			subtree = append(subtree, t)
		}
	}
	return subtree, nil
}

// deleteTopicSubtree hard-deletes a topic, its descendants, and every
// question (with choices and correct answers) attached anywhere in the
// subtree. Hard so the freed slugs can be reused.
func deleteTopicSubtree(db *gorm.DB, topicID uint) (int, int, error) {
	deletedTopics := 0
	deletedQuestions := 0

	err := db.Transaction(func(tx *gorm.DB) error {
		var topic models.Topic
		if err := tx.First(&topic, topicID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopicNotFound
			}
			return err
		}

		subtree, err := collectSubtreeTopics(tx, topic)
		if err != nil {
			return err
		}

		topicIDs := make([]uint, len(subtree))
		for i, t := range subtree {
			topicIDs[i] = t.ID
		}

		var questionIDs []uint
		if err := tx.Model(&models.Question{}).Where("topic_id IN ?", topicIDs).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}

		if len(questionIDs) > 0 {
			if err := tx.Unscoped().Where("question_id IN ?", questionIDs).Delete(&models.Choice{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("question_id IN ?", questionIDs).Delete(&models.CorrectAnswer{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", questionIDs).Delete(&models.Question{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("id IN ?", topicIDs).Delete(&models.Topic{}).Error; err != nil {
			return err
		}

		deletedTopics = len(topicIDs)
		deletedQuestions = len(questionIDs)
		return nil
	})
	return deletedTopics, deletedQuestions, err
}

// leafTopics returns every non-root topic without children. Root topics are
// excluded even when they are childless.
func leafTopics(tx *gorm.DB) ([]models.Topic, error) {
	var all []models.Topic
	if err := tx.Order("sort_order asc, name asc").Find(&all).Error; err != nil {
		return nil, err
	}

	hasChildren := make(map[uint]bool)
	for _, t := range all {
		if t.ParentID != nil {
			hasChildren[*t.ParentID] = true
		}
	}

	leaves := make([]models.Topic, 0)
	for _, t := range all {
		if t.ParentID != nil && !hasChildren[t.ID] {
			leaves = append(leaves, t)
		}
	}
	return leaves, nil
}

// descendantTopics returns every topic below root, root excluded
func descendantTopics(tx *gorm.DB, root models.Topic) ([]models.Topic, error) {
	subtree, err := collectSubtreeTopics(tx, root)
	if err != nil {
		return nil, err
	}

	descendants := make([]models.Topic, 0, len(subtree))
	for _, t := range subtree {
		if t.ID != root.ID {
			descendants = append(descendants, t)
		}
	}
	return descendants, nil
}

// subtreeQuestionCount counts questions attached to root or any descendant
func subtreeQuestionCount(tx *gorm.DB, root models.Topic) (int64, error) {
	subtree, err := collectSubtreeTopics(tx, root)
	if err != nil {
		return 0, err
	}

	topicIDs := make([]uint, len(subtree))
	for i, t := range subtree {
		topicIDs[i] = t.ID
	}

	var count int64
	err = tx.Model(&models.Question{}).Where("topic_id IN ?", topicIDs).Count(&count).Error
	return count, err
}

// SubtreeTopicIDs returns the ids of the closed subtree rooted at topicID,
// the topic itself included. Used by session creation to scope a session to
// a topic and everything below it.
func SubtreeTopicIDs(db *gorm.DB, topicID uint) ([]uint, error) {
	var root models.Topic
	if err := db.First(&root, topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}

	subtree, err := collectSubtreeTopics(db, root)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(subtree))
	for i, t := range subtree {
		ids[i] = t.ID
	}
	return ids, nil
}

// importTopicTree creates a whole topic tree in one transaction. Nodes whose
// slug already exists are reused; any failure rolls the whole import back.
func importTopicTree(db *gorm.DB, userID string, root TopicNode) (*models.Topic, int, int, error) {
	created := 0
	reused := 0
	var rootTopic *models.Topic

	err := db.Transaction(func(tx *gorm.DB) error {
		var walk func(node TopicNode, parentID *uint) (*models.Topic, error)
		walk = func(node TopicNode, parentID *uint) (*models.Topic, error) {
			var topic *models.Topic

			var existing models.Topic
			err := tx.Where("slug = ?", utils.Slugify(node.Name)).First(&existing).Error
			switch {
			case err == nil:
				reused++
				topic = &existing
			case errors.Is(err, gorm.ErrRecordNotFound):
				topic, err = CreateTopicRecord(tx, userID, node.Name, node.Description, parentID, node.SortOrder)
				if err != nil {
					return nil, err
				}
				created++
			default:
				return nil, err
			}

			for _, child := range node.Children {
				if _, err := walk(child, &topic.ID); err != nil {
					return nil, err
				}
			}
			return topic, nil
		}

		t, err := walk(root, nil)
		if err != nil {
			return err
		}
		rootTopic = t
		return nil
	})
	if err != nil {
		return nil, 0, 0, err
	}
	return rootTopic, created, reused, nil
}

// courseStats holds aggregate counts over a closed subtree
type courseStats struct {
	TotalTopics    int   `json:"total_topics"`
	TotalQuestions int64 `json:"total_questions"`
	TotalLeaves    int   `json:"total_leaf_topics"`
}

// computeCourseStats aggregates topic, question and leaf counts over the
// closed subtree rooted at root (root included)
func computeCourseStats(tx *gorm.DB, root models.Topic) (courseStats, error) {
	stats := courseStats{}

	subtree, err := collectSubtreeTopics(tx, root)
	if err != nil {
		return stats, err
	}

	topicIDs := make([]uint, len(subtree))
	hasChildren := make(map[uint]bool)
	for i, t := range subtree {
		topicIDs[i] = t.ID
		if t.ParentID != nil {
			hasChildren[*t.ParentID] = true
		}
	}

	for _, t := range subtree {
		if !hasChildren[t.ID] {
			stats.TotalLeaves++
		}
	}

	stats.TotalTopics = len(subtree)
	err = tx.Model(&models.Question{}).Where("topic_id IN ?", topicIDs).Count(&stats.TotalQuestions).Error
	return stats, err
}
