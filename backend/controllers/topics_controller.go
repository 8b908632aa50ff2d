package controllers

import (
	"strconv"

	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TopicsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTopicsController(db *gorm.DB, cfg *config.Config) *TopicsController {
	return &TopicsController{DB: db, Cfg: cfg}
}

// GetMenuTopics returns the active topics for the navigation menu,
// title-ordered. The route sits behind the cache middleware because the
// menu is rendered on every page.
func (tc *TopicsController) GetMenuTopics(c *fiber.Ctx) error {
	var topics []models.Topic
	err := tc.DB.
		Select("id", "title", "slug").
		Where("is_active = true").
		Order("title").
		Find(&topics).Error
	if err != nil {
		return utils.InternalServerError(c, "Failed to fetch topics")
	}

	result := make([]fiber.Map, 0, len(topics))
	for _, topic := range topics {
		result = append(result, fiber.Map{
			"id":    topic.ID,
			"title": topic.Title,
			"slug":  topic.Slug,
		})
	}
	return c.JSON(fiber.Map{"topics": result})
}

type TopicRequest struct {
	Title          string `json:"title" validate:"required,max=50"`
	Slug           string `json:"slug" validate:"omitempty,max=55"`
	Description    string `json:"description"`
	ImageURL       string `json:"image_url"`
	IsActive       *bool  `json:"is_active"`
	SEOTitle       string `json:"seo_title" validate:"omitempty,max=60"`
	SEOKeywords    string `json:"seo_keywords"`
	SEODescription string `json:"seo_description"`
}

// CreateTopic (admin) creates a topic; slug is derived from the title when
// not supplied.
func (tc *TopicsController) CreateTopic(c *fiber.Ctx) error {
	var input TopicRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	slug := input.Slug
	if slug == "" {
		slug = utils.Slugify(input.Title)
	}

	topic := models.Topic{
		Title:          input.Title,
		Slug:           slug,
		Description:    input.Description,
		ImageURL:       input.ImageURL,
		IsActive:       true,
		SEOTitle:       input.SEOTitle,
		SEOKeywords:    input.SEOKeywords,
		SEODescription: input.SEODescription,
	}
	if input.IsActive != nil {
		topic.IsActive = *input.IsActive
	}

	if err := tc.DB.Create(&topic).Error; err != nil {
		return utils.Conflict(c, "Topic slug already exists")
	}
	return utils.Created(c, "Topic created", topic)
}

// UpdateTopic (admin) updates topic metadata.
func (tc *TopicsController) UpdateTopic(c *fiber.Ctx) error {
	topicID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	var topic models.Topic
	if err := tc.DB.First(&topic, topicID).Error; err != nil {
		return utils.NotFound(c, "Topic not found")
	}

	var input TopicRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	topic.Title = input.Title
	if input.Slug != "" {
		topic.Slug = input.Slug
	}
	topic.Description = input.Description
	topic.ImageURL = input.ImageURL
	if input.IsActive != nil {
		topic.IsActive = *input.IsActive
	}
	topic.SEOTitle = input.SEOTitle
	topic.SEOKeywords = input.SEOKeywords
	topic.SEODescription = input.SEODescription

	if err := tc.DB.Save(&topic).Error; err != nil {
		return utils.InternalServerError(c, "Could not update topic")
	}
	return utils.Success(c, fiber.StatusOK, "Topic updated", topic)
}
