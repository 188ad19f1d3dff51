package supportControllers

import (
	"eduhub/database"
	"eduhub/middleware"
	"eduhub/models"
	"eduhub/utils"
	"eduhub/validators"
	courseValidator "eduhub/validators/course"
	helpValidator "eduhub/validators/help"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func articleQuery(db *gorm.DB, q *helpValidator.ArticleListQuery) *gorm.DB {
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		db = db.Where("(LOWER(title) LIKE ? OR LOWER(body) LIKE ?)", like, like)
	}
	return db
}

func listArticles(c *fiber.Ctx, db *gorm.DB) error {
	reqData, ok := validators.Get[helpValidator.ArticleListQuery](c, "validatedArticleList")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request!", nil)
	}
	p := validators.GetPagination(c)

	db = articleQuery(db, reqData)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch articles!", nil)
	}

	var articles []models.HelpArticle
	if err := db.Order("view_count desc").Order("created_at desc").
		Offset(p.Offset()).Limit(p.Limit).Find(&articles).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch articles!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Articles fetched successfully!", fiber.Map{
		"articles":   articles,
		"pagination": p.Meta(total),
	})
}

// ArticleList lists published help articles
func ArticleList(c *fiber.Ctx) error {
	return listArticles(c, database.Database.Db.Model(&models.HelpArticle{}).
		Where("is_published = ? AND is_deleted = ?", true, false))
}

// AdminArticleList lists every article including drafts
func AdminArticleList(c *fiber.Ctx) error {
	return listArticles(c, database.Database.Db.Model(&models.HelpArticle{}).
		Where("is_deleted = ?", false))
}

// GetArticle returns a published article and counts the view
func GetArticle(c *fiber.Ctx) error {
	db := database.Database.Db
	slug, _ := c.Locals("slug").(string)

	var article models.HelpArticle
	if err := db.Where("slug = ? AND is_published = ? AND is_deleted = ?", slug, true, false).First(&article).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Article not found!", nil)
	}

	if err := db.Model(&article).UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		utils.ReportError(err, map[string]interface{}{"area": "help", "article_id": article.ID})
	} else {
		article.ViewCount++
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Article fetched successfully!", article)
}

// ArticleFeedback records whether an article was helpful
func ArticleFeedback(c *fiber.Ctx) error {
	db := database.Database.Db
	slug, _ := c.Locals("slug").(string)

	reqData, ok := validators.Get[helpValidator.FeedbackRequest](c, "validatedFeedback")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var article models.HelpArticle
	if err := db.Where("slug = ? AND is_published = ? AND is_deleted = ?", slug, true, false).First(&article).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Article not found!", nil)
	}

	column := "not_helpful_count"
	if *reqData.Helpful {
		column = "helpful_count"
	}
	if err := db.Model(&article).UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to record feedback!", map[string]interface{}{"article_id": article.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thanks for your feedback!", nil)
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ArticleCategories lists the categories of published articles with their article counts
func ArticleCategories(c *fiber.Ctx) error {
	var categories []categoryCount
	if err := database.Database.Db.Model(&models.HelpArticle{}).
		Select("category, COUNT(*) AS count").
		Where("is_published = ? AND is_deleted = ?", true, false).
		Group("category").Order("category asc").
		Scan(&categories).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to fetch categories!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully!", categories)
}

// CreateArticle adds a help article
func CreateArticle(c *fiber.Ctx) error {
	admin, _ := middleware.CurrentUser(c)

	reqData, ok := validators.Get[helpValidator.ArticleRequest](c, "validatedArticle")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	article := models.HelpArticle{
		AuthorID:    admin.ID,
		Title:       reqData.Title,
		Slug:        utils.UniqueSlug(reqData.Title),
		Category:    reqData.Category,
		Body:        reqData.Body,
		IsPublished: reqData.IsPublished,
	}
	if err := database.Database.Db.Create(&article).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to create article!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Article created successfully!", article)
}

func findArticle(db *gorm.DB, id uint) (models.HelpArticle, error) {
	var article models.HelpArticle
	err := db.Where("id = ? AND is_deleted = ?", id, false).First(&article).Error
	return article, err
}

// UpdateArticle edits an article. The slug stays stable so shared links keep working.
func UpdateArticle(c *fiber.Ctx) error {
	db := database.Database.Db

	article, err := findArticle(db, validators.ID(c, "articleID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Article not found!", nil)
	}

	reqData, ok := validators.Get[helpValidator.UpdateArticleRequest](c, "validatedArticleUpdate")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != nil {
		article.Title = *reqData.Title
	}
	if reqData.Category != nil {
		article.Category = *reqData.Category
	}
	if reqData.Body != nil {
		article.Body = *reqData.Body
	}

	if err := db.Save(&article).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to update article!", map[string]interface{}{"article_id": article.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Article updated successfully!", article)
}

// PublishArticle publishes or unpublishes an article
func PublishArticle(c *fiber.Ctx) error {
	db := database.Database.Db

	article, err := findArticle(db, validators.ID(c, "articleID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Article not found!", nil)
	}

	reqData, ok := validators.Get[courseValidator.PublishRequest](c, "validatedPublish")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	article.IsPublished = *reqData.IsPublished
	if err := db.Model(&article).Update("is_published", article.IsPublished).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to publish article!", map[string]interface{}{"article_id": article.ID})
	}

	message := "Article unpublished successfully!"
	if article.IsPublished {
		message = "Article published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, article)
}

// DeleteArticle soft deletes an article
func DeleteArticle(c *fiber.Ctx) error {
	db := database.Database.Db

	article, err := findArticle(db, validators.ID(c, "articleID"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Article not found!", nil)
	}

	if err := db.Model(&article).Updates(map[string]interface{}{"is_deleted": true, "is_published": false}).Error; err != nil {
		return middleware.InternalError(c, err, "Failed to delete article!", map[string]interface{}{"article_id": article.ID})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Article deleted successfully!", nil)
}
