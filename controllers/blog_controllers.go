package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/velourbar/members-app/models"
	"github.com/velourbar/members-app/utils"
)

type BlogController struct {
	DB *gorm.DB
}

func NewBlogController(db *gorm.DB) *BlogController {
	return &BlogController{DB: db}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// GetPublishedPosts -> public blog listing, newest first.
func (bc *BlogController) GetPublishedPosts(c *gin.Context) {
	var posts []models.BlogPost
	if err := bc.DB.Where("published_at IS NOT NULL").
		Order("published_at DESC").Find(&posts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Blog posts", posts)
}

// GetPostBySlug -> public detail, published posts only.
func (bc *BlogController) GetPostBySlug(c *gin.Context) {
	slug := c.Param("slug")

	var post models.BlogPost
	if err := bc.DB.Where("slug = ? AND published_at IS NOT NULL", slug).First(&post).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("post not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Blog post", post)
}

// --- admin console ---

func (bc *BlogController) GetAllPosts(c *gin.Context) {
	var posts []models.BlogPost
	if err := bc.DB.Order("created_at DESC").Find(&posts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All blog posts", posts)
}

func (bc *BlogController) CreatePost(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, ErrNoIdentity)
		return
	}

	var req struct {
		Title   string `json:"title" binding:"required"`
		Body    string `json:"body" binding:"required"`
		Publish bool   `json:"publish"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	post := models.BlogPost{
		AuthorID: userID,
		Title:    req.Title,
		Slug:     slugify(req.Title),
		Body:     req.Body,
	}
	if req.Publish {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}

	if err := bc.DB.Create(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("a post with this title already exists"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Post created", post)
}

func (bc *BlogController) UpdatePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("post not found"))
		return
	}

	var post models.BlogPost
	if err := bc.DB.First(&post, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("post not found"))
		return
	}

	var req struct {
		Title   *string `json:"title"`
		Body    *string `json:"body"`
		Publish *bool   `json:"publish"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Title != nil {
		post.Title = *req.Title
		post.Slug = slugify(*req.Title)
	}
	if req.Body != nil {
		post.Body = *req.Body
	}
	if req.Publish != nil {
		if *req.Publish && post.PublishedAt == nil {
			now := time.Now().UTC()
			post.PublishedAt = &now
		} else if !*req.Publish {
			post.PublishedAt = nil
		}
	}

	if err := bc.DB.Save(&post).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Post updated", post)
}

func (bc *BlogController) DeletePost(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("post not found"))
		return
	}

	if err := bc.DB.Delete(&models.BlogPost{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Post deleted", gin.H{"post_id": id})
}
