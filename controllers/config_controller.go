package controllers

import (
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/dailypost/dailypost/config"
	"github.com/dailypost/dailypost/feed"
	"github.com/dailypost/dailypost/state"
	"github.com/dailypost/dailypost/utils"
)

// ConfigController serves the reader UI configuration.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetCategories returns the category filter chips and the feed page size.
func (c *ConfigController) GetCategories(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"categories":   feed.Categories,
		"postsPerPage": state.PostsPerPage,
	})
}

// GetUploads returns the upload constraints the admin form enforces.
func (c *ConfigController) GetUploads(ctx *gin.Context) {
	cfg := config.Get()
	exts := make([]string, 0, len(allowedImageExt))
	for ext := range allowedImageExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	utils.Success(ctx, gin.H{
		"maxUploadMB": cfg.MaxUploadMB,
		"extensions":  exts,
	})
}
