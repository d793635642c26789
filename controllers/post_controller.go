package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dailypost/dailypost/feed"
	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/store"
	"github.com/dailypost/dailypost/utils"
)

// PostController exposes the post store over HTTP.
type PostController struct {
	posts     store.Posts
	uploadDir string
	maxUpload int64
	cacheTTL  time.Duration
}

// NewPostController creates a new PostController instance. A zero cacheTTL
// disables the list cache.
func NewPostController(posts store.Posts, uploadDir string, maxUploadBytes int64, cacheTTL time.Duration) *PostController {
	return &PostController{
		posts:     posts,
		uploadDir: uploadDir,
		maxUpload: maxUploadBytes,
		cacheTTL:  cacheTTL,
	}
}

// ListPosts returns posts filtered by category and search, then windowed by
// offset and limit.
func (p *PostController) ListPosts(ctx *gin.Context) {
	category := strings.TrimSpace(ctx.Query("category"))
	search := strings.TrimSpace(ctx.Query("search"))
	limit := queryInt(ctx, "limit")
	offset := queryInt(ctx, "offset")

	// Cache category lists only; search terms would explode the key space
	var cacheKey string
	if search == "" && p.cacheTTL > 0 {
		cacheKey = utils.PostListCacheKey(url.Values{
			"category": {strings.ToLower(category)},
			"limit":    {ctx.Query("limit")},
			"offset":   {ctx.Query("offset")},
		})
		if b, ok := utils.CacheGetBytes(ctx.Request.Context(), cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	all, err := p.posts.All(ctx.Request.Context())
	if err != nil {
		p.storeError(ctx, err)
		return
	}
	filtered := feed.Filter(all, category, search)
	total := len(filtered)
	if offset > len(filtered) {
		offset = len(filtered)
	}
	filtered = filtered[offset:]
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}

	ctx.Header("X-Total-Count", strconv.Itoa(total))
	resp := utils.JSONResponse{Success: true, Data: filtered}
	if cacheKey != "" {
		if b, err := json.Marshal(resp); err == nil {
			utils.CacheSetBytes(ctx.Request.Context(), cacheKey, b, p.cacheTTL)
		}
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetPost returns a single post.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	post, err := p.posts.Get(ctx.Request.Context(), id)
	if err != nil {
		p.storeError(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// CreatePost publishes a post from a JSON body or a multipart form with an
// optional imageFile.
func (p *PostController) CreatePost(ctx *gin.Context) {
	draft, file, err := bindDraft(ctx, p.maxUpload)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if file != nil {
		u, err := saveUpload(file, p.uploadDir, p.maxUpload)
		if err != nil {
			utils.Error(ctx, uploadStatus(err), err.Error())
			return
		}
		draft.Image = u
	}
	utils.SanitizeDraft(&draft)

	post, err := p.posts.Create(ctx.Request.Context(), draft)
	if err != nil {
		p.storeError(ctx, err)
		return
	}
	p.invalidate(ctx)
	utils.SuccessMessage(ctx, http.StatusCreated, "Post created successfully", post)
}

// UpdatePost replaces a post. Fields left empty keep their stored value,
// except content which is required.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	draft, file, err := bindDraft(ctx, p.maxUpload)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := p.posts.Get(ctx.Request.Context(), id)
	if err != nil {
		p.storeError(ctx, err)
		return
	}
	if file != nil {
		u, err := saveUpload(file, p.uploadDir, p.maxUpload)
		if err != nil {
			utils.Error(ctx, uploadStatus(err), err.Error())
			return
		}
		draft.Image = u
	}
	utils.SanitizeDraft(&draft)

	post := existing
	post.Content = draft.Content
	if draft.Title != "" {
		post.Title = draft.Title
	}
	if draft.Excerpt != "" {
		post.Excerpt = draft.Excerpt
	}
	if draft.Category != "" {
		post.Category = draft.Category
	}
	if draft.Author != "" {
		post.Author = draft.Author
	}
	if draft.Image != "" {
		post.Image = models.StringPtr(draft.Image)
	}

	updated, err := p.posts.Update(ctx.Request.Context(), post)
	if err != nil {
		p.storeError(ctx, err)
		return
	}
	p.invalidate(ctx)
	utils.SuccessMessage(ctx, http.StatusOK, "Post updated successfully", updated)
}

// DeletePost removes a post; unknown ids succeed.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := p.posts.Delete(ctx.Request.Context(), id); err != nil {
		p.storeError(ctx, err)
		return
	}
	p.invalidate(ctx)
	utils.SuccessMessage(ctx, http.StatusOK, "Post deleted successfully", nil)
}

// UploadImage stores the multipart "image" file and returns its URL.
func (p *PostController) UploadImage(ctx *gin.Context) {
	fh, err := ctx.FormFile("image")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, errNoFile.Error())
		return
	}
	u, err := saveUpload(fh, p.uploadDir, p.maxUpload)
	if err != nil {
		if uploadStatus(err) == http.StatusInternalServerError {
			utils.Logger.Error("failed to save upload", zap.Error(err))
			utils.Error(ctx, http.StatusInternalServerError, "failed to save file")
			return
		}
		utils.Error(ctx, uploadStatus(err), err.Error())
		return
	}
	utils.Success(ctx, gin.H{"url": u})
}

func (p *PostController) invalidate(ctx *gin.Context) {
	if p.cacheTTL > 0 {
		utils.InvalidateByPrefix(ctx.Request.Context(), utils.PostListCachePrefix)
	}
}

// storeError maps store errors onto HTTP statuses.
func (p *PostController) storeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, "Post not found")
	case errors.Is(err, store.ErrStorageFull):
		utils.Error(ctx, http.StatusInsufficientStorage, store.ErrStorageFull.Error())
	case errors.Is(err, store.ErrUnavailable):
		utils.Logger.Error("post store unavailable", zap.Error(err))
		utils.Error(ctx, http.StatusServiceUnavailable, "posts are temporarily unavailable, please retry")
	default:
		utils.Logger.Error("post store failure", zap.Error(err), zap.String("path", ctx.FullPath()))
		utils.Error(ctx, http.StatusInternalServerError, "internal server error")
	}
}
