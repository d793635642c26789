package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/schema"

	"github.com/dailypost/dailypost/models"
	"github.com/dailypost/dailypost/utils"
)

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// allowedImageExt lists the accepted upload extensions.
var allowedImageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

var (
	errNoFile       = errors.New("no file uploaded")
	errFileType     = errors.New("only png, jpg, jpeg, gif and webp images are allowed")
	errFileTooLarge = errors.New("file too large")
)

// bindDraft reads a draft from a JSON body or a multipart/urlencoded form.
// The returned file header is the optional imageFile part.
func bindDraft(ctx *gin.Context, maxBytes int64) (models.Draft, *multipart.FileHeader, error) {
	var d models.Draft
	if strings.HasPrefix(ctx.ContentType(), "application/json") {
		if err := ctx.ShouldBindJSON(&d); err != nil {
			return d, nil, fmt.Errorf("invalid request payload: %w", err)
		}
		return d, nil, nil
	}

	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		if err := ctx.Request.ParseMultipartForm(maxBytes); err != nil {
			return d, nil, fmt.Errorf("invalid form: %w", err)
		}
	} else if err := ctx.Request.ParseForm(); err != nil {
		return d, nil, fmt.Errorf("invalid form: %w", err)
	}
	if err := formDecoder.Decode(&d, ctx.Request.PostForm); err != nil {
		return d, nil, fmt.Errorf("invalid form: %w", err)
	}

	var file *multipart.FileHeader
	if mf := ctx.Request.MultipartForm; mf != nil {
		if files := mf.File["imageFile"]; len(files) > 0 {
			file = files[0]
		}
	}
	return d, file, nil
}

// saveUpload stores an image under dir with a random name and returns its
// public URL.
func saveUpload(fh *multipart.FileHeader, dir string, maxBytes int64) (string, error) {
	if fh == nil {
		return "", errNoFile
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return "", errFileType
	}
	if fh.Size > maxBytes {
		return "", errFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}
	name := uuid.NewString() + ext
	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	written, err := io.Copy(out, &io.LimitedReader{R: src, N: maxBytes + 1})
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > maxBytes {
		err = errFileTooLarge
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return utils.UploadURLPrefix + name, nil
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, errNoFile), errors.Is(err, errFileType):
		return http.StatusBadRequest
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.Error(ctx, http.StatusBadRequest, "invalid post id")
		return 0, false
	}
	return id, true
}

func queryInt(ctx *gin.Context, key string) int {
	n, err := strconv.Atoi(ctx.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
