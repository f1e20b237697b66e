package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"lablinc/response"
	"lablinc/services"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 10 << 20

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

type UploadController struct {
	uploader services.ImageUploader
	folder   string
}

func NewUploadController(uploader services.ImageUploader, folder string) *UploadController {
	return &UploadController{uploader: uploader, folder: folder}
}

// UploadImage stores the multipart "file" field and returns its URL.
func (ctrl *UploadController) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Missing file")
		return
	}
	if fileHeader.Size > maxImageSize {
		response.BadRequest(c, "File is larger than 10MB")
		return
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		response.BadRequest(c, "Only jpg, png, webp and gif images are accepted")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Cannot read file")
		return
	}
	defer file.Close()

	url, err := ctrl.uploader.Upload(c.Request.Context(), file, ctrl.folder)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Response{Code: 1, Mess: "Uploaded", Data: gin.H{"url": url}})
}
