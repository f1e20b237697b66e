package services

import (
	"context"
	"io"

	"lablinc/errors"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, folder string) (string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, folder string) (string, error) {
	if u == nil || u.cld == nil {
		return "", errors.NewAppError(errors.ErrCodeUploadFailed, "Image uploads are not configured", nil)
	}
	resp, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", errors.NewAppError(errors.ErrCodeUploadFailed, "Upload failed", err)
	}
	if resp.Error.Message != "" {
		return "", errors.NewAppError(errors.ErrCodeUploadFailed, resp.Error.Message, nil)
	}
	return resp.SecureURL, nil
}
