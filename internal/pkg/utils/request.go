package utils

import (
	"intake-service/internal/pkg/constvars"
	"intake-service/internal/pkg/dto/requests"
	"io"
	"net/http"
)

// BuildUploadItemImageRequest reads the image part of a multipart body. At most
// one byte more than maxSizeInMB is read, enough for ValidateImageSize to reject it.
func BuildUploadItemImageRequest(r *http.Request, maxSizeInMB int) (*requests.UploadItemImage, error) {
	limit := int64(maxSizeInMB)*1024*1024 + 1
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, err
	}

	file, fileHeader, err := r.FormFile(constvars.FormFieldImage)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit))
	if err != nil {
		return nil, err
	}

	return &requests.UploadItemImage{
		Image:     data,
		ImageName: fileHeader.Filename,
	}, nil
}
