package utils

import (
	"errors"
	"fmt"
	"intake-service/internal/pkg/constvars"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

func ValidateUrlParamID(param string) error {
	if param == "" {
		return errors.New("parameter is missing from url path")
	}

	_, err := uuid.Parse(param)
	if err != nil {
		return err
	}
	return nil
}

func ValidateUrlParam(param string) error {
	if strings.TrimSpace(param) == "" {
		return errors.New("parameter is missing from url path")
	}
	return nil
}

// DetectImageExtension sniffs the content type of data and returns it with the
// file extension used for the stored object.
func DetectImageExtension(data []byte) (contentType, ext string, err error) {
	contentType = http.DetectContentType(data)
	ext, ok := constvars.ImageAllowedAnnotationFormats[contentType]
	if !ok {
		return "", "", fmt.Errorf("invalid image format %s", contentType)
	}
	return contentType, ext, nil
}

func ValidateImageSize(data []byte, maxSize int) error {
	if len(data) > maxSize*1024*1024 {
		return fmt.Errorf("image exceeds maximum allowed size of %dMB", maxSize)
	}
	return nil
}
