package utils

import (
	"fmt"
	"intake-service/internal/pkg/constvars"
	"time"

	"github.com/google/uuid"
)

// UUIDGenerator hands out random v4 identifiers for new template items.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

func GenerateRequestID() string {
	return constvars.REQUEST_ID_PREFIX + uuid.NewString()
}

func GenerateFileName(prefix, ownerID, fileExtension string) string {
	timestamp := time.Now().Format("20060102_150405.000000000")
	return fmt.Sprintf("%s_%s_%s%s", prefix, ownerID, timestamp, fileExtension)
}
