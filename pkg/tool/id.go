package tool

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GeneratePrefixedID returns prefix_<uuidv7 without dashes>, e.g. mock_payment_0190....
func GeneratePrefixedID(prefix string) string {
	return prefix + strings.ReplaceAll(GenerateUUIDV7(), "-", "")
}
