package provider

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Belphemur/titlovi/internal/apperrors"
	"github.com/Belphemur/titlovi/internal/models"
)

// EncodeID turns metadata into an opaque candidate id that fits in a single
// URL path segment.
func EncodeID(meta models.SubtitleMetadata) string {
	// Marshalling a struct of ints and strings cannot fail
	data, _ := json.Marshal(meta)
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeID reverses EncodeID
func DecodeID(id string) (models.SubtitleMetadata, error) {
	data, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return models.SubtitleMetadata{}, apperrors.NewInvalidIdentifierError(id, err)
	}

	var meta models.SubtitleMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return models.SubtitleMetadata{}, apperrors.NewInvalidIdentifierError(id, fmt.Errorf("decode metadata: %w", err))
	}
	if meta.ID <= 0 {
		return models.SubtitleMetadata{}, apperrors.NewInvalidIdentifierError(id, errors.New("missing subtitle id"))
	}
	if !meta.Type.Valid() {
		return models.SubtitleMetadata{}, apperrors.NewInvalidIdentifierError(id, fmt.Errorf("unknown content type %d", meta.Type))
	}
	return meta, nil
}
