package handlers

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	imageUploadLimit = 10 << 20
	videoUploadLimit = 512 << 20
)

var errMissingFile = errors.New("missing upload")

// saveUpload streams one multipart file field into media storage under a
// random key and returns the stored location. The original filename only
// contributes its extension.
func saveUpload(ctx context.Context, media MediaStorage, r *http.Request, field, prefix string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", errMissingFile
		}
		return "", err
	}
	defer file.Close()

	name := prefix + "/" + uuid.NewString() + filepath.Ext(header.Filename)
	return media.Save(ctx, name, file)
}
