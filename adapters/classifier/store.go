package classifier

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cardiorisk/domain/core"
	"cardiorisk/internal"
	"cardiorisk/ports"
)

// FileModelStore loads classifier artifacts stored as <dir>/<id>.json
type FileModelStore struct {
	basePath string
	logger   *internal.Logger
}

// NewFileModelStore creates a store rooted at path. The directory is not required
// to exist until Load is called, so a missing directory surfaces per model.
func NewFileModelStore(path string) *FileModelStore {
	return &FileModelStore{basePath: path, logger: internal.DefaultLogger.Named("FileModelStore")}
}

// Load reads and decodes one artifact
func (s *FileModelStore) Load(ctx context.Context, id core.ModelID) (ports.Classifier, ports.ModelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ports.ModelInfo{}, err
	}
	filePath := filepath.Join(s.basePath, id.String()+".json")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ModelInfo{}, fmt.Errorf("%w: %s (%s)", core.ErrModelNotFound, id, filePath)
		}
		return nil, ports.ModelInfo{}, fmt.Errorf("failed to read model file %s: %w", filePath, err)
	}
	model, info, err := Decode(id, data)
	if err != nil {
		return nil, info, err
	}
	info.Checksum = core.NewHash(data)
	s.logger.Info("loaded %s (%s) from %s [%s]", info.Name, info.Kind, filePath, info.Checksum.Short())
	return model, info, nil
}

// List returns the ids of all stored artifacts, sorted
func (s *FileModelStore) List(ctx context.Context) ([]core.ModelID, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}
	var ids []core.ModelID
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			ids = append(ids, core.ModelID(strings.TrimSuffix(entry.Name(), ".json")))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
