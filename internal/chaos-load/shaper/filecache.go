package shaper

import (
	"os"
	"strings"

	"github.com/neogan/sre-toolkit/internal/chaos-load/model"
)

// cachedFile is the once-read content of a multipart file field plus its
// derived file name, reused for every request in the run.
type cachedFile struct {
	data     []byte
	fileName string
}

// FileCache holds the preloaded bytes for every file-backed form field,
// indexed the same way as the FormFields slice it was built from. It is
// shared read-only: every worker holds the same pointer and none mutate
// it.
type FileCache struct {
	entries []cachedFile
}

// PreloadFiles reads every file-backed form field exactly once. A read
// failure is returned as an InvalidConfig error.
func PreloadFiles(fields []model.FormFieldConfig) (*FileCache, error) {
	entries := make([]cachedFile, len(fields))
	for i, f := range fields {
		if !f.IsFile() {
			continue
		}
		data, err := os.ReadFile(*f.FilePath)
		if err != nil {
			return nil, model.InvalidConfig("reading multipart file %q: %s", *f.FilePath, err)
		}
		entries[i] = cachedFile{data: data, fileName: deriveFileName(f)}
	}
	return &FileCache{entries: entries}, nil
}

// deriveFileName picks the explicit FileName when given, otherwise the
// basename of FilePath (accepting either '/' or '\' as separator), falling
// back to "file".
func deriveFileName(f model.FormFieldConfig) string {
	if f.FileName != nil && *f.FileName != "" {
		return *f.FileName
	}
	path := *f.FilePath
	idx := strings.LastIndexAny(path, "/\\")
	base := path[idx+1:]
	if base == "" {
		return "file"
	}
	return base
}
