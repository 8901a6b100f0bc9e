package export

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/pkg/errors"
)

// ErrTextureNotFound is returned when no image in the texture directory
// matches a requested texture name.
var ErrTextureNotFound = errors.New("texture not found")

var textureExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// FindTextures lists the images in dir whose file name starts with name,
// ignoring case. Files are only included if their header identifies them as
// images.
func FindTextures(dir, name string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "find textures")
	}
	prefix := strings.ToLower(name)
	var res []string
	for _, entry := range entries {
		fileName := entry.Name()
		lower := strings.ToLower(fileName)
		if entry.IsDir() || !strings.HasPrefix(lower, prefix) ||
			!textureExtensions[filepath.Ext(lower)] {
			continue
		}
		path := filepath.Join(dir, fileName)
		if isImage(path) {
			res = append(res, path)
		}
	}
	return res, nil
}

// FindTexture picks one of the matches of FindTextures at random.
func FindTexture(r *rand.Rand, dir, name string) (string, error) {
	if name == "" {
		return "", errors.Wrap(ErrTextureNotFound, "empty texture name")
	}
	matches, err := FindTextures(dir, name)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", errors.Wrapf(ErrTextureNotFound, "no match for %q in %s", name, dir)
	}
	return matches[r.Intn(len(matches))], nil
}

func isImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	header := make([]byte, 261)
	n, _ := f.Read(header)
	return filetype.IsImage(header[:n])
}
