package primgen

import (
	"path/filepath"

	"github.com/mholt/archiver/v3"
	"github.com/pkg/errors"
)

// Files lists the geometry, material and texture paths of the asset.
func (a *AssetPaths) Files() []string {
	return append([]string{a.Geometry, a.Material}, a.Textures...)
}

// Zip packages the asset files into a flat zip archive next to them and
// returns the archive path. The archive is named <name>.zip.
func (a *AssetPaths) Zip(name string) (string, error) {
	path := filepath.Join(filepath.Dir(a.Geometry), name+".zip")
	z := archiver.NewZip()
	z.OverwriteExisting = true
	if err := z.Archive(a.Files(), path); err != nil {
		return "", errors.Wrap(err, "zip asset")
	}
	return path, nil
}
