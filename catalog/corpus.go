package catalog

import (
	"bytes"
	"log"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/objfile"
	"github.com/shapeforge/primgan/pointcloud"
	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/essentials"
)

// LoadCorpus converts every stored object into a normalized point cloud of
// numPoints surface samples labeled by the catalog taxonomy. At most
// maxItems objects are loaded, or all of them if maxItems is 0.
//
// Objects whose geometry cannot be parsed or sampled are logged and
// skipped.
func (c *Catalog) LoadCorpus(r *rand.Rand, numPoints,
	maxItems int) (pointcloud.MemoryCorpus, *shapes.Taxonomy, error) {
	taxonomy, err := c.Taxonomy()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load corpus")
	}
	shapeList, err := c.Shapes()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load corpus")
	}
	labels := map[uint]int{}
	for i, s := range shapeList {
		labels[s.ID] = i
	}
	objects, err := c.Objects()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load corpus")
	}
	if maxItems > 0 && len(objects) > maxItems {
		objects = objects[:maxItems]
	}

	seeds := make([]int64, len(objects))
	for i := range seeds {
		seeds[i] = r.Int63()
	}
	examples := make([]*pointcloud.Example, len(objects))
	failures := make([]error, len(objects))
	essentials.ConcurrentMap(0, len(objects), func(i int) {
		obj := objects[i]
		label, ok := labels[obj.ShapeID]
		if !ok {
			failures[i] = errors.Errorf("unknown shape id %d", obj.ShapeID)
			return
		}
		cloud, err := ObjectCloud(rand.New(rand.NewSource(seeds[i])), obj.OBJData, numPoints)
		if err != nil {
			failures[i] = err
			return
		}
		examples[i] = &pointcloud.Example{Points: cloud, Label: label}
	})

	var res pointcloud.MemoryCorpus
	for i, ex := range examples {
		if ex == nil {
			log.Printf("skipping object %d: %v", objects[i].ID, failures[i])
			continue
		}
		res = append(res, ex)
	}
	return res, taxonomy, nil
}

// ObjectCloud samples a normalized point cloud from OBJ data.
func ObjectCloud(r *rand.Rand, objData []byte, numPoints int) (pointcloud.PointCloud, error) {
	obj, err := objfile.ParseOBJ(bytes.NewReader(objData))
	if err != nil {
		return nil, err
	}
	cloud, err := pointcloud.SampleSurface(r, obj.Triangles(), numPoints)
	if err != nil {
		return nil, err
	}
	return cloud.Normalize(), nil
}
