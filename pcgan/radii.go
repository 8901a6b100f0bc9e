package pcgan

import (
	"log"

	"github.com/shapeforge/primgan/pointcloud"
)

// DefaultClassRadius is the target radius of classes with no examples.
const DefaultClassRadius = 0.5

// ClassRadii holds the mean point norm of each class, indexed by label.
type ClassRadii []float64

// Radius returns the radius for a label, or DefaultClassRadius for labels
// outside the table.
func (c ClassRadii) Radius(label int) float64 {
	if label < 0 || label >= len(c) {
		return DefaultClassRadius
	}
	return c[label]
}

// ComputeClassRadii averages the mean point norm of the normalized examples
// of every class. At most maxItems examples are used, or all of them if
// maxItems is 0.
//
// Examples that cannot be read are logged and skipped.
func ComputeClassRadii(corpus pointcloud.Corpus, numClasses, maxItems int) ClassRadii {
	sums := make([]float64, numClasses)
	counts := make([]int, numClasses)
	n := corpus.Len()
	if maxItems > 0 && maxItems < n {
		n = maxItems
	}
	for i := 0; i < n; i++ {
		ex, err := corpus.Example(i)
		if err == nil {
			err = ex.Points.Validate()
		}
		if err != nil {
			log.Printf("skipping example %d for class radii: %v", i, err)
			continue
		}
		if ex.Label < 0 || ex.Label >= numClasses {
			log.Printf("skipping example %d for class radii: label %d", i, ex.Label)
			continue
		}
		sums[ex.Label] += ex.Points.Normalize().MeanNorm()
		counts[ex.Label]++
	}
	res := make(ClassRadii, numClasses)
	for i := range res {
		if counts[i] == 0 {
			res[i] = DefaultClassRadius
		} else {
			res[i] = sums[i] / float64(counts[i])
		}
	}
	return res
}
