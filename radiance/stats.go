package radiance

// Stats reports the result of the most recent Update/PropagateLighting
// call pair (spec.md §4.4, §8 property 11).
type Stats struct {
	ProbesUpdatedThisFrame int
	ProbesUpdatedByLevel   []int
	OriginsSnappedThisFrame int
	GPUEnabled              bool
	LastShaderError         string
}
