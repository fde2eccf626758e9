package types

import "slices"

// PointValuesType names a preset point scale offered to clients at room
// creation. CUSTOM means the client supplied its own sequence.
type PointValuesType string

const (
	PointValuesScrum           PointValuesType = "SCRUM"
	PointValuesFibb            PointValuesType = "FIBB"
	PointValuesIncremental     PointValuesType = "INCREMENTAL"
	PointValuesHalfIncremental PointValuesType = "HALF_INCREMENTAL"
	PointValuesCustom          PointValuesType = "CUSTOM"
)

var defaultPointValues = map[PointValuesType][]string{
	PointValuesScrum:           {"0", "0.5", "1", "2", "3", "5", "8", "13", "20", "40", "100"},
	PointValuesFibb:            {"0", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", "100"},
	PointValuesIncremental:     {"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
	PointValuesHalfIncremental: {"0", "0.5", "1", "1.5", "2", "2.5", "3", "3.5", "4", "4.5", "5"},
}

// PointValuesForType resolves a preset name to its ordered scale. The
// returned slice is a copy. Unknown names and CUSTOM resolve to nothing.
func PointValuesForType(t PointValuesType) ([]string, bool) {
	values, ok := defaultPointValues[t]
	if !ok {
		return nil, false
	}
	return slices.Clone(values), true
}
