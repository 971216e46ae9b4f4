package collector

import "github.com/partner-up-dev/fclayer/internal/models"

// Field names recognized on layer version records.
const (
	FieldVersion         = "version"
	FieldLayerVersionArn = "layerVersionArn"
	FieldArn             = "arn"
)

// IsLayerVersion reports whether obj looks like a layer version record: it
// has a "version" key and at least one of "layerVersionArn" or "arn".
func IsLayerVersion(obj *models.JSONObject) bool {
	return obj.Has(FieldVersion) && (obj.Has(FieldLayerVersionArn) || obj.Has(FieldArn))
}

// Collect returns every layer version record nested anywhere in value, in
// discovery order. Objects are tested before their values are visited.
func Collect(value models.JSONValue) []*models.JSONObject {
	var items []*models.JSONObject
	walk(value, &items)
	return items
}

func walk(value models.JSONValue, items *[]*models.JSONObject) {
	switch v := value.(type) {
	case models.JSONArray:
		for _, child := range v {
			walk(child, items)
		}
	case *models.JSONObject:
		if v == nil {
			return
		}
		if IsLayerVersion(v) {
			*items = append(*items, v)
		}
		for _, child := range v.Values() {
			walk(child, items)
		}
	}
}
