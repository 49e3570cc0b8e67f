package classifier

import (
	"encoding/json"
	"fmt"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
	"cardiorisk/ports"

	"github.com/tidwall/gjson"
)

// Artifact kinds
const (
	KindLogisticRegression = "logistic_regression"
	KindRandomForest       = "random_forest"
	KindKNN                = "knn"
)

// Artifact is the on-disk JSON form of a trained classifier
type Artifact struct {
	Name         string          `json:"name"`
	Kind         string          `json:"kind"`
	Description  string          `json:"description,omitempty"`
	FeatureNames []string        `json:"feature_names"`
	Scaler       *StandardScaler `json:"scaler,omitempty"`
	Logistic     *LogisticParams `json:"logistic,omitempty"`
	Forest       *ForestParams   `json:"forest,omitempty"`
	KNN          *KNNParams      `json:"knn,omitempty"`
}

// Decode parses an artifact and builds the classifier it describes. The kind is
// checked before the full decode so a mislabelled file fails with a clear reason.
func Decode(id core.ModelID, data []byte) (ports.Classifier, ports.ModelInfo, error) {
	if !gjson.ValidBytes(data) {
		return nil, ports.ModelInfo{}, core.NewArtifactError(id.String(), "not valid JSON")
	}
	kind := gjson.GetBytes(data, "kind")
	if !kind.Exists() || kind.String() == "" {
		return nil, ports.ModelInfo{}, core.NewArtifactError(id.String(), "kind missing")
	}
	if params := paramsField(kind.String()); params != "" && !gjson.GetBytes(data, params).IsObject() {
		return nil, ports.ModelInfo{}, core.NewArtifactError(id.String(), params+" parameters missing")
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, ports.ModelInfo{}, core.NewArtifactError(id.String(), err.Error())
	}
	return Build(id, a)
}

// paramsField names the section holding a kind's parameters
func paramsField(kind string) string {
	switch kind {
	case KindLogisticRegression:
		return "logistic"
	case KindRandomForest:
		return "forest"
	case KindKNN:
		return "knn"
	}
	return ""
}

// Build turns a decoded artifact into a classifier
func Build(id core.ModelID, a Artifact) (ports.Classifier, ports.ModelInfo, error) {
	if err := checkFeatureNames(a.FeatureNames); err != nil {
		return nil, ports.ModelInfo{}, core.NewArtifactError(id.String(), err.Error())
	}

	info := ports.ModelInfo{ID: id, Name: a.Name, Kind: a.Kind, Description: a.Description}
	if info.Name == "" {
		info.Name = id.String()
	}

	var (
		model ports.Classifier
		err   error
	)
	switch a.Kind {
	case KindLogisticRegression:
		if a.Logistic == nil {
			return nil, info, core.NewArtifactError(id.String(), "logistic parameters missing")
		}
		model, err = NewLogisticRegression(*a.Logistic, a.Scaler, clinical.NumFeatures)
	case KindRandomForest:
		if a.Forest == nil {
			return nil, info, core.NewArtifactError(id.String(), "forest parameters missing")
		}
		model, err = NewRandomForest(*a.Forest, clinical.NumFeatures)
	case KindKNN:
		if a.KNN == nil {
			return nil, info, core.NewArtifactError(id.String(), "knn parameters missing")
		}
		model, err = NewKNN(*a.KNN, a.Scaler, clinical.NumFeatures)
	default:
		return nil, info, core.NewArtifactError(id.String(), fmt.Sprintf("unknown kind %q", a.Kind))
	}
	if err != nil {
		return nil, info, core.NewArtifactError(id.String(), err.Error())
	}
	return model, info, nil
}

// checkFeatureNames rejects artifacts trained on a different column order
func checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("feature_names missing")
	}
	if len(names) != clinical.NumFeatures {
		return fmt.Errorf("feature_names has %d entries, want %d", len(names), clinical.NumFeatures)
	}
	for i, key := range clinical.FeatureOrder {
		if names[i] != string(key) {
			return fmt.Errorf("feature_names[%d] is %q, want %q", i, names[i], key)
		}
	}
	return nil
}

func checkWidth(features []float64, width int) error {
	if len(features) != width {
		return fmt.Errorf("%w: got %d, want %d", core.ErrVectorLength, len(features), width)
	}
	return nil
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
