package clinical

import "cardiorisk/domain/core"

// Feature keys as they appear in the dataset header and in model vectors
const (
	Age      core.FeatureKey = "age"
	Sex      core.FeatureKey = "sex"
	CP       core.FeatureKey = "cp"
	TrestBPS core.FeatureKey = "trestbps"
	Chol     core.FeatureKey = "chol"
	FBS      core.FeatureKey = "fbs"
	RestECG  core.FeatureKey = "restecg"
	Thalach  core.FeatureKey = "thalach"
	Exang    core.FeatureKey = "exang"
	Oldpeak  core.FeatureKey = "oldpeak"
	Slope    core.FeatureKey = "slope"
	CA       core.FeatureKey = "ca"
	Thal     core.FeatureKey = "thal"

	// Target is the binary outcome column of the dataset
	Target core.FeatureKey = "target"
)

// FeatureOrder is the vector layout every model was trained on.
// Reordering it silently corrupts predictions.
var FeatureOrder = [NumFeatures]core.FeatureKey{
	Age, Sex, CP, TrestBPS, Chol, FBS, RestECG, Thalach, Exang, Oldpeak, Slope, CA, Thal,
}

// NumFeatures is the width of a model input vector
const NumFeatures = 13

// DatasetColumns is the full 14-column dataset schema
func DatasetColumns() []core.FeatureKey {
	cols := make([]core.FeatureKey, 0, NumFeatures+1)
	cols = append(cols, FeatureOrder[:]...)
	return append(cols, Target)
}

// FeatureKind distinguishes enumerated inputs from ranged numeric ones
type FeatureKind string

const (
	KindCategorical FeatureKind = "categorical"
	KindNumeric     FeatureKind = "numeric"
)

// Option is one allowed value of a categorical feature
type Option struct {
	Value float64
	Label string
}

// Domain describes the admissible form input for a feature
type Domain struct {
	Kind     FeatureKind
	Options  []Option // categorical only
	Min      float64  // numeric only
	Max      float64
	Step     float64
	Integral bool
	Default  float64
}

// Allows reports whether v is inside the domain
func (d Domain) Allows(v float64) bool {
	if d.Kind == KindCategorical {
		for _, opt := range d.Options {
			if opt.Value == v {
				return true
			}
		}
		return false
	}
	if v < d.Min || v > d.Max {
		return false
	}
	if d.Integral && v != float64(int64(v)) {
		return false
	}
	return true
}

// LabelFor returns the human label of a categorical value, or "" if unknown
func (d Domain) LabelFor(v float64) string {
	for _, opt := range d.Options {
		if opt.Value == v {
			return opt.Label
		}
	}
	return ""
}

// Feature couples a key with its form domain and catalog documentation
type Feature struct {
	Key         core.FeatureKey
	Label       string
	Section     string
	Help        string
	Domain      Domain
	Description string
	Impact      string
	Values      string
	Range       string
}

// Form sections in display order
const (
	SectionPersonal   = "Personal Information"
	SectionMedical    = "Medical Measurements"
	SectionExercise   = "Exercise Test Results"
	SectionAdditional = "Additional Information"
)

// Sections lists form sections in display order
var Sections = []string{SectionPersonal, SectionMedical, SectionExercise, SectionAdditional}

var binaryNoYes = []Option{{0, "No"}, {1, "Yes"}}

var catalog = []Feature{
	{
		Key: Age, Label: "Age", Section: SectionPersonal, Help: "Age of the patient in years",
		Domain:      Domain{Kind: KindNumeric, Min: 20, Max: 100, Step: 1, Integral: true, Default: 50},
		Description: "Age of the patient",
		Impact:      "Older age is generally associated with higher risk of heart disease",
		Values:      "Numerical value (in years)",
		Range:       "29-77 years",
	},
	{
		Key: Sex, Label: "Gender", Section: SectionPersonal, Help: "0 = Female, 1 = Male",
		Domain:      Domain{Kind: KindCategorical, Options: []Option{{0, "Female"}, {1, "Male"}}, Default: 0},
		Description: "Biological sex of the patient",
		Impact:      "Gender can influence heart disease risk patterns",
		Values:      "0 = Female, 1 = Male",
		Range:       "Binary (0 or 1)",
	},
	{
		Key: CP, Label: "Chest Pain Type", Section: SectionMedical, Help: "Type of chest pain experienced",
		Domain: Domain{Kind: KindCategorical, Options: []Option{
			{0, "Typical Angina"}, {1, "Atypical Angina"}, {2, "Non-anginal Pain"}, {3, "Asymptomatic"},
		}, Default: 0},
		Description: "Chest pain type",
		Impact:      "Different types of chest pain indicate varying levels of cardiac risk",
		Values:      "0: Typical Angina, 1: Atypical Angina, 2: Non-anginal Pain, 3: Asymptomatic",
		Range:       "0-3",
	},
	{
		Key: TrestBPS, Label: "Resting Blood Pressure (mm Hg)", Section: SectionMedical, Help: "Resting blood pressure measurement",
		Domain:      Domain{Kind: KindNumeric, Min: 90, Max: 200, Step: 1, Integral: true, Default: 120},
		Description: "Resting blood pressure",
		Impact:      "Higher blood pressure increases strain on the heart",
		Values:      "Numerical value (mm Hg)",
		Range:       "94-200 mm Hg",
	},
	{
		Key: Chol, Label: "Cholesterol Level (mg/dl)", Section: SectionMedical, Help: "Serum cholesterol level",
		Domain:      Domain{Kind: KindNumeric, Min: 100, Max: 600, Step: 1, Integral: true, Default: 250},
		Description: "Serum cholesterol level",
		Impact:      "High cholesterol can lead to artery blockage and heart disease",
		Values:      "Numerical value (mg/dl)",
		Range:       "126-564 mg/dl",
	},
	{
		Key: FBS, Label: "Fasting Blood Sugar > 120 mg/dl", Section: SectionMedical, Help: "Fasting blood sugar level",
		Domain:      Domain{Kind: KindCategorical, Options: []Option{{0, "No (≤120 mg/dl)"}, {1, "Yes (>120 mg/dl)"}}, Default: 0},
		Description: "Fasting blood sugar",
		Impact:      "High blood sugar is associated with diabetes and increased heart disease risk",
		Values:      "0 = False (≤120 mg/dl), 1 = True (>120 mg/dl)",
		Range:       "Binary (0 or 1)",
	},
	{
		Key: RestECG, Label: "Resting ECG Results", Section: SectionMedical, Help: "Resting electrocardiographic results",
		Domain: Domain{Kind: KindCategorical, Options: []Option{
			{0, "Normal"}, {1, "ST-T Wave Abnormality"}, {2, "Left Ventricular Hypertrophy"},
		}, Default: 0},
		Description: "Resting electrocardiographic results",
		Impact:      "Abnormal ECG patterns can indicate heart problems",
		Values:      "0: Normal, 1: ST-T wave abnormality, 2: Left ventricular hypertrophy",
		Range:       "0-2",
	},
	{
		Key: Thalach, Label: "Max Heart Rate Achieved", Section: SectionMedical, Help: "Maximum heart rate during exercise",
		Domain:      Domain{Kind: KindNumeric, Min: 70, Max: 220, Step: 1, Integral: true, Default: 150},
		Description: "Maximum heart rate achieved",
		Impact:      "Lower maximum heart rate may indicate reduced cardiac capacity",
		Values:      "Numerical value (beats per minute)",
		Range:       "71-202 bpm",
	},
	{
		Key: Exang, Label: "Exercise-Induced Angina", Section: SectionExercise, Help: "Chest pain during exercise",
		Domain:      Domain{Kind: KindCategorical, Options: binaryNoYes, Default: 0},
		Description: "Exercise induced angina",
		Impact:      "Chest pain during exercise is a strong indicator of heart disease",
		Values:      "0 = No, 1 = Yes",
		Range:       "Binary (0 or 1)",
	},
	{
		Key: Oldpeak, Label: "ST Depression (Oldpeak)", Section: SectionExercise, Help: "ST depression induced by exercise",
		Domain:      Domain{Kind: KindNumeric, Min: 0, Max: 6.2, Step: 0.1, Default: 1.0},
		Description: "ST depression induced by exercise relative to rest",
		Impact:      "Higher values indicate more significant ECG changes during stress",
		Values:      "Numerical value",
		Range:       "0.0-6.2",
	},
	{
		Key: Slope, Label: "Slope of ST Segment", Section: SectionExercise, Help: "Slope of peak exercise ST segment",
		Domain: Domain{Kind: KindCategorical, Options: []Option{
			{0, "Upsloping"}, {1, "Flat"}, {2, "Downsloping"},
		}, Default: 0},
		Description: "Slope of the peak exercise ST segment",
		Impact:      "Specific slope patterns can indicate coronary artery disease",
		Values:      "0: Upsloping, 1: Flat, 2: Downsloping",
		Range:       "0-2",
	},
	{
		Key: CA, Label: "Number of Major Vessels", Section: SectionExercise, Help: "Number of major vessels colored by fluoroscopy (0-3)",
		Domain:      Domain{Kind: KindNumeric, Min: 0, Max: 3, Step: 1, Integral: true, Default: 1},
		Description: "Number of major vessels colored by fluoroscopy",
		Impact:      "More blocked vessels indicate more severe coronary artery disease",
		Values:      "Numerical value (0-3)",
		Range:       "0-3",
	},
	{
		Key: Thal, Label: "Thalassemia Result", Section: SectionAdditional, Help: "Thalassemia test results",
		Domain: Domain{Kind: KindCategorical, Options: []Option{
			{1, "Normal"}, {2, "Fixed Defect"}, {3, "Reversible Defect"},
		}, Default: 1},
		Description: "Thalassemia (blood disorder) measurement",
		Impact:      "Specific patterns can indicate blood flow issues to the heart",
		Values:      "1: Normal, 2: Fixed defect, 3: Reversible defect",
		Range:       "1-3",
	},
}

// OutputFeature documents the prediction target
var OutputFeature = Feature{
	Key:         Target,
	Label:       "Target",
	Domain:      Domain{Kind: KindCategorical, Options: []Option{{0, "No Disease"}, {1, "Heart Disease"}}},
	Description: "Presence of heart disease",
	Impact:      "The main outcome we want to predict",
	Values:      "0 = No heart disease, 1 = Heart disease present",
	Range:       "Binary (0 or 1)",
}

// Catalog returns the 13 input features in vector order. The result is a deep
// copy; changing it leaves the form domains untouched.
func Catalog() []Feature {
	out := make([]Feature, len(catalog))
	for i, f := range catalog {
		out[i] = f.clone()
	}
	return out
}

func (f Feature) clone() Feature {
	if f.Domain.Options != nil {
		f.Domain.Options = append([]Option(nil), f.Domain.Options...)
	}
	return f
}

// Lookup finds a feature, including the target, by key
func Lookup(key core.FeatureKey) (Feature, error) {
	if key == Target {
		return OutputFeature.clone(), nil
	}
	for _, f := range catalog {
		if f.Key == key {
			return f.clone(), nil
		}
	}
	return Feature{}, core.NewNotFoundError("feature", string(key))
}

// BySection groups the catalog by form section, preserving vector order inside a section
func BySection() map[string][]Feature {
	grouped := make(map[string][]Feature, len(Sections))
	for _, f := range catalog {
		grouped[f.Section] = append(grouped[f.Section], f.clone())
	}
	return grouped
}

// KeyPredictors are the features called out on the data information page
var KeyPredictors = []core.FeatureKey{Thalach, Exang, CP, Oldpeak, CA}
