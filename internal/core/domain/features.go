package domain

// FeatureVector holds the per-entity features consumed by scoring strategies.
type FeatureVector struct {
	Type           EntityType
	Language       string
	BaseConfidence float64

	Length              float64
	WordCount           float64
	LetterCount         float64
	VowelRatio          float64
	ConsonantRatio      float64
	DigitRatio          float64
	SpecialCharRatio    float64
	RepetitiveCharScore float64
	DictValidRatio      float64
	StopWordRatio       float64
	HasFieldLabelSuffix bool
	TitleCase           bool

	AllCaps                bool
	MixedCaseChaos         bool
	ProperMixedCase        bool
	CapitalizedWords       float64
	IsSingleStopword       bool
	HasFieldLabelSubstring bool
	HasLegalSuffix         bool
	PatternWeightKey       string
	CorpusDocumentRatio    float64
}

// FeatureNames is the column order of Values.
var FeatureNames = []string{
	"length",
	"word_count",
	"vowel_ratio",
	"consonant_ratio",
	"digit_ratio",
	"special_char_ratio",
	"repetitive_char_score",
	"dict_valid_ratio",
	"stop_word_ratio",
	"has_field_label_suffix",
	"title_case",
	"all_caps",
	"has_legal_suffix",
	"corpus_document_ratio",
	"base_confidence",
	"type_person",
	"type_organization",
	"type_location",
	"type_address",
	"type_email",
	"type_url",
	"type_sender",
	"type_recipient",
	"type_header_field",
}

// Values flattens the vector in FeatureNames order for learned models.
func (f FeatureVector) Values() []float32 {
	out := []float32{
		float32(f.Length),
		float32(f.WordCount),
		float32(f.VowelRatio),
		float32(f.ConsonantRatio),
		float32(f.DigitRatio),
		float32(f.SpecialCharRatio),
		float32(f.RepetitiveCharScore),
		float32(f.DictValidRatio),
		float32(f.StopWordRatio),
		boolFeature(f.HasFieldLabelSuffix),
		boolFeature(f.TitleCase),
		boolFeature(f.AllCaps),
		boolFeature(f.HasLegalSuffix),
		float32(f.CorpusDocumentRatio),
		float32(f.BaseConfidence),
	}
	for _, t := range EntityTypes {
		out = append(out, boolFeature(f.Type == t))
	}
	return out
}

func boolFeature(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
