package prediction

import "cardiorisk/domain/core"

// Aggregate combines per-model predictions into a majority vote.
//
// The majority label is disease only when disease votes strictly outnumber
// no-disease votes, so an even split resolves to no disease. The average is the
// plain mean of positive-class probabilities. Probability bounds are not checked
// here; predictions are validated where they are produced.
func Aggregate(predictions map[string]ModelPrediction) (EnsembleResult, error) {
	if len(predictions) == 0 {
		return EnsembleResult{}, core.ErrEmptyEnsemble
	}

	var positive, negative int
	var sum float64
	for _, p := range predictions {
		if p.Label == LabelDisease {
			positive++
		} else {
			negative++
		}
		sum += p.Probability
	}

	total := len(predictions)
	label := LabelNoDisease
	if positive > negative {
		label = LabelDisease
	}

	return EnsembleResult{
		Label:              label,
		AverageProbability: sum / float64(total),
		PositiveCount:      positive,
		NegativeCount:      negative,
		Total:              total,
		AgreementRatio:     float64(positive) / float64(total),
	}, nil
}
