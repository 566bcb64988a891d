package model

import "fmt"

// Top selects the highest scoring class. Ties resolve to the lowest index.
// The score vector must have one entry per class.
func Top(scores []float32, classes []string) (*Prediction, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("empty score vector")
	}
	if len(scores) != len(classes) {
		return nil, fmt.Errorf("got %d scores for %d classes", len(scores), len(classes))
	}

	maxIdx := 0
	maxVal := scores[0]
	predictions := make(map[string]float32, len(scores))

	for i, val := range scores {
		predictions[classes[i]] = val
		if val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}

	return &Prediction{
		Index:      maxIdx,
		Label:      classes[maxIdx],
		Confidence: maxVal,
		Scores:     predictions,
	}, nil
}
