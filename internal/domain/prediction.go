package domain

import (
	"errors"
	"time"
)

// Status is the outcome of a single prediction request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrPipeline marks failures raised while scaling or running the model.
var ErrPipeline = errors.New("prediction pipeline failure")

// ErrMalformedPayload marks request bodies that could not be decoded.
var ErrMalformedPayload = errors.New("malformed payload")

// PredictionResult carries either a predicted FWI value or a failure message.
type PredictionResult struct {
	Value   float64
	Status  Status
	Message string
	Err     error
}

// Success wraps a predicted value.
func Success(value float64) PredictionResult {
	return PredictionResult{Value: value, Status: StatusSuccess}
}

// Failure wraps an error as a failed result.
func Failure(err error) PredictionResult {
	return PredictionResult{Status: StatusError, Message: err.Error(), Err: err}
}

// OK reports whether the result holds a prediction.
func (r PredictionResult) OK() bool { return r.Status == StatusSuccess }

// PredictionEvent is the record published for each successful prediction.
type PredictionEvent struct {
	ID          string        `json:"id"`
	Features    FeatureVector `json:"features"`
	FWI         float64       `json:"fwi"`
	PredictedAt time.Time     `json:"predicted_at"`
}
