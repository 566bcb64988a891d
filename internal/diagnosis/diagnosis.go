// Package diagnosis turns an uploaded leaf image into a localized disease report.
package diagnosis

import (
	"context"
	"image"

	"go.uber.org/zap"

	"github.com/Brownie44l1/agrivision-api/internal/labels"
	"github.com/Brownie44l1/agrivision-api/internal/locale"
	"github.com/Brownie44l1/agrivision-api/internal/logging"
	"github.com/Brownie44l1/agrivision-api/internal/metrics"
	"github.com/Brownie44l1/agrivision-api/internal/model"
)

// Classifier runs the image model. *model.Server implements it.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) (*model.Prediction, error)
}

// Result is the payload returned for one image.
type Result struct {
	Plant       string  `json:"plant"`
	Disease     string  `json:"disease"`
	Confidence  float32 `json:"confidence"`
	Description string  `json:"description"`
	Solution    string  `json:"solution"`
	Link        string  `json:"link"`
	Class       string  `json:"class"`
	Language    string  `json:"language"`

	Scores map[string]float32 `json:"-"`
}

// Service combines a classifier with the locale files.
type Service struct {
	classifier Classifier
	locales    *locale.Resolver
	keyMode    locale.KeyMode
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewService constructs a Service. m may be nil.
func NewService(classifier Classifier, locales *locale.Resolver, keyMode locale.KeyMode, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		classifier: classifier,
		locales:    locales,
		keyMode:    keyMode,
		metrics:    m,
		logger:     logger.Named("diagnosis"),
	}
}

// Diagnose classifies img and describes the result in the language chosen
// from acceptLanguage. Locale errors are returned before the model runs.
func (s *Service) Diagnose(ctx context.Context, requestID string, img image.Image, acceptLanguage string) (*Result, error) {
	opLogger := logging.WithOperation(s.logger, "diagnosis.diagnose", requestID)

	lang, matched := s.locales.Negotiate(acceptLanguage)
	catalog, err := s.locales.Load(lang)
	if err != nil {
		wrapped := logging.NewOperationError("locale.load", requestID, err)
		opLogger.Error("failed to load locale", zap.String("language", lang), zap.Error(wrapped))
		return nil, wrapped
	}
	if !matched || catalog.Fallback() {
		s.metrics.ObserveLocaleFallback()
		opLogger.Debug("serving default locale",
			zap.String("accept_language", acceptLanguage), zap.String("language", catalog.Language))
	}

	prediction, err := s.classifier.Classify(ctx, img)
	if err != nil {
		wrapped := logging.NewOperationError("model.classify", requestID, err)
		opLogger.Error("inference failed", zap.Error(wrapped))
		return nil, wrapped
	}
	s.metrics.ObservePrediction(prediction.Label)

	plant, disease := labels.Format(prediction.Label)
	info := catalog.Lookup(plant, disease, s.keyMode)

	opLogger.Info("prediction served",
		zap.String("class", prediction.Label),
		zap.Float32("confidence", prediction.Confidence),
		zap.String("language", catalog.Language))

	return &Result{
		Plant:       info.PlantName,
		Disease:     info.DiseaseName,
		Confidence:  prediction.Confidence,
		Description: info.Description,
		Solution:    info.Solution,
		Link:        info.Link,
		Class:       prediction.Label,
		Language:    catalog.Language,
		Scores:      prediction.Scores,
	}, nil
}
