// Package classify wraps pre-trained image models and maps their labels onto
// complaint categories.
package classify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
)

// ConfidenceThreshold is exclusive: a prediction must score strictly above
// it before the wizard pre-fills anything.
const ConfidenceThreshold = 0.6

type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"score"`
}

type Provider interface {
	Name() string
	Predict(ctx context.Context, img models.Image) ([]Prediction, error)
}

type Result struct {
	Label      string
	Confidence float64
	Category   models.Category // empty when the label maps to nothing we track
}

func (r Result) Confident() bool {
	return r.Category != "" && r.Confidence > ConfidenceThreshold
}

func (r Result) Record() *models.ClassifierResult {
	return &models.ClassifierResult{Label: r.Label, Confidence: r.Confidence}
}

type Service struct {
	providers []Provider
	log       zerolog.Logger
}

func NewService(log zerolog.Logger, providers ...Provider) *Service {
	return &Service{providers: providers, log: log.With().Str("component", "classify").Logger()}
}

// Classify asks each provider in turn. A provider whose top prediction maps
// to a category ends the search; otherwise the first non-empty answer is
// kept. Failure of every provider is an *apperr.ClassificationError.
func (s *Service) Classify(ctx context.Context, img models.Image) (Result, error) {
	var (
		fallback *Result
		errs     []error
	)
	for _, p := range s.providers {
		preds, err := p.Predict(ctx, img)
		if err != nil {
			s.log.Debug().Err(err).Str("provider", p.Name()).Msg("prediction failed")
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if len(preds) == 0 {
			errs = append(errs, fmt.Errorf("%s: no predictions", p.Name()))
			continue
		}
		sort.SliceStable(preds, func(i, j int) bool { return preds[i].Probability > preds[j].Probability })
		top := preds[0]
		res := Result{Label: top.Label, Confidence: top.Probability, Category: CategoryForLabel(top.Label)}
		if res.Category != "" {
			return res, nil
		}
		if fallback == nil {
			fallback = &res
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no providers configured"))
	}
	return Result{}, &apperr.ClassificationError{Err: errors.Join(errs...)}
}

var keywords = []struct {
	category models.Category
	words    []string
}{
	{models.CategoryPothole, []string{"pothole", "road damage", "crack", "asphalt"}},
	{models.CategoryGarbage, []string{"garbage", "trash", "waste", "litter", "rubbish", "dump"}},
	{models.CategorySewage, []string{"sewage", "sewer", "drain", "manhole", "overflow"}},
	{models.CategoryStreetLight, []string{"street light", "streetlight", "lamp", "light pole"}},
	{models.CategoryFallenTree, []string{"fallen tree", "tree", "branch", "trunk"}},
}

// CategoryForLabel maps a model label such as "fallen_tree" or
// "trash can, garbage can" to a category. Keywords match whole words, so
// "street sign" is not a tree.
func CategoryForLabel(label string) models.Category {
	norm := strings.NewReplacer("_", " ", "-", " ", ",", " ", ";", " ").Replace(strings.ToLower(label))
	l := " " + strings.Join(strings.Fields(norm), " ") + " "
	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(l, " "+w+" ") {
				return k.category
			}
		}
	}
	return ""
}
