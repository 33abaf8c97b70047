// Package analyzer turns a set of water-test readings into a diagnosis and
// a list of recommendations using fixed threshold rules.
//
// Rules are evaluated independently, so several may fire for one test:
//
//	pH        < 7.2 low, > 7.6 high, otherwise ideal
//	chlorine  < 1.0 low, > 3.0 high, otherwise ideal
//	alkalinity (optional) < 80 low, > 120 high
//	cyanuric acid (optional) > 50 high
//
// An optional photo is classified by its average colour and the verdict is
// appended as one more diagnosis line.
package analyzer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/logging"
)

const (
	phLow  = 7.2
	phHigh = 7.6

	chlorineLow  = 1.0
	chlorineHigh = 3.0

	alkalinityLow  = 80.0
	alkalinityHigh = 120.0

	cyanuricHigh = 50.0
)

// Params are the readings entered by the user. Numbers are strings as
// typed; a comma decimal separator is accepted.
type Params struct {
	PH           string
	Chlorine     string
	Alkalinity   string
	CyanuricAcid string
	Observation  string
	HasImage     bool
	ImagePath    string
}

// Result holds the rendered diagnosis and recommendation texts.
type Result struct {
	Analysis       string
	Recommendation string
}

// Translator resolves message keys to localised text.
type Translator interface {
	T(key string) string
}

// ImageClassifier inspects a photo and returns a message key, or "" when
// the photo could not be used.
type ImageClassifier interface {
	Classify(ctx context.Context, path string) (string, error)
}

type Analyzer struct {
	tr     Translator
	images ImageClassifier
	log    logging.Logger
}

// New builds an Analyzer. images may be nil, in which case photos are ignored.
func New(tr Translator, images ImageClassifier, log logging.Logger) *Analyzer {
	return &Analyzer{tr: tr, images: images, log: log}
}

// Analyze applies the rules to p. pH and chlorine are mandatory; optional
// readings that are empty or not numbers are skipped.
func (a *Analyzer) Analyze(ctx context.Context, p Params) (Result, error) {
	if strings.TrimSpace(p.PH) == "" || strings.TrimSpace(p.Chlorine) == "" {
		return Result{}, common.NewValidationError(a.tr.T("analysis.error_required_fields"))
	}

	ph, err := ParseReading(p.PH)
	if err != nil {
		return Result{}, common.NewValidationError(a.tr.T("analysis.error_invalid_number"))
	}
	chlorine, err := ParseReading(p.Chlorine)
	if err != nil {
		return Result{}, common.NewValidationError(a.tr.T("analysis.error_invalid_number"))
	}

	var points, recs []string

	switch {
	case ph < phLow:
		points = append(points, a.tr.T("analysis.ph_low"))
		recs = append(recs, a.tr.T("analysis.rec_ph_up"))
	case ph > phHigh:
		points = append(points, a.tr.T("analysis.ph_high"))
		recs = append(recs, a.tr.T("analysis.rec_ph_down"))
	default:
		points = append(points, a.tr.T("analysis.ph_ideal"))
	}

	switch {
	case chlorine < chlorineLow:
		points = append(points, a.tr.T("analysis.chlorine_low"))
		recs = append(recs, a.tr.T("analysis.rec_chlorine_shock"))
	case chlorine > chlorineHigh:
		points = append(points, a.tr.T("analysis.chlorine_high"))
		recs = append(recs, a.tr.T("analysis.rec_wait_chlorine"))
	default:
		points = append(points, a.tr.T("analysis.chlorine_ideal"))
	}

	if alk, ok := optionalReading(p.Alkalinity); ok {
		switch {
		case alk < alkalinityLow:
			points = append(points, a.tr.T("analysis.alkalinity_low"))
			recs = append(recs, a.tr.T("analysis.rec_alkalinity_up"))
		case alk > alkalinityHigh:
			points = append(points, a.tr.T("analysis.alkalinity_high"))
			recs = append(recs, a.tr.T("analysis.rec_alkalinity_down"))
		}
	}

	if cya, ok := optionalReading(p.CyanuricAcid); ok && cya > cyanuricHigh {
		points = append(points, a.tr.T("analysis.cyanuric_high"))
		recs = append(recs, a.tr.T("analysis.rec_drain_water"))
	}

	if p.HasImage && p.ImagePath != "" {
		points = append(points, a.describeImage(ctx, p.ImagePath))
	}

	return Result{
		Analysis:       a.renderAnalysis(points),
		Recommendation: a.renderRecommendation(recs),
	}, nil
}

// describeImage never fails: an unusable photo yields an empty line.
func (a *Analyzer) describeImage(ctx context.Context, path string) string {
	if a.images == nil {
		return ""
	}
	key, err := a.images.Classify(ctx, path)
	if err != nil {
		a.log.Warn(ctx, "image analysis failed", "path", path, "error", err)
		return ""
	}
	if key == "" {
		return ""
	}
	return a.tr.T(key)
}

func (a *Analyzer) renderAnalysis(points []string) string {
	lines := make([]string, 0, len(points))
	for _, p := range points {
		lines = append(lines, "- "+p)
	}
	return a.tr.T("analysis.result_intro") + "\n\n" + strings.Join(lines, "\n")
}

func (a *Analyzer) renderRecommendation(recs []string) string {
	body := a.tr.T("analysis.water_balanced")
	if len(recs) > 0 {
		lines := make([]string, 0, len(recs))
		for i, r := range recs {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, r))
		}
		body = strings.Join(lines, "\n")
	}
	return body + "\n\n" + a.tr.T("analysis.safety_warning")
}

// ParseReading parses a numeric reading, accepting "7,4" as well as "7.4".
func ParseReading(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

func optionalReading(s string) (float64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	v, err := ParseReading(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
