package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/smartpool/internal/analyzer"
	"github.com/dmitrijs2005/smartpool/internal/client/firestore"
	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/logging"
)

// AnalysisService keeps the append-only water-test history.
type AnalysisService interface {
	List(ctx context.Context, userID string) ([]models.AnalysisRecord, error)
	ListByPool(ctx context.Context, userID, poolID string) ([]models.AnalysisRecord, error)
	Save(ctx context.Context, userID string, rec models.AnalysisRecord) (models.AnalysisRecord, error)
	Analyze(ctx context.Context, userID string, in AnalysisInput) (models.AnalysisRecord, error)
	Sync(ctx context.Context, userID string) (SyncReport, error)
	StartSync(ctx context.Context, userID string) *SyncTask
}

// Analyzer turns readings into diagnosis and recommendation text.
type Analyzer interface {
	Analyze(ctx context.Context, p analyzer.Params) (analyzer.Result, error)
}

// AnalysisInput is one water test as entered by the user.
type AnalysisInput struct {
	PoolID string
	analyzer.Params
}

type analysisService struct {
	base
	analyzer Analyzer
}

// NewAnalysisService builds the service. an may be nil when Analyze is not
// used.
func NewAnalysisService(store Store, remote Remote, an Analyzer, log logging.Logger, opts ...Option) AnalysisService {
	return &analysisService{
		base:     newBase(store, remote, log, "analyses", opts),
		analyzer: an,
	}
}

func (s *analysisService) List(ctx context.Context, userID string) ([]models.AnalysisRecord, error) {
	recs, err := loadList[models.AnalysisRecord](ctx, s.store, analysesKey(userID))
	if err != nil {
		return nil, fmt.Errorf("load analyses: %w", err)
	}
	return recs, nil
}

// ListByPool returns the pool's records, newest first.
func (s *analysisService) ListByPool(ctx context.Context, userID, poolID string) ([]models.AnalysisRecord, error) {
	recs, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.AnalysisRecord, 0, len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i].PoolID == poolID {
			out = append(out, recs[i])
		}
	}
	return out, nil
}

// Save always creates: any ID or CreatedAt on rec is replaced.
func (s *analysisService) Save(ctx context.Context, userID string, rec models.AnalysisRecord) (models.AnalysisRecord, error) {
	recs, err := s.List(ctx, userID)
	if err != nil {
		return models.AnalysisRecord{}, err
	}

	rec.ID = uuid.NewString()
	rec.CreatedAt = s.stamp()
	recs = append(recs, rec)

	if err := s.store.Set(ctx, analysesKey(userID), recs); err != nil {
		return models.AnalysisRecord{}, fmt.Errorf("save analyses: %w", err)
	}
	s.log.Info(ctx, "analysis saved", "user_id", userID, "analysis_id", rec.ID, "pool_id", rec.PoolID)

	if token, ok := s.mirrorToken(ctx, userID); ok {
		fields, err := firestore.Encode(rec)
		if err == nil {
			_, err = s.remote.Create(ctx, analysesPath(userID), fields, token)
		}
		s.logRemote(ctx, err, "remote analysis create", "user_id", userID, "analysis_id", rec.ID)
	}
	return rec, nil
}

// Analyze runs the analyzer on in and saves the result. Missing or
// non-numeric pH or chlorine is a *common.ValidationError and nothing is
// saved.
func (s *analysisService) Analyze(ctx context.Context, userID string, in AnalysisInput) (models.AnalysisRecord, error) {
	if s.analyzer == nil {
		return models.AnalysisRecord{}, fmt.Errorf("analyze: no analyzer configured")
	}

	res, err := s.analyzer.Analyze(ctx, in.Params)
	if err != nil {
		return models.AnalysisRecord{}, err
	}

	return s.Save(ctx, userID, models.AnalysisRecord{
		PoolID:         in.PoolID,
		PH:             in.PH,
		Chlorine:       in.Chlorine,
		Alkalinity:     in.Alkalinity,
		CyanuricAcid:   in.CyanuricAcid,
		Observation:    in.Observation,
		HasImage:       in.HasImage,
		Analysis:       res.Analysis,
		Recommendation: res.Recommendation,
	})
}

func (s *analysisService) Sync(ctx context.Context, userID string) (SyncReport, error) {
	return syncCollection(ctx, &s.base, userID, analysesKey(userID), analysesPath(userID),
		func(r models.AnalysisRecord) string { return r.ID })
}

func (s *analysisService) StartSync(ctx context.Context, userID string) *SyncTask {
	return startSync(ctx, func(ctx context.Context) (SyncReport, error) { return s.Sync(ctx, userID) })
}
