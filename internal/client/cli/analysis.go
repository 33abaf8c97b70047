package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/client/services"
)

// Analyze prompts for readings, prints the diagnosis and saves it to the
// history of poolID (which may be empty).
func (a *App) Analyze(ctx context.Context, poolID string) error {
	a.prepare(ctx)

	in := services.AnalysisInput{PoolID: poolID}

	prompts := []struct {
		label string
		dst   *string
	}{
		{"pH", &in.PH},
		{"Free chlorine (ppm)", &in.Chlorine},
		{"Total alkalinity (ppm, empty to skip)", &in.Alkalinity},
		{"Cyanuric acid (ppm, empty to skip)", &in.CyanuricAcid},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.label, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	obs, err := GetMultiline(a.reader, "Observations (optional)", a.out)
	if err != nil {
		return err
	}
	in.Observation = obs

	photo, err := getSimpleText(a.reader, "Photo path (empty to skip)", a.out)
	if err != nil {
		return err
	}
	if photo != "" {
		if _, err := os.Stat(photo); err != nil {
			fmt.Fprintf(a.out, "Photo not found, analysing without it: %s\n", photo)
		} else {
			in.HasImage, in.ImagePath = true, photo
		}
	}

	rec, err := a.analyses.Analyze(ctx, a.userID, in)
	if err != nil {
		return a.report(ctx, "analyze", err)
	}

	fmt.Fprintf(a.out, "\n%s\n\n%s\n", rec.Analysis, rec.Recommendation)
	return nil
}

// History lists saved analyses, newest first, optionally for one pool.
func (a *App) History(ctx context.Context, poolID string) error {
	a.prepare(ctx)

	var (
		recs []models.AnalysisRecord
		err  error
	)
	if poolID != "" {
		recs, err = a.analyses.ListByPool(ctx, a.userID, poolID)
	} else {
		recs, err = a.analyses.List(ctx, a.userID)
		slices.Reverse(recs)
	}
	if err != nil {
		return a.report(ctx, "history", err)
	}

	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No analyses yet.")
		return nil
	}
	for _, r := range recs {
		fmt.Fprintln(a.out, historyLine(r))
	}
	return nil
}

func historyLine(r models.AnalysisRecord) string {
	pool := r.PoolID
	if pool == "" {
		pool = "-"
	}
	line := fmt.Sprintf("%s  pool %s  pH %s  Cl %s", r.CreatedAt.Format("2006-01-02 15:04"), pool, r.PH, r.Chlorine)
	if r.HasImage {
		line += "  [photo]"
	}
	return line
}
