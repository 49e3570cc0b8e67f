package eda

import (
	"context"
	"fmt"
	"sync"

	"cardiorisk/domain/clinical"
	"cardiorisk/domain/core"
	"cardiorisk/domain/dataset"
	"cardiorisk/internal"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// maxParallelFeatures bounds concurrent feature computations in Features
const maxParallelFeatures = 4

// Analyzer computes EDA views over one immutable dataset. The report and each
// feature analysis are computed at most once; concurrent first callers share the work.
type Analyzer struct {
	ds     *dataset.HeartDataset
	group  singleflight.Group
	mu     sync.RWMutex
	report *Report
	byKey  map[core.FeatureKey]*FeatureAnalysis
	logger *internal.Logger
}

// NewAnalyzer wraps a loaded dataset
func NewAnalyzer(ds *dataset.HeartDataset) *Analyzer {
	return &Analyzer{
		ds:     ds,
		byKey:  make(map[core.FeatureKey]*FeatureAnalysis),
		logger: internal.DefaultLogger.Named("eda"),
	}
}

// Dataset returns the analysed dataset
func (a *Analyzer) Dataset() *dataset.HeartDataset {
	return a.ds
}

// Report returns the cached target, correlation and overview views
func (a *Analyzer) Report(ctx context.Context) (*Report, error) {
	a.mu.RLock()
	cached := a.report
	a.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	ch := a.group.DoChan("report", func() (interface{}, error) {
		report, err := a.buildReport()
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		a.report = report
		a.mu.Unlock()
		return report, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Report), nil
	}
}

func (a *Analyzer) buildReport() (*Report, error) {
	a.logger.Debug("computing report over %d records", a.ds.RecordCount())

	ages, err := a.ds.Column(clinical.Age)
	if err != nil {
		return nil, err
	}
	ageHist, err := HistogramByTarget(a.ds, clinical.Age, EqualBins(ages, AgeBins))
	if err != nil {
		return nil, err
	}
	corr, err := Correlation(a.ds)
	if err != nil {
		return nil, err
	}

	return &Report{
		Overview:      ComputeOverview(a.ds),
		Target:        TargetDistribution(a.ds),
		SexByTarget:   SexByTarget(a.ds),
		AgeByTarget:   ageHist,
		Correlation:   corr,
		TargetRanking: TargetRanking(corr),
	}, nil
}

// Feature returns the histogram and describe() summary for one selectable feature
func (a *Analyzer) Feature(ctx context.Context, key core.FeatureKey) (*FeatureAnalysis, error) {
	if !contains(FeatureOptions(), key) {
		return nil, fmt.Errorf("%w %q", core.ErrFeatureNotFound, key)
	}

	a.mu.RLock()
	cached := a.byKey[key]
	a.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	ch := a.group.DoChan("feature:"+string(key), func() (interface{}, error) {
		values, err := a.ds.Column(key)
		if err != nil {
			return nil, err
		}
		hist, err := HistogramByTarget(a.ds, key, AutoBins(values))
		if err != nil {
			return nil, err
		}
		summary, err := Describe(values)
		if err != nil {
			return nil, err
		}
		fa := &FeatureAnalysis{Feature: key, Histogram: hist, Summary: summary}
		a.mu.Lock()
		a.byKey[key] = fa
		a.mu.Unlock()
		return fa, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*FeatureAnalysis), nil
	}
}

// Scatter builds a scatter view; it is cheap and not cached
func (a *Analyzer) Scatter(x, y, colorBy core.FeatureKey) (Scatter, error) {
	return BuildScatter(a.ds, x, y, colorBy)
}

// Features computes several feature analyses concurrently and returns them in
// the order of keys. The first failure cancels the rest.
func (a *Analyzer) Features(ctx context.Context, keys []core.FeatureKey) ([]*FeatureAnalysis, error) {
	out := make([]*FeatureAnalysis, len(keys))
	sem := semaphore.NewWeighted(maxParallelFeatures)
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			fa, err := a.Feature(gctx, key)
			if err != nil {
				return err
			}
			out[i] = fa
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
