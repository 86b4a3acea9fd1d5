package judge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/dealbench/internal/cache"
)

// CachedJudge memoizes verdicts so rerunning an unchanged (task, answer,
// dimensions) triple never re-bills the underlying judge.
type CachedJudge struct {
	inner Judge
	store cache.Cache
	ttl   time.Duration
}

// NewCachedJudge wraps a judge with verdict memoization.
func NewCachedJudge(inner Judge, store cache.Cache, ttl time.Duration) *CachedJudge {
	return &CachedJudge{
		inner: inner,
		store: store,
		ttl:   ttl,
	}
}

// Name returns the underlying provider name.
func (j *CachedJudge) Name() string {
	return j.inner.Name()
}

// Score returns a cached verdict when one exists, otherwise delegates and
// stores the result. Cache errors are ignored: a failed write only costs a
// future cache miss.
func (j *CachedJudge) Score(ctx context.Context, req ScoreRequest) (*Verdict, error) {
	dims := make([]string, 0, len(req.Dimensions))
	for _, d := range req.Dimensions {
		dims = append(dims, string(d))
	}
	key := cache.VerdictKey(req.Task.ID, req.Answer, dims)

	if data, found := j.store.Get(key); found {
		var verdict Verdict
		if err := json.Unmarshal(data, &verdict); err == nil {
			return &verdict, nil
		}
		// Corrupt entry: drop it and fall through to the real judge.
		_ = j.store.Delete(key)
	}

	verdict, err := j.inner.Score(ctx, req)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(verdict); err == nil {
		_ = j.store.Set(key, data, j.ttl)
	}

	return verdict, nil
}
