package remote

import (
	"context"

	"golang.org/x/time/rate"
)

type throttled struct {
	next    Source
	limiter *rate.Limiter
}

// Throttle wraps src so every call first waits on a shared token bucket of
// perSecond requests with the given burst. A non-positive perSecond returns src
// unchanged.
func Throttle(src Source, perSecond float64, burst int) Source {
	if src == nil || perSecond <= 0 {
		return src
	}
	if burst <= 0 {
		burst = 1
	}
	t := &throttled{next: src, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
	if d, ok := src.(Discoverer); ok {
		return &throttledDiscoverer{throttled: t, discoverer: d}
	}
	return t
}

func (t *throttled) ListLogFiles(ctx context.Context, instance string, createdAfter int64) ([]LogFile, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.next.ListLogFiles(ctx, instance, createdAfter)
}

func (t *throttled) ReadPortion(ctx context.Context, instance, fileName string, marker Marker, maxLines int) (Portion, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return Portion{}, err
	}
	return t.next.ReadPortion(ctx, instance, fileName, marker, maxLines)
}

type throttledDiscoverer struct {
	*throttled
	discoverer Discoverer
}

func (t *throttledDiscoverer) ListInstances(ctx context.Context) ([]Instance, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.discoverer.ListInstances(ctx)
}
