package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"urlshortener/internal/domain"
	"urlshortener/internal/repository/memory"
	"urlshortener/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// staticResolver resolves every host except the ones listed as missing
type staticResolver struct {
	missing map[string]bool
}

func (r staticResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if r.missing[host] {
		return nil, fmt.Errorf("lookup %s: no such host", host)
	}
	return []string{"93.184.216.34"}, nil
}

func newMemoryService(missing ...string) *URLService {
	m := make(map[string]bool, len(missing))
	for _, h := range missing {
		m[h] = true
	}
	v := validator.NewURLValidator(staticResolver{missing: m}, validator.DefaultResolveTimeout)
	return NewURLService(memory.NewURLRepository(), v, nil, zap.NewNop())
}

func TestShortenAndResolve_Scenario(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService("this-does-not-exist.invalid")

	first, err := svc.Shorten(ctx, "https://www.freecodecamp.org")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ShortCode)
	assert.Equal(t, "https://www.freecodecamp.org", first.OriginalURL)

	again, err := svc.Shorten(ctx, "https://www.freecodecamp.org")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.ShortCode)

	second, err := svc.Shorten(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ShortCode)

	_, err = svc.Shorten(ctx, "not a url")
	assert.ErrorIs(t, err, domain.ErrInvalidURL)

	_, err = svc.Shorten(ctx, "https://this-does-not-exist.invalid")
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
	assert.ErrorIs(t, err, domain.ErrUnresolvableHost)

	// Rejected submissions consume no codes
	third, err := svc.Shorten(ctx, "https://example.org")
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.ShortCode)

	target, err := svc.Resolve(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "https://www.freecodecamp.org", target)

	_, err = svc.Resolve(ctx, "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Resolve(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrMalformedCode)
}

func TestShorten_CodesAreSequential(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService()

	for i := 1; i <= 20; i++ {
		url, err := svc.Shorten(ctx, fmt.Sprintf("https://example.com/%d", i))
		require.NoError(t, err)
		assert.Equal(t, int64(i), url.ShortCode)
	}

	for i := 1; i <= 20; i++ {
		target, err := svc.Resolve(ctx, fmt.Sprint(i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("https://example.com/%d", i), target)
	}
}

func TestShorten_ConcurrentSameURL(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService()

	const workers = 32
	codes := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url, err := svc.Shorten(ctx, "https://www.freecodecamp.org")
			errs[i] = err
			if err == nil {
				codes[i] = url.ShortCode
			}
		}(i)
	}
	wg.Wait()

	// Every caller observes the one mapping
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, int64(1), codes[i])
	}

	next, err := svc.Shorten(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ShortCode)
}

func TestShorten_ConcurrentDistinctURLs(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService()

	const workers = 32
	var (
		mu        sync.Mutex
		created   = map[int64]string{}
		conflicts int
		wg        sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw := fmt.Sprintf("https://example.com/%d", i)
			url, err := svc.Shorten(ctx, raw)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				if prev, ok := created[url.ShortCode]; ok {
					t.Errorf("code %d assigned to both %s and %s", url.ShortCode, prev, raw)
				}
				created[url.ShortCode] = url.OriginalURL
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error for %s: %v", raw, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers, len(created)+conflicts)

	// Issued codes form a gap-free sequence starting at 1
	codes := make([]int64, 0, len(created))
	for code := range created {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for i, code := range codes {
		assert.Equal(t, int64(i+1), code)
	}

	// Every created mapping resolves to its own URL
	for code, original := range created {
		target, err := svc.Resolve(ctx, fmt.Sprint(code))
		require.NoError(t, err)
		assert.Equal(t, original, target)
	}
}
