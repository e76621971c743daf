package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

const checkTimeout = 2 * time.Second

// Checker probes one dependency. A nil error means healthy.
type Checker func(ctx context.Context) error

// Status is the health payload.
type Status struct {
	OK        bool              `json:"ok"`
	Providers []string          `json:"providers"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Service encapsulates health-related checks.
type Service struct {
	providers []string
	checks    map[string]Checker
}

// NewService constructs a health service reporting the configured AI providers.
func NewService(providers []string) *Service {
	if providers == nil {
		providers = []string{}
	}
	return &Service{providers: providers, checks: map[string]Checker{}}
}

// Register adds a named dependency check.
func (s *Service) Register(name string, check Checker) {
	if check != nil {
		s.checks[name] = check
	}
}

// Status runs every check concurrently. The service is ok only when all pass.
func (s *Service) Status(ctx context.Context) Status {
	out := Status{OK: true, Providers: s.providers}
	if len(s.checks) == 0 {
		return out
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, check Checker) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			results[i] = check(cctx)
		}(i, s.checks[name])
	}
	wg.Wait()

	out.Checks = make(map[string]string, len(names))
	for i, name := range names {
		if results[i] != nil {
			out.OK = false
			out.Checks[name] = results[i].Error()
			continue
		}
		out.Checks[name] = "ok"
	}
	return out
}
