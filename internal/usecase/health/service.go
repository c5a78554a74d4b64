package health

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const networkCheckPrefix = "network:"

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	nodes map[string]NodePinger
}

// New creates a Service. nodes maps network names to their ledger node; it can be empty.
func New(db DBPinger, nodes map[string]NodePinger) *Service {
	return &Service{db: db, nodes: nodes}
}

// Networks returns the checked network names in sorted order.
func (s *Service) Networks() []string {
	names := make([]string, 0, len(s.nodes))
	for name := range s.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs health checks against all components concurrently.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.nodes)+1)
	var mu sync.Mutex
	record := func(name string, err error) {
		result := CheckOK
		if err != nil {
			result = CheckError
		}
		mu.Lock()
		checks[name] = result
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		record("database", s.db.Ping(ctx))
		return nil
	})
	for name, node := range s.nodes {
		g.Go(func() error {
			record(networkCheckPrefix+name, node.Ping(ctx))
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
