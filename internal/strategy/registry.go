// Package strategy holds the concrete trading-signal strategies fed to the
// experiment engine. Each strategy is a record of state-machine functions;
// the engine knows nothing beyond that contract.
package strategy

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-montecarlo/internal/experiment"
	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// Registry manages all available strategies.
type Registry interface {
	RegisterStrategy(strategy experiment.Strategy) error
	GetStrategy(name string) (experiment.Strategy, error)
	ListStrategies() []string
}

// RegistryV1 manages all available strategies.
type RegistryV1 struct {
	strategies map[string]experiment.Strategy
	mu         sync.RWMutex
}

// NewRegistry creates a new empty strategy registry.
func NewRegistry() Registry {
	return &RegistryV1{
		strategies: make(map[string]experiment.Strategy),
		mu:         sync.RWMutex{},
	}
}

// DefaultRegistry returns a registry with every built-in strategy
// registered.
func DefaultRegistry() Registry {
	registry := NewRegistry()

	// registering built-ins cannot collide
	_ = registry.RegisterStrategy(NewBuyAndHold())
	_ = registry.RegisterStrategy(NewBollingerBand())

	return registry
}

// RegisterStrategy adds a strategy to the registry.
func (r *RegistryV1) RegisterStrategy(strategy experiment.Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[strategy.Name]; exists {
		return errors.Newf(errors.ErrCodeInvalidParameter, "strategy %s already registered", strategy.Name)
	}

	r.strategies[strategy.Name] = strategy

	return nil
}

// GetStrategy retrieves a strategy by name.
func (r *RegistryV1) GetStrategy(name string) (experiment.Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, exists := r.strategies[name]
	if !exists {
		return experiment.Strategy{}, errors.Newf(errors.ErrCodeUnknownStrategy, "strategy %s not found", name)
	}

	return strategy, nil
}

// ListStrategies returns the registered strategy names in sorted order.
func (r *RegistryV1) ListStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
