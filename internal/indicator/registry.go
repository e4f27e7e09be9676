package indicator

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Constructor creates a fresh, default configured indicator.
type Constructor func() Indicator

// IndicatorRegistry manages all available indicators.
type IndicatorRegistry interface {
	RegisterIndicator(name types.StrategyType, constructor Constructor) error
	GetIndicator(name types.StrategyType) (Indicator, error)
	ListIndicators() []types.StrategyType
	RemoveIndicator(name types.StrategyType) error
}

// IndicatorRegistryV1 manages all available indicators.
// Constructors are stored instead of instances so concurrent runs never share indicator state.
type IndicatorRegistryV1 struct {
	constructors map[types.StrategyType]Constructor
	mu           sync.RWMutex
}

// NewIndicatorRegistry creates a new, empty indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		constructors: make(map[types.StrategyType]Constructor),
		mu:           sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry holding the four built-in strategies.
func NewDefaultRegistry() IndicatorRegistry {
	registry := NewIndicatorRegistry()

	builtins := map[types.StrategyType]Constructor{
		types.StrategyTypeSMA:       NewSMACrossover,
		types.StrategyTypeRSI:       NewRSI,
		types.StrategyTypeBollinger: NewBollingerBands,
		types.StrategyTypeMACD:      NewMACD,
	}

	for name, constructor := range builtins {
		// names are distinct so registration cannot fail
		_ = registry.RegisterIndicator(name, constructor)
	}

	return registry
}

// RegisterIndicator adds an indicator constructor to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(name types.StrategyType, constructor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if constructor == nil {
		return errors.Newf(errors.ErrCodeInvalidParameter, "RegisterIndicator: constructor for %s is nil", name)
	}

	if _, exists := r.constructors[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "RegisterIndicator: indicator with name %s already registered", name)
	}

	r.constructors[name] = constructor

	return nil
}

// GetIndicator returns a new instance of the named indicator.
func (r *IndicatorRegistryV1) GetIndicator(name types.StrategyType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	constructor, exists := r.constructors[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeUnknownStrategy, "GetIndicator: indicator with name %s not found", name)
	}

	return constructor(), nil
}

// ListIndicators returns the registered indicator names in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []types.StrategyType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.StrategyType, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// RemoveIndicator removes an indicator from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(name types.StrategyType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "RemoveIndicator: indicator with name %s not found", name)
	}

	delete(r.constructors, name)

	return nil
}
