package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	ErrDuplicate         = errors.New("service already registered")
	ErrMissingDependency = errors.New("dependency not registered")
	ErrCycle             = errors.New("dependency cycle")
	ErrNotInitialized    = errors.New("services not initialized")
)

// Hub owns the host's background services and runs their lifecycle in
// dependency order: Init and Start walk dependencies first, Stop walks back
type Hub struct {
	mu       sync.Mutex
	services map[string]Service
	order    []string // Resolved by InitAll, reset by Register
	started  []string // Successfully started, stopped in reverse
}

// NewHub creates an empty service hub
func NewHub() *Hub {
	return &Hub{services: make(map[string]Service)}
}

// Register adds svc under its Name
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, ok := h.services[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	h.services[name] = svc
	h.order = nil
	return nil
}

// MustGet returns the service registered as name, asserted to T
// Panics when it is missing or of another type
func MustGet[T any](h *Hub, name string) T {
	h.mu.Lock()
	svc, ok := h.services[name]
	h.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("service %s not registered", name))
	}
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("service %s is %T", name, svc))
	}
	return typed
}

// InitAll resolves the order and initializes every service with args[name]
// A failure stops the services already initialized, newest first
func (h *Hub) InitAll(args map[string][]any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.order = nil
	order, err := h.resolve()
	if err != nil {
		return err
	}

	for i, name := range order {
		if err := h.services[name].Init(args[name]...); err != nil {
			h.stopReverse(order[:i])
			return fmt.Errorf("init %s: %w", name, err)
		}
	}
	h.order = order
	return nil
}

// StartAll starts services in order, rolling back on the first failure
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		return ErrNotInitialized
	}

	h.started = h.started[:0]
	for _, name := range h.order {
		if err := h.services[name].Start(); err != nil {
			h.stopReverse(h.started)
			h.started = nil
			return fmt.Errorf("start %s: %w", name, err)
		}
		h.started = append(h.started, name)
	}
	return nil
}

// StopAll stops every started service in reverse order
// All services are stopped, their errors are joined
func (h *Hub) StopAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.stopReverse(h.started)
	h.started = nil
	return err
}

func (h *Hub) stopReverse(names []string) error {
	var errs []error
	for _, name := range slices.Backward(names) {
		if err := h.services[name].Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// resolve orders services depth-first, dependencies before dependents
// Roots are visited by name so the order is stable
func (h *Hub) resolve() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(h.services))
	order := make([]string, 0, len(h.services))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			start := slices.Index(path, name)
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(path[start:], name), " -> "))
		}

		state[name] = visiting
		path = append(path, name)
		for _, dep := range h.services[name].Dependencies() {
			if _, ok := h.services[dep]; !ok {
				return fmt.Errorf("%s needs %s: %w", name, dep, ErrMissingDependency)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(h.services)) {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
