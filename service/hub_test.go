package service

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

type fakeService struct {
	name string
	deps []string
	log  *[]string
	args []any

	initErr  error
	startErr error
	stopErr  error
}

func (f *fakeService) Name() string           { return f.name }
func (f *fakeService) Dependencies() []string { return f.deps }

func (f *fakeService) Init(args ...any) error {
	f.args = args
	*f.log = append(*f.log, "init:"+f.name)
	return f.initErr
}

func (f *fakeService) Start() error {
	*f.log = append(*f.log, "start:"+f.name)
	return f.startErr
}

func (f *fakeService) Stop() error {
	*f.log = append(*f.log, "stop:"+f.name)
	return f.stopErr
}

// TestHubDependencyOrder tests init and start follow dependencies and stop reverses
func TestHubDependencyOrder(t *testing.T) {
	var log []string
	h := NewHub()
	_ = h.Register(&fakeService{name: "session", deps: []string{"cues", "tracing"}, log: &log})
	_ = h.Register(&fakeService{name: "tracing", log: &log})
	_ = h.Register(&fakeService{name: "cues", log: &log})

	if err := h.InitAll(map[string][]any{"cues": {true}}); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if err := h.StartAll(); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := h.StopAll(); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{
		"init:cues", "init:tracing", "init:session",
		"start:cues", "start:tracing", "start:session",
		"stop:session", "stop:tracing", "stop:cues",
	}
	if !slices.Equal(log, want) {
		t.Errorf("Expected %v, got %v", want, log)
	}

	cues := MustGet[*fakeService](h, "cues")
	if len(cues.args) != 1 || cues.args[0] != true {
		t.Errorf("Expected cues to receive its args, got %v", cues.args)
	}
}

// TestHubDuplicateRegister tests name uniqueness
func TestHubDuplicateRegister(t *testing.T) {
	var log []string
	h := NewHub()
	if err := h.Register(&fakeService{name: "cues", log: &log}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := h.Register(&fakeService{name: "cues", log: &log}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

// TestHubMissingDependency tests unregistered dependencies fail InitAll
func TestHubMissingDependency(t *testing.T) {
	var log []string
	h := NewHub()
	_ = h.Register(&fakeService{name: "cues", deps: []string{"mixer"}, log: &log})
	if err := h.InitAll(nil); !errors.Is(err, ErrMissingDependency) {
		t.Errorf("Expected ErrMissingDependency, got %v", err)
	}
}

// TestHubCycle tests circular dependency detection
func TestHubCycle(t *testing.T) {
	var log []string
	h := NewHub()
	_ = h.Register(&fakeService{name: "a", deps: []string{"b"}, log: &log})
	_ = h.Register(&fakeService{name: "b", deps: []string{"a"}, log: &log})
	err := h.InitAll(nil)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("Expected ErrCycle, got %v", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> a") {
		t.Errorf("Expected cycle path in error, got %q", err.Error())
	}
	if len(log) != 0 {
		t.Errorf("Expected nothing initialized, got %v", log)
	}
}

// TestHubStartRollback tests already-started services are stopped when a later one fails
func TestHubStartRollback(t *testing.T) {
	var log []string
	h := NewHub()
	_ = h.Register(&fakeService{name: "a", log: &log})
	_ = h.Register(&fakeService{name: "b", deps: []string{"a"}, log: &log, startErr: errors.New("no device")})

	if err := h.InitAll(nil); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if err := h.StartAll(); err == nil {
		t.Fatal("Expected start error")
	}

	want := []string{"init:a", "init:b", "start:a", "start:b", "stop:a"}
	if !slices.Equal(log, want) {
		t.Errorf("Expected %v, got %v", want, log)
	}
}

// TestHubStartBeforeInit tests StartAll requires InitAll
func TestHubStartBeforeInit(t *testing.T) {
	if err := NewHub().StartAll(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

// TestMustGetPanics tests type mismatch panics
func TestMustGetPanics(t *testing.T) {
	var log []string
	h := NewHub()
	_ = h.Register(&fakeService{name: "cues", log: &log})

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on type mismatch")
		}
	}()
	_ = MustGet[*Hub](h, "cues")
}

// TestHubInitRollback tests a failing Init stops the services initialized before it
func TestHubInitRollback(t *testing.T) {
	var log []string
	h := NewHub()
	_ = h.Register(&fakeService{name: "tracing", log: &log})
	_ = h.Register(&fakeService{name: "cues", deps: []string{"tracing"}, log: &log, initErr: errors.New("bad rate")})

	if err := h.InitAll(nil); err == nil {
		t.Fatal("Expected init error")
	}
	want := []string{"init:tracing", "init:cues", "stop:tracing"}
	if !slices.Equal(log, want) {
		t.Errorf("Expected %v, got %v", want, log)
	}
	if err := h.StartAll(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized after failed init, got %v", err)
	}
}

// TestHubStopJoinsErrors tests every service is stopped and all failures are reported
func TestHubStopJoinsErrors(t *testing.T) {
	var log []string
	flush, export := errors.New("flush"), errors.New("export")
	h := NewHub()
	_ = h.Register(&fakeService{name: "cues", log: &log, stopErr: flush})
	_ = h.Register(&fakeService{name: "tracing", log: &log, stopErr: export})

	if err := h.InitAll(nil); err != nil {
		t.Fatalf("InitAll: %v", err)
	}
	if err := h.StartAll(); err != nil {
		t.Fatalf("StartAll: %v", err)
	}

	err := h.StopAll()
	if !errors.Is(err, flush) || !errors.Is(err, export) {
		t.Errorf("Expected both stop errors, got %v", err)
	}
	if err := h.StopAll(); err != nil {
		t.Errorf("Expected second StopAll to be a no-op, got %v", err)
	}
}
