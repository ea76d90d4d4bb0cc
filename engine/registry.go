package engine

import "fmt"

// ModuleFactory builds a fresh Module implementation instance. Registered
// factories are looked up by the module's registered short name (§4.F,
// §6 "Module plugin contract").
type ModuleFactory func() Module

// CheckerFactory builds a fresh Checker implementation instance.
type CheckerFactory func() Checker

// ArtifactCheckerFactory builds a fresh ArtifactChecker implementation.
type ArtifactCheckerFactory func() ArtifactChecker

// Registry resolves module/checker/artifact-checker short names to
// concrete implementations and validates property groups before
// construction (§4.F). Populated via static registration at program start,
// grounded on the teacher's functional-options validation approach
// (graph/options.go) generalized to a name→factory table, replacing the
// original system's dynamic service-loader dispatch per spec.md §9.
type Registry struct {
	modules          map[string]ModuleFactory
	checkers         map[string]CheckerFactory
	artifactCheckers map[string]ArtifactCheckerFactory
}

// NewRegistry returns an empty Registry ready for RegisterModule /
// RegisterChecker / RegisterArtifactChecker calls.
func NewRegistry() *Registry {
	return &Registry{
		modules:          make(map[string]ModuleFactory),
		checkers:         make(map[string]CheckerFactory),
		artifactCheckers: make(map[string]ArtifactCheckerFactory),
	}
}

// RegisterModule adds (or replaces) the factory for a module short name.
func (r *Registry) RegisterModule(shortName string, f ModuleFactory) {
	r.modules[shortName] = f
}

// RegisterChecker adds (or replaces) the factory for a checker short name.
func (r *Registry) RegisterChecker(shortName string, f CheckerFactory) {
	r.checkers[shortName] = f
}

// RegisterArtifactChecker adds (or replaces) the factory for an artifact
// checker short name.
func (r *Registry) RegisterArtifactChecker(shortName string, f ArtifactCheckerFactory) {
	r.artifactCheckers[shortName] = f
}

// NewModule resolves shortName, validates props against its PropertySpecs,
// and returns a constructed Module plus its resolved property group.
// Registry lookup failure and property validation failure are both fatal
// workload-load errors (§4.F, §7).
func (r *Registry) NewModule(shortName string, props map[string]any, ens Ensemble) (Module, map[string]any, error) {
	factory, ok := r.modules[shortName]
	if !ok {
		return nil, nil, &HarnessError{Message: fmt.Sprintf("module %q is not registered", shortName), Code: "UNKNOWN_MODULE", Cause: ErrUnknownModule}
	}
	impl := factory()

	resolved, err := ValidateProperties(impl.PropertySpecs(), props)
	if err != nil {
		return nil, nil, err
	}

	avail := ens.Providers()
	for _, p := range impl.RequiredProviders() {
		if !avail[p] {
			return nil, nil, &HarnessError{
				Message: fmt.Sprintf("module %q requires provider %q, not available in ensemble", shortName, p),
				Code:    "MISSING_PROVIDER", Cause: ErrMissingProvider,
			}
		}
	}

	return impl, resolved, nil
}

// NewChecker resolves shortName and returns a constructed Checker.
func (r *Registry) NewChecker(shortName string) (Checker, error) {
	factory, ok := r.checkers[shortName]
	if !ok {
		return nil, &HarnessError{Message: fmt.Sprintf("checker %q is not registered", shortName), Code: "UNKNOWN_CHECKER", Cause: ErrUnknownChecker}
	}
	return factory(), nil
}

// NewArtifactChecker resolves shortName and returns a constructed
// ArtifactChecker.
func (r *Registry) NewArtifactChecker(shortName string) (ArtifactChecker, error) {
	factory, ok := r.artifactCheckers[shortName]
	if !ok {
		return nil, &HarnessError{Message: fmt.Sprintf("artifact checker %q is not registered", shortName), Code: "UNKNOWN_CHECKER", Cause: ErrUnknownChecker}
	}
	return factory(), nil
}
