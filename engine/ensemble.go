package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// Logger is the minimal structured logging sink the engine writes through.
// Ensembles supply one; NullLogger/StdLogger cover hosts that don't care.
// Shaped after the teacher's emit.Emitter: small, synchronous, non-blocking
// by convention of the implementation, never by contract.
type Logger interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NullLogger discards everything.
type NullLogger struct{}

func (NullLogger) Infof(string, ...any)  {}
func (NullLogger) Errorf(string, ...any) {}

// StdLogger writes Infof/Errorf lines to an io.Writer (os.Stdout if none is
// given), prefixed by level. Grounded on emit.LogSink's text-mode
// formatting, for hosts that want a working Logger without wiring a real
// structured logging backend.
type StdLogger struct {
	w io.Writer
}

// NewStdLogger creates a StdLogger writing to w (os.Stdout if w is nil).
func NewStdLogger(w io.Writer) StdLogger {
	if w == nil {
		w = os.Stdout
	}
	return StdLogger{w: w}
}

func (l StdLogger) Infof(format string, args ...any) {
	fmt.Fprintf(l.w, "INFO "+format+"\n", args...)
}

func (l StdLogger) Errorf(format string, args ...any) {
	fmt.Fprintf(l.w, "ERROR "+format+"\n", args...)
}

// Group is one provisioned machine group within an Ensemble (server,
// client, controller, or observer).
type Group struct {
	Logger    Logger
	NodeList  []string
	Providers []string // capabilities this group's configuration publishes
}

// Ensemble is the opaque, fully-initialized handle supplied by external
// provisioning collaborators (§3, §6). The engine treats it as read-only.
type Ensemble struct {
	TestRunID  string
	Logger     Logger
	Server     Group
	Client     Group
	Controller Group
	Observer   Group
}

// NewEnsemble builds an Ensemble with a generated TestRunID when one isn't
// supplied by the provisioner, using google/uuid the way a real provisioner
// would stamp a run identifier.
func NewEnsemble(testRunID string, logger Logger, server, client, controller, observer Group) Ensemble {
	if testRunID == "" {
		testRunID = uuid.NewString()
	}
	if logger == nil {
		logger = NullLogger{}
	}
	return Ensemble{
		TestRunID:  testRunID,
		Logger:     logger,
		Server:     server,
		Client:     client,
		Controller: controller,
		Observer:   observer,
	}
}

// Providers returns the union of providers published across every group,
// used by the registry to validate a module's required_providers.
func (e Ensemble) Providers() map[string]bool {
	set := make(map[string]bool)
	for _, g := range []Group{e.Server, e.Client, e.Controller, e.Observer} {
		for _, p := range g.Providers {
			set[p] = true
		}
	}
	return set
}
