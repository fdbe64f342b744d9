// Package builder defines the minimal surface handed to builder code: the
// ability to add nodes to the graph under construction, paths scoped to
// the package currently being built, a typed cross-package accumulator,
// and a secrets hook. It deliberately does not provide the full path-typed
// sandboxing/templating DSL — per the core's scope, that front end is an
// external collaborator; only the contract it must honor is specified.
package builder

import (
	"context"

	"github.com/cuemby/foundry/pkg/catalog"
	"github.com/cuemby/foundry/pkg/graph"
	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/registry"
	"github.com/cuemby/foundry/pkg/requirement"
	"github.com/cuemby/foundry/pkg/secrets"
)

// NodeRef is the stable reference AddNode returns.
type NodeRef = int

// Context is passed to builder code for the duration of one build. It
// accumulates nodes into a single Pending graph shared across every
// package the builder visits.
type Context struct {
	ctx     context.Context
	host    host.Host
	catalog *catalog.Registry
	dirs    *registry.Dirs
	version int
	graph   *graph.Graph[graph.Pending]
	state   *KV
	secrets *secrets.Store

	pkg string
}

// New returns a Context for building version's graph.
func New(ctx context.Context, h host.Host, reg *catalog.Registry, dirs *registry.Dirs, version int) *Context {
	return &Context{
		ctx:     ctx,
		host:    h,
		catalog: reg,
		dirs:    dirs,
		version: version,
		graph:   graph.New[graph.Pending](),
		state:   newKV(),
		secrets: secrets.New(dirs.Base + "/secrets"),
	}
}

// WithPackage returns a shallow copy of c scoped to a different package
// name, for path accessors and secrets; the underlying graph and state
// accumulator are shared.
func (c *Context) WithPackage(pkg string) *Context {
	cp := *c
	cp.pkg = pkg
	return &cp
}

// Package returns the package name this Context is currently scoped to.
func (c *Context) Package() string { return c.pkg }

// AddNode appends req to the graph under construction, after confirming
// the registry this build was configured with supports req's kind — the
// runtime-checked form of the Supports<K> capability check.
func (c *Context) AddNode(req requirement.Requirement, deps []NodeRef) (NodeRef, error) {
	if !c.catalog.Supports(req.Kind()) {
		return 0, &catalog.ErrUnsupportedKind{Kind: req.Kind()}
	}
	return c.graph.Add(req, deps)
}

// Graph returns the graph under construction. Valid to call at any point
// during a build; the builder is expected to finish adding nodes before
// the caller reads it.
func (c *Context) Graph() *graph.Graph[graph.Pending] { return c.graph }

// State returns the cross-package typed accumulator.
func (c *Context) State() *KV { return c.state }

// Secret returns the material for (current package, kind, name),
// generating it on first request.
func (c *Context) Secret(kind secrets.Kind, name string) ([]byte, error) {
	return c.secrets.Get(c.ctx, c.host, c.pkg, kind, name)
}

// GeneratedPath, ChrootPath, ExposedPath, ConfigPath, UserdataPath, and
// BackupPath expose the registry paths a builder needs to materialize
// side-artifacts (config files, exposed data) for the package it is
// currently building.
func (c *Context) GeneratedPath() string { return c.dirs.GeneratedPath(c.version, c.pkg) }
func (c *Context) ChrootPath() string    { return c.dirs.ChrootPath(c.version) }
func (c *Context) ExposedPath() string   { return c.dirs.ExposedPath() }
func (c *Context) ConfigPath() string    { return c.dirs.ConfigPath() }
func (c *Context) UserdataPath() string  { return c.dirs.UserdataPath(c.pkg) }
func (c *Context) BackupPath() string    { return c.dirs.BackupPath(c.pkg) }
