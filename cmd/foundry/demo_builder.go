package main

import (
	"github.com/cuemby/foundry/pkg/builder"
	"github.com/cuemby/foundry/pkg/kinds"
)

// runBuilder is this binary's built-in builder front end: a minimal,
// hard-coded package that creates one directory and one file inside it.
// The real path-typed, sandboxed, config-templating builder DSL is an
// external collaborator this core never specifies (spec §1); this stands
// in for it the way the system this engine's contract comes from ships
// its own small demo package alongside the core crate.
func runBuilder(ctx *builder.Context) error {
	bctx := ctx.WithPackage("demo")

	dir, err := bctx.AddNode(&kinds.Directory{
		Path: "/config/test",
		Mode: 0755,
	}, nil)
	if err != nil {
		return err
	}

	_, err = bctx.AddNode(&kinds.FileWithContents{
		Path:     "/config/test/message.txt",
		Contents: []byte("Hello, world!"),
		Mode:     0644,
	}, []int{dir})
	if err != nil {
		return err
	}
	return nil
}
