package commands

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/specbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
)

const starterSource = `<!doctype html>
<meta charset="utf8">
<pre class="metadata">
title: Untitled Specification
status: proposal
</pre>

<emu-clause id="sec-intro">
  <h1>Introduction</h1>
  <p>Start writing here.</p>
</emu-clause>
`

// InitCmd writes a starter specbuilder.yaml and, with --scaffold, a starter source
// document next to it.
type InitCmd struct {
	Force    bool   `help:"Overwrite an existing configuration file."`
	Output   string `short:"o" name:"output" type:"path" help:"Directory for the generated config file."`
	Scaffold bool   `help:"Also create the source document if it does not exist."`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	path := root.Config
	if i.Output != "" {
		path = filepath.Join(i.Output, config.DefaultFile)
	}
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	slog.Info("Configuration written", slog.String("path", path))

	if !i.Scaffold {
		return nil
	}
	return scaffoldSource(filepath.Join(filepath.Dir(path), config.DefaultSource))
}

// scaffoldSource writes the starter document unless one is already there.
func scaffoldSource(path string) error {
	if _, err := os.Stat(path); err == nil {
		slog.Info("Source document exists; leaving it alone", slog.String("path", path))
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot stat source document").
			WithContext("path", path).Build()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot create source directory").
			WithContext("path", filepath.Dir(path)).Build()
	}
	if err := os.WriteFile(path, []byte(starterSource), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "cannot write source document").
			WithContext("path", path).Build()
	}
	slog.Info("Source document created", slog.String("path", path))
	return nil
}
