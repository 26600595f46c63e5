package cli

import (
	"path/filepath"
	"strings"

	"github.com/codegraphls/codegraphls/internal/config"
	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/linker"
	"github.com/codegraphls/codegraphls/internal/parser"
	"github.com/codegraphls/codegraphls/internal/parser/golang"
	"github.com/codegraphls/codegraphls/internal/parser/python"
	"github.com/codegraphls/codegraphls/internal/parser/rust"
	"github.com/codegraphls/codegraphls/internal/parser/typescript"
	"github.com/codegraphls/codegraphls/internal/querycache"
	"github.com/codegraphls/codegraphls/internal/resolver"
	"github.com/codegraphls/codegraphls/internal/symbolindex"
	"github.com/codegraphls/codegraphls/internal/watcher"
)

func buildConfig(explicitPath, workspaceRoot string) (*config.Config, error) {
	cfg, err := config.Load(explicitPath, workspaceRoot)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRegistry registers the four language frontends, optionally filtered
// to cfg.Languages (empty means all).
func buildRegistry(cfg *config.Config) *parser.Registry {
	reg := parser.NewRegistry()
	enabled := make(map[string]bool, len(cfg.Languages))
	for _, l := range cfg.Languages {
		enabled[strings.ToLower(l)] = true
	}
	allowed := func(lang parser.Language) bool {
		return len(enabled) == 0 || enabled[string(lang)]
	}
	if allowed(parser.LangGo) {
		reg.Register(parser.LangGo, golang.NewFrontend())
	}
	if allowed(parser.LangPython) {
		reg.Register(parser.LangPython, python.NewFrontend())
	}
	if allowed(parser.LangRust) {
		reg.Register(parser.LangRust, rust.NewFrontend())
	}
	if allowed(parser.LangTypeScript) || allowed(parser.LangJavaScript) {
		reg.Register(parser.LangTypeScript, typescript.NewFrontend())
	}
	return reg
}

// buildResolver wires a fresh graph, symbol index, query cache, and linker
// behind a Resolver, all sharing the same store/index instances the server
// and watcher mutate.
func buildResolver(cfg *config.Config) *resolver.Resolver {
	store := graph.NewMemoryStore()
	index := symbolindex.New()
	cache := querycache.New(cfg.Cache.Capacity)
	reg := buildRegistry(cfg)
	lk := linker.New(store, index)
	return resolver.New(store, index, cache, reg, lk)
}

// buildExcluder turns the configured exclude globs (plus .gitignore, if
// enabled) into a resolver.Excluder usable by IndexWorkspace/ReindexWorkspace.
func buildExcluder(cfg *config.Config) resolver.Excluder {
	patterns := append([]string(nil), cfg.Watch.Exclude...)
	matcher := watcher.NewGitIgnoreMatcher([]string{cfg.Workspace.Root}, patterns)
	if cfg.Watch.RespectGitignore {
		_ = matcher.LoadPatterns()
	}
	return func(path string) bool {
		if strings.HasPrefix(filepath.Base(path), ".") && filepath.Base(path) != "." {
			return true
		}
		return matcher.Match(path)
	}
}
