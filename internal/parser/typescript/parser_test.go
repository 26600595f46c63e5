package typescript

import (
	"testing"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/parser"
)

const testSource = `
import { EventEmitter } from 'events';
import axios from 'axios';
import type { Config } from './config';

export interface Serializable {
  serialize(): string;
  deserialize(data: string): void;
}

export interface Loggable extends Serializable {
  log(message: string): void;
}

export type UserRole = 'admin' | 'editor' | 'viewer';

export class UserService extends EventEmitter implements Serializable {
  private name: string;
  public readonly id: number;

  constructor(name: string, id: number) {
    super();
    this.name = name;
    this.id = id;
  }

  serialize(): string {
    return JSON.stringify({ name: this.name, id: this.id });
  }

  deserialize(data: string): void {
    const parsed = JSON.parse(data);
    this.name = parsed.name;
  }

  async fetchData(url: string): Promise<string> {
    return url;
  }
}

export function createUser(name: string): UserService {
  return new UserService(name, 1);
}

export async function fetchUsers(endpoint: string): Promise<UserService[]> {
  return [];
}

export const formatRole = (role: string): string => {
  return role.charAt(0).toUpperCase() + role.slice(1);
};

function helperFunc(x: number): number {
  return x * 2;
}
`

func TestParseSource(t *testing.T) {
	g := graph.NewMemoryStore()
	f := NewFrontend()

	info, err := f.ParseSource(testSource, "test/example.ts", g)
	if err != nil {
		t.Fatalf("ParseSource returned error: %v", err)
	}

	if info.Path != "test/example.ts" {
		t.Errorf("Path = %q, want %q", info.Path, "test/example.ts")
	}
	if info.Language != parser.LangTypeScript {
		t.Errorf("Language = %q, want %q", info.Language, parser.LangTypeScript)
	}

	if len(info.Imports) != 3 {
		t.Errorf("Imports count = %d, want 3 (events, axios, ./config)", len(info.Imports))
	}
	if len(info.Traits) != 2 {
		t.Errorf("Traits count = %d, want 2 (Serializable, Loggable)", len(info.Traits))
	}
	if len(info.Classes) != 1 {
		t.Errorf("Classes count = %d, want 1 (UserService)", len(info.Classes))
	}
	// createUser, fetchUsers, formatRole, helperFunc, plus constructor/serialize/deserialize/fetchData methods.
	if len(info.Functions) < 8 {
		t.Errorf("Functions count = %d, want at least 8", len(info.Functions))
	}

	nodes := nodesByName(t, g)

	assertExported(t, nodes, "UserService", true)
	assertExported(t, nodes, "Serializable", true)
	assertExported(t, nodes, "Loggable", true)
	assertExported(t, nodes, "UserRole", true)
	assertExported(t, nodes, "createUser", true)
	assertExported(t, nodes, "fetchUsers", true)
	assertExported(t, nodes, "formatRole", true)
	assertExported(t, nodes, "helperFunc", false)

	if n, ok := nodes["Serializable"]; ok {
		if n.GetString("methods") == "" {
			t.Error("Serializable should have methods listed in properties")
		}
	}
	if n, ok := nodes["Loggable"]; ok {
		if n.GetString("extends") == "" {
			t.Error("Loggable should have extends=Serializable")
		}
	}
	if n, ok := nodes["formatRole"]; ok {
		if n.GetString("arrow") != "true" {
			t.Error("formatRole should have arrow=true property")
		}
		if n.Type != graph.NodeFunction {
			t.Errorf("formatRole should be a Function, got %s", n.Type)
		}
	}

	stats := g.Stats()
	if stats.EdgesByType[graph.EdgeImplements] == 0 {
		t.Error("expected Implements edge (UserService implements Serializable)")
	}
	if stats.EdgesByType[graph.EdgeExtends] == 0 {
		t.Error("expected Extends edge (UserService extends EventEmitter, Loggable extends Serializable)")
	}
	if stats.EdgesByType[graph.EdgeImports] != 3 {
		t.Errorf("Imports edges = %d, want 3", stats.EdgesByType[graph.EdgeImports])
	}
}

func TestCanParseAndExtensions(t *testing.T) {
	f := NewFrontend()
	if !f.CanParse("main.ts") {
		t.Error(`CanParse("main.ts") = false, want true`)
	}
	if !f.CanParse("main.tsx") {
		t.Error(`CanParse("main.tsx") = false, want true`)
	}
	if !f.CanParse("main.js") {
		t.Error(`CanParse("main.js") = false, want true (javascript aliases to typescript)`)
	}
	if f.CanParse("main.py") {
		t.Error(`CanParse("main.py") = true, want false`)
	}
}

func TestESMImports(t *testing.T) {
	source := `
import { foo } from 'bar';
import baz from 'qux';
import * as utils from './utils';
import type { Config } from './config';
`
	g := graph.NewMemoryStore()
	f := NewFrontend()
	info, err := f.ParseSource(source, "imports.ts", g)
	if err != nil {
		t.Fatalf("ParseSource returned error: %v", err)
	}

	if len(info.Imports) != 4 {
		t.Errorf("got %d imports, want 4", len(info.Imports))
	}

	names := make(map[string]bool)
	for _, n := range g.AllNodes() {
		if n.Type == graph.NodeModule {
			names[n.Name()] = true
		}
	}
	for _, want := range []string{"bar", "qux", "./utils", "./config"} {
		if !names[want] {
			t.Errorf("expected import %q among module nodes", want)
		}
	}
}

func TestFunctionCallGraph(t *testing.T) {
	source := `
function helper(): void {}

function main(): void {
  helper();
  external();
}
`
	g := graph.NewMemoryStore()
	f := NewFrontend()
	info, err := f.ParseSource(source, "calls.ts", g)
	if err != nil {
		t.Fatalf("ParseSource returned error: %v", err)
	}

	if g.Stats().EdgesByType[graph.EdgeCalls] != 1 {
		t.Errorf("Calls edges = %d, want 1 (main->helper resolved in-file)", g.Stats().EdgesByType[graph.EdgeCalls])
	}

	foundPending := false
	for _, pc := range info.PendingCalls {
		if pc.CalleeName == "external" {
			foundPending = true
		}
	}
	if !foundPending {
		t.Error("expected a pending call for the unresolved \"external\" callee")
	}
}

func assertExported(t *testing.T, nodes map[string]*graph.Node, name string, want bool) {
	t.Helper()
	n, ok := nodes[name]
	if !ok {
		t.Errorf("node %q not found", name)
		return
	}
	got := n.GetString("exported") == "true"
	if got != want {
		t.Errorf("%s exported = %v, want %v", name, got, want)
	}
}

func nodesByName(t *testing.T, g *graph.MemoryStore) map[string]*graph.Node {
	t.Helper()
	m := make(map[string]*graph.Node)
	for _, n := range g.AllNodes() {
		m[n.Name()] = n
	}
	return m
}
