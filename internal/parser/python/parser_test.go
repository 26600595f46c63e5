package python

import (
	"testing"

	"github.com/codegraphls/codegraphls/internal/graph"
	"github.com/codegraphls/codegraphls/internal/parser"
)

const testSource = `"""A test module for parsing."""

import os
import sys
from pathlib import Path
from typing import List, Optional

MAX_RETRIES = 3
DEFAULT_NAME = "test"
_private_var = 42

class Animal:
    """Base class for animals."""

    def __init__(self, name: str, age: int) -> None:
        self.name = name
        self.age = age

    def speak(self) -> str:
        """Return the sound."""
        return ""

    @property
    def info(self) -> str:
        """Formatted info."""
        return f"{self.name}"

    @staticmethod
    def kingdom() -> str:
        return "Animalia"

class Dog(Animal):
    """A dog."""

    def __init__(self, name: str, age: int, breed: str) -> None:
        super().__init__(name, age)
        self.breed = breed

    def speak(self) -> str:
        return "Woof!"

    def fetch(self, item: str) -> str:
        return f"{self.name} fetches {item}"

def create_animal(name: str, age: int) -> Animal:
    """Factory function."""
    return Animal(name, age)

def _helper(x):
    return x + 1
`

func TestParseSource(t *testing.T) {
	g := graph.NewMemoryStore()
	f := NewFrontend()

	info, err := f.ParseSource(testSource, "testpkg/sample.py", g)
	if err != nil {
		t.Fatalf("ParseSource returned error: %v", err)
	}

	if info.Path != "testpkg/sample.py" {
		t.Errorf("Path = %q, want %q", info.Path, "testpkg/sample.py")
	}
	if info.Language != parser.LangPython {
		t.Errorf("Language = %q, want %q", info.Language, parser.LangPython)
	}

	if len(info.Imports) != 4 {
		t.Errorf("Imports count = %d, want 4 (os, sys, pathlib, typing)", len(info.Imports))
	}
	if len(info.Classes) != 2 {
		t.Errorf("Classes count = %d, want 2 (Animal, Dog)", len(info.Classes))
	}
	// create_animal, _helper, plus 7 methods across Animal/Dog.
	if len(info.Functions) != 9 {
		t.Errorf("Functions count = %d, want 9", len(info.Functions))
	}

	nodes := nodesByName(t, g)

	if n, ok := nodes["testpkg/sample.py"]; ok {
		if n.Type != graph.NodeModule {
			t.Errorf("module node should be Module, got %s", n.Type)
		}
		if n.GetString(graph.PropDoc) == "" {
			t.Error("module should have a docstring")
		}
	} else {
		t.Error("expected module node")
	}

	if n, ok := nodes["Animal"]; ok {
		if n.GetString(graph.PropDoc) == "" {
			t.Error("Animal class should have a docstring")
		}
		if n.GetString("exported") != "true" {
			t.Error("Animal should be exported")
		}
	} else {
		t.Error("expected Animal class node")
	}

	if n, ok := nodes["Dog"]; ok {
		if n.GetString("bases") != "Animal" {
			t.Errorf("Dog bases = %q, want %q", n.GetString("bases"), "Animal")
		}
	} else {
		t.Error("expected Dog class node")
	}

	if n, ok := nodes["create_animal"]; ok {
		if n.GetString("exported") != "true" {
			t.Error("create_animal should be exported")
		}
		if n.GetString(graph.PropDoc) == "" {
			t.Error("create_animal should have a docstring")
		}
	} else {
		t.Error("expected create_animal function node")
	}

	if n, ok := nodes["_helper"]; ok {
		if n.GetString("exported") == "true" {
			t.Error("_helper should not be exported")
		}
	} else {
		t.Error("expected _helper function node")
	}

	if n, ok := nodes["info"]; ok {
		if n.GetString("decorators") != "property" {
			t.Errorf("info decorators = %q, want %q", n.GetString("decorators"), "property")
		}
		if n.GetString("receiver") != "Animal" {
			t.Errorf("info receiver = %q, want %q", n.GetString("receiver"), "Animal")
		}
	} else {
		t.Error("expected info method node")
	}

	if n, ok := nodes["kingdom"]; ok {
		if n.GetString("decorators") != "staticmethod" {
			t.Errorf("kingdom decorators = %q, want %q", n.GetString("decorators"), "staticmethod")
		}
	} else {
		t.Error("expected kingdom method node")
	}

	if n, ok := nodes["MAX_RETRIES"]; ok {
		if n.GetString("const") != "true" {
			t.Error("MAX_RETRIES should be marked const")
		}
	} else {
		t.Error("expected MAX_RETRIES node")
	}

	if n, ok := nodes["_private_var"]; ok {
		if n.GetString("exported") == "true" {
			t.Error("_private_var should not be exported")
		}
	} else {
		t.Error("expected _private_var variable node")
	}

	stats := g.Stats()
	if stats.EdgesByType[graph.EdgeExtends] != 1 {
		t.Errorf("Extends edges = %d, want 1 (Dog extends Animal)", stats.EdgesByType[graph.EdgeExtends])
	}
	if stats.EdgesByType[graph.EdgeImports] != 4 {
		t.Errorf("Imports edges = %d, want 4", stats.EdgesByType[graph.EdgeImports])
	}
}

func TestCanParseAndExtensions(t *testing.T) {
	f := NewFrontend()
	if !f.CanParse("main.py") {
		t.Error(`CanParse("main.py") = false, want true`)
	}
	if !f.CanParse("stub.pyi") {
		t.Error(`CanParse("stub.pyi") = false, want true`)
	}
	if f.CanParse("main.go") {
		t.Error(`CanParse("main.go") = true, want false`)
	}
}

func TestSelfMethodCallGraph(t *testing.T) {
	source := `
class Greeter:
    def greet(self):
        return self.format("hi")

    def format(self, msg):
        return msg
`
	g := graph.NewMemoryStore()
	f := NewFrontend()
	_, err := f.ParseSource(source, "greeter.py", g)
	if err != nil {
		t.Fatalf("ParseSource returned error: %v", err)
	}
	if g.Stats().EdgesByType[graph.EdgeCalls] != 1 {
		t.Errorf("Calls edges = %d, want 1 (greet->format)", g.Stats().EdgesByType[graph.EdgeCalls])
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
