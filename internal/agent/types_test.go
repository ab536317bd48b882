package agent_test

import (
	"context"
	"errors"
	"testing"

	"repo-autobot/internal/agent"
)

type mockTool struct {
	name        agent.Capability
	description string
	params      map[string]any
}

func (m *mockTool) Name() agent.Capability     { return m.name }
func (m *mockTool) Description() string        { return m.description }
func (m *mockTool) Parameters() map[string]any { return m.params }
func (m *mockTool) Execute(ctx context.Context, ws *agent.Workspace, args map[string]any) (any, error) {
	return nil, nil
}

func TestToolRegistry(t *testing.T) {
	registry := agent.NewToolRegistry()

	readFile := &mockTool{name: agent.CapReadFile, description: "read"}
	findFile := &mockTool{name: agent.CapFindFile, description: "find"}

	if err := registry.Register(readFile, findFile); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("Get existing tool", func(t *testing.T) {
		got, ok := registry.Get("read_file")
		if !ok || got.Name() != agent.CapReadFile {
			t.Errorf("expected read_file to be found")
		}
	})

	t.Run("Get non-existing tool", func(t *testing.T) {
		if _, ok := registry.Get("missing"); ok {
			t.Errorf("expected 'missing' tool to not be found")
		}
	})

	t.Run("List is ordered", func(t *testing.T) {
		tools := registry.List()
		if len(tools) != 2 || tools[0].Name() != agent.CapFindFile {
			t.Errorf("expected [find_file read_file], got %v", tools)
		}
	})

	t.Run("ToFunctionDefinitions", func(t *testing.T) {
		defs := registry.ToFunctionDefinitions()
		if len(defs) != 2 || defs[1].Name != "read_file" || defs[1].Description != "read" {
			t.Fatalf("unexpected definitions %+v", defs)
		}
	})

	t.Run("Register rejects unknown capability", func(t *testing.T) {
		err := registry.Register(&mockTool{name: "run_shell"})
		if !errors.Is(err, agent.ErrUnknownCapability) {
			t.Errorf("expected ErrUnknownCapability, got %v", err)
		}
	})

	t.Run("Subset", func(t *testing.T) {
		sub, err := registry.Subset(agent.CapReadFile)
		if err != nil {
			t.Fatalf("Subset() error = %v", err)
		}
		if len(sub.List()) != 1 {
			t.Errorf("expected 1 tool in subset, got %d", len(sub.List()))
		}
		if _, err := registry.Subset(agent.CapCommitAndPush); !errors.Is(err, agent.ErrCapabilityNotRegistered) {
			t.Errorf("expected ErrCapabilityNotRegistered, got %v", err)
		}
	})
}
