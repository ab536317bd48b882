package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"repo-autobot/internal/agent"
)

const (
	maxReadBytes = 64 * 1024
	maxFindHits  = 20
	filePerm     = 0o644
	dirPerm      = 0o755
)

var errFileType = errors.New("file type not allowed")

type fileTypes map[string]bool

func newFileTypes(exts []string) fileTypes {
	ft := make(fileTypes, len(exts))
	for _, e := range exts {
		ft[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	return ft
}

func (ft fileTypes) allowed(path string) bool {
	return ft[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))]
}

func (ft fileTypes) check(path string) error {
	if !ft.allowed(path) {
		return fmt.Errorf("%w: %q", errFileType, filepath.Ext(path))
	}
	return nil
}

// findFiles returns the workspace-relative paths whose base name is name,
// skipping hidden directories.
func findFiles(ws *agent.Workspace, name string) ([]string, error) {
	var hits []string
	err := filepath.WalkDir(ws.LocalPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != ws.LocalPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name {
			hits = append(hits, ws.Rel(path))
			if len(hits) >= maxFindHits {
				return filepath.SkipAll
			}
		}
		return nil
	})
	sort.Strings(hits)
	return hits, err
}

type CreateDirectoryTool struct{}

func NewCreateDirectoryTool() agent.Tool { return &CreateDirectoryTool{} }

func (t *CreateDirectoryTool) Name() agent.Capability { return agent.CapCreateDirectory }

func (t *CreateDirectoryTool) Description() string {
	return "Create a directory (and parents) inside the repository."
}

func (t *CreateDirectoryTool) Parameters() map[string]any {
	return schema([]string{"path"}, map[string]any{
		"path": prop("string", "Repository-relative directory path"),
	})
}

func (t *CreateDirectoryTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}
	rel, err := requiredString(params, "path")
	if err != nil {
		return nil, err
	}
	abs, err := ws.Resolve(rel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	return map[string]any{"created": ws.Rel(abs)}, nil
}

type FindFileTool struct{}

func NewFindFileTool() agent.Tool { return &FindFileTool{} }

func (t *FindFileTool) Name() agent.Capability { return agent.CapFindFile }

func (t *FindFileTool) Description() string {
	return "Find files in the repository by exact file name. Returns repository-relative paths."
}

func (t *FindFileTool) Parameters() map[string]any {
	return schema([]string{"name"}, map[string]any{
		"name": prop("string", "File name without directories, e.g. utils.py"),
	})
}

func (t *FindFileTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}
	name, err := requiredString(params, "name")
	if err != nil {
		return nil, err
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: name must not contain directories", agent.ErrUnsafePath)
	}
	hits, err := findFiles(ws, name)
	if err != nil {
		return nil, fmt.Errorf("find file: %w", err)
	}
	return map[string]any{"matches": hits, "count": len(hits)}, nil
}

type ReadFileTool struct{}

func NewReadFileTool() agent.Tool { return &ReadFileTool{} }

func (t *ReadFileTool) Name() agent.Capability { return agent.CapReadFile }

func (t *ReadFileTool) Description() string {
	return "Read a file from the repository. Large files are truncated."
}

func (t *ReadFileTool) Parameters() map[string]any {
	return schema([]string{"path"}, map[string]any{
		"path": prop("string", "Repository-relative file path"),
	})
}

func (t *ReadFileTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}
	rel, err := requiredString(params, "path")
	if err != nil {
		return nil, err
	}
	abs, err := ws.Resolve(rel)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	truncated := len(raw) > maxReadBytes
	if truncated {
		raw = raw[:maxReadBytes]
	}
	return map[string]any{"path": ws.Rel(abs), "content": string(raw), "truncated": truncated}, nil
}

// CreateFileTool writes a new file. It never overwrites.
type CreateFileTool struct {
	types fileTypes
}

func NewCreateFileTool(validFileTypes []string) agent.Tool {
	return &CreateFileTool{types: newFileTypes(validFileTypes)}
}

func (t *CreateFileTool) Name() agent.Capability { return agent.CapCreateFile }

func (t *CreateFileTool) Description() string {
	return "Create a new file with the given content. Fails if the file already exists."
}

func (t *CreateFileTool) Parameters() map[string]any {
	return schema([]string{"path", "content"}, map[string]any{
		"path":    prop("string", "Repository-relative file path including extension"),
		"content": prop("string", "Full file content"),
	})
}

func (t *CreateFileTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}
	rel, err := requiredString(params, "path")
	if err != nil {
		return nil, err
	}
	content, _ := params["content"].(string)
	if err := t.types.check(rel); err != nil {
		return nil, err
	}
	abs, err := ws.Resolve(rel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), dirPerm); err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("file %s already exists, use update_file", ws.Rel(abs))
		}
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	return map[string]any{"created": ws.Rel(abs), "bytes": len(content)}, nil
}

// UpdateFileTool appends content to an existing file. A bare file name is
// located with the same search find_file uses.
type UpdateFileTool struct {
	types fileTypes
}

func NewUpdateFileTool(validFileTypes []string) agent.Tool {
	return &UpdateFileTool{types: newFileTypes(validFileTypes)}
}

func (t *UpdateFileTool) Name() agent.Capability { return agent.CapUpdateFile }

func (t *UpdateFileTool) Description() string {
	return "Append content to an existing file. Accepts a repository-relative path or a unique file name."
}

func (t *UpdateFileTool) Parameters() map[string]any {
	return schema([]string{"path", "content"}, map[string]any{
		"path":    prop("string", "Repository-relative path or unique file name"),
		"content": prop("string", "Content to append"),
	})
}

func (t *UpdateFileTool) Execute(ctx context.Context, ws *agent.Workspace, params map[string]any) (any, error) {
	if err := ready(ws); err != nil {
		return nil, err
	}
	rel, err := requiredString(params, "path")
	if err != nil {
		return nil, err
	}
	content, _ := params["content"].(string)
	if err := t.types.check(rel); err != nil {
		return nil, err
	}
	abs, err := ws.Resolve(rel)
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(abs); errors.Is(statErr, fs.ErrNotExist) && !strings.ContainsAny(rel, `/\`) {
		hits, err := findFiles(ws, rel)
		if err != nil {
			return nil, fmt.Errorf("update file: %w", err)
		}
		switch len(hits) {
		case 0:
			return nil, fmt.Errorf("file %s not found, use create_file", rel)
		case 1:
			if abs, err = ws.Resolve(hits[0]); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("file name %s is ambiguous: %s", rel, strings.Join(hits, ", "))
		}
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s not found, use create_file", rel)
		}
		return nil, fmt.Errorf("update file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return nil, fmt.Errorf("update file: %w", err)
	}
	return map[string]any{"updated": ws.Rel(abs), "appended_bytes": len(content)}, nil
}
