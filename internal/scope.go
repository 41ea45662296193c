package internal

import (
	"path/filepath"
	"strings"
)

type ScopeType string

const (
	ScopeGlobal  ScopeType = "global"
	ScopeProject ScopeType = "project"
)

const globalPrefix = "global_"

// Scope names one configured store file.
type Scope struct {
	Type ScopeType
	Path string
}

// ScopeResolver maps scope hints onto the configured store files. A store
// whose file name starts with "global_" is the global store; the first other
// store is the project store.
type ScopeResolver struct {
	files []string
}

func NewScopeResolver(files []string) *ScopeResolver {
	return &ScopeResolver{files: files}
}

func (r *ScopeResolver) Global() (Scope, bool) {
	for _, f := range r.files {
		if strings.HasPrefix(filepath.Base(f), globalPrefix) {
			return Scope{Type: ScopeGlobal, Path: f}, true
		}
	}
	return Scope{}, false
}

func (r *ScopeResolver) Project() (Scope, bool) {
	for _, f := range r.files {
		if !strings.HasPrefix(filepath.Base(f), globalPrefix) {
			return Scope{Type: ScopeProject, Path: f}, true
		}
	}
	return Scope{}, false
}

// Resolve returns the store for hint. An empty or unknown hint prefers the
// project store and falls back to the global one.
func (r *ScopeResolver) Resolve(hint string) Scope {
	if ScopeType(hint) == ScopeGlobal {
		if s, ok := r.Global(); ok {
			return s
		}
	}
	if s, ok := r.Project(); ok {
		return s
	}
	if s, ok := r.Global(); ok {
		return s
	}
	return Scope{Type: ScopeProject}
}

// Cascade lists every configured store, project stores first.
func (r *ScopeResolver) Cascade() []Scope {
	var project, global []Scope
	for _, f := range r.files {
		if strings.HasPrefix(filepath.Base(f), globalPrefix) {
			global = append(global, Scope{Type: ScopeGlobal, Path: f})
		} else {
			project = append(project, Scope{Type: ScopeProject, Path: f})
		}
	}
	return append(project, global...)
}
