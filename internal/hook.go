package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	HookMarker     = "# mnemonic: managed pre-commit hook"
	HookType       = "pre-commit"
	hookBackupExt  = ".orig"
	hookScriptMode = 0o755
)

var ErrHookExists = errors.New("unmanaged hook already exists (use --force)")

// HookScript returns the shell shim for a hook type. The shim refuses the
// commit when any store fails validation. Stores that were never created do
// not block a commit.
func HookScript(hookType string) string {
	return fmt.Sprintf("#!/bin/sh\n%s (%s)\nexec mnemonic validate --allow-missing\n", HookMarker, hookType)
}

// IsManagedHook checks if the given script content was written by mnemonic.
func IsManagedHook(content string) bool {
	return strings.Contains(content, HookMarker)
}

// FindGitDir walks up from dir looking for a .git directory.
func FindGitDir(dir string) (string, error) {
	for {
		gitDir := filepath.Join(dir, ".git")
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			return gitDir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInRepository
		}
		dir = parent
	}
}

type InstallHookInput struct {
	Dir   string
	Force bool
}

type UninstallHookInput struct {
	Dir string
}

type HookOutput struct {
	Path     string
	BackedUp string
	Restored bool
}

// InstallHookUseCase writes the pre-commit validation hook into the git
// repository containing Dir.
type InstallHookUseCase struct {
	logger Logger
}

func NewInstallHookUseCase(logger Logger) *InstallHookUseCase {
	if logger == nil {
		logger = NopLogger()
	}
	return &InstallHookUseCase{logger: logger}
}

func (uc *InstallHookUseCase) Execute(ctx context.Context, input InstallHookInput) (*HookOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hookPath, err := hookPathFor(input.Dir)
	if err != nil {
		return nil, err
	}
	out := &HookOutput{Path: hookPath}

	existing, err := os.ReadFile(hookPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, &IOError{Op: "read", Path: hookPath, Err: err}
	case IsManagedHook(string(existing)):
	case !input.Force:
		return nil, ErrHookExists
	default:
		out.BackedUp = hookPath + hookBackupExt
		if err := os.Rename(hookPath, out.BackedUp); err != nil {
			return nil, &IOError{Op: "backup", Path: hookPath, Err: err}
		}
		uc.logger.Info("backed up existing hook", "file", out.BackedUp)
	}

	if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
		return nil, &IOError{Op: "mkdir", Path: filepath.Dir(hookPath), Err: err}
	}
	if err := os.WriteFile(hookPath, []byte(HookScript(HookType)), hookScriptMode); err != nil {
		return nil, &IOError{Op: "write", Path: hookPath, Err: err}
	}
	uc.logger.Info("installed hook", "file", hookPath)
	return out, nil
}

// UninstallHookUseCase removes a managed hook and restores any backup.
type UninstallHookUseCase struct {
	logger Logger
}

func NewUninstallHookUseCase(logger Logger) *UninstallHookUseCase {
	if logger == nil {
		logger = NopLogger()
	}
	return &UninstallHookUseCase{logger: logger}
}

func (uc *UninstallHookUseCase) Execute(ctx context.Context, input UninstallHookInput) (*HookOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hookPath, err := hookPathFor(input.Dir)
	if err != nil {
		return nil, err
	}
	out := &HookOutput{Path: hookPath}

	content, err := os.ReadFile(hookPath)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, &IOError{Op: "read", Path: hookPath, Err: err}
	}
	if !IsManagedHook(string(content)) {
		return nil, fmt.Errorf("hook %s is not managed by mnemonic", hookPath)
	}
	if err := os.Remove(hookPath); err != nil {
		return nil, &IOError{Op: "remove", Path: hookPath, Err: err}
	}

	backup := hookPath + hookBackupExt
	if _, err := os.Stat(backup); err == nil {
		if err := os.Rename(backup, hookPath); err != nil {
			return nil, &IOError{Op: "restore", Path: backup, Err: err}
		}
		out.Restored = true
	}
	uc.logger.Info("uninstalled hook", "file", hookPath, "restored", out.Restored)
	return out, nil
}

func hookPathFor(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	gitDir, err := FindGitDir(abs)
	if err != nil {
		return "", err
	}
	return filepath.Join(gitDir, "hooks", HookType), nil
}
