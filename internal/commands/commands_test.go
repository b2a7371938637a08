package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simonhull/firebird-suite/prismafix"
	"github.com/simonhull/firebird-suite/prismafix/internal/config"
	"github.com/simonhull/firebird-suite/prismafix/internal/output"
	"github.com/simonhull/firebird-suite/prismafix/internal/repair"
)

const (
	workDir      = "/project"
	brokenSchema = "model User {\n  id Int @id\n  tenants Tenant[]\n\n\n\n  email String\n}\n"
	fixedSchema  = "model User {\n  id Int @id\n\n  email String\n}\n"
)

var defaultSchema = filepath.Join(workDir, prismafix.DefaultSchemaPath)

// harness runs commands against an in-memory filesystem and captures
// everything they print.
type harness struct {
	fs     afero.Fs
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fs:     afero.NewMemMapFs(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	restore := output.SetOutput(h.stdout, h.stderr)
	t.Cleanup(restore)
	return h
}

func (h *harness) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(h.fs, path, []byte(content), 0644))
}

func (h *harness) read(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(h.fs, path)
	require.NoError(t, err)
	return string(data)
}

func (h *harness) run(args ...string) error {
	a := &app{fs: h.fs, workDir: workDir, log: zap.NewNop()}
	return execute(context.Background(), a, args)
}

func TestRepair_DefaultPath(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, brokenSchema)

	require.NoError(t, h.run())

	assert.Equal(t, fixedSchema, h.read(t, defaultSchema))
	assert.Contains(t, h.stdout.String(), "Fixed relation fields in "+defaultSchema)
	assert.Empty(t, h.stderr.String())
}

func TestRepair_Subcommand(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, brokenSchema)

	require.NoError(t, h.run("repair"))

	assert.Equal(t, fixedSchema, h.read(t, defaultSchema))
}

func TestRepair_ExplicitPath(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		path string
	}{
		{name: "relative to work dir", arg: "schema.prisma", path: "/project/schema.prisma"},
		{name: "absolute", arg: "/elsewhere/schema.prisma", path: "/elsewhere/schema.prisma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.write(t, tt.path, brokenSchema)

			require.NoError(t, h.run("repair", tt.arg))

			assert.Equal(t, fixedSchema, h.read(t, tt.path))
			assert.Contains(t, h.stdout.String(), tt.path)
		})
	}
}

func TestRepair_CleanSchemaStillSucceeds(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, fixedSchema)

	require.NoError(t, h.run())

	assert.Equal(t, fixedSchema, h.read(t, defaultSchema))
	assert.Contains(t, h.stdout.String(), "Fixed relation fields")
}

func TestRepair_DryRun(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, brokenSchema)

	require.NoError(t, h.run("--dry-run"))

	assert.Equal(t, brokenSchema, h.read(t, defaultSchema))
	assert.Contains(t, h.stdout.String(), "[DRY RUN] Would remove 1 relation field from")
	assert.NotContains(t, h.stdout.String(), "Fixed relation fields")
}

func TestRepair_Backup(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, brokenSchema)

	require.NoError(t, h.run("repair", "--backup"))

	assert.Equal(t, fixedSchema, h.read(t, defaultSchema))
	assert.Equal(t, brokenSchema, h.read(t, defaultSchema+".bak"))
}

func TestRepair_BackupFromConfig(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, brokenSchema)
	h.write(t, filepath.Join(workDir, config.FileName), "backup: true\n")

	require.NoError(t, h.run())

	assert.Equal(t, brokenSchema, h.read(t, defaultSchema+".bak"))
}

func TestRepair_Diff(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, brokenSchema)

	require.NoError(t, h.run("--diff", "--dry-run"))

	out := h.stdout.String()
	assert.Contains(t, out, "--- "+defaultSchema)
	assert.Contains(t, out, "-  tenants Tenant[]")
	assert.Contains(t, out, "@@ ")
}

func TestRepair_InteractiveNeedsTerminal(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, brokenSchema)

	err := h.run("--interactive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a terminal")
	assert.Equal(t, brokenSchema, h.read(t, defaultSchema))
}

func TestRepair_NotFound(t *testing.T) {
	h := newHarness(t)

	err := h.run()
	require.Error(t, err)
	assert.ErrorIs(t, err, repair.ErrNotFound)
	assert.NotContains(t, h.stdout.String(), "Fixed relation fields")

	exists, _ := afero.Exists(h.fs, defaultSchema)
	assert.False(t, exists, "missing schema must not be created")
}

func TestRepair_PermissionDenied(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, brokenSchema)
	h.fs = afero.NewReadOnlyFs(h.fs)

	err := h.run()
	require.Error(t, err)
	assert.ErrorIs(t, err, repair.ErrPermission)
	assert.Equal(t, brokenSchema, h.read(t, defaultSchema))
}

func TestRepair_RulesFromConfig(t *testing.T) {
	h := newHarness(t)
	h.write(t, filepath.Join(workDir, config.FileName), `rules:
  - model: Workspace
`)
	h.write(t, defaultSchema, "model User {\n  id Int\n  workspaces Workspace[]\n  tenants Tenant[]\n}\n")

	require.NoError(t, h.run())

	assert.Equal(t, "model User {\n  id Int\n  tenants Tenant[]\n}\n", h.read(t, defaultSchema))
}

func TestRepair_InvalidRuleInConfig(t *testing.T) {
	h := newHarness(t)
	h.write(t, filepath.Join(workDir, config.FileName), `rules:
  - model: "Bad Model"
`)
	h.write(t, defaultSchema, brokenSchema)

	err := h.run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules[0]")
}

func TestRepair_ExplicitConfigMissing(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, brokenSchema)

	err := h.run("--config", "/project/missing.yml")
	require.Error(t, err)
	assert.Equal(t, brokenSchema, h.read(t, defaultSchema))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		want    string
	}{
		{name: "dirty", content: brokenSchema, wantErr: true, want: "1 malformed relation field"},
		{name: "blank lines only", content: "a\n\n\n\nb\n", wantErr: true, want: "blank lines"},
		{name: "clean", content: fixedSchema, want: "is clean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.write(t, defaultSchema, tt.content)

			err := h.run("check")
			if tt.wantErr {
				assert.ErrorIs(t, err, errNeedsRepair)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, h.stdout.String(), tt.want)
			assert.Equal(t, tt.content, h.read(t, defaultSchema), "check must not write")
		})
	}
}

func TestCheck_ListsLines(t *testing.T) {
	h := newHarness(t)
	h.write(t, defaultSchema, brokenSchema)

	_ = h.run("check")

	assert.Contains(t, h.stdout.String(), "line 3: tenants Tenant[]")
}

func TestInit(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(workDir, config.FileName)

	require.NoError(t, h.run("init"))
	assert.Contains(t, h.stdout.String(), "Created "+path)

	cfg, err := config.Load(h.fs, workDir, "")
	require.NoError(t, err)
	assert.Equal(t, prismafix.DefaultSchemaPath, cfg.Schema)
	assert.Equal(t, config.DefaultConfig().Rules, cfg.Rules)

	err = h.run("init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, h.run("init", "--force"))
}

func TestInit_IgnoresBrokenConfig(t *testing.T) {
	h := newHarness(t)
	h.write(t, filepath.Join(workDir, config.FileName), "schema: [unterminated\n")

	require.NoError(t, h.run("init", "--force"))
}

func TestVersion(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("version"))

	assert.Equal(t, "prismafix v"+prismafix.Version+"\n", h.stdout.String())
}

func TestRepair_TooManyArgs(t *testing.T) {
	h := newHarness(t)

	err := h.run("repair", "a.prisma", "b.prisma")
	require.Error(t, err)
}

func TestWatch_RepairsOnChange(t *testing.T) {
	newHarness(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "schema.prisma")
	require.NoError(t, os.WriteFile(path, []byte(brokenSchema), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &app{fs: afero.NewOsFs(), workDir: dir, log: zap.NewNop()}
	done := make(chan error, 1)
	go func() {
		done <- execute(ctx, a, []string{"watch", path})
	}()

	readFile := func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		return string(data)
	}

	require.Eventually(t, func() bool { return readFile() == fixedSchema },
		2*time.Second, 20*time.Millisecond, "initial repair")

	// Give the watcher a moment to finish starting before the next edit.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(brokenSchema), 0644))

	require.Eventually(t, func() bool { return readFile() == fixedSchema },
		3*time.Second, 20*time.Millisecond, "repair after change")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
