package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/mock/gomock"

	"deptrim/internal/errors"
	"deptrim/internal/manifest"
	"deptrim/internal/manifest/mocks"
	"deptrim/internal/testutil"
)

// setFlags sets the package-level flags for one test and restores them.
func setFlags(t *testing.T, dir, format string) {
	t.Helper()
	saved := []any{dirFlag, formatFlag, quietFlag, verboseFlag, noPrefixMatchFlag, workersFlag, packageManagerFlag, logFileFlag, removeDryRun}
	t.Cleanup(func() {
		dirFlag = saved[0].(string)
		formatFlag = saved[1].(string)
		quietFlag = saved[2].(bool)
		verboseFlag = saved[3].(int)
		noPrefixMatchFlag = saved[4].(bool)
		workersFlag = saved[5].(int)
		packageManagerFlag = saved[6].(string)
		logFileFlag = saved[7].(string)
		removeDryRun = saved[8].(bool)
	})
	dirFlag = dir
	formatFlag = format
	quietFlag = true
}

const projectManifest = `{
  "name": "demo",
  "dependencies": {
    "chalk": "^5.3.0",
    "ora": "^8.0.0"
  },
  "devDependencies": {
    "typescript": "^5.4.0"
  }
}
`

func demoProject(t *testing.T) string {
	return testutil.WriteTree(t, map[string]string{
		"package.json": projectManifest,
		"DEPTRIM.toml": "[[keep]]\nname = \"typescript\"\nreason = \"compiler\"\n",
		"src/index.js": "import chalk from 'chalk';\nconsole.log('hi');\n",
	})
}

func TestRunAnalyze_JSON(t *testing.T) {
	root := demoProject(t)
	setFlags(t, root, "json")

	var stdout, stderr bytes.Buffer
	if err := runAnalyze(context.Background(), &stdout, &stderr); err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}

	var resp AnalysisResponseCLI
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}

	if len(resp.ImportedButUnused) != 1 || resp.ImportedButUnused[0].Dependency != "chalk" {
		t.Errorf("ImportedButUnused = %+v, want chalk", resp.ImportedButUnused)
	}
	if want := []string{"ora", "typescript"}; !reflect.DeepEqual(resp.NeverImported, want) {
		t.Errorf("NeverImported = %v, want %v", resp.NeverImported, want)
	}
	if len(resp.Kept) != 1 || resp.Kept[0].Name != "typescript" {
		t.Errorf("Kept = %+v, want typescript", resp.Kept)
	}
	if resp.Root != root {
		t.Errorf("Root = %q, want %q", resp.Root, root)
	}
}

func TestRunAnalyze_MissingManifest(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{"index.js": "import a from 'a';"})
	setFlags(t, root, "json")

	var stdout, stderr bytes.Buffer
	err := runAnalyze(context.Background(), &stdout, &stderr)
	if !errors.HasCode(err, errors.ManifestError) {
		t.Fatalf("runAnalyze error = %v, want %s", err, errors.ManifestError)
	}
}

func TestRunAnalyze_InvalidFlagConfig(t *testing.T) {
	setFlags(t, demoProject(t), "json")
	packageManagerFlag = "bun"

	var stdout, stderr bytes.Buffer
	err := runAnalyze(context.Background(), &stdout, &stderr)
	if !errors.HasCode(err, errors.ConfigInvalid) {
		t.Fatalf("runAnalyze error = %v, want %s", err, errors.ConfigInvalid)
	}
}

func TestRunAnalyze_ManifestOutsideRoot(t *testing.T) {
	setFlags(t, demoProject(t), "json")
	t.Setenv("DEPTRIM_MANIFEST_PATH", "../package.json")

	var stdout, stderr bytes.Buffer
	err := runAnalyze(context.Background(), &stdout, &stderr)
	if !errors.HasCode(err, errors.ConfigInvalid) {
		t.Fatalf("runAnalyze error = %v, want %s", err, errors.ConfigInvalid)
	}
}

func TestRunAnalyze_KeepFileOutsideRoot(t *testing.T) {
	setFlags(t, demoProject(t), "json")
	t.Setenv("DEPTRIM_MANIFEST_KEEPFILE", "../../x.toml")

	var stdout, stderr bytes.Buffer
	err := runAnalyze(context.Background(), &stdout, &stderr)
	if !errors.HasCode(err, errors.ConfigInvalid) {
		t.Fatalf("runAnalyze error = %v, want %s", err, errors.ConfigInvalid)
	}
	if stdout.Len() != 0 {
		t.Errorf("no report expected, got:\n%s", stdout.String())
	}
}

func TestRunAnalyze_LogFile(t *testing.T) {
	setFlags(t, demoProject(t), "human")
	logFileFlag = filepath.Join(t.TempDir(), "deptrim.log")
	verboseFlag = 1
	quietFlag = false

	var stdout, stderr bytes.Buffer
	if err := runAnalyze(context.Background(), &stdout, &stderr); err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}

	data, err := os.ReadFile(logFileFlag)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !bytes.Contains(data, []byte("Analysis complete")) {
		t.Errorf("log file missing completion line:\n%s", data)
	}
	if !bytes.Contains(stderr.Bytes(), []byte("Analysis complete")) {
		t.Errorf("stderr missing completion line at -v:\n%s", stderr.String())
	}
}

func TestRunRemove_DryRun(t *testing.T) {
	root := demoProject(t)
	setFlags(t, root, "json")
	removeDryRun = true

	// A dry run never calls the package manager
	pm := mocks.NewMockPackageManager(gomock.NewController(t))
	pm.EXPECT().Name().Return("npm").AnyTimes()

	var stdout, stderr bytes.Buffer
	if err := runRemove(context.Background(), &stdout, &stderr, pm); err != nil {
		t.Fatalf("runRemove failed: %v", err)
	}

	var resp RemovalResponseCLI
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if want := []string{"chalk", "ora"}; !reflect.DeepEqual(resp.Candidates, want) {
		t.Errorf("Candidates = %v, want %v", resp.Candidates, want)
	}
	if len(resp.Removed) != 0 {
		t.Errorf("dry run removed %v", resp.Removed)
	}

	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != projectManifest {
		t.Error("dry run modified package.json")
	}
}

func TestRunRemove(t *testing.T) {
	root := demoProject(t)
	setFlags(t, root, "json")

	pm := mocks.NewMockPackageManager(gomock.NewController(t))
	pm.EXPECT().Name().Return("npm").AnyTimes()
	pm.EXPECT().Uninstall(gomock.Any(), root, []string{"chalk", "ora"}).Return(nil)

	var stdout, stderr bytes.Buffer
	if err := runRemove(context.Background(), &stdout, &stderr, pm); err != nil {
		t.Fatalf("runRemove failed: %v", err)
	}

	m, err := manifest.Load(filepath.Join(root, "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"typescript"}; !reflect.DeepEqual(m.Declared(), want) {
		t.Errorf("Declared after remove = %v, want %v (typescript is kept)", m.Declared(), want)
	}
}

func TestRunRemove_DetectsPackageManager(t *testing.T) {
	root := demoProject(t)
	if err := os.WriteFile(filepath.Join(root, "yarn.lock"), []byte("# yarn lockfile v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	setFlags(t, root, "json")
	removeDryRun = true

	var stdout, stderr bytes.Buffer
	if err := runRemove(context.Background(), &stdout, &stderr, nil); err != nil {
		t.Fatalf("runRemove failed: %v", err)
	}

	var resp RemovalResponseCLI
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if resp.Manager != "yarn" {
		t.Errorf("Manager = %q, want yarn from yarn.lock", resp.Manager)
	}
	if want := "yarn remove chalk ora"; resp.Command != want {
		t.Errorf("Command = %q, want %q", resp.Command, want)
	}
}

func TestRunRemove_FlagOverridesLockfile(t *testing.T) {
	root := demoProject(t)
	if err := os.WriteFile(filepath.Join(root, "yarn.lock"), []byte("# yarn lockfile v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	setFlags(t, root, "json")
	removeDryRun = true
	packageManagerFlag = "pnpm"

	var stdout, stderr bytes.Buffer
	if err := runRemove(context.Background(), &stdout, &stderr, nil); err != nil {
		t.Fatalf("runRemove failed: %v", err)
	}

	var resp RemovalResponseCLI
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout.String())
	}
	if resp.Manager != "pnpm" {
		t.Errorf("Manager = %q, want pnpm from --package-manager", resp.Manager)
	}
}
