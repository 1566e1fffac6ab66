package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cerevo/PEAK-Rules/pkg/gf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stressKindA struct{}
type stressKindB struct{}

// TestLoadAxiomsInstallsRules exercises the --axioms wiring end to end: a
// YAML axiom-set file naming two custom action kinds registered via
// gf.RegisterKind is loaded and applied, and the resulting Implies
// relation reflects the declared always-overrides axiom.
func TestLoadAxiomsInstallsRules(t *testing.T) {
	gf.RegisterKind("stress-a", reflect.TypeOf(stressKindA{}))
	gf.RegisterKind("stress-b", reflect.TypeOf(stressKindB{}))

	dir := t.TempDir()
	path := filepath.Join(dir, "axioms.yaml")
	doc := "alwaysOverrides:\n  - a: stress-a\n    b: stress-b\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	require.NoError(t, loadAxioms(path))

	assert.True(t, gf.Implies(stressKindA{}, stressKindB{}))
	assert.False(t, gf.Implies(stressKindB{}, stressKindA{}))
}

func TestLoadAxiomsEmptyPathIsNoop(t *testing.T) {
	assert.NoError(t, loadAxioms(""))
}

func TestLoadAxiomsRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "axioms.yaml")
	doc := "alwaysOverrides:\n  - a: nonexistent-kind\n    b: primary\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	err := loadAxioms(path)
	assert.ErrorContains(t, err, "nonexistent-kind")
}
