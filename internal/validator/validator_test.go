package validator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink-labs/stagelink/internal/asset/localfs"
	"github.com/stagelink-labs/stagelink/internal/stage"
)

func buildStage(t *testing.T) *stage.Stage {
	t.Helper()
	st := stage.New()

	world, err := st.DefinePrim("/World", stage.TypeXform)
	require.NoError(t, err)
	st.SetDefaultPrim(world)

	good, err := st.DefinePrim("/World/box", stage.TypeMesh)
	require.NoError(t, err)
	good.SetAttr("extent", []stage.Vec3{{-50, -50, -50}, {50, 50, 50}})
	good.ApplyAPI(stage.APIMaterialBinding)
	good.SetAttr("material:binding", stage.Relationship("/World/Looks/mat"))

	return st
}

func TestDefaultRulesPassOnCleanStage(t *testing.T) {
	v := New()
	report, err := v.Validate(context.Background(), buildStage(t), Target{})
	require.NoError(t, err)
	assert.False(t, report.Failed())
	assert.Empty(t, report.Issues)
	assert.Equal(t, []string{"extents", "geom-subset", "material-binding-api"}, report.Rules)
}

func TestExtentsChecker(t *testing.T) {
	st := buildStage(t)
	cube, err := st.DefinePrim("/World/noBounds", stage.TypeCube)
	require.NoError(t, err)
	cube.SetAttr("size", 100.0)

	report, err := New().Validate(context.Background(), st, Target{})
	require.NoError(t, err)
	assert.True(t, report.Failed())

	issues := report.IssuesFor("extents")
	require.Len(t, issues, 1)
	assert.Equal(t, "/World/noBounds", issues[0].Prim)
	assert.Contains(t, issues[0].Message, "no authored extent")

	// Non-geometric prims are out of scope for the rule.
	_, err = st.DefinePrim("/World/group", stage.TypeScope)
	require.NoError(t, err)
	report, err = New().Validate(context.Background(), st, Target{})
	require.NoError(t, err)
	assert.Len(t, report.IssuesFor("extents"), 1)
}

func TestGeomSubsetChecker(t *testing.T) {
	tests := []struct {
		name       string
		family     any
		binding    bool
		wantIssues int
	}{
		{name: "bound with family", family: stage.Token("materialBind"), binding: true, wantIssues: 0},
		{name: "bound without family", family: nil, binding: true, wantIssues: 1},
		{name: "bound with wrong family", family: stage.Token("shadow"), binding: true, wantIssues: 1},
		{name: "unbound without family", family: nil, binding: false, wantIssues: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := buildStage(t)
			subset, err := st.DefinePrim("/World/box/subset", stage.TypeGeomSubset)
			require.NoError(t, err)
			if tt.binding {
				subset.SetAttr("material:binding", stage.Relationship("/World/Looks/mat"))
			}
			if tt.family != nil {
				subset.SetAttr("familyName", tt.family)
			}

			report, err := New().Validate(context.Background(), st, Target{})
			require.NoError(t, err)
			assert.Len(t, report.IssuesFor("geom-subset"), tt.wantIssues)
		})
	}
}

func TestMaterialBindingChecker(t *testing.T) {
	st := buildStage(t)
	bare, err := st.DefinePrim("/World/bare", stage.TypeXform)
	require.NoError(t, err)
	bare.SetAttr("material:binding", stage.Relationship("/World/Looks/mat"))

	report, err := New().Validate(context.Background(), st, Target{})
	require.NoError(t, err)

	issues := report.IssuesFor("material-binding-api")
	require.Len(t, issues, 1)
	assert.Equal(t, "/World/bare", issues[0].Prim)
	assert.Contains(t, issues[0].Message, "MaterialBindingAPI")
}

func TestMissingReferenceChecker(t *testing.T) {
	root := t.TempDir()
	client, err := localfs.New(localfs.Config{Root: root, Username: "test"})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.WriteFile(ctx, "stage://localhost/proj/box.stage", []byte("#stagelink 1.0\n"), ""))

	st := buildStage(t)
	ref, err := st.DefinePrim("/World/fromRef", stage.TypeXform)
	require.NoError(t, err)
	ref.AddReference("box.stage")
	ref.AddPayload("missing.stage")

	v := New()
	v.AddRule(NewMissingReferenceChecker(client))

	report, err := v.Validate(ctx, st, Target{StageURL: "stage://localhost/proj/scene.stage"})
	require.NoError(t, err)

	issues := report.IssuesFor("missing-reference")
	require.Len(t, issues, 1, "only the absent payload should be flagged")
	assert.Contains(t, issues[0].Message, "missing.stage")
}

func TestResolveRef(t *testing.T) {
	tests := []struct {
		stageURL string
		ref      string
		want     string
	}{
		{"stage://localhost/proj/scene.stage", "box.stage", "stage://localhost/proj/box.stage"},
		{"stage://localhost/proj/scene.stage", "stage://other/a.stage", "stage://other/a.stage"},
		{filepath.Join("local", "scene.stage"), "box.stage", filepath.ToSlash(filepath.Join("local", "box.stage"))},
		{"stage://localhost/proj/scene.stage", "/abs/box.stage", "/abs/box.stage"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveRef(tt.stageURL, tt.ref), "%s + %s", tt.stageURL, tt.ref)
	}
}

func TestValidateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Validate(ctx, buildStage(t), Target{})
	assert.ErrorIs(t, err, context.Canceled)
}
