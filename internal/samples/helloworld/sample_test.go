package helloworld

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagelink-labs/stagelink/internal/asset"
	"github.com/stagelink-labs/stagelink/internal/asset/localfs"
	"github.com/stagelink-labs/stagelink/internal/stage"
	"github.com/stagelink-labs/stagelink/internal/validator"
)

func newTestClient(t *testing.T) *localfs.Client {
	t.Helper()
	client, err := localfs.New(localfs.Config{Root: t.TempDir(), Username: "tester"})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// scratchResources creates a local resources tree so the upload step has
// something to copy.
func scratchResources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range []string{
		"Materials/Fieldstone/Fieldstone_BaseColor.png",
		"Props/Coaster/Coaster_Hexagon.stage",
	} {
		path := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	return dir
}

func runSample(t *testing.T, client asset.Client, opts Options) Result {
	t.Helper()
	if opts.ResourcesDir == "" {
		opts.ResourcesDir = scratchResources(t)
	}
	s, err := New(client, nil, opts)
	require.NoError(t, err)
	result, err := s.Run(context.Background())
	require.NoError(t, err)
	return result
}

func readStage(t *testing.T, client asset.Client, url string) *stage.Stage {
	t.Helper()
	data, err := client.ReadFile(context.Background(), url)
	require.NoError(t, err)
	st, err := stage.Parse(data)
	require.NoError(t, err)
	return st
}

func TestRunCreatesFullScene(t *testing.T) {
	client := newTestClient(t)
	base := "stage://localhost/Projects/hello"
	result := runSample(t, client, Options{Path: base})

	assert.Equal(t, base+"/helloworld.stage", result.StageURL)
	assert.Equal(t, "/World/box_0", result.MeshPath, "hyphen must become underscore")

	st := readStage(t, client, result.StageURL)
	assert.Equal(t, 0.01, st.MetersPerUnit)

	world := st.GetPrimAtPath("/World")
	require.NotNil(t, world)
	assert.Equal(t, stage.KindAssembly, world.Kind())
	assert.Equal(t, world, st.DefaultPrim())

	box := st.GetPrimAtPath("/World/box_0")
	require.NotNil(t, box)
	assert.Equal(t, stage.TypeMesh, box.Type())
	assert.Equal(t, stage.KindComponent, box.Kind())
	assert.True(t, box.HasAPI(stage.APIRigidBody))
	assert.True(t, box.HasAPI(stage.APIMeshCollision))
	assert.True(t, box.HasAPI(stage.APIMaterialBinding))
	assert.True(t, box.HasAttr("extent"))
	points, ok := box.Attr("points")
	require.True(t, ok)
	assert.Len(t, points.([]stage.Vec3), 24)
	srt := box.GetSRT()
	assert.Equal(t, stage.Vec3{0, 100, 0}, srt.Translate)
	assert.Equal(t, stage.Vec3{20, 0, 20}, srt.RotateXYZ)

	cube := st.GetPrimAtPath("/World/cube")
	require.NotNil(t, cube)
	assert.Equal(t, stage.Vec3{65, 300, 65}, cube.GetSRT().Translate)
	size, _ := cube.Attr("size")
	assert.Equal(t, 100.0, size)
	extent, _ := cube.Attr("extent")
	assert.Equal(t, []stage.Vec3{{-50, -50, -50}, {50, 50, 50}}, extent)

	quad := st.GetPrimAtPath("/World/quad")
	require.NotNil(t, quad)
	assert.False(t, quad.HasAPI(stage.APIRigidBody), "quad is a static collider")
	approx, _ := quad.Attr("physics:approximation")
	assert.Equal(t, stage.Token("none"), approx)

	require.NotNil(t, st.GetPrimAtPath("/World/physicsScene"))
	require.NotNil(t, st.GetPrimAtPath("/World/DistantLight"))
	require.NotNil(t, st.GetPrimAtPath("/World/DomeLight"))
	require.NotNil(t, st.GetPrimAtPath("/World/Looks/Fieldstone/PreviewSurface"))

	ref := st.GetPrimAtPath("/World/Coaster_Hexagon_Reference")
	require.NotNil(t, ref)
	assert.Len(t, ref.References(), 1)
	payload := st.GetPrimAtPath("/World/Coaster_Hexagon_Payload")
	require.NotNil(t, payload)
	assert.Len(t, payload.Payloads(), 1)

	binding, _ := box.Attr("material:binding")
	assert.Equal(t, stage.Relationship("/World/Looks/Fieldstone"), binding)
}

func TestRunUploadsResourcesAndFolder(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	base := "stage://localhost/Projects/hello"
	runSample(t, client, Options{Path: base})

	_, err := client.Stat(ctx, base+"/Materials/Fieldstone/Fieldstone_BaseColor.png")
	assert.NoError(t, err)
	_, err = client.Stat(ctx, base+"/Props/Coaster/Coaster_Hexagon.stage")
	assert.NoError(t, err)

	entry, err := client.Stat(ctx, base+"/EmptyFolder")
	require.NoError(t, err)
	assert.True(t, entry.IsDir)

	// A second run replaces everything without erroring on the
	// pre-existing folder.
	runSample(t, client, Options{Path: base})
}

func TestRunRecordsCheckpoints(t *testing.T) {
	client := newTestClient(t)
	base := "stage://localhost/Projects/hello"
	result := runSample(t, client, Options{Path: base})

	checkpoints, err := client.Checkpoints(context.Background(), result.StageURL)
	require.NoError(t, err)

	var comments []string
	for _, cp := range checkpoints {
		comments = append(comments, cp.Comment)
	}
	assert.Contains(t, comments, "Created a box.")
	assert.Contains(t, comments, "Created a dynamic cube.")
	assert.Contains(t, comments, "Created a Quad.")
	assert.Contains(t, comments, "Created a DistantLight.")
	assert.Contains(t, comments, "Created a DomeLight.")
	assert.Contains(t, comments, "Added material to box.")
}

func TestRunLiveUsesLiveExtension(t *testing.T) {
	client := newTestClient(t)
	result := runSample(t, client, Options{Path: "stage://localhost/Projects/hello", Live: true})
	assert.Equal(t, "stage://localhost/Projects/hello/helloworld.live", result.StageURL)
}

func TestRunDefaultsToUserFolder(t *testing.T) {
	client := newTestClient(t)
	result := runSample(t, client, Options{})
	assert.Equal(t, UsersFolder+"/tester/helloworld.stage", result.StageURL)
}

func TestFailSeedsValidationFailure(t *testing.T) {
	client := newTestClient(t)
	result := runSample(t, client, Options{Path: "stage://localhost/Projects/hello", Fail: true})

	st := readStage(t, client, result.StageURL)
	bad := st.GetPrimAtPath("/World/no_bounds_cube")
	require.NotNil(t, bad)
	assert.False(t, bad.HasAttr("extent"))

	report, err := validator.New().Validate(context.Background(), st, validator.Target{StageURL: result.StageURL})
	require.NoError(t, err)
	assert.True(t, report.Failed())
	assert.NotEmpty(t, report.IssuesFor("extents"))
}

func TestExistingFindsFirstMesh(t *testing.T) {
	client := newTestClient(t)
	created := runSample(t, client, Options{Path: "stage://localhost/Projects/hello"})

	result := runSample(t, client, Options{Existing: created.StageURL})
	assert.Equal(t, created.StageURL, result.StageURL)
	assert.Equal(t, "/World/box_0", result.MeshPath)
}

func TestExistingWithFailOnlyAddsBadCube(t *testing.T) {
	client := newTestClient(t)
	created := runSample(t, client, Options{Path: "stage://localhost/Projects/hello"})

	result := runSample(t, client, Options{Existing: created.StageURL, Fail: true})
	assert.Empty(t, result.MeshPath, "fail mode exits before finding a mesh")

	st := readStage(t, client, created.StageURL)
	require.NotNil(t, st.GetPrimAtPath("/World/no_bounds_cube"))
}

func TestExistingWithoutMeshErrors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	st := stage.New()
	world, err := st.DefinePrim("/World", stage.TypeXform)
	require.NoError(t, err)
	st.SetDefaultPrim(world)
	data, err := stage.Encode(st)
	require.NoError(t, err)

	url := "stage://localhost/Projects/empty/scene.stage"
	require.NoError(t, client.WriteFile(ctx, url, data, ""))

	s, err := New(client, nil, Options{Existing: url})
	require.NoError(t, err)
	_, err = s.Run(ctx)
	assert.ErrorContains(t, err, "no mesh found")
}
