package helloworld

import (
	"fmt"

	"github.com/stagelink-labs/stagelink/internal/stage"
)

// Box geometry: 24 vertices (4 per face) so each face gets its own normals
// and texture coordinates, split into 12 triangles.
const boxHalf = 50.0

var boxVertexIndices = []int{
	0, 1, 2, 1, 3, 2,
	4, 5, 6, 4, 6, 7,
	8, 9, 10, 8, 10, 11,
	12, 13, 14, 12, 14, 15,
	16, 17, 18, 16, 18, 19,
	20, 21, 22, 20, 22, 23,
}

var boxNormals = []stage.Vec3{
	{0, 0, -1}, {0, 0, -1}, {0, 0, -1}, {0, 0, -1},
	{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1},
	{0, -1, 0}, {0, -1, 0}, {0, -1, 0}, {0, -1, 0},
	{1, 0, 0}, {1, 0, 0}, {1, 0, 0}, {1, 0, 0},
	{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0},
	{-1, 0, 0}, {-1, 0, 0}, {-1, 0, 0}, {-1, 0, 0},
}

var boxPoints = []stage.Vec3{
	{boxHalf, -boxHalf, -boxHalf}, {-boxHalf, -boxHalf, -boxHalf}, {boxHalf, boxHalf, -boxHalf}, {-boxHalf, boxHalf, -boxHalf},
	{boxHalf, boxHalf, boxHalf}, {-boxHalf, boxHalf, boxHalf}, {-boxHalf, -boxHalf, boxHalf}, {boxHalf, -boxHalf, boxHalf},
	{boxHalf, -boxHalf, boxHalf}, {-boxHalf, -boxHalf, boxHalf}, {-boxHalf, -boxHalf, -boxHalf}, {boxHalf, -boxHalf, -boxHalf},
	{boxHalf, boxHalf, boxHalf}, {boxHalf, -boxHalf, boxHalf}, {boxHalf, -boxHalf, -boxHalf}, {boxHalf, boxHalf, -boxHalf},
	{-boxHalf, boxHalf, boxHalf}, {boxHalf, boxHalf, boxHalf}, {boxHalf, boxHalf, -boxHalf}, {-boxHalf, boxHalf, -boxHalf},
	{-boxHalf, -boxHalf, boxHalf}, {-boxHalf, boxHalf, boxHalf}, {-boxHalf, boxHalf, -boxHalf}, {-boxHalf, -boxHalf, -boxHalf},
}

var boxUVs = []stage.Vec2{
	{0, 0}, {0, 1}, {1, 1}, {1, 0},
	{0, 0}, {0, 1}, {1, 1}, {1, 0},
	{0, 0}, {0, 1}, {1, 1}, {1, 0},
	{0, 0}, {0, 1}, {1, 1}, {1, 0},
	{0, 0}, {0, 1}, {1, 1}, {1, 0},
	{0, 0}, {0, 1}, {1, 1}, {1, 0},
}

// computeExtent returns the axis-aligned bounds of a point set.
func computeExtent(points []stage.Vec3) []stage.Vec3 {
	if len(points) == 0 {
		return []stage.Vec3{{}, {}}
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for i := range 3 {
			if p[i] < lo[i] {
				lo[i] = p[i]
			}
			if p[i] > hi[i] {
				hi[i] = p[i]
			}
		}
	}
	return []stage.Vec3{lo, hi}
}

// enablePhysics makes a prim participate in the physics scene. Dynamic
// prims get a rigid body; meshes additionally get a collision approximation
// (convex hull when dynamic, the exact triangles when static).
func enablePhysics(prim *stage.Prim, dynamic bool) {
	if dynamic {
		prim.ApplyAPI(stage.APIRigidBody)
	}
	prim.ApplyAPI(stage.APICollision)
	if prim.Type() == stage.TypeMesh {
		prim.ApplyAPI(stage.APIMeshCollision)
		if dynamic {
			prim.SetAttr("physics:approximation", stage.Token("convexHull"))
		} else {
			prim.SetAttr("physics:approximation", stage.Token("none"))
		}
	}
}

// defineComponent defines a prim and marks it a component so the
// assembly/component selection hierarchy works in viewers.
func defineComponent(st *stage.Stage, path, typ string) (*stage.Prim, error) {
	prim, err := st.DefinePrim(path, typ)
	if err != nil {
		return nil, err
	}
	prim.SetKind(stage.KindComponent)
	return prim, nil
}

// addPhysicsScene defines the physics scene prim. Gravity is implied by the
// stage's up axis and meters-per-unit, so no attributes are needed.
func addPhysicsScene(st *stage.Stage) error {
	root := st.DefaultPrim().Path()
	_, err := st.DefinePrim(root+"/physicsScene", stage.TypePhysicsScene)
	return err
}

// addBox builds the textured box mesh the sample revolves around.
func addBox(st *stage.Stage, number int) (*stage.Prim, error) {
	root := st.DefaultPrim().Path()
	name := stage.MakeValidIdentifier(fmt.Sprintf("box-%d", number))
	box, err := defineComponent(st, root+"/"+name, stage.TypeMesh)
	if err != nil {
		return nil, err
	}

	box.SetAttr("primvars:displayColor", []stage.Vec3{{0.463, 0.725, 0}})
	box.SetAttr("points", boxPoints)
	box.SetAttr("normals", boxNormals)
	box.SetAttr("faceVertexCounts", boxFaceCounts())
	box.SetAttr("faceVertexIndices", boxVertexIndices)
	box.SetAttr("extent", computeExtent(boxPoints))
	box.SetAttr("primvars:st", boxUVs)

	srt := stage.DefaultSRT()
	srt.Translate = stage.Vec3{0, 100, 0}
	srt.RotateXYZ = stage.Vec3{20, 0, 20}
	box.SetSRT(srt)

	enablePhysics(box, true)
	return box, nil
}

func boxFaceCounts() []int {
	counts := make([]int, 12)
	for i := range counts {
		counts[i] = 3
	}
	return counts
}

// addDynamicCube drops a cube into the scene above the quad.
func addDynamicCube(st *stage.Stage, size float64) error {
	root := st.DefaultPrim().Path()
	cube, err := defineComponent(st, root+"/"+stage.MakeValidIdentifier("cube"), stage.TypeCube)
	if err != nil {
		return err
	}
	cube.SetTranslate(stage.Vec3{65, 300, 65})
	cube.SetAttr("size", size)
	half := size * 0.5
	cube.SetAttr("extent", []stage.Vec3{{-half, -half, -half}, {half, half, half}})
	enablePhysics(cube, true)
	return nil
}

// addNoBoundsCube authors a cube without an extent, deliberately seeding a
// validation failure.
func addNoBoundsCube(st *stage.Stage, size float64) error {
	root := st.DefaultPrim().Path()
	cube, err := st.DefinePrim(root+"/"+stage.MakeValidIdentifier("no_bounds_cube"), stage.TypeCube)
	if err != nil {
		return err
	}
	cube.SetAttr("size", size)
	return nil
}

// addQuad builds the static ground collider the dynamic prims land on.
func addQuad(st *stage.Stage, size float64) error {
	root := st.DefaultPrim().Path()
	quad, err := defineComponent(st, root+"/"+stage.MakeValidIdentifier("quad"), stage.TypeMesh)
	if err != nil {
		return err
	}

	points := []stage.Vec3{
		{-size, 0, -size},
		{-size, 0, size},
		{size, 0, size},
		{size, 0, -size},
	}
	quad.SetAttr("points", points)
	quad.SetAttr("extent", computeExtent(points))
	quad.SetAttr("faceVertexIndices", []int{0, 1, 2, 3})
	quad.SetAttr("normals", []stage.Vec3{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}})
	quad.SetAttr("faceVertexCounts", []int{4})

	enablePhysics(quad, false)
	return nil
}

// addDistantLight creates the key light.
func addDistantLight(st *stage.Stage) error {
	root := st.DefaultPrim().Path()
	light, err := defineComponent(st, root+"/DistantLight", stage.TypeDistantLight)
	if err != nil {
		return err
	}
	light.SetAttr("inputs:intensity", 500.0)
	light.SetAttr("inputs:angle", 0.53)
	light.SetAttr("inputs:color", stage.Vec3{1, 1, 0.745})
	setRotateOnly(light, stage.Vec3{139, 44, 190})
	return nil
}

// addDomeLight creates the environment light.
func addDomeLight(st *stage.Stage, texturePath string) error {
	root := st.DefaultPrim().Path()
	light, err := defineComponent(st, root+"/DomeLight", stage.TypeDomeLight)
	if err != nil {
		return err
	}
	light.SetAttr("inputs:intensity", 900.0)
	light.SetAttr("inputs:texture:file", stage.AssetRef(texturePath))
	light.SetAttr("inputs:texture:format", stage.Token("latlong"))
	setRotateOnly(light, stage.Vec3{270, 270, 0})
	return nil
}

// setRotateOnly authors a rotate op without translate or scale, the way
// lights are oriented.
func setRotateOnly(p *stage.Prim, rot stage.Vec3) {
	p.SetAttr(stage.AttrRotateXYZ, rot)
	p.SetAttr(stage.AttrXformOpOrder, []stage.Token{stage.AttrRotateXYZ})
}

// addMaterial builds the Fieldstone shader network under /World/Looks and
// binds it to the mesh: a primvar reader feeding a diffuse and a normal
// texture, both wired into a preview surface.
func addMaterial(st *stage.Stage, mesh *stage.Prim) error {
	root := st.DefaultPrim().Path()
	if _, err := st.DefinePrim(root+"/Looks", stage.TypeScope); err != nil {
		return err
	}

	matPath := root + "/Looks/Fieldstone"
	mat, err := st.DefinePrim(matPath, stage.TypeMaterial)
	if err != nil {
		return err
	}

	primST, err := st.DefinePrim(matPath+"/PrimST", stage.TypeShader)
	if err != nil {
		return err
	}
	primST.SetAttr("info:id", stage.Token("UsdPrimvarReader_float2"))
	primST.SetAttr("inputs:varname", stage.Token("st"))

	diffuse, err := st.DefinePrim(matPath+"/DiffuseColorTex", stage.TypeShader)
	if err != nil {
		return err
	}
	diffuse.SetAttr("info:id", stage.Token("UsdUVTexture"))
	diffuse.SetAttr("inputs:file", stage.AssetRef("./Materials/Fieldstone/Fieldstone_BaseColor.png"))
	diffuse.SetAttr("inputs:sourceColorSpace", stage.Token("auto"))
	diffuse.SetAttr("inputs:st", stage.Relationship(primST.Path()+".outputs:result"))

	normal, err := st.DefinePrim(matPath+"/NormalTex", stage.TypeShader)
	if err != nil {
		return err
	}
	normal.SetAttr("info:id", stage.Token("UsdUVTexture"))
	normal.SetAttr("inputs:file", stage.AssetRef("./Materials/Fieldstone/Fieldstone_N.png"))
	normal.SetAttr("inputs:sourceColorSpace", stage.Token("raw"))
	normal.SetAttr("inputs:scale", stage.Vec4{2, 2, 2, 1})
	normal.SetAttr("inputs:bias", stage.Vec4{-1, -1, -1, 0})
	normal.SetAttr("inputs:st", stage.Relationship(primST.Path()+".outputs:result"))

	surface, err := st.DefinePrim(matPath+"/PreviewSurface", stage.TypeShader)
	if err != nil {
		return err
	}
	surface.SetAttr("info:id", stage.Token("UsdPreviewSurface"))
	surface.SetAttr("inputs:diffuseColor", stage.Relationship(diffuse.Path()+".outputs:rgb"))
	surface.SetAttr("inputs:normal", stage.Relationship(normal.Path()+".outputs:rgb"))

	mat.SetAttr("outputs:surface", stage.Relationship(surface.Path()+".outputs:surface"))

	mesh.ApplyAPI(stage.APIMaterialBinding)
	mesh.SetAttr("material:binding", stage.Relationship(matPath))
	return nil
}

// addReferenceAndPayload brings in the coaster prop twice, once as a
// reference and once as a payload, both spinning rigid bodies, and tints
// the payload's material.
func addReferenceAndPayload(st *stage.Stage) error {
	root := st.DefaultPrim().Path()
	propAsset := stage.AssetRef("./Props/Coaster/Coaster_Hexagon.stage")

	ref, err := st.DefinePrim(root+"/Coaster_Hexagon_Reference", stage.TypeXform)
	if err != nil {
		return err
	}
	ref.AddReference(propAsset)
	enablePhysics(ref, true)
	ref.SetAttr("physics:angularVelocity", stage.Vec3{0, 1000, 0})
	ref.SetSRT(stage.SRT{
		Translate: stage.Vec3{200, 100, -200},
		RotateXYZ: stage.Vec3{3, 0, 8},
		Scale:     stage.Vec3{10, 10, 10},
	})

	payload, err := st.DefinePrim(root+"/Coaster_Hexagon_Payload", stage.TypeXform)
	if err != nil {
		return err
	}
	payload.AddPayload(propAsset)
	enablePhysics(payload, true)
	payload.SetAttr("physics:angularVelocity", stage.Vec3{-1000, 0, 0})
	payload.SetSRT(stage.SRT{
		Translate: stage.Vec3{-200, 180, 200},
		RotateXYZ: stage.Vec3{-4, 90, 8},
		Scale:     stage.Vec3{10, 10, 10},
	})

	// Override the prop's material with a tint.
	tint, err := st.DefinePrim(payload.Path()+"/Looks/M_Coaster_Hexagon", stage.TypeShader)
	if err != nil {
		return err
	}
	tint.SetAttr("inputs:diffuse_tint", stage.Vec3{1, 0.1, 0})
	return nil
}
