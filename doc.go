// Package grove is a small retained-mode 3D engine built around an owning
// object tree, entities with pluggable systems and GPU instancing.
//
// grove itself never talks to a graphics API. It renders through three
// small interfaces, [Device], [FrameTarget] and [RenderPass], implemented by
// the backend packages:
//
//   - ebitengpu draws with Ebitengine, using a software instanced rasterizer.
//   - wgpudevice drives WebGPU through a GLFW window.
//
// # Quick start
//
//	device := ebitengpu.NewDevice()
//	target := ebitengpu.NewTarget("screenshots")
//	scene := grove.NewScene(device, target)
//
//	mesh, _ := grove.NewMesh(scene.Device(), "cube", grove.Box(mgl32.Vec3{1, 1, 1}))
//	mat, _ := ebitengpu.NewFlatColorMaterial(scene.Device(), grove.Color{R: 0.3, G: 0.7, B: 1, A: 1})
//
//	cube := grove.NewRenderable(scene, mesh, mat)
//	cube.AttachPhysics(grove.Spin[*grove.Renderable]{Axis: mgl32.Vec3{0, 1, 0}, Speed: 1})
//	scene.AddChild(cube)
//
//	scene.Camera().Transform.SetPosition(mgl32.Vec3{0, 0, 5})
//	err := ebitengpu.Run(ebitengpu.NewGame(scene, target), grove.DefaultConfig())
//
// # Object tree
//
// Every object embeds a [Node]. A node owns its children: [Node.AddChild]
// takes ownership, [Node.RemoveChild] and [Node.Dispose] release it. Misuse
// of the tree (adding an owned child, adding a node to itself, creating a
// cycle) panics.
//
// Input is dispatched from the last child to the first and stops at the
// first handler returning true. Resize events go to every child of a node,
// but an entity whose controls system consumes one does not pass it on.
//
// # Entities and systems
//
// [Entity] adds three ordered system lists to a node: physics systems run on
// Update, render systems on Render and controls systems receive input. Bind
// the entity to its concrete type once so systems receive it directly:
//
//	type Player struct {
//		grove.Entity[*Player]
//		grove.Transform
//	}
//
//	p := &Player{Transform: grove.NewTransform()}
//	p.Bind(p)
//	p.AttachPhysics(grove.PhysicsFunc[*Player](func(p *Player, dt time.Duration) error {
//		p.Translate(mgl32.Vec3{0, 0, -float32(dt.Seconds())})
//		return nil
//	}))
//
// A disabled entity skips its own systems and input handlers. Its children
// keep updating.
//
// # Instancing
//
// [InstancedRenderable] draws one mesh many times in a single draw call.
// Instance matrices live in an [InstanceBuffer] with a fixed capacity;
// [InstanceBuffer.UpdateTransforms] coalesces adjacent updates into a single
// buffer write.
//
// # Debug mode
//
// [Scene.SetDebugMode] logs per-frame counters (draw calls, instances,
// buffer writes) and warns about very deep or very wide trees. Logs go
// through log/slog; replace the logger with [SetLogger].
//
// # Scripted runs
//
// [Scene.InjectKey], [Scene.InjectClick] and friends queue synthetic input
// that is dispatched at the start of the next Update. A [TestRunner] replays
// a YAML script of such events and screenshots, for automated visual tests.
package grove
