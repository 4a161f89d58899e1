package systems

import (
	"math"
	"testing"

	"github.com/decker502/scrollscene/pkg/components"
	"github.com/decker502/scrollscene/pkg/ecs"
	"github.com/decker502/scrollscene/pkg/entities"
	"github.com/decker502/scrollscene/pkg/game"
	"github.com/decker502/scrollscene/pkg/scene3d"
	"github.com/decker502/scrollscene/pkg/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

func newActorTestNode(name string) *scene3d.Node {
	mesh := &scene3d.Mesh{
		Kind:      scene3d.MeshBox,
		Size:      mgl64.Vec3{1, 1, 1},
		Materials: []*scene3d.Material{scene3d.NewMaterial(name, colorful.Color{R: 1, G: 1, B: 1})},
	}
	return scene3d.NewNode(name, mesh)
}

func mustCreateActor(t *testing.T, em *ecs.EntityManager, spec entities.OffsetActorSpec) ecs.EntityID {
	t.Helper()
	id, err := entities.NewOffsetActorEntity(em, spec)
	if err != nil {
		t.Fatalf("NewOffsetActorEntity error: %v", err)
	}
	return id
}

func TestOffsetActorSystem_OpacityMidWindow(t *testing.T) {
	em := ecs.NewEntityManager()
	state := game.NewOffsetState()
	system := NewOffsetActorSystem(em, state)

	node := newActorTestNode("chair")
	mustCreateActor(t, em, entities.OffsetActorSpec{
		Name:    "chair",
		Window:  utils.Window{Min: 0, Max: 1},
		Opacity: true,
		Node:    node,
	})

	state.SetOffset(0.5)
	system.Update(1.0 / 60)

	mat := node.Mesh.Materials[0]
	if !mat.Transparent {
		t.Error("material should be transparent")
	}
	if mat.Opacity != 0.5 {
		t.Errorf("opacity = %v, want exactly 0.5", mat.Opacity)
	}
}

func TestOffsetActorSystem_OpacityClamped(t *testing.T) {
	tests := []struct {
		name   string
		offset float64
		want   float64
	}{
		{"窗口之前", 0.2, 0},
		{"窗口下界", 0.5, 0},
		{"窗口中间", 0.75, 0.5},
		{"窗口上界", 1.0, 1},
		{"窗口之后", 1.3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := ecs.NewEntityManager()
			state := game.NewOffsetState()
			system := NewOffsetActorSystem(em, state)
			node := newActorTestNode("chair")
			mustCreateActor(t, em, entities.OffsetActorSpec{
				Name:    "chair",
				Window:  utils.Window{Min: 0.5, Max: 1},
				Opacity: true,
				Node:    node,
			})

			state.SetOffset(tt.offset)
			system.Update(1.0 / 60)

			if got := node.Mesh.Materials[0].Opacity; math.Abs(got-tt.want) > epsilon {
				t.Errorf("opacity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOffsetActorSystem_TranslationStep(t *testing.T) {
	em := ecs.NewEntityManager()
	state := game.NewOffsetState()
	system := NewOffsetActorSystem(em, state)

	node := newActorTestNode("table")
	mustCreateActor(t, em, entities.OffsetActorSpec{
		Name:        "table",
		Window:      utils.Window{Min: 0.5, Max: 1},
		Translation: true,
		Node:        node,
		Start:       mgl64.Vec3{0, 0, 0},
		End:         mgl64.Vec3{10, 0, 0},
	})

	// offset 在窗口之前，progress = 0，目标为 End
	state.SetOffset(0)
	system.Update(1.0 / 60)

	if !node.Position.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, epsilon) {
		t.Errorf("position after one frame = %v, want (1, 0, 0)", node.Position)
	}

	system.Update(1.0 / 60)
	if !node.Position.ApproxEqualThreshold(mgl64.Vec3{1.9, 0, 0}, epsilon) {
		t.Errorf("position after two frames = %v, want (1.9, 0, 0)", node.Position)
	}
}

func TestOffsetActorSystem_TranslationConverges(t *testing.T) {
	em := ecs.NewEntityManager()
	state := game.NewOffsetState()
	system := NewOffsetActorSystem(em, state)

	node := newActorTestNode("card")
	node.Position = mgl64.Vec3{0, 2, 0}
	mustCreateActor(t, em, entities.OffsetActorSpec{
		Name:        "card",
		Window:      utils.Window{Min: 0, Max: 0.5},
		Translation: true,
		Node:        node,
		Start:       mgl64.Vec3{0, 0, 0},
		End:         mgl64.Vec3{0, 2, 0},
	})

	// progress = 1，目标为 Start
	state.SetOffset(0.8)
	for i := 0; i < 300; i++ {
		system.Update(1.0 / 60)
	}
	if !node.Position.ApproxEqualThreshold(mgl64.Vec3{0, 0, 0}, 1e-6) {
		t.Errorf("position = %v, want to converge to start", node.Position)
	}
}

func TestOffsetActorSystem_DisabledChannelsNeverMutate(t *testing.T) {
	em := ecs.NewEntityManager()
	state := game.NewOffsetState()
	system := NewOffsetActorSystem(em, state)

	node := newActorTestNode("table")
	node.Position = mgl64.Vec3{0, 0, 4}
	mat := node.Mesh.Materials[0]

	// 通道关闭但仍持有句柄，验证系统尊重 Enabled 标志
	id := mustCreateActor(t, em, entities.OffsetActorSpec{
		Name:   "table",
		Window: utils.Window{Min: 0, Max: 1},
	})
	opacity, _ := ecs.GetComponent[*components.OpacityChannelComponent](em, id)
	opacity.Materials = []*scene3d.Material{mat}
	translation, _ := ecs.GetComponent[*components.TranslationChannelComponent](em, id)
	translation.Node = node
	translation.End = mgl64.Vec3{10, 10, 10}

	for _, offset := range []float64{0, 0.3, 0.7, 1, 2} {
		state.SetOffset(offset)
		system.Update(1.0 / 60)
	}

	if node.Position != (mgl64.Vec3{0, 0, 4}) {
		t.Errorf("position mutated: %v", node.Position)
	}
	if mat.Transparent || mat.Opacity != 1 {
		t.Errorf("material mutated: transparent=%v opacity=%v", mat.Transparent, mat.Opacity)
	}

	actor, _ := ecs.GetComponent[*components.OffsetActorComponent](em, id)
	if actor.Progress != 1 {
		t.Errorf("inert actor should still track progress, got %v", actor.Progress)
	}
}

func TestOffsetActorSystem_StaleActorIsUnregistered(t *testing.T) {
	em := ecs.NewEntityManager()
	state := game.NewOffsetState()
	system := NewOffsetActorSystem(em, state)

	gone := newActorTestNode("gone")
	kept := newActorTestNode("kept")
	goneID := mustCreateActor(t, em, entities.OffsetActorSpec{
		Name: "gone", Window: utils.Window{Min: 0, Max: 1},
		Translation: true, Node: gone, End: mgl64.Vec3{5, 0, 0},
	})
	keptID := mustCreateActor(t, em, entities.OffsetActorSpec{
		Name: "kept", Window: utils.Window{Min: 0, Max: 1},
		Translation: true, Node: kept, End: mgl64.Vec3{5, 0, 0},
	})

	gone.Dispose()
	system.Update(1.0 / 60)
	em.RemoveMarkedEntities()

	if em.IsAlive(goneID) {
		t.Error("actor with a disposed node should be removed")
	}
	if !em.IsAlive(keptID) {
		t.Error("healthy actor should survive")
	}
	if gone.Position != (mgl64.Vec3{}) {
		t.Errorf("disposed node was mutated: %v", gone.Position)
	}
	if !kept.Position.ApproxEqualThreshold(mgl64.Vec3{0.5, 0, 0}, epsilon) {
		t.Errorf("kept position = %v, want (0.5, 0, 0)", kept.Position)
	}
}

func TestOffsetActorSystem_StaleMaterial(t *testing.T) {
	em := ecs.NewEntityManager()
	state := game.NewOffsetState()
	system := NewOffsetActorSystem(em, state)

	node := newActorTestNode("card")
	id := mustCreateActor(t, em, entities.OffsetActorSpec{
		Name: "card", Window: utils.Window{Min: 0, Max: 1},
		Opacity: true, Node: node,
	})

	mat := node.Mesh.Materials[0]
	mat.Dispose()
	state.SetOffset(0.5)
	system.Update(1.0 / 60)
	em.RemoveMarkedEntities()

	if em.IsAlive(id) {
		t.Error("actor with a disposed material should be removed")
	}
	if mat.Opacity != 1 || mat.Transparent {
		t.Error("disposed material was mutated")
	}
}

func TestOffsetActorSystem_SharedOffsetWithDriver(t *testing.T) {
	em := ecs.NewEntityManager()
	state := game.NewOffsetState()
	scheduler := game.NewFrameScheduler()

	driver := NewOscillatorDriverSystem(state)
	actors := NewOffsetActorSystem(em, state)

	node := newActorTestNode("chair")
	mustCreateActor(t, em, entities.OffsetActorSpec{
		Name: "chair", Window: utils.Window{Min: -0.01, Max: 0.01},
		Opacity: true, Node: node,
	})

	// 后订阅的驱动器仍先于演员执行
	scheduler.Subscribe("actors", game.PriorityActors, actors.Update)
	scheduler.Subscribe("driver", game.PriorityDriver, driver.Update)

	scheduler.Tick(1.0 / 60)

	// 驱动器先把 offset 推到 -0.002，演员看到的是本帧的新值
	want := (-0.002 + 0.01) / 0.02
	if got := node.Mesh.Materials[0].Opacity; math.Abs(got-want) > epsilon {
		t.Errorf("opacity = %v, want %v", got, want)
	}
}

func TestOffsetActorSystem_Easing(t *testing.T) {
	em := ecs.NewEntityManager()
	state := game.NewOffsetState()
	system := NewOffsetActorSystem(em, state)

	outQuad, err := utils.LookupEasing("outQuad")
	if err != nil {
		t.Fatal(err)
	}
	node := newActorTestNode("chair")
	mustCreateActor(t, em, entities.OffsetActorSpec{
		Name: "chair", Window: utils.Window{Min: 0, Max: 1},
		Easing: outQuad, Opacity: true, Node: node,
	})

	state.SetOffset(0.5)
	system.Update(1.0 / 60)
	if got := node.Mesh.Materials[0].Opacity; math.Abs(got-0.75) > epsilon {
		t.Errorf("eased opacity = %v, want 0.75", got)
	}
}
