package game

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene is a mock implementation of the Scene interface for testing.
type MockScene struct {
	updateCalled bool
	drawCalled   bool
	disposed     int
	deltaTime    float64
}

func (m *MockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

func (m *MockScene) Dispose() {
	m.disposed++
}

// TestSceneManagerUpdate verifies that Update calls the current scene's Update method.
func TestSceneManagerUpdate(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	deltaTime := 1.0 / 60.0
	sm.Update(deltaTime)

	if !mockScene.updateCalled {
		t.Error("Scene's Update method was not called")
	}
	if mockScene.deltaTime != deltaTime {
		t.Errorf("Expected deltaTime %.3f, got %.3f", deltaTime, mockScene.deltaTime)
	}
}

// TestSceneManagerNoScene verifies that Update and Draw handle a nil scene gracefully.
func TestSceneManagerNoScene(t *testing.T) {
	sm := NewSceneManager()
	sm.Update(0.016)
	sm.Draw(ebiten.NewImage(8, 8))
	if sm.GetCurrentScene() != nil {
		t.Error("Expected no active scene")
	}
}

// TestSceneManagerDraw verifies that Draw calls the current scene's Draw method.
func TestSceneManagerDraw(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	sm.Draw(ebiten.NewImage(800, 600))

	if !mockScene.drawCalled {
		t.Error("Scene's Draw method was not called")
	}
}

// TestSceneManagerSwitchDisposesPrevious 切换场景时销毁旧场景
func TestSceneManagerSwitchDisposesPrevious(t *testing.T) {
	sm := NewSceneManager()
	scene1 := &MockScene{}
	scene2 := &MockScene{}

	sm.SwitchTo(scene1)
	sm.SwitchTo(scene1) // 切换到同一场景不销毁
	if scene1.disposed != 0 {
		t.Errorf("switching to the same scene disposed it %d times", scene1.disposed)
	}

	sm.SwitchTo(scene2)
	if scene1.disposed != 1 {
		t.Errorf("scene1 disposed %d times, want 1", scene1.disposed)
	}

	sm.Update(0.016)
	if scene1.updateCalled {
		t.Error("disposed scene should not be updated")
	}

	sm.Close()
	if scene2.disposed != 1 {
		t.Errorf("Close should dispose active scene, got %d", scene2.disposed)
	}
}

func TestSceneManagerLoadScene(t *testing.T) {
	sm := NewSceneManager()
	if err := sm.LoadScene("data/scenes/showroom.yaml"); !errors.Is(err, errNoSceneFactory) {
		t.Errorf("LoadScene without factory error = %v", err)
	}

	first := &MockScene{}
	sm.SwitchTo(first)

	loadErr := errors.New("boom")
	sm.SetSceneFactory(func(path string) (Scene, error) {
		if path == "broken.yaml" {
			return nil, loadErr
		}
		return &MockScene{}, nil
	})

	// 加载失败保留当前场景
	if err := sm.LoadScene("broken.yaml"); !errors.Is(err, loadErr) {
		t.Errorf("LoadScene error = %v, want %v", err, loadErr)
	}
	if sm.GetCurrentScene() != first || first.disposed != 0 {
		t.Error("failed load should keep the current scene")
	}

	if err := sm.LoadScene("ok.yaml"); err != nil {
		t.Fatalf("LoadScene error: %v", err)
	}
	if sm.GetCurrentScene() == first || first.disposed != 1 {
		t.Error("successful load should replace and dispose the previous scene")
	}
}
