package ecs

import "testing"

type benchWindow struct {
	Min, Max float64
}

type benchOpacity struct {
	Enabled bool
	Values  []float64
}

func setupActorEntities(count int) *EntityManager {
	em := NewEntityManager()
	for i := 0; i < count; i++ {
		id := em.CreateEntity()
		AddComponent(em, id, &benchWindow{Min: 0, Max: 1})
		if i%2 == 0 {
			AddComponent(em, id, &benchOpacity{Enabled: true, Values: make([]float64, 4)})
		}
	}
	return em
}

// BenchmarkActorFrame 模拟每帧遍历演员并写入透明度
func BenchmarkActorFrame(b *testing.B) {
	em := setupActorEntities(200)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, id := range GetEntitiesWith2[*benchWindow, *benchOpacity](em) {
			window, _ := GetComponent[*benchWindow](em, id)
			opacity, _ := GetComponent[*benchOpacity](em, id)
			for j := range opacity.Values {
				opacity.Values[j] = window.Max - window.Min
			}
		}
	}
}
