// This file implements console-backed collaborators so the engine can run
// headless: speech prints to stdout, sounds are logged, and the sprite and
// scene are simple in-memory stand-ins.
package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/cyberahree/rockin/core/scene"
)

// consoleSpeech prints speech-bubble text to stdout. Display duration is
// estimated from text length the way the real typewriter bubble paces it.
type consoleSpeech struct {
	mu          sync.Mutex
	activeUntil time.Time
}

func newConsoleSpeech() *consoleSpeech {
	return &consoleSpeech{}
}

func (s *consoleSpeech) Say(text string) time.Duration {
	duration := 1500*time.Millisecond + time.Duration(len(text))*50*time.Millisecond

	s.mu.Lock()
	now := time.Now()
	if s.activeUntil.Before(now) {
		s.activeUntil = now
	}
	s.activeUntil = s.activeUntil.Add(duration)
	s.mu.Unlock()

	fmt.Printf("  [rockin] %s\n", text)
	return duration
}

func (s *consoleSpeech) QueueLen() int {
	return 0
}

func (s *consoleSpeech) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().Before(s.activeUntil)
}

// consoleSounds logs sound effects instead of playing them.
type consoleSounds struct{}

func (consoleSounds) Play(relativePath string, volume float64, onFinish func()) {
	fmt.Printf("  [sound] %s (volume %.1f)\n", relativePath, volume)
	if onFinish != nil {
		onFinish()
	}
}

// staticSprite is a sprite stand-in that sits at a fixed position and is
// never dragged.
type staticSprite struct {
	mu     sync.Mutex
	face   string
	eyes   string
	locked bool
}

func newStaticSprite() *staticSprite {
	return &staticSprite{face: "idle", eyes: "idle"}
}

func (s *staticSprite) SetFeatures(face, eyes string, locked bool) {
	s.mu.Lock()
	s.face = face
	s.eyes = eyes
	s.locked = locked
	s.mu.Unlock()

	fmt.Printf("  [sprite] face=%s eyes=%s locked=%v\n", face, eyes, locked)
}

func (s *staticSprite) Centre() scene.Point {
	return scene.Point{X: 640, Y: 360}
}

func (s *staticSprite) Dragging() bool {
	return false
}

// demoScene seeds a scene model with a few decorations so scene events have
// something to act on.
func demoScene() *scene.Model {
	model := scene.NewModel()
	model.Spawn("potted_plant", scene.Point{X: 400, Y: 500}, false)
	model.Spawn("lava_lamp", scene.Point{X: 900, Y: 300}, false)
	model.Spawn("traffic_cone", scene.Point{X: 200, Y: 200}, false)
	return model
}
