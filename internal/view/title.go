package view

import "log/slog"

// TitleRenderer presents the placeholder frame of a view that cannot draw
// its scene.
type TitleRenderer interface {
	// Render shows the title, reason says why.
	Render(logger *slog.Logger, reason string)
	// Remove is called once the scene renders again.
	Remove()
	// Frames returns the number of title frames shown so far.
	Frames() int
}

// LogTitle logs a banner once per reason and counts the frames it stood in
// for the scene.
type LogTitle struct {
	reason string
	frames int
}

func (t *LogTitle) Render(logger *slog.Logger, reason string) {
	t.frames++
	if reason == t.reason {
		return
	}
	t.reason = reason
	logger.Warn("🎬 callgrid: showing title frame.", "reason", reason)
}

func (t *LogTitle) Remove() {
	if t.reason != "" {
		t.reason = ""
	}
}

func (t *LogTitle) Frames() int { return t.frames }

// EmptyTitle shows nothing and only counts.
type EmptyTitle struct {
	frames int
}

func (t *EmptyTitle) Render(*slog.Logger, string) { t.frames++ }

func (t *EmptyTitle) Remove() {}

func (t *EmptyTitle) Frames() int { return t.frames }
