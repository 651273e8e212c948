package tts

import "context"

// Synthesizer turns reply text into a stored audio file and returns
// its path. referencePath, when non-empty, points at a reference voice
// sample; backends that support cloning condition on it, others use
// their default voice. Each call decides independently — there is no
// sticky cloning mode.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, referencePath string) (string, error)
}
