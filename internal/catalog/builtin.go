package catalog

import "github.com/sadopc/breathe/internal/exercise"

// DefaultRelaxReps is the number of 4-7-8 loops in the guided relax
// exercise.
const DefaultRelaxReps = 4

var relaxBookend = []exercise.Phase{
	exercise.P(exercise.Inhale, 4),
	exercise.P(exercise.Exhale, 4),
	exercise.P(exercise.Hold, 4),
}

// Builtins are the patterns that ship with the app. The first one is the
// fallback for unknown ids.
var Builtins = []Pattern{
	{
		ID:          "box",
		Name:        "Box Breathing",
		Description: "Focus • Stress Relief",
		Inhale:      secs(4),
		HoldIn:      secs(4),
		Exhale:      secs(4),
		HoldOut:     secs(4),
		Icon:        "Sparkles",
		Color:       "#7AA2F7",
	},
	{
		ID:          "relax",
		Name:        "4-7-8 Relax",
		Description: "Sleep • Deep Calm",
		Inhale:      secs(4),
		HoldIn:      secs(7),
		Exhale:      secs(8),
		Prologue:    relaxBookend,
		Epilogue:    relaxBookend,
		Icon:        "Moon",
		Color:       "#9B59B6",
	},
	{
		ID:          "balance",
		Name:        "Coherent",
		Description: "Balance • Heart Rate",
		Inhale:      secs(6),
		Exhale:      secs(6),
		Icon:        "Wind",
		Color:       "#2EC4B6",
	},
}

// Relax478 is the guided 4-7-8 exercise: a settling breath, reps loops of
// inhale 4 / hold 7 / exhale 8, and a closing breath.
func Relax478(reps int) (*exercise.Definition, error) {
	return Builtins[1].Definition(reps)
}

// Icons and Colors are the choices offered when creating a custom method.
var (
	Icons  = []string{"Sparkles", "Wind", "Eye", "Infinity", "Moon", "Sun", "Cloud"}
	Colors = []string{"#7AA2F7", "#F39C12", "#2ECC71", "#9B59B6", "#FF6B6B", "#6C63FF"}
)
