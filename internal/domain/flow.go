package domain

// FlowPhase is the controller-owned state of the capture-to-overlay pipeline.
type FlowPhase string

const (
	PhaseIdle        FlowPhase = "idle"
	PhaseAnalyzing   FlowPhase = "analyzing"
	PhaseTranslating FlowPhase = "translating"
	PhaseRendering   FlowPhase = "rendering"
	PhaseCompleted   FlowPhase = "completed"
	PhaseFailed      FlowPhase = "failed"
)

func (p FlowPhase) String() string { return string(p) }

// Terminal reports whether no further transitions can happen.
func (p FlowPhase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// Progress maps a phase to the fraction shown to the user.
func (p FlowPhase) Progress() float64 {
	switch p {
	case PhaseAnalyzing:
		return 0.25
	case PhaseTranslating:
		return 0.50
	case PhaseRendering:
		return 0.75
	case PhaseCompleted:
		return 1.0
	}
	return 0
}

// FlowUpdate is one entry in the phase stream the presentation layer observes.
type FlowUpdate struct {
	Phase    FlowPhase `json:"phase"`
	Progress float64   `json:"progress"`
	Err      error     `json:"-"`
}
