package model

// Wizard phases. The step index inside Collecting maps onto Weekdays.
const (
	WizardIdle       = "idle"
	WizardCollecting = "collecting"
	WizardFinalizing = "finalizing"
	WizardCommitted  = "committed"
	WizardAborted    = "aborted"
)

// WizardState is the transient per-student selection state of the
// first-enrollment wizard. It lives only in session storage and is
// never written to the bookings collection.
type WizardState struct {
	SessionID  string             `json:"session_id"`
	StudentID  string             `json:"student_id"`
	Phase      string             `json:"phase"`
	Step       int                `json:"step"`
	Selections map[Weekday]string `json:"selections"`
}

// ChosenCount returns the number of non-skipped day selections.
func (s *WizardState) ChosenCount() int {
	n := 0
	for _, activityID := range s.Selections {
		if activityID != "" {
			n++
		}
	}
	return n
}

// Clone returns an independent copy, including the selections map.
func (s *WizardState) Clone() *WizardState {
	cp := *s
	cp.Selections = make(map[Weekday]string, len(s.Selections))
	for day, activityID := range s.Selections {
		cp.Selections[day] = activityID
	}
	return &cp
}

// Reset clears all selections and returns the state to the first day.
func (s *WizardState) Reset() {
	s.Phase = WizardCollecting
	s.Step = 0
	s.Selections = make(map[Weekday]string)
}
