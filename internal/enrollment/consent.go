package enrollment

// scrollTolerance absorbs sub-pixel rounding in the host's scroll metrics
const scrollTolerance = 10

// ConsentGate tracks whether the regulation has been read to the end before it is accepted.
// It is not safe for concurrent use; the owning Wizard serializes access.
type ConsentGate struct {
	scrolledToEnd bool
	accepted      bool
}

// OnScroll latches the gate once the viewport reaches the end of the content.
// The latch never reverts for the life of the session.
func (g *ConsentGate) OnScroll(scrollTop, viewportHeight, contentHeight float64) bool {
	if !g.scrolledToEnd && scrollTop+viewportHeight >= contentHeight-scrollTolerance {
		g.scrolledToEnd = true
	}
	return g.scrolledToEnd
}

// ScrolledToEnd reports whether the end of the regulation has been reached
func (g *ConsentGate) ScrolledToEnd() bool {
	return g.scrolledToEnd
}

// CanAccept reports whether the consent control is enabled
func (g *ConsentGate) CanAccept() bool {
	return g.scrolledToEnd
}

// Accept records the consent checkbox. Checking it is refused until the text was scrolled;
// unchecking is always allowed.
func (g *ConsentGate) Accept(accepted bool) error {
	if accepted && !g.scrolledToEnd {
		return ErrRegulationNotRead
	}
	g.accepted = accepted
	return nil
}

// Accepted reports the consent flag
func (g *ConsentGate) Accepted() bool {
	return g.accepted
}

// CanAdvance is true when both the scroll latch and the consent flag are set
func (g *ConsentGate) CanAdvance() bool {
	return g.scrolledToEnd && g.accepted
}

// Reset clears the gate for a fresh session
func (g *ConsentGate) Reset() {
	g.scrolledToEnd = false
	g.accepted = false
}
