package faultproof

// shouldPromote is the anchor promotion policy, isolated so integrators can
// substitute a stricter one without touching the state machine. The current
// policy compares heights only: a defender-winning proposal whose height
// exceeds the current anchor's becomes the new anchor even if its parent is
// no longer the anchor. Resolving independent proposals out of submission
// order can therefore route the anchor through different intermediate
// values, but the highest defender-winning proposal always wins eventually.
func shouldPromote(resolution ResolutionStatus, height, anchorHeight uint64) bool {
	return resolution == ResolutionDefenderWins && height > anchorHeight
}
