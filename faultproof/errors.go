package faultproof

import "errors"

var (
	// ErrNotEligible is returned when the submitter is not allow-listed, the
	// wildcard flag is off, and the fallback timeout has not elapsed.
	ErrNotEligible = errors.New("proposer not eligible")
	// ErrBadAuth is returned for owner-gated calls from a non-owner.
	ErrBadAuth = errors.New("caller is not the owner")
	// ErrIncorrectBondAmount is returned when the attached bond does not
	// exactly match the required bond.
	ErrIncorrectBondAmount = errors.New("incorrect bond amount")
	// ErrHeightNotAdvancing is returned when a claim does not exceed the
	// anchor's height.
	ErrHeightNotAdvancing = errors.New("claim height does not advance the anchor")
	// ErrAlreadyChallenged is returned when challenging a proposal that is
	// not in the unchallenged phase.
	ErrAlreadyChallenged = errors.New("proposal already challenged")
	// ErrGameOver is returned when challenging or proving a proposal whose
	// game is over.
	ErrGameOver = errors.New("proposal game is over")
	// ErrGameNotOver is returned when resolving a proposal whose game is
	// still in progress.
	ErrGameNotOver = errors.New("proposal game is not over")
	// ErrAlreadyResolved is returned when resolving a proposal twice.
	ErrAlreadyResolved = errors.New("proposal already resolved")
	// ErrInvalidPhase signals an unreachable lifecycle state. It must never
	// occur in correct operation.
	ErrInvalidPhase = errors.New("invalid proposal phase")
	// ErrNoCredit is returned when claiming credit with a zero balance.
	ErrNoCredit = errors.New("no credit to claim")
	// ErrTransferFailed wraps a failed value transfer during a credit claim.
	// The claimed balance is restored.
	ErrTransferFailed = errors.New("credit transfer failed")
	// ErrProofRejected wraps a verifier rejection, distinguishing it from
	// engine errors.
	ErrProofRejected = errors.New("proof rejected by verifier")
	// ErrUnknownProposal is returned for an out-of-range proposal index.
	ErrUnknownProposal = errors.New("unknown proposal")
)
