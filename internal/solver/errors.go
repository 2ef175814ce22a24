package solver

import "fmt"

const (
	roleSeeds      = "seed-generator"
	roleTension    = "tension-evaluator"
	roleTransition = "state-transition"
	rolePatterns   = "pattern-extractor"
	roleOperators  = "operator-generator"
)

// CollaboratorError is the single failure kind the loop produces: an
// injected collaborator either returned an error or violated its contract.
// The cycle that raised it did not commit.
type CollaboratorError struct {
	Role string
	Err  error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("solver: %s collaborator: %v", e.Role, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func failRole(role string, err error) error {
	return &CollaboratorError{Role: role, Err: err}
}
