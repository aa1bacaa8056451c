package session

// Outcome is the result of the generic identity signing flow. It maps
// directly to the process exit codes the CLI reports.
type Outcome int

const (
	// OutcomeValid means the returned signature verified against the
	// challenge digest.
	OutcomeValid Outcome = 0

	// OutcomeInvalid means the signature failed cryptographic verification.
	OutcomeInvalid Outcome = 1

	// OutcomeConfirmationDisplayed means the derived address was shown on the
	// device display for out-of-band confirmation and no signing happened.
	OutcomeConfirmationDisplayed Outcome = 2
)

// String returns the outcome name for logs and CLI output.
func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeConfirmationDisplayed:
		return "confirmation-displayed"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code for the outcome.
func (o Outcome) ExitCode() int {
	return int(o)
}
