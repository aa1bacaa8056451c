package cli

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keyfob-dev/keyfob/internal/errors"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"plain error", stderrors.New("boom"), ExitError},
		{"signature invalid", errors.NewExitCodeError(1, errors.ErrSignatureInvalid), ExitError},
		{"confirmation displayed", errors.NewExitCodeError(2, errors.ErrConfirmationDisplayed), ExitConfirmation},
		{"wrapped exit code error", errors.Wrap(errors.NewExitCodeError(2, errors.ErrConfirmationDisplayed), "sign"), ExitConfirmation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("xml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestValidOutputFormats(t *testing.T) {
	assert.Equal(t, []string{"text", "json"}, ValidOutputFormats())
}
