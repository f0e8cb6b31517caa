package resultstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_String(t *testing.T) {
	cases := map[Status]string{
		StatusPending:   "pending",
		StatusRunning:   "running",
		StatusCompleted: "completed",
		StatusFailed:    "failed",
		StatusSkipped:   "skipped",
		Status(42):      "unknown",
	}
	for status, want := range cases {
		assert.Equal(t, want, status.String())
	}
}

func TestAlreadyWrittenError(t *testing.T) {
	err := &AlreadyWrittenError{Factor: "A"}
	assert.EqualError(t, err, `result of factor "A" has already been written`)
}
