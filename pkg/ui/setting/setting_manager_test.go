package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "In range", input: "587", ok: true},
		{name: "Lower bound", input: "1", ok: true},
		{name: "Upper bound", input: "65535", ok: true},
		{name: "Zero", input: "0", ok: false},
		{name: "Too large", input: "70000", ok: false},
		{name: "Not a number", input: "smtp", ok: false},
		{name: "Empty", input: "", ok: false},
	}

	validate := IntRange(1, 65535)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.input)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
