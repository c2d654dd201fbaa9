package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sheetrun/internal/testcase"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		kind     testcase.Category
		expected string
		actual   string
		pass     bool
	}{
		{"positive match", testcase.Positive, "ආයුබෝවන්", "ආයුබෝවන්", true},
		{"positive empty actual", testcase.Positive, "ආයුබෝවන්", "", false},
		{"positive mismatch", testcase.Positive, "ආයුබෝවන්", "ආයුබොවන්", false},
		{"positive no expected, output", testcase.Positive, "", "anything", true},
		{"positive no expected, empty", testcase.Positive, "", "", false},

		{"negative same as expected", testcase.Negative, "X", "X", false},
		{"negative differs", testcase.Negative, "X", "Y", true},
		{"negative differs by empty", testcase.Negative, "X", "", true},
		{"negative no expected, empty", testcase.Negative, "", "", true},
		{"negative no expected, output", testcase.Negative, "", "non-empty", false},

		{"default match", testcase.Default, "a", "a", true},
		{"default mismatch", testcase.Default, "a", "b", false},
		{"default no expected, output", testcase.Default, "", "b", true},
		{"default no expected, empty", testcase.Default, "", "", false},

		{"ui flag ignored", testcase.Negative | testcase.UI, "", "", true},
		{"ui only behaves as default", testcase.UI, "", "", false},
		{"no whitespace normalization", testcase.Positive, "a b", "a  b", false},
		{"case sensitive", testcase.Positive, "Abc", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Decide(tt.kind, tt.expected, tt.actual)
			assert.Equal(t, tt.pass, v.Pass, v.Reason)
			assert.NotEmpty(t, v.Reason)
		})
	}
}

func TestDecide_FailureReportsValues(t *testing.T) {
	v := Decide(testcase.Positive, "කොහොමද", "kohomada")
	assert.False(t, v.Pass)
	assert.Contains(t, v.Reason, `"කොහොමද"`)
	assert.Contains(t, v.Reason, `"kohomada"`)
	assert.Equal(t, "FAIL: "+v.Reason, v.String())
}

func TestCheckUI(t *testing.T) {
	assert.True(t, CheckUI(UIChecks{InputVisible: true, ButtonCount: 2, OutputVisible: true}).Pass)

	v := CheckUI(UIChecks{InputVisible: false, ButtonCount: 0, OutputVisible: false})
	assert.False(t, v.Pass)
	assert.Contains(t, v.Reason, "input")

	v = CheckUI(UIChecks{InputVisible: true, ButtonCount: 0, OutputVisible: true})
	assert.Contains(t, v.Reason, "buttons")

	v = CheckUI(UIChecks{InputVisible: true, ButtonCount: 1, OutputVisible: false})
	assert.Contains(t, v.Reason, "output")
}
