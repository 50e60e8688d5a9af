package render

import "github.com/valyala/fasttemplate"

// DefaultFailureMessage is printed when the tailed stack
// ends in a failure status.
const DefaultFailureMessage = "{{stack}} {{status}}"

// Message expands {{stack}} and {{status}} in tpl.
// Unknown placeholders are kept as-is.
func Message(tpl, stackName, status string) string {
	if tpl == "" {
		tpl = DefaultFailureMessage
	}

	return fasttemplate.ExecuteStringStd(
		tpl, "{{", "}}",
		map[string]any{
			"stack":  stackName,
			"status": status,
		},
	)
}
