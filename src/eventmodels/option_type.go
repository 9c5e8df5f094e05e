package eventmodels

// OptionType selects the call or put side of an OptionRecord.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)
