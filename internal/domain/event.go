package domain

// EventKind distinguishes the platform events the workflow consumes
type EventKind string

const (
	EventMemberJoined    EventKind = "member_joined"
	EventReactionAdded   EventKind = "reaction_added"
	EventReactionRemoved EventKind = "reaction_removed"
	EventMessageReceived EventKind = "message_received"
)

// Symbol is a logical reaction option, independent of platform emoji encoding
type Symbol string

const (
	SymbolUnknown Symbol = ""
	SymbolFlagDE  Symbol = "flag_de"
	SymbolFlagUS  Symbol = "flag_us"
	SymbolYes     Symbol = "yes"
	SymbolNo      Symbol = "no"
	SymbolOne     Symbol = "one"
	SymbolTwo     Symbol = "two"
	SymbolThree   Symbol = "three"
	SymbolFour    Symbol = "four"
	SymbolFive    Symbol = "five"
	SymbolSix     Symbol = "six"
)

// DigitSymbols are the program selection options, in program order
var DigitSymbols = []Symbol{SymbolOne, SymbolTwo, SymbolThree, SymbolFour, SymbolFive, SymbolSix}

// Digit returns the 1-based digit of a digit symbol
func (s Symbol) Digit() (int, bool) {
	for i, d := range DigitSymbols {
		if d == s {
			return i + 1, true
		}
	}
	return 0, false
}

// Event is a platform event addressed to the workflow
type Event struct {
	Kind     EventKind
	UserID   string
	Username string
	PromptID string // reactions only
	Symbol   Symbol // reactions only
	Emoji    string // raw emoji, for logging
	Text     string // messages only
}

// IsReaction reports whether the event refers to a prompt
func (e Event) IsReaction() bool {
	return e.Kind == EventReactionAdded || e.Kind == EventReactionRemoved
}
