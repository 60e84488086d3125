package domain

// ChatState represents the bot conversation state of one user
type ChatState string

const (
	StateIdle               ChatState = "idle"
	StateWaitingTranslation ChatState = "waiting_translation"
)

// StateData holds temporary data for user's current state
type StateData struct {
	State ChatState
	// CurrentWord is the word a new translation is being collected for
	CurrentWord string
	// Pending is the last word fetched from the remote service, awaiting a save
	Pending *WordDTO
}
