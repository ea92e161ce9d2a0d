package agent

// Apology is the only text shown to a shopper when a turn fails.
const Apology = "Sorry, there was an error connecting to the assistant."

// UserMessage maps a failed turn to what the shopper sees. Error details stay
// in the logs.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return Apology
}
