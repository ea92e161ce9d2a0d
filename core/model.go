package core

// DefaultModel is used when neither the caller nor OPENAI_MODEL names one.
const DefaultModel = "gpt-4o-mini"
