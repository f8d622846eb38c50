package util

// Envelope is the generic JSON response body. Handlers build every response
// through the helpers below so error and data shapes stay uniform.
type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

func Data(key string, value any) Envelope {
	return Envelope{key: value}
}

// Success is the body for mutations that have nothing else to return.
func Success() Envelope {
	return Envelope{"success": true}
}
