package worker

import "time"

// GreetingJobEvent is the JSON payload a PBX provisioning flow publishes to
// request one greeting prompt. Template and Voice are optional; empty values
// fall back to the worker's configured defaults.
type GreetingJobEvent struct {
	JobID     string `json:"job_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Template  string `json:"template,omitempty"`
	Voice     string `json:"voice,omitempty"`
}

// PromptCreatedEvent is the reply published once the prompt has been
// generated and stored. PromptKey is the object store key (the derived
// filename) under which the WAV bytes can be fetched.
type PromptCreatedEvent struct {
	JobID     string    `json:"job_id"`
	PromptKey string    `json:"prompt_key"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}
