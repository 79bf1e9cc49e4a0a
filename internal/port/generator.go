package port

// Generator produces free text from a prompt. Implementations may
// call a hosted service; transient failures surface to the caller
// unretried.
type Generator interface {
	Generate(prompt string) (string, error)

	// ModelName returns the name of the generation model.
	ModelName() string
}
