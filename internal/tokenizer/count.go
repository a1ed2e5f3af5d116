package tokenizer

import "errors"

// ErrNilCounter is returned when no counter was supplied.
var ErrNilCounter = errors.New("nil tokenizer counter")

// CountResult captures the outcome of counting one document.
type CountResult struct {
	Tokens int
	Model  string
}

// CountDocument counts the tokens of a rendered document.
func CountDocument(counter Counter, document string) (CountResult, error) {
	if counter == nil {
		return CountResult{}, ErrNilCounter
	}
	tokens, countErr := counter.CountString(document)
	if countErr != nil {
		return CountResult{}, countErr
	}
	return CountResult{Tokens: tokens, Model: counter.Name()}, nil
}
