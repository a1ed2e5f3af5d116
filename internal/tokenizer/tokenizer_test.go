package tokenizer

import (
	"errors"
	"os"
	"testing"
)

const networkTestsEnvironmentVariable = "CODE4LM_TOKENIZER_NETWORK_TESTS"

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

type failingCounter struct{}

func (failingCounter) Name() string { return "failing" }

func (failingCounter) CountString(string) (int, error) { return 0, errors.New("count failed") }

func TestCountDocument(t *testing.T) {
	result, err := CountDocument(testCounter{}, "hello")
	if err != nil {
		t.Fatalf("CountDocument error: %v", err)
	}
	if result.Tokens != 5 || result.Model != "stub" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCountDocumentErrors(t *testing.T) {
	if _, err := CountDocument(nil, "hello"); !errors.Is(err, ErrNilCounter) {
		t.Fatalf("expected ErrNilCounter, got %v", err)
	}
	if _, err := CountDocument(failingCounter{}, "hello"); err == nil {
		t.Fatalf("expected counter error")
	}
}

func TestNilEncodingCounter(t *testing.T) {
	if _, err := (openAICounter{}).CountString("hello"); !errors.Is(err, errNilEncoding) {
		t.Fatalf("expected errNilEncoding, got %v", err)
	}
}

func TestIsOpenAIModel(t *testing.T) {
	testCases := map[string]bool{
		"gpt-4o":                 true,
		"text-embedding-3-small": true,
		"claude-3-opus":          false,
		"llama-3":                false,
	}
	for model, expected := range testCases {
		if IsOpenAIModel(model) != expected {
			t.Fatalf("IsOpenAIModel(%q) = %v, want %v", model, !expected, expected)
		}
	}
}

// The tiktoken encodings are downloaded on first use, so these tests only run when explicitly enabled.
func TestNewCounterResolvesModels(t *testing.T) {
	if os.Getenv(networkTestsEnvironmentVariable) == "" {
		t.Skipf("set %s to run tokenizer tests that download encodings", networkTestsEnvironmentVariable)
	}

	testCases := []struct {
		name          string
		model         string
		expectedModel string
	}{
		{name: "openai model", model: "gpt-4o", expectedModel: "gpt-4o"},
		{name: "default model", model: "", expectedModel: "gpt-4o"},
		{name: "fallback encoding", model: "claude-3-opus", expectedModel: defaultEncodingName},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			counter, model, err := NewCounter(Config{Model: testCase.model})
			if err != nil {
				t.Fatalf("NewCounter error: %v", err)
			}
			if model != testCase.expectedModel {
				t.Fatalf("expected model %q, got %q", testCase.expectedModel, model)
			}
			tokens, err := counter.CountString("hello world")
			if err != nil {
				t.Fatalf("CountString error: %v", err)
			}
			if tokens <= 0 {
				t.Fatalf("expected positive token count, got %d", tokens)
			}
		})
	}
}
