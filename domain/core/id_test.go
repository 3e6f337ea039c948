package core

import (
	"errors"
	"fmt"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseConfigurationID tests configuration ID parsing
func TestParseConfigurationID(t *testing.T) {
	tests := []struct {
		input    string
		expected ConfigurationID
		hasError bool
	}{
		{"cfg-1", ConfigurationID("cfg-1"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseConfigurationID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestTableFingerprintSeparatesCells(t *testing.T) {
	a := ComputeTableFingerprint([]string{"x"}, [][]string{{"a", "b"}})
	b := ComputeTableFingerprint([]string{"x"}, [][]string{{"ab"}})
	if a == b {
		t.Errorf("Expected distinct fingerprints, both were %s", a)
	}
	if a != ComputeTableFingerprint([]string{"x"}, [][]string{{"a", "b"}}) {
		t.Error("Expected fingerprint to be stable")
	}
}

func TestSectionFailureUnwraps(t *testing.T) {
	err := fmt.Errorf("assemble: %w", NewSectionFailure("model_recommendations", NewAmbiguousTargetError("notes", "is free text")))

	sf, ok := AsSectionFailure(err)
	if !ok {
		t.Fatal("Expected section failure to be extractable")
	}
	if sf.Section != "model_recommendations" {
		t.Errorf("Expected section model_recommendations, got %s", sf.Section)
	}
	if !errors.Is(err, ErrAmbiguousTarget) {
		t.Error("Expected wrapped ambiguous target error")
	}
	if !IsInputError(err) {
		t.Error("Expected ambiguous target to classify as input error")
	}
}
