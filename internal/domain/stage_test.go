package domain

import (
	"errors"
	"testing"
)

func TestStageOrdering(t *testing.T) {
	stages := AllStages()
	for i := 0; i < len(stages)-1; i++ {
		if !stages[i].Before(stages[i+1]) {
			t.Errorf("Expected %s before %s", stages[i], stages[i+1])
		}
		if stages[i+1].Before(stages[i]) {
			t.Errorf("Expected %s not before %s", stages[i+1], stages[i])
		}
	}

	if StageInfant.Before(StageInfant) {
		t.Error("Expected a stage not to be before itself")
	}

	if Stage("unknown").Before(StageNewborn) || StageNewborn.Before(Stage("unknown")) {
		t.Error("Expected unknown stages never to compare before")
	}
}

func TestParseStage(t *testing.T) {
	stage, err := ParseStage(" Toddler ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stage != StageToddler {
		t.Errorf("Expected %s, got %s", StageToddler, stage)
	}

	_, err = ParseStage("teenager")
	if !errors.Is(err, ErrInvalidStage) {
		t.Errorf("Expected error %v, got %v", ErrInvalidStage, err)
	}
}
