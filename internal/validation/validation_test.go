package validation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"interventionSched/internal/validation"
)

type sample struct {
	Name  string  `validate:"required"`
	Ratio float64 `validate:"gt=0,lte=1"`
	Mode  string  `validate:"oneof=greedy annealing"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, validation.Struct(sample{Name: "a", Ratio: 0.5, Mode: "greedy"}))

	err := validation.Struct(sample{Ratio: 0.5, Mode: "greedy"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Name")

	err = validation.Struct(sample{Name: "a", Ratio: 2, Mode: "greedy"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Ratio")

	require.Error(t, validation.Struct(sample{Name: "a", Ratio: 0.5, Mode: "tabu"}))
}

func TestDefaultIsShared(t *testing.T) {
	require.Same(t, validation.Default(), validation.Default())
}
