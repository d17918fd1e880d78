package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "RHB-2025-0042", FormatNumber("RHB", 2025, 42))
}

func TestFormatNumberPadsToFourDigits(t *testing.T) {
	assert.Equal(t, "RHB-2024-0001", FormatNumber("RHB", 2024, 1))
	assert.Equal(t, "RHB-2024-0100", FormatNumber("RHB", 2024, 100))
}

func TestFormatNumberGrowsPastPadding(t *testing.T) {
	assert.Equal(t, "RHB-2024-10000", FormatNumber("RHB", 2024, 10000))
}
