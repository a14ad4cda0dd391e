package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{amount: 0, want: "zero and 00/100"},
		{amount: 1, want: "one and 00/100"},
		{amount: 150.5, want: "one hundred fifty and 50/100"},
		{amount: 1250.75, want: "one thousand two hundred fifty and 75/100"},
		{amount: 99.99, want: "ninety-nine and 99/100"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, amountInWords(tt.amount))
	}
}
