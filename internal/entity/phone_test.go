package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recupaai/recovery/internal/entity"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"formato internacional com máscara", "+55 11 98765-4321", "5511987654321"},
		{"já canônico", "5511987654321", "5511987654321"},
		{"local sem DDI assume Brasil", "11987654321", "5511987654321"},
		{"com parênteses e espaços", "(11) 98765-4321", "5511987654321"},
		{"vazio", "", ""},
		{"só espaços", "   ", ""},
		{"inválido mantém dígitos", "abc123", "123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, entity.NormalizePhone(tc.input))
		})
	}
}
