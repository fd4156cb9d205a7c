package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		doc     string
		wantErr error
	}{
		{"529.982.247-25", nil},
		{"52998224725", nil},
		{"111.444.777-35", nil},
		{"529.982.247-24", ErrDigit},
		{"111.111.111-11", ErrDigit},
		{"11.222.333/0001-81", nil},
		{"11222333000181", nil},
		{"11.222.333/0001-80", ErrDigit},
		{"00.000.000/0000-00", ErrDigit},
		{"1234", ErrLength},
		{"", ErrLength},
	}
	for _, tc := range cases {
		t.Run(tc.doc, func(t *testing.T) {
			err := Validate(tc.doc)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "11222333000181", string(Digits("11.222.333/0001-81")))
}
