package Whatsapp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CafePOS/Models"
	"CafePOS/Whatsapp"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		invalid bool
	}{
		{in: "0812-3456-7890", want: "6281234567890"},
		{in: "+62 812 3456 7890", want: "6281234567890"},
		{in: "(021) 555.1234", want: "62215551234"},
		{in: "", want: ""},
		{in: "0812abc", invalid: true},
		{in: "12345", invalid: true},
		{in: "1234567890123456", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Whatsapp.NormalizePhone(tt.in)
			if tt.invalid {
				assert.ErrorIs(t, err, Models.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildLink(t *testing.T) {
	link, err := Whatsapp.BuildLink("08123456789", "Total: Rp 25.000 & thanks!")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/628123456789?text=Total%3A%20Rp%2025.000%20%26%20thanks%21", link)

	link, err = Whatsapp.BuildLink("", "line one\nline two")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/?text=line%20one%0Aline%20two", link)

	link, err = Whatsapp.BuildLink("628123456789", "")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/628123456789", link)

	_, err = Whatsapp.BuildLink("not a phone", "hi")
	assert.ErrorIs(t, err, Models.ErrValidation)
}
