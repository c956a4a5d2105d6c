package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMediaTypeFromMIME(t *testing.T) {
	tests := []struct {
		mime string
		want MediaType
	}{
		{"image/png", MediaTypeImage},
		{"IMAGE/JPEG", MediaTypeImage},
		{"video/mp4", MediaTypeVideo},
		{"application/pdf", MediaTypeDocument},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", MediaTypeDocument},
		{"audio/mpeg", MediaTypeOther},
		{"", MediaTypeOther},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			require.Equal(t, tt.want, MediaTypeFromMIME(tt.mime))
		})
	}
}
