package attachment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theopenlane/phishguard/internal/types"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name        string
		attachments []types.AttachmentMeta
		want        float64
	}{
		{
			name: "no attachments",
			want: 0,
		},
		{
			name: "benign document",
			attachments: []types.AttachmentMeta{
				{Filename: "informe.pdf", Mime: "application/pdf", Size: 120_000},
			},
			want: 0,
		},
		{
			name: "risky extension",
			attachments: []types.AttachmentMeta{
				{Filename: "factura.exe", Mime: "application/pdf", Size: 5_000},
			},
			want: 25,
		},
		{
			name: "extension check is case insensitive",
			attachments: []types.AttachmentMeta{
				{Filename: "FACTURA.EXE", Mime: "application/pdf", Size: 5_000},
			},
			want: 25,
		},
		{
			name: "executable mime",
			attachments: []types.AttachmentMeta{
				{Filename: "update.pdf", Mime: "application/x-msdownload", Size: 5_000},
			},
			want: 15,
		},
		{
			name: "empty file",
			attachments: []types.AttachmentMeta{
				{Filename: "recibo.pdf", Mime: "application/pdf", Size: 0},
			},
			want: 10,
		},
		{
			name: "oversized file",
			attachments: []types.AttachmentMeta{
				{Filename: "video.pdf", Mime: "application/pdf", Size: 51 * 1024 * 1024},
			},
			want: 5,
		},
		{
			name: "weights accumulate per attachment",
			attachments: []types.AttachmentMeta{
				{Filename: "payload.exe", Mime: "application/x-executable", Size: 0},
			},
			want: 50,
		},
		{
			name: "missing fields contribute nothing",
			attachments: []types.AttachmentMeta{
				{Size: 1_000},
			},
			want: 0,
		},
		{
			name: "score caps at 100",
			attachments: []types.AttachmentMeta{
				{Filename: "a.exe", Mime: "application/x-executable", Size: 0},
				{Filename: "b.scr", Mime: "application/x-executable", Size: 0},
				{Filename: "c.bat", Mime: "application/x-executable", Size: 0},
			},
			want: 100,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.attachments))
		})
	}
}
