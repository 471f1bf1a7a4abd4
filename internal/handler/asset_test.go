package handler

import (
	"testing"

	"github.com/minhvt/photobooth-backend/internal/model"
)

func f64(v float64) *float64 { return &v }

func TestValidateAsset(t *testing.T) {
	tests := []struct {
		name  string
		asset model.Asset
		want  string
	}{
		{
			name:  "sticker without layout",
			asset: model.Asset{Type: model.AssetSticker, ImageURL: "https://cdn/x.png", PublicID: "x"},
		},
		{
			name: "filter with layout",
			asset: model.Asset{
				Type: model.AssetFilter, ImageURL: "https://cdn/f.png", PublicID: "f",
				Scale: f64(1.2), OffsetY: f64(-0.1),
			},
		},
		{
			name:  "filter without layout is still valid",
			asset: model.Asset{Type: model.AssetFilter, ImageURL: "https://cdn/f.png", PublicID: "f"},
		},
		{
			name:  "unknown type",
			asset: model.Asset{Type: "banner", ImageURL: "https://cdn/x.png", PublicID: "x"},
			want:  "invalid asset type",
		},
		{
			name:  "missing image url",
			asset: model.Asset{Type: model.AssetFrame, PublicID: "x"},
			want:  "imageUrl required",
		},
		{
			name:  "missing public id",
			asset: model.Asset{Type: model.AssetFrame, ImageURL: "https://cdn/x.png"},
			want:  "publicId required",
		},
		{
			name: "frame with layout rejected",
			asset: model.Asset{
				Type: model.AssetFrame, ImageURL: "https://cdn/x.png", PublicID: "x",
				Scale: f64(1.0),
			},
			want: "layout fields are only valid for filter assets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateAsset(&tt.asset); got != tt.want {
				t.Errorf("validateAsset() = %q, want %q", got, tt.want)
			}
		})
	}
}
