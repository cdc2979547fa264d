package resolver

import (
	"testing"

	"github.com/judgeabook/judge-a-book/internal/model"
)

func TestResolveCID(t *testing.T) {
	tests := []struct {
		name   string
		meta   *model.AssetMetadata
		res    model.Resolution
		want   string
		wantOK bool
	}{
		{
			name: "high picks the sentinel file",
			meta: &model.AssetMetadata{
				Image: "ipfs://C",
				Files: []model.MetadataFile{
					{Name: "Cover", Src: "ipfs://A"},
					{Name: "High-Res Cover Image", Src: "ipfs://B"},
				},
			},
			res:    model.High,
			want:   "B",
			wantOK: true,
		},
		{
			name: "high skips sentinel files without the ipfs scheme",
			meta: &model.AssetMetadata{
				Files: []model.MetadataFile{
					{Name: "High-Res Cover Image", Src: "ar://nope"},
					{Name: "High-Res Cover Image", Src: "ipfs://D"},
					{Name: "High-Res Cover Image", Src: "ipfs://E"},
				},
			},
			res:    model.High,
			want:   "D",
			wantOK: true,
		},
		{
			name: "high without sentinel",
			meta: &model.AssetMetadata{
				Image: "ipfs://C",
				Files: []model.MetadataFile{{Name: "Cover", Src: "ipfs://A"}},
			},
			res: model.High,
		},
		{
			name: "high sentinel with no valid scheme",
			meta: &model.AssetMetadata{
				Files: []model.MetadataFile{{Name: "High-Res Cover Image", Src: "https://x/B"}},
			},
			res: model.High,
		},
		{
			name: "high name match is exact",
			meta: &model.AssetMetadata{
				Files: []model.MetadataFile{{Name: "high-res cover image", Src: "ipfs://B"}},
			},
			res: model.High,
		},
		{
			name: "low ignores files",
			meta: &model.AssetMetadata{
				Image: "ipfs://C",
				Files: []model.MetadataFile{{Name: "High-Res Cover Image", Src: "ipfs://B"}},
			},
			res:    model.Low,
			want:   "C",
			wantOK: true,
		},
		{
			name: "low without ipfs scheme",
			meta: &model.AssetMetadata{Image: "https://example.com/C.png"},
			res:  model.Low,
		},
		{
			name: "low with empty cid",
			meta: &model.AssetMetadata{Image: "ipfs://"},
			res:  model.Low,
		},
		{
			name: "nil metadata",
			res:  model.Low,
		},
		{
			name: "unknown resolution",
			meta: &model.AssetMetadata{Image: "ipfs://C"},
			res:  model.Resolution(7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveCID(tt.meta, tt.res)
			if ok != tt.wantOK {
				t.Fatalf("ResolveCID() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ResolveCID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCID_Deterministic(t *testing.T) {
	meta := &model.AssetMetadata{
		Image: "ipfs://C",
		Files: []model.MetadataFile{
			{Name: "High-Res Cover Image", Src: "ipfs://B1"},
			{Name: "High-Res Cover Image", Src: "ipfs://B2"},
		},
	}
	for i := 0; i < 100; i++ {
		if got, _ := ResolveCID(meta, model.High); got != "B1" {
			t.Fatalf("iteration %d: ResolveCID() = %q, want B1", i, got)
		}
	}
}
