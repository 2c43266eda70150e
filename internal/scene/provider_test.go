package scene

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rohankatakam/scriptusage/internal/models"
)

func TestBuildAttachments(t *testing.T) {
	instances := []models.Instance{
		{TypeName: "Player", Container: "Hero"},
		{TypeName: "Health", Container: "Hero"},
		{TypeName: "Player", Container: "Sidekick"},
		{TypeName: "Player", Container: "Hero"},
		{TypeName: "", Container: "Broken"},
	}

	got := BuildAttachments(instances)

	assert.Equal(t, models.Attachments{
		"Player": {"Hero", "Sidekick"},
		"Health": {"Hero"},
	}, got)
}

func TestEmptyProvider(t *testing.T) {
	instances, err := EmptyProvider{}.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, BuildAttachments(instances))
}

func TestMockProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockProvider(ctrl)

	provider.EXPECT().Snapshot(gomock.Any()).Return([]models.Instance{
		{TypeName: "Door", Container: "Gate"},
	}, nil)
	provider.EXPECT().Snapshot(gomock.Any()).Return(nil, errors.New("editor not running"))

	var p Provider = provider
	instances, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Gate"}, BuildAttachments(instances)["Door"])

	_, err = p.Snapshot(context.Background())
	assert.EqualError(t, err, "editor not running")
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    []models.Instance
		wantErr bool
	}{
		{
			name:    "yaml",
			content: "instances:\n  - type: Player\n    container: Hero\n  - type: Spawner\n    container: Level\n",
			want: []models.Instance{
				{TypeName: "Player", Container: "Hero"},
				{TypeName: "Spawner", Container: "Level"},
			},
		},
		{
			name:    "json",
			content: `{"instances": [{"type": "Player", "container": "Hero"}]}`,
			want:    []models.Instance{{TypeName: "Player", Container: "Hero"}},
		},
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
		{
			name:    "malformed",
			content: "instances: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			got, err := NewFileProvider(path).Snapshot(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
