package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    URL
		wantErr bool
	}{
		{
			name: "hub url",
			raw:  "stage://localhost/Users/alice",
			want: URL{Scheme: "stage", Host: "localhost", Path: "/Users/alice"},
		},
		{
			name: "long scheme",
			raw:  "stagelink://hub/Projects/test",
			want: URL{Scheme: "stagelink", Host: "hub", Path: "/Projects/test"},
		},
		{
			name: "host only",
			raw:  "stage://localhost",
			want: URL{Scheme: "stage", Host: "localhost", Path: "/"},
		},
		{
			name: "plain path",
			raw:  "/tmp/stages/helloworld.stage",
			want: URL{Path: "/tmp/stages/helloworld.stage"},
		},
		{
			name: "relative path",
			raw:  "resources/Materials",
			want: URL{Path: "resources/Materials"},
		},
		{
			name:    "unknown scheme",
			raw:     "ftp://host/path",
			wantErr: true,
		},
		{
			name:    "missing host",
			raw:     "stage:///path",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURL(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURLRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"stage://localhost/Users/alice",
		"stage://localhost/",
		"/tmp/helloworld.stage",
	} {
		u, err := ParseURL(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, u.String())
	}
}

func TestIsHubURL(t *testing.T) {
	assert.True(t, IsHubURL("stage://localhost/Projects"))
	assert.False(t, IsHubURL("/tmp/stages"))
	assert.False(t, IsHubURL("ftp://host/path"))
}

func TestURLJoinParent(t *testing.T) {
	u, err := ParseURL("stage://localhost/Projects")
	require.NoError(t, err)

	joined := u.Join("samplesTest", "helloworld.stage")
	assert.Equal(t, "stage://localhost/Projects/samplesTest/helloworld.stage", joined.String())
	assert.Equal(t, "helloworld.stage", joined.Base())
	assert.Equal(t, "stage://localhost/Projects/samplesTest", joined.Parent().String())

	assert.Equal(t, "stage://localhost/a/b", JoinURL("stage://localhost/a", "b"))
	assert.Equal(t, "/tmp/a/b", JoinURL("/tmp/a", "b"))
}
