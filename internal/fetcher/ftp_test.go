package fetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFTPFetcherDefaults(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.Equal(t, DefaultFTPHost, f.opts.Host)
	assert.Equal(t, "anonymous", f.opts.User)
	assert.Equal(t, "anonymous@", f.opts.Password)
	assert.Equal(t, 30*time.Second, f.opts.Timeout)

	custom := NewFTPFetcher(FTPOptions{Host: "mirror.example.gov", User: "census", Password: "s"})
	assert.Equal(t, "mirror.example.gov", custom.opts.Host)
	assert.Equal(t, "census", custom.opts.User)
}

func TestResolveFTPTarget(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		target   string
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{
			name:     "bare path uses configured host",
			host:     "ftp2.census.gov",
			target:   "/geo/tiger/GENZ2023/shp/cb_2023_us_state_500k.zip",
			wantHost: "ftp2.census.gov:21",
			wantPath: "/geo/tiger/GENZ2023/shp/cb_2023_us_state_500k.zip",
		},
		{
			name:     "url default port added",
			target:   "ftp://ftp2.census.gov/geo/tiger/file.zip",
			wantHost: "ftp2.census.gov:21",
			wantPath: "/geo/tiger/file.zip",
		},
		{
			name:     "url explicit port kept",
			target:   "ftp://ftp2.census.gov:2121/file.zip",
			wantHost: "ftp2.census.gov:2121",
			wantPath: "/file.zip",
		},
		{
			name:    "wrong scheme",
			target:  "https://example.com/file.zip",
			wantErr: true,
		},
		{
			name:    "url without path",
			target:  "ftp://ftp2.census.gov",
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFTPFetcher(FTPOptions{Host: tc.host})
			host, path, err := f.resolve(tc.target)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantHost, host)
			assert.Equal(t, tc.wantPath, path)
		})
	}
}
