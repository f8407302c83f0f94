package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FetchShapefile downloads a zipped shapefile archive, extracts it into
// destDir, and returns the path of the extracted .shp file. The archive name
// is kept next to the extracted files so re-runs can skip the download.
func FetchShapefile(ctx context.Context, f Fetcher, rawURL, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetch: create dest dir")
	}

	zipPath := filepath.Join(destDir, filepath.Base(rawURL))
	if _, err := os.Stat(zipPath); err != nil {
		n, err := f.DownloadToFile(ctx, rawURL, zipPath)
		if err != nil {
			return "", eris.Wrapf(err, "fetch: download %s", rawURL)
		}
		zap.L().Info("downloaded archive",
			zap.String("url", rawURL),
			zap.Int64("bytes", n),
		)
	} else {
		zap.L().Info("archive already present, skipping download", zap.String("path", zipPath))
	}

	extracted, err := ExtractZIP(zipPath, destDir)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: extract %s", zipPath)
	}

	for _, p := range extracted {
		if strings.EqualFold(filepath.Ext(p), ".shp") {
			return p, nil
		}
	}
	return "", eris.Errorf("fetch: no .shp in %s", zipPath)
}
