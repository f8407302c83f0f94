package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultFTPHost is the Census Bureau mirror that still serves the TIGER
// and cartographic boundary archives over FTP.
const DefaultFTPHost = "ftp2.census.gov:21"

// FTPOptions configures the FTP fetcher. Zero values mean anonymous access
// to the Census mirror.
type FTPOptions struct {
	Host     string // host[:port], DefaultFTPHost when empty
	User     string
	Password string
	Timeout  time.Duration
}

// FTPFetcher downloads archives over FTP. Targets may be full ftp:// URLs
// or bare absolute paths, which resolve against the configured host so
// config files can name datasets by path alone.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher creates a new FTPFetcher with the given options.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Host == "" {
		opts.Host = DefaultFTPHost
	}
	if opts.User == "" {
		opts.User = "anonymous"
		opts.Password = "anonymous@"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &FTPFetcher{opts: opts}
}

// withFTPPort appends the default FTP port when the host carries none.
func withFTPPort(host string) string {
	if _, _, err := net.SplitHostPort(host); err != nil {
		return net.JoinHostPort(host, "21")
	}
	return host
}

// resolve turns a target into a dialable host and a remote path.
func (f *FTPFetcher) resolve(target string) (host string, path string, err error) {
	if strings.HasPrefix(target, "/") {
		return withFTPPort(f.opts.Host), target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", "", eris.Wrapf(err, "ftp: parse target %s", target)
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("ftp: expected ftp scheme or absolute path, got %q", target)
	}
	if u.Path == "" {
		return "", "", eris.Errorf("ftp: no path in %s", target)
	}
	return withFTPPort(u.Host), u.Path, nil
}

// retrReader holds the control connection open while the caller streams the
// retrieved file; Close releases both.
type retrReader struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (r *retrReader) Read(p []byte) (int, error) { return r.resp.Read(p) }

func (r *retrReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "ftp: close transfer")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "ftp: quit")
	}
	return nil
}

// Download retrieves the target and returns a streaming reader. The caller
// must close it to release the FTP connection.
func (f *FTPFetcher) Download(ctx context.Context, target string) (io.ReadCloser, error) {
	host, path, err := f.resolve(target)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("ftp: retrieving",
		zap.String("host", host),
		zap.String("path", path),
	)

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: dial %s", host)
	}
	if err := conn.Login(f.opts.User, f.opts.Password); err != nil {
		conn.Quit()
		return nil, eris.Wrapf(err, "ftp: login %s", host)
	}

	resp, err := conn.Retr(path)
	if err != nil {
		conn.Quit()
		return nil, eris.Wrapf(err, "ftp: retrieve %s", path)
	}
	return &retrReader{resp: resp, conn: conn}, nil
}

// DownloadToFile downloads the target to a local file. Returns bytes written.
func (f *FTPFetcher) DownloadToFile(ctx context.Context, target string, path string) (int64, error) {
	rc, err := f.Download(ctx, target)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "ftp: create %s", path)
	}
	defer file.Close()

	n, err := io.Copy(file, rc)
	if err != nil {
		return n, eris.Wrapf(err, "ftp: write %s", path)
	}
	return n, nil
}
