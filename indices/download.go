package indices

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// The IBGE downloads page is rendered by a dynamic tree; the file itself
// lives on the FTP mirror served over HTTPS, which the page links to.
const (
	zipFileName = "ipca-e_SerieHist.zip"
	zipURL      = "https://ftp.ibge.gov.br/Precos_Indices_de_Precos_ao_Consumidor/" +
		"IPCA_E/Series_Historicas/" + zipFileName
)

// Downloader fetches and unpacks the historical-series ZIP.
type Downloader struct {
	Client *http.Client
	Log    *zap.Logger
}

// NewDownloader builds a Downloader with sane defaults.
func NewDownloader(log *zap.Logger) *Downloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Downloader{Client: http.DefaultClient, Log: log}
}

// Download streams the ZIP into destDir, validates it and returns its
// path. The mirror has occasionally republished the file with different
// capitalization; a 404 on the canonical name retries the variant.
func (d *Downloader) Download(ctx context.Context, destDir string) (string, error) {
	dest := filepath.Join(destDir, zipFileName)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	err := d.fetch(ctx, zipURL, dest)
	if err != nil {
		alt := strings.Replace(zipURL, zipFileName, "IPCA-E_SerieHist.zip", 1)
		d.Log.Warn("download do nome canonico falhou, tentando variante",
			zap.String("alt", alt), zap.Error(err))
		if errAlt := d.fetch(ctx, alt, dest); errAlt != nil {
			return "", fmt.Errorf("download de %s: %w", zipFileName, err)
		}
	}

	if _, err := ListZip(dest); err != nil {
		return "", err
	}
	d.Log.Info("serie historica baixada", zap.String("dest", dest))
	return dest, nil
}

func (d *Downloader) fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return err
	}
	d.Log.Debug("arquivo gravado", zap.String("url", url), zap.Int64("bytes", n))
	return f.Close()
}

// ListZip validates the archive and returns the contained file names.
func ListZip(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("zip invalido %s: %w", path, err)
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// Extract unpacks the archive into a sibling directory named after the
// file (without extension) and returns the extracted paths.
func Extract(zipPath string) ([]string, error) {
	destDir := strings.TrimSuffix(zipPath, filepath.Ext(zipPath))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("zip invalido %s: %w", zipPath, err)
	}
	defer zr.Close()

	var out []string
	for _, f := range zr.File {
		// reject entries that would escape the destination
		dest := filepath.Join(destDir, filepath.Clean("/"+f.Name))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return nil, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, err
		}
		if err := extractFile(f, dest); err != nil {
			return nil, err
		}
		out = append(out, dest)
	}
	return out, nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	w, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer w.Close()

	if _, err := io.Copy(w, rc); err != nil {
		return err
	}
	return w.Close()
}
